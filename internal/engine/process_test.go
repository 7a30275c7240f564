package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pans/seld-go/internal/conf"
	"github.com/pans/seld-go/internal/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeEngineScript emulates an interpreter: it answers every disp('token')
// line by echoing the token and terminates on exit.
const fakeEngineScript = `while IFS= read -r line; do
  case "$line" in
    exit*) exit 0 ;;
    *disp*) printf '%s\n' "$line" | sed "s/.*disp('\([^']*\)').*/\1/" ;;
  esac
done`

// fakeEngineSettings returns engine settings running the fake interpreter.
func fakeEngineSettings(t *testing.T) *conf.EngineSettings {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake interpreter needs a POSIX shell")
	}
	return &conf.EngineSettings{
		Binary:       "sh",
		Args:         []string{"-c", fakeEngineScript},
		StartTimeout: 10 * time.Second,
	}
}

func TestProcessEngineSessionLifecycle(t *testing.T) {
	eng := NewProcessEngine(fakeEngineSettings(t))

	session, err := eng.Start(context.Background())
	require.NoError(t, err)

	require.NoError(t, session.AddPath(context.Background(), "/opt/tracker"))
	require.NoError(t, session.Eval(context.Background(), "x = 1;"))

	require.NoError(t, session.Close())
	// Close is idempotent
	require.NoError(t, session.Close())
}

func TestProcessEngineStartFailure(t *testing.T) {
	settings := fakeEngineSettings(t)
	settings.Binary = "definitely-not-an-interpreter-zzz"
	eng := NewProcessEngine(settings)

	session, err := eng.Start(context.Background())
	require.Error(t, err)
	assert.Nil(t, session)
	assert.True(t, errors.IsCategory(err, errors.CategoryEngineStart),
		"start failure must carry the engine-start category, got: %v", err)
}

func TestProcessEngineStartTimeout(t *testing.T) {
	settings := fakeEngineSettings(t)
	// a process that never answers the ready probe
	settings.Binary = "sleep"
	settings.Args = []string{"30"}
	settings.StartTimeout = 200 * time.Millisecond
	eng := NewProcessEngine(settings)

	start := time.Now()
	session, err := eng.Start(context.Background())
	require.Error(t, err)
	assert.Nil(t, session)
	assert.True(t, errors.IsCategory(err, errors.CategoryEngineStart))
	assert.Less(t, time.Since(start), 5*time.Second, "start must give up at the configured timeout")
}

func TestProcessEngineStartContextCancel(t *testing.T) {
	settings := fakeEngineSettings(t)
	settings.Binary = "sleep"
	settings.Args = []string{"30"}
	eng := NewProcessEngine(settings)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	session, err := eng.Start(ctx)
	require.Error(t, err)
	assert.Nil(t, session)
}

func TestSessionFailsAfterInterpreterExit(t *testing.T) {
	eng := NewProcessEngine(fakeEngineSettings(t))

	session, err := eng.Start(context.Background())
	require.NoError(t, err)

	// an explicit exit pulls the interpreter out from under the session
	require.NoError(t, session.Close())

	err = session.AddPath(context.Background(), "/opt/tracker")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryEngineSession))
}

// chattyEngineScript behaves like fakeEngineScript but floods 200 banner
// lines before every echoed token.
const chattyEngineScript = `while IFS= read -r line; do
  case "$line" in
    exit*) exit 0 ;;
    *disp*)
      i=0
      while [ $i -lt 200 ]; do echo "banner $i"; i=$((i+1)); done
      printf '%s\n' "$line" | sed "s/.*disp('\([^']*\)').*/\1/"
      ;;
  esac
done`

func TestReadOutputKeepsNewestLineUnderBackpressure(t *testing.T) {
	s := &processSession{
		lines: make(chan string, 64),
		log:   slog.Default(),
	}

	// feed far more lines than the queue holds, the ack token last,
	// with no consumer draining in parallel
	var input strings.Builder
	for i := 0; i < 200; i++ {
		fmt.Fprintf(&input, "banner %d\n", i)
	}
	input.WriteString("seld:ack:1\n")

	s.readOutput(strings.NewReader(input.String()))

	var got []string
	for line := range s.lines {
		got = append(got, line)
	}
	require.NotEmpty(t, got)
	assert.Equal(t, "seld:ack:1", got[len(got)-1],
		"the most recent interpreter line must survive queue pressure")
}

func TestSessionSurvivesChattyInterpreter(t *testing.T) {
	settings := fakeEngineSettings(t)
	settings.Args = []string{"-c", chattyEngineScript}
	eng := NewProcessEngine(settings)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	session, err := eng.Start(ctx)
	require.NoError(t, err)

	require.NoError(t, session.AddPath(ctx, "/opt/tracker"))
	require.NoError(t, session.Eval(ctx, "x = 1;"))
	require.NoError(t, session.Close())
}

func TestEscapeSingleQuoted(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/plain/path", "/plain/path"},
		{"/pa'th", "/pa''th"},
		{"''", "''''"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, escapeSingleQuoted(tt.in))
	}
}

func TestBoundedBuffer(t *testing.T) {
	buf := NewBoundedBuffer(8)

	_, err := buf.Write([]byte("abcd"))
	require.NoError(t, err)
	assert.Equal(t, "abcd", buf.String())

	// exceeding the bound drops the oldest data
	_, err = buf.Write([]byte("efghij"))
	require.NoError(t, err)
	assert.Equal(t, "efghij", buf.String())

	// a single oversized write keeps only the tail
	_, err = buf.Write([]byte("0123456789AB"))
	require.NoError(t, err)
	assert.Equal(t, "456789AB", buf.String())
}
