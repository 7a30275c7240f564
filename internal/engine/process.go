// process.go drives an external interpreter process as an engine session
package engine

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/pans/seld-go/internal/conf"
	"github.com/pans/seld-go/internal/errors"
	"github.com/pans/seld-go/internal/logging"
)

// stderrBufferSize bounds how much engine stderr is retained for error reports.
const stderrBufferSize = 4096

// closeTimeout is how long Close waits for a clean interpreter exit before
// killing the process.
const closeTimeout = 5 * time.Second

// BoundedBuffer is a thread-safe bounded buffer for storing the most recent
// stderr output from the engine process.
type BoundedBuffer struct {
	buffer bytes.Buffer
	mu     sync.Mutex
	size   int
}

// NewBoundedBuffer creates a new BoundedBuffer with the specified size
func NewBoundedBuffer(size int) *BoundedBuffer {
	return &BoundedBuffer{size: size}
}

// Write implements the io.Writer interface
func (b *BoundedBuffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.buffer.Len()+len(p) > b.size {
		// If the new data would exceed the buffer size, trim the existing data
		b.buffer.Reset()
		if len(p) > b.size {
			// Only keep the last 'size' bytes
			p = p[len(p)-b.size:]
		}
	}
	return b.buffer.Write(p)
}

// String returns the contents of the buffer as a string
func (b *BoundedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer.String()
}

// ProcessEngine starts interpreter processes as engine sessions.
type ProcessEngine struct {
	binary       string
	args         []string
	startTimeout time.Duration
	debug        bool
	log          *slog.Logger
}

// NewProcessEngine builds a ProcessEngine from the engine settings.
func NewProcessEngine(settings *conf.EngineSettings) *ProcessEngine {
	log := logging.ForService("engine")
	if log == nil {
		log = slog.Default()
	}
	return &ProcessEngine{
		binary:       settings.Binary,
		args:         settings.Args,
		startTimeout: settings.StartTimeout,
		debug:        settings.Debug,
		log:          log,
	}
}

// Start launches the interpreter and blocks until it answers a probe command
// or the start timeout expires. A failed start leaves no process behind.
func (e *ProcessEngine) Start(ctx context.Context) (Session, error) {
	cmd := exec.Command(e.binary, e.args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, e.startError(fmt.Errorf("creating stdin pipe: %w", err), "")
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, e.startError(fmt.Errorf("creating stdout pipe: %w", err), "")
	}
	stderr := NewBoundedBuffer(stderrBufferSize)
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, e.startError(fmt.Errorf("starting %s: %w", e.binary, err), stderr.String())
	}

	s := &processSession{
		cmd:    cmd,
		stdin:  stdin,
		stderr: stderr,
		lines:  make(chan string, 64),
		done:   make(chan struct{}),
		debug:  e.debug,
		log:    e.log,
	}

	// Forward interpreter output line by line to the session.
	go s.readOutput(stdout)

	// Reap the process once it exits.
	go func() {
		s.waitErr = cmd.Wait()
		close(s.done)
	}()

	startCtx := ctx
	if e.startTimeout > 0 {
		var cancel context.CancelFunc
		startCtx, cancel = context.WithTimeout(ctx, e.startTimeout)
		defer cancel()
	}

	// The interpreter is ready once it echoes a probe token back.
	if err := s.roundTrip(startCtx, ""); err != nil {
		s.kill()
		<-s.done
		return nil, e.startError(fmt.Errorf("engine did not report ready: %w", err), stderr.String())
	}

	e.log.Info("engine session started", "binary", e.binary)
	return s, nil
}

// startError builds an engine-start error with the stderr tail attached.
func (e *ProcessEngine) startError(err error, stderrTail string) error {
	eb := errors.New(err).
		Component("engine").
		Category(errors.CategoryEngineStart).
		Context("binary", e.binary)
	if stderrTail != "" {
		eb = eb.Context("stderr_tail", stderrTail)
	}
	return eb.Build()
}

// processSession is a Session backed by a running interpreter process.
type processSession struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *BoundedBuffer
	lines  chan string
	done   chan struct{}
	debug  bool
	log    *slog.Logger

	mu        sync.Mutex // serializes command round trips
	seq       int
	waitErr   error
	closeOnce sync.Once
	closeErr  error
}

// readOutput forwards interpreter stdout to the lines channel.
func (s *processSession) readOutput(stdout io.Reader) {
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()
		if s.debug {
			logging.Trace("engine output", "line", line)
		}
		select {
		case s.lines <- line:
		default:
			// Queue full of interpreter banners. Drop the oldest line, not
			// this one, the newest line may carry the ack token a round trip
			// is waiting for.
			select {
			case <-s.lines:
			default:
			}
			select {
			case s.lines <- line:
			default:
			}
		}
	}
	close(s.lines)
}

// AddPath appends dir to the engine's script search path.
func (s *processSession) AddPath(ctx context.Context, dir string) error {
	command := fmt.Sprintf("addpath('%s');", escapeSingleQuoted(dir))
	if err := s.roundTrip(ctx, command); err != nil {
		return errors.New(fmt.Errorf("addpath %s: %w", dir, err)).
			Component("engine").
			Category(errors.CategoryEngineSession).
			Context("dir", dir).
			Build()
	}
	return nil
}

// Eval evaluates a single command in the session.
func (s *processSession) Eval(ctx context.Context, command string) error {
	if err := s.roundTrip(ctx, command); err != nil {
		return errors.New(fmt.Errorf("eval failed: %w", err)).
			Component("engine").
			Category(errors.CategoryEngineSession).
			Build()
	}
	return nil
}

// roundTrip sends command followed by a probe and waits until the interpreter
// echoes the probe token, proving the command was consumed.
func (s *processSession) roundTrip(ctx context.Context, command string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	token := fmt.Sprintf("seld:ack:%d", s.seq)

	payload := fmt.Sprintf("%s disp('%s');\n", command, token)
	if _, err := io.WriteString(s.stdin, payload); err != nil {
		return fmt.Errorf("writing to engine: %w (stderr: %s)", err, s.stderr.String())
	}

	for {
		select {
		case line, ok := <-s.lines:
			if !ok {
				return fmt.Errorf("engine output closed (stderr: %s)", s.stderr.String())
			}
			if strings.TrimSpace(line) == token {
				return nil
			}
		case <-s.done:
			return fmt.Errorf("engine exited: %v (stderr: %s)", s.waitErr, s.stderr.String())
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close asks the interpreter to exit and kills it if it does not comply
// within closeTimeout. Safe to call multiple times.
func (s *processSession) Close() error {
	s.closeOnce.Do(func() {
		// A polite exit first, the interpreter flushes its state on exit
		_, writeErr := io.WriteString(s.stdin, "exit\n")
		_ = s.stdin.Close()

		select {
		case <-s.done:
			// clean exit
		case <-time.After(closeTimeout):
			s.kill()
			<-s.done
		}

		if writeErr != nil {
			s.closeErr = errors.New(fmt.Errorf("engine shutdown: %w", writeErr)).
				Component("engine").
				Category(errors.CategoryEngineSession).
				Build()
		}
		s.log.Info("engine session closed")
	})
	return s.closeErr
}

// kill terminates the interpreter process without waiting for a clean exit.
func (s *processSession) kill() {
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
}

// escapeSingleQuoted doubles single quotes for interpolation into a
// single-quoted interpreter string literal.
func escapeSingleQuoted(value string) string {
	return strings.ReplaceAll(value, "'", "''")
}
