package experiment

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pans/seld-go/internal/conf"
	"github.com/pans/seld-go/internal/engine"
	"github.com/pans/seld-go/internal/errors"
	"github.com/pans/seld-go/internal/labels"
)

// newTestSettings builds settings with real temp directories for every
// configured path.
func newTestSettings(t *testing.T) *conf.Settings {
	t.Helper()

	root := t.TempDir()
	settings := &conf.Settings{}
	settings.Dataset.AudioDir = filepath.Join(root, "foa_dev")
	settings.Dataset.STFTDir = filepath.Join(root, "stft")
	settings.Dataset.MetadataDir = filepath.Join(root, "metadata")
	settings.Engine = conf.EngineSettings{
		Binary:       "matlab",
		ScriptDir:    filepath.Join(root, "tracker"),
		StartTimeout: time.Minute,
	}
	settings.Audio = conf.AudioSettings{
		SampleRate:    24000,
		WindowSize:    2400,
		WindowOverlap: 1200,
		NFFT:          2400,
		FrameLength:   0.1,
	}
	settings.Labels = conf.LabelSettings{NumClasses: 13}

	for _, dir := range []string{
		settings.Dataset.AudioDir,
		settings.Dataset.STFTDir,
		settings.Dataset.MetadataDir,
		settings.Engine.ScriptDir,
	} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}

	return settings
}

func TestSetupSuccess(t *testing.T) {
	settings := newTestSettings(t)
	session := &engine.MockSession{}
	eng := &engine.MockEngine{Session: session}

	expCtx, err := Setup(context.Background(), settings, eng, labels.EmbeddedProvider{})
	require.NoError(t, err)

	assert.Equal(t, 13, expCtx.Labels.NumClasses)
	assert.Equal(t, 12, expCtx.Labels.UndefinedClassID)
	assert.Equal(t, []string{settings.Engine.ScriptDir}, session.Paths(),
		"the tracker script directory must be registered on the engine search path")
	assert.NotEmpty(t, expCtx.RunDir)
	assert.Same(t, settings, expCtx.Settings)

	require.NoError(t, expCtx.Close())
	assert.True(t, session.Closed())

	// Close is idempotent
	require.NoError(t, expCtx.Close())
}

func TestSetupEngineStartFailure(t *testing.T) {
	settings := newTestSettings(t)
	eng := &engine.MockEngine{
		StartErr: errors.Newf("license checkout failed").
			Category(errors.CategoryEngineStart).
			Build(),
	}

	expCtx, err := Setup(context.Background(), settings, eng, labels.EmbeddedProvider{})
	require.Error(t, err)
	assert.Nil(t, expCtx, "nothing may be considered loaded after an engine start failure")
	assert.Contains(t, err.Error(), "engine start failed")
	assert.True(t, errors.IsCategory(err, errors.CategoryEngineStart))
}

func TestSetupLabelFailureReleasesSession(t *testing.T) {
	settings := newTestSettings(t)
	session := &engine.MockSession{}
	eng := &engine.MockEngine{Session: session}

	// collaborator returns 10 names for 13 classes
	short := shortProvider(10)

	expCtx, err := Setup(context.Background(), settings, eng, short)
	require.Error(t, err)
	assert.Nil(t, expCtx)
	assert.Contains(t, err.Error(), "label scheme load failed")
	assert.True(t, session.Closed(), "a failed load must not leak the engine session")
}

func TestSetupAddPathFailureReleasesSession(t *testing.T) {
	settings := newTestSettings(t)
	session := &engine.MockSession{
		AddPathErr: errors.Newf("addpath rejected").
			Category(errors.CategoryEngineSession).
			Build(),
	}
	eng := &engine.MockEngine{Session: session}

	expCtx, err := Setup(context.Background(), settings, eng, labels.EmbeddedProvider{})
	require.Error(t, err)
	assert.Nil(t, expCtx)
	assert.True(t, session.Closed())
}

func TestSetupPathValidationFailsBeforeEngineStart(t *testing.T) {
	settings := newTestSettings(t)
	settings.Dataset.STFTDir = filepath.Join(t.TempDir(), "missing")
	eng := &engine.MockEngine{}

	expCtx, err := Setup(context.Background(), settings, eng, labels.EmbeddedProvider{})
	require.Error(t, err)
	assert.Nil(t, expCtx)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
	assert.Zero(t, eng.Starts(), "the engine must not be started against invalid paths")
}

func TestSetupObservableValuesAreStable(t *testing.T) {
	settings := newTestSettings(t)

	first, err := Setup(context.Background(), settings, &engine.MockEngine{}, labels.EmbeddedProvider{})
	require.NoError(t, err)
	defer first.Close()

	second, err := Setup(context.Background(), settings, &engine.MockEngine{}, labels.EmbeddedProvider{})
	require.NoError(t, err)
	defer second.Close()

	// fresh engine sessions, identical observable values
	assert.Equal(t, first.Settings, second.Settings)
	assert.Equal(t, first.Labels.Names(), second.Labels.Names())
	assert.Equal(t, first.Labels.UndefinedClassID, second.Labels.UndefinedClassID)
	assert.Equal(t, first.RunDir, second.RunDir)
}

// shortProvider yields fewer names than requested.
type shortProvider int

func (p shortProvider) ClassNames(numClasses int) (map[int]string, error) {
	names := make(map[int]string, int(p))
	for i := 0; i < int(p); i++ {
		names[i] = "class"
	}
	return names, nil
}
