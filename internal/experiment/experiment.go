// Package experiment assembles the process-wide experiment context: dataset
// paths, one external engine session with the tracker scripts on its search
// path, the short-time analysis parameters and the label scheme. Setup is
// all-or-nothing, a failure at any step returns an error naming the step and
// releases anything already acquired.
package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pans/seld-go/internal/conf"
	"github.com/pans/seld-go/internal/engine"
	"github.com/pans/seld-go/internal/errors"
	"github.com/pans/seld-go/internal/labels"
	"github.com/pans/seld-go/internal/logging"
)

// Context is the loaded experiment configuration context. Fields are fixed at
// Setup and read-only thereafter; the engine session is the only owned
// resource and is released by Close.
type Context struct {
	Settings *conf.Settings
	Session  engine.Session
	Labels   *labels.Scheme

	// RunDir is the directory of the running binary, kept as a reference
	// location for diagnostics.
	RunDir string

	closeOnce sync.Once
	closeErr  error
}

// Setup builds the experiment context against the given engine and label
// provider. Steps, in order: eager path validation, engine session start,
// script path registration, label scheme resolution. Nothing is considered
// loaded unless every step succeeds.
func Setup(ctx context.Context, settings *conf.Settings, eng engine.Engine, provider labels.Provider) (*Context, error) {
	log := logging.ForService("experiment")
	if log == nil {
		log = slog.Default()
	}

	// Paths fail here, up front, not later as open errors mid-run
	if err := conf.ValidatePaths(settings); err != nil {
		return nil, errors.New(fmt.Errorf("path validation failed: %w", err)).
			Component("experiment").
			Category(errors.CategoryConfiguration).
			Build()
	}

	runDir, err := conf.RunDir()
	if err != nil {
		return nil, fmt.Errorf("resolving run directory: %w", err)
	}

	session, err := eng.Start(ctx)
	if err != nil {
		return nil, fmt.Errorf("engine start failed: %w", err)
	}

	// From here on the session must not leak on failure
	if err := session.AddPath(ctx, settings.Engine.ScriptDir); err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("registering engine script path failed: %w", err)
	}

	scheme, err := labels.New(settings.Labels.NumClasses, provider)
	if err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("label scheme load failed: %w", err)
	}

	log.Info("experiment context loaded",
		"audio_dir", settings.Dataset.AudioDir,
		"script_dir", settings.Engine.ScriptDir,
		"sample_rate", settings.Audio.SampleRate,
		"num_classes", scheme.NumClasses,
		"undefined_class_id", scheme.UndefinedClassID)

	return &Context{
		Settings: settings,
		Session:  session,
		Labels:   scheme,
		RunDir:   runDir,
	}, nil
}

// SetupDefault builds the experiment context with the process-backed engine
// and the configured label provider.
func SetupDefault(ctx context.Context, settings *conf.Settings) (*Context, error) {
	eng := engine.NewProcessEngine(&settings.Engine)
	provider := labels.DefaultProvider(settings.Labels.File)
	return Setup(ctx, settings, eng, provider)
}

// Close releases the engine session. Idempotent.
func (c *Context) Close() error {
	c.closeOnce.Do(func() {
		if c.Session != nil {
			c.closeErr = c.Session.Close()
		}
	})
	return c.closeErr
}
