// Package logging configures the structured and human-readable loggers used
// across the experiment pipeline.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/pans/seld-go/internal/conf"
)

var structuredLogger *slog.Logger
var humanReadableLogger *slog.Logger

const (
	LevelTrace = slog.Level(-8)
	LevelFatal = slog.Level(12)
)

// Add trace and fatal level names.
var levelNames = map[slog.Leveler]string{
	LevelTrace: "TRACE",
	LevelFatal: "FATAL",
}

// replaceLevelNames customizes level names for the TRACE and FATAL levels.
func replaceLevelNames(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		level := a.Value.Any().(slog.Level)
		levelLabel, exists := levelNames[level]
		if !exists {
			levelLabel = level.String()
		}
		a.Value = slog.StringValue(levelLabel)
	}
	return a
}

// newHandlers builds the JSON and text handlers for the given writers and level.
func newHandlers(structuredOut, humanOut io.Writer, level slog.Level) (slog.Handler, slog.Handler) {
	structured := slog.NewJSONHandler(structuredOut, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevelNames,
	})
	human := slog.NewTextHandler(humanOut, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevelNames,
	})
	return structured, human
}

// Init initializes the logging system with structured and human-readable loggers.
// It configures JSON output to stdout for structured logs and Text output to
// stderr for human-readable logs.
func Init() {
	structuredHandler, humanHandler := newHandlers(os.Stdout, os.Stderr, slog.LevelInfo)
	structuredLogger = slog.New(structuredHandler)
	humanReadableLogger = slog.New(humanHandler)

	slog.SetDefault(structuredLogger)
}

// SetLevel sets the minimum logging level for both loggers by rebuilding the
// handlers. Call before spinning up anything that logs concurrently.
func SetLevel(level slog.Level) {
	structuredHandler, humanHandler := newHandlers(os.Stdout, os.Stderr, level)
	structuredLogger = slog.New(structuredHandler)
	humanReadableLogger = slog.New(humanHandler)

	slog.SetDefault(structuredLogger)
}

// Structured returns the globally configured structured (JSON) logger.
// Returns nil if Init() has not been called.
func Structured() *slog.Logger {
	return structuredLogger
}

// HumanReadable returns the globally configured human-readable (Text) logger.
// Returns nil if Init() has not been called.
func HumanReadable() *slog.Logger {
	return humanReadableLogger
}

// ForService creates a new logger instance with the 'service' attribute added.
// It uses the global structured logger as the base.
// Returns nil if Init() has not been called.
func ForService(serviceName string) *slog.Logger {
	if structuredLogger == nil {
		return nil
	}
	return structuredLogger.With("service", serviceName)
}

// Debug logs a debug message using the default slog logger.
func Debug(msg string, args ...any) {
	slog.Debug(msg, args...)
}

// Info logs an info message using the default slog logger.
func Info(msg string, args ...any) {
	slog.Info(msg, args...)
}

// Warn logs a warning message using the default slog logger.
func Warn(msg string, args ...any) {
	slog.Warn(msg, args...)
}

// Error logs an error message using the default slog logger.
func Error(msg string, args ...any) {
	slog.Error(msg, args...)
}

// Fatal logs a fatal message using the custom Fatal level and then exits.
func Fatal(msg string, args ...any) {
	slog.Log(context.TODO(), LevelFatal, msg, args...)
	os.Exit(1)
}

// Trace logs a trace message using the custom Trace level.
func Trace(msg string, args ...any) {
	slog.Log(context.TODO(), LevelTrace, msg, args...)
}

// newRotationWriter builds a lumberjack writer for filePath with rotation
// parameters derived from logCfg. The log directory is created if missing,
// lumberjack does not create directories itself.
func newRotationWriter(filePath string, logCfg *conf.LogConfig) (*lumberjack.Logger, error) {
	logDir := filepath.Dir(filePath)
	if logDir != "." {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
		}
	}

	logWriter := &lumberjack.Logger{
		Filename: filePath,
		Compress: false,
	}

	// Default values, overridden by config below
	maxSizeMB := 100
	maxBackups := 3
	maxAge := 28 // days

	configMaxSizeMB := int(logCfg.MaxSize / (1024 * 1024))
	if configMaxSizeMB > 0 {
		maxSizeMB = configMaxSizeMB
	}

	switch logCfg.Rotation {
	case conf.RotationDaily:
		maxAge = 1
		maxBackups = 30 // Keep up to 30 daily log files
	case conf.RotationWeekly:
		maxAge = 7
		maxBackups = 4 // Keep up to 4 weekly log files
	case conf.RotationSize:
		// Use maxSizeMB derived from config
	default:
		slog.Warn("Unknown log rotation type in config, using size-based defaults", "configuredType", logCfg.Rotation)
	}

	logWriter.MaxSize = maxSizeMB
	logWriter.MaxBackups = maxBackups
	logWriter.MaxAge = maxAge

	return logWriter, nil
}

// SetFileOutput routes the structured logger to filePath with rotation per
// logCfg, keeping the human-readable logger on stderr. It returns a function
// to close the underlying log writer.
func SetFileOutput(filePath string, level slog.Level, logCfg *conf.LogConfig) (func() error, error) {
	logWriter, err := newRotationWriter(filePath, logCfg)
	if err != nil {
		return nil, err
	}

	structuredHandler, humanHandler := newHandlers(logWriter, os.Stderr, level)
	structuredLogger = slog.New(structuredHandler)
	humanReadableLogger = slog.New(humanHandler)

	slog.SetDefault(structuredLogger)

	return logWriter.Close, nil
}

