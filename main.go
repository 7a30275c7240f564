package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pans/seld-go/cmd"
	"github.com/pans/seld-go/internal/conf"
	"github.com/pans/seld-go/internal/logging"
)

// version and buildDate are populated at build time via ldflags
var version = "dev"
var buildDate = "unknown"

func main() {
	os.Exit(run())
}

func run() int {
	logging.Init()

	settings, err := conf.Load()
	if err != nil {
		logging.Fatal("error loading configuration", "error", err)
	}
	settings.Version = version
	settings.BuildDate = buildDate

	level := slog.LevelInfo
	if settings.Debug {
		level = slog.LevelDebug
	}
	if settings.Engine.Debug {
		// engine session traffic is logged line by line at trace level
		level = logging.LevelTrace
	}
	if level != slog.LevelInfo {
		logging.SetLevel(level)
	}

	// Structured logs go to the configured log file, the stderr text logger
	// stays available for operator-facing messages.
	if settings.Main.Log.Enabled {
		closeLog, err := logging.SetFileOutput(settings.Main.Log.Path, level, &settings.Main.Log)
		if err != nil {
			logging.Warn("file logging disabled", "path", settings.Main.Log.Path, "error", err)
		} else {
			defer func() { _ = closeLog() }()
		}
	}

	logging.Structured().Info("starting seld", "version", version, "build_date", buildDate)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logging.HumanReadable().Error("command failed", "error", err)
		return 1
	}
	return 0
}
