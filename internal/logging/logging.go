// Package logging sets up the engine's structured logger and the
// convention for attaching build-scoped fields to it.
package logging

import (
	"log/slog"
	"os"

	"github.com/google/uuid"
)

// Setup installs a text-handler slog logger as the default, matching the
// CLI's -v flag: info by default, debug when verbose is set.
func Setup(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// NewBuildID returns a fresh identifier for one Environment.Build call, so
// every log line and metric emitted during that build can be correlated.
func NewBuildID() string {
	return uuid.NewString()
}

// ForTarget returns a logger with build_id and target attached, the two
// fields every build-scoped log line in this engine carries.
func ForTarget(logger *slog.Logger, buildID, target string) *slog.Logger {
	return logger.With("build_id", buildID, "target", target)
}

// ForStage further attaches the builder kind currently stepping, for log
// lines emitted from inside a single atomic builder's Step.
func ForStage(logger *slog.Logger, stage string) *slog.Logger {
	return logger.With("stage", stage)
}
