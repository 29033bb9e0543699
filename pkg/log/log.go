// Package log configures the process-wide structured logger.
package log

import (
	"log/slog"
	"os"
)

// Setup installs the default logger. Text output goes to stderr; set
// FORMFORGE_LOG_FORMAT=json to switch to JSON for log shippers.
func Setup(logLevel string) {
	level := parseLevel(logLevel)

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if os.Getenv("FORMFORGE_LOG_FORMAT") == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}

func parseLevel(logLevel string) slog.Level {
	switch logLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	return slog.LevelInfo
}

// WithModule returns the default logger tagged with the component name.
func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
