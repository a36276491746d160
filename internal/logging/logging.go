// Package logging builds the process-wide structured logger. Components
// derive their own via With("component", ...).
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// New returns a text logger writing to stdout at the given level.
func New(level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
	}))
}

// parseLevel maps a config string to a slog level; unknown values mean info.
func parseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
