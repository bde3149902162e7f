// Package logging sets up the slog logger used by the reltag CLI.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// ParseLevel maps a configured level name to a slog level. Unknown names
// give info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// EffectiveLevel applies the -v and -q flags on top of the configured level.
// Any -v selects debug; -q selects error and wins over -v.
func EffectiveLevel(configured string, verbose int, quiet bool) slog.Level {
	switch {
	case quiet:
		return slog.LevelError
	case verbose > 0:
		return slog.LevelDebug
	default:
		return ParseLevel(configured)
	}
}

// New returns a text logger writing to w at level.
func New(level slog.Level, w io.Writer) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}
