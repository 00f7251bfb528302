package app

import (
	"io"
	"log/slog"
	"strings"
)

// LevelFromString converts a level name to slog.Level.
// Unknown or empty names default to WARN.
func LevelFromString(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "fatal":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// NewLogger builds the process logger. format is "json" or "text" (default).
func NewLogger(level, format string, output io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: LevelFromString(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}
	return slog.New(handler)
}
