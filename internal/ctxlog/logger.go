package ctxlog

import (
	"io"
	"log/slog"
	"strings"
)

// ParseLevel maps a configured level name to a slog.Level. Unknown names
// fall back to info.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates an isolated logger writing to outW. It does not set the
// global logger. formatStr "json" selects the JSON handler, anything else
// the text handler.
func New(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	return NewWithLevel(ParseLevel(levelStr), formatStr, outW)
}

// NewWithLevel is New with a caller-controlled level, typically a
// *slog.LevelVar that is adjusted at runtime.
func NewWithLevel(level slog.Leveler, formatStr string, outW io.Writer) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(formatStr, "json") {
		handler = slog.NewJSONHandler(outW, handlerOpts)
	} else {
		handler = slog.NewTextHandler(outW, handlerOpts)
	}
	return slog.New(handler)
}
