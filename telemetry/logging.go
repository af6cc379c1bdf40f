package telemetry

import (
	"io"
	"log/slog"
)

// NewLogger builds a process logger writing to w from LOG_LEVEL/LOG_FORMAT
// values. Defaults: level=info, format=text. An unknown level logs a warning and
// falls back to info.
func NewLogger(level, format string, w io.Writer) *slog.Logger {
	lvl := slog.LevelInfo
	unknown := false
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	case "info", "":
		// keep default
	default:
		unknown = true
	}
	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(handler)
	if unknown {
		logger.Warn("unknown LOG_LEVEL, using info", slog.String("value", level))
	}
	return logger
}
