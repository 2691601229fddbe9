package logger

import (
	"io"
	"log/slog"
	"strings"
)

// Options selects the minimum level and output format.
type Options struct {
	Level  string
	Format string
}

func level(option string) (slog.Leveler, bool) {
	switch strings.ToLower(option) {
	case "":
		return nil, true
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return nil, false
	}
}

// New returns a structured logger writing to w. Unknown levels and formats
// fall back to the defaults and log a warning.
func New(w io.Writer, options Options) *slog.Logger {
	lvl, ok := level(options.Level)
	if !ok {
		requested := options.Level
		options.Level = ""
		logger := New(w, options)
		logger.Warn("could not parse logger level", "level", requested)
		return logger
	}
	opts := slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(options.Format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, &opts))
	case "", "text":
		return slog.New(slog.NewTextHandler(w, &opts))
	default:
		requested := options.Format
		options.Format = "text"
		logger := New(w, options)
		logger.Warn("could not parse logger format", "format", requested)
		return logger
	}
}
