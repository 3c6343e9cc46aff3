package main

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// newLogger builds the process logger. --verbose wins over LOG_LEVEL.
func newLogger(w io.Writer, cfg *config) *slog.Logger {
	level := slog.LevelInfo

	if env := os.Getenv("LOG_LEVEL"); env != "" {
		if err := level.UnmarshalText([]byte(strings.ToUpper(env))); err != nil {
			level = slog.LevelInfo
		}
	}

	if cfg.verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceTimeAttr,
	}

	var handler slog.Handler
	if cfg.jsonLog {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

func replaceTimeAttr(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey && len(groups) == 0 {
		return slog.String(slog.TimeKey, a.Value.Time().Local().Format("2006-01-02 15:04:05"))
	}
	return a
}
