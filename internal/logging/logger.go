package logging

import (
	"io"
	"log/slog"
	"os"
)

// New creates the process logger with JSON output on stdout.
func New(level slog.Level) *slog.Logger {
	return NewWithWriter(os.Stdout, level)
}

// NewWithWriter is New with an explicit destination. The logger also becomes
// the slog default so middleware without an injected logger shares it.
func NewWithWriter(w io.Writer, level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})).With("service", "dvdash")
	slog.SetDefault(logger)
	return logger
}

// Component scopes logger to one subsystem.
func Component(logger *slog.Logger, name string) *slog.Logger {
	return logger.With("component", name)
}
