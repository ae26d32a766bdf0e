// Package logging defines the structured logger used across the client.
// Two backends are available: log/slog and go.uber.org/zap.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is a context-aware, structured logger. The variadic args are
// key/value pairs:
//
//	log.Info(ctx, "login succeeded", "user_id", id)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given pairs.
	With(args ...any) Logger
}

// Options selects and tunes a backend.
type Options struct {
	Backend string // "slog" (default) or "zap"
	Level   string // debug, info, warn, error
	Format  string // text (default) or json
	Output  io.Writer
}

// New builds the logger described by opts. Values under secret keys such as
// "token" or "password" are written as "[redacted]".
func New(opts Options) (Logger, error) {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	level, err := parseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(opts.Backend) {
	case "", "slog":
		return newSlogLogger(opts.Output, level, opts.Format), nil
	case "zap":
		return newZapLogger(opts.Output, level, opts.Format)
	default:
		return nil, fmt.Errorf("unknown log backend %q", opts.Backend)
	}
}

// NewNop returns a logger that drops everything.
func NewNop() Logger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
