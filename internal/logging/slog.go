package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// Attribute keys whose values never reach the output. Session tokens and
// passwords travel through the auth flow as plain strings.
var secretKeys = map[string]struct{}{
	"token":         {},
	"session_token": {},
	"fcm_token":     {},
	"password":      {},
	"code":          {},
	"authorization": {},
}

const redacted = "[redacted]"

func isSecret(key string) bool {
	_, ok := secretKeys[strings.ToLower(key)]
	return ok
}

// SlogLogger is the default backend.
type SlogLogger struct {
	l *slog.Logger
}

// NewSlogLogger wraps l as is. Use New for a logger that masks secrets.
func NewSlogLogger(l *slog.Logger) *SlogLogger {
	return &SlogLogger{l: l}
}

func newSlogLogger(w io.Writer, level slog.Level, format string) *SlogLogger {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if isSecret(a.Key) {
				return slog.String(a.Key, redacted)
			}
			return a
		},
	}
	if strings.EqualFold(format, "json") {
		return NewSlogLogger(slog.New(slog.NewJSONHandler(w, opts)))
	}
	return NewSlogLogger(slog.New(slog.NewTextHandler(w, opts)))
}

func (s *SlogLogger) log(ctx context.Context, level slog.Level, msg string, args []any) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.l.Log(ctx, level, msg, args...)
}

func (s *SlogLogger) Debug(ctx context.Context, msg string, args ...any) {
	s.log(ctx, slog.LevelDebug, msg, args)
}

func (s *SlogLogger) Info(ctx context.Context, msg string, args ...any) {
	s.log(ctx, slog.LevelInfo, msg, args)
}

func (s *SlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	s.log(ctx, slog.LevelWarn, msg, args)
}

func (s *SlogLogger) Error(ctx context.Context, msg string, args ...any) {
	s.log(ctx, slog.LevelError, msg, args)
}

// With binds pairs to a child logger, masking secret values.
func (s *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{l: s.l.With(scrub(args)...)}
}

// scrub returns args with the value of every secret key replaced.
func scrub(args []any) []any {
	var out []any
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok || !isSecret(key) {
			continue
		}
		if out == nil {
			out = append([]any(nil), args...)
		}
		out[i+1] = redacted
	}
	if out == nil {
		return args
	}
	return out
}
