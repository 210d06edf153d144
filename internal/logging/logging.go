// Package logging wires slog into the simulator. Telemetry writers own
// STDOUT, so diagnostic output always goes to STDERR where it cannot
// corrupt a piped JSON stream.
package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// New returns a text-handler logger on STDERR. The level defaults to info
// and can be changed via SARSIM_LOG_LEVEL (debug, info, warn, error);
// unknown values fall back to info.
func New() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: levelFromEnv(),
	}))
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("SARSIM_LOG_LEVEL")) {
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

type ctxKey struct{}

// NewContext returns a copy of ctx with the logger stored.
func NewContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext retrieves a logger from ctx or returns slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
