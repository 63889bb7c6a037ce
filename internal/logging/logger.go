// Package logging defines the structured-logging interface used across the
// storefront server, with slog and zap backed implementations.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "order created", "order_id", id, "user_id", userID)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// New builds a Logger for the given mode:
//
//	json     slog JSON lines to w (default)
//	text     slog key=value lines to w
//	zap      zap production config (stderr)
//	zap-dev  zap development config (stderr)
func New(mode string, w io.Writer) (Logger, error) {
	switch strings.ToLower(mode) {
	case "", "json":
		return NewSlogLogger(slog.New(slog.NewJSONHandler(w, nil))), nil
	case "text":
		return NewSlogLogger(slog.New(slog.NewTextHandler(w, nil))), nil
	case "zap":
		return NewZapLogger(true)
	case "zap-dev":
		return NewZapLogger(false)
	default:
		return nil, fmt.Errorf("unknown log mode %q", mode)
	}
}
