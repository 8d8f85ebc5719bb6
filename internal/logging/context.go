package logging

import (
	"context"

	"github.com/charmbracelet/log"
)

type sessionLoggerKey struct{}

// WithLogger attaches the logger of a command session to ctx. Command bodies
// read it back with FromContext.
func WithLogger(ctx context.Context, logger *log.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, sessionLoggerKey{}, logger)
}

// FromContext returns the session logger attached to ctx, falling back to
// the process default when ctx carries none.
func FromContext(ctx context.Context) *log.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(sessionLoggerKey{}).(*log.Logger); ok && logger != nil {
			return logger
		}
	}
	return Default()
}
