package contextutil

import (
	"context"

	"go.uber.org/zap"
)

// contextKey is unexported so keys cannot collide with other libraries
type contextKey string

const (
	requestIDKey contextKey = "request_id"
	readerIDKey  contextKey = "reader_id"
	loggerKey    contextKey = "logger"
)

// --- Request ID helpers ---

func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey, rid)
}

func GetRequestID(ctx context.Context) string {
	if rid, ok := ctx.Value(requestIDKey).(string); ok {
		return rid
	}
	return ""
}

// --- Reader ID helpers ---
// Set by the device-auth middleware so services can log which physical
// reader submitted a tap without threading it through every signature.

func WithReaderID(ctx context.Context, readerID string) context.Context {
	return context.WithValue(ctx, readerIDKey, readerID)
}

func GetReaderID(ctx context.Context) string {
	if rid, ok := ctx.Value(readerIDKey).(string); ok {
		return rid
	}
	return ""
}

// --- Logger helpers ---

func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// GetLogger returns the request-scoped logger, or the fallback when the
// context carries none, so callers never have to nil-check.
func GetLogger(ctx context.Context, defaultLogger *zap.Logger) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok && l != nil {
			return l
		}
	}

	if defaultLogger != nil {
		return defaultLogger
	}

	return zap.NewNop()
}
