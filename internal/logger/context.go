package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type (
	loggerKey struct{}
	eventKey  struct{}
)

// ContextWithLogger stores a logger in the context.
func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext extracts a logger from the context.
// Returns zap.NewNop() if no logger is found.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := Lookup(ctx); ok {
		return l
	}
	return zap.NewNop()
}

// Lookup returns the request-scoped logger, if one was stored.
func Lookup(ctx context.Context) (*zap.Logger, bool) {
	l, ok := ctx.Value(loggerKey{}).(*zap.Logger)
	return l, ok && l != nil
}

// Event collects fields for the single log line written when a request ends.
type Event struct {
	mu     sync.Mutex
	fields []zap.Field
}

// ContextWithEvent attaches a fresh Event to ctx.
func ContextWithEvent(ctx context.Context) (context.Context, *Event) {
	e := &Event{}
	return context.WithValue(ctx, eventKey{}, e), e
}

// AddFields appends fields to the request's Event. No-op outside a request.
func AddFields(ctx context.Context, fields ...zap.Field) {
	e, ok := ctx.Value(eventKey{}).(*Event)
	if !ok || e == nil {
		return
	}
	e.mu.Lock()
	e.fields = append(e.fields, fields...)
	e.mu.Unlock()
}

// Fields returns a copy of the collected fields.
func (e *Event) Fields() []zap.Field {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]zap.Field, len(e.fields))
	copy(out, e.fields)
	return out
}
