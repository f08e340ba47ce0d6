package requestid

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

// maxLen bounds client-supplied IDs so they cannot bloat every log line.
const maxLen = 128

// New generates a random UUID v4 request ID.
func New() string {
	return uuid.NewString()
}

// FromHeader returns the client-supplied ID if it is usable, otherwise a fresh one.
func FromHeader(v string) string {
	if v == "" || len(v) > maxLen {
		return New()
	}
	return v
}

// WithRequestID returns a copy of ctx with the request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext extracts the request ID from ctx. Returns "" if absent.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
