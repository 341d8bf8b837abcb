package requestid

import (
	"context"

	"github.com/google/uuid"
)

type contextKey struct{}

// New returns a fresh operation id.
func New() string {
	return uuid.NewString()
}

// With stores the operation id in the context.
func With(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, contextKey{}, id)
}

// Value returns the operation id stored in the context.
func Value(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(contextKey{}).(string); ok {
		return id
	}
	return ""
}
