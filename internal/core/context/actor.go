package context

import "context"

type actorContextKey struct{}

// WithActor records who is performing the current operation.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// GetActor returns the current actor, or "" when none is set.
func GetActor(ctx context.Context) string {
	if v, ok := ctx.Value(actorContextKey{}).(string); ok {
		return v
	}
	return ""
}
