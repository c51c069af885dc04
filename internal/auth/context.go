package auth

import "context"

type contextKey struct{}

// Principal is the authenticated caller attached to a request context.
type Principal struct {
	UID         string
	DisplayName string
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}

// UID returns the authenticated uid, or "" for unauthenticated contexts.
func UID(ctx context.Context) string {
	p, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return p.UID
}
