package shared

import "context"

type userContextKey struct{}

// Identity describes the authenticated caller attached to a request.
type Identity struct {
	UserID int64
	Email  string
}

// ContextWithIdentity stores the caller identity in context.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, userContextKey{}, id)
}

// IdentityFromContext extracts the caller identity from context.
// The zero Identity is returned for unauthenticated requests.
func IdentityFromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(userContextKey{}).(Identity)
	return id
}
