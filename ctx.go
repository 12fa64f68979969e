package account

import "context"

var identityCtxKey = &contextKey{"identity"}

type contextKey struct {
	name string
}

// WithIdentity binds the authenticated identity to the request context.
// The binding is set once per call by the session middleware and read-only
// thereafter; there is no ambient global state.
func WithIdentity(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, identityCtxKey, user)
}

// IdentityFromContext finds the authenticated identity in the context.
func IdentityFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(identityCtxKey).(*User)
	return user, ok
}
