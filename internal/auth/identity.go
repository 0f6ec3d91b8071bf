package auth

import "context"

// Identity is the logged-in user of the current request
type Identity struct {
	ID    int
	Name  string
	Email string
	Admin bool
}

type identityCtxKey struct{}

func ContextWithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, identity)
}

// IdentityFromContext returns nil for anonymous requests
func IdentityFromContext(ctx context.Context) *Identity {
	identity, _ := ctx.Value(identityCtxKey{}).(*Identity)
	return identity
}
