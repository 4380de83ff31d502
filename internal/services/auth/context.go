package auth

import "context"

type identityKey struct{}

// Identity is the authenticated caller of an API request.
type Identity struct {
	UserID string
	// SID identifies the access token, not a discovery session.
	SID string
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(Identity)
	return identity, ok && identity.UserID != ""
}
