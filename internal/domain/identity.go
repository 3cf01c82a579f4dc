package domain

import "context"

// Identity is the caller as vouched for by the auth provider.
type Identity struct {
	UID     string
	Email   string
	Name    string
	Phone   string
	IsAdmin bool
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
