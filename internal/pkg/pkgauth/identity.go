package pkgauth

import "context"

// Identity is the authenticated caller of a request.
type Identity struct {
	Username string
	Token    string
}

type identityContextKey struct{}

// SetIdentity stores the authenticated identity into the context.
func SetIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// GetIdentity returns the identity stored by the auth middleware.
func GetIdentity(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(Identity)
	return id, ok && id.Username != ""
}
