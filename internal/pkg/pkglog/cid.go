package pkglog

import "context"

type correlationIDContextKey struct{}

// GetCorrelationID returns the request correlation id, or "" outside a request.
func GetCorrelationID(ctx context.Context) string {
	cid, _ := ctx.Value(correlationIDContextKey{}).(string)
	return cid
}

// SetCorrelationID stores a correlation ID into the context.
func SetCorrelationID(ctx context.Context, cid string) context.Context {
	return context.WithValue(ctx, correlationIDContextKey{}, cid)
}
