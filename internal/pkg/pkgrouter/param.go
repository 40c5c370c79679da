package pkgrouter

import (
	"context"
	"strconv"

	"github.com/julienschmidt/httprouter"
)

// GetParam reads a path parameter from the request context (as stored by httprouter).
func GetParam(ctx context.Context, key string) string {
	return httprouter.ParamsFromContext(ctx).ByName(key)
}

// GetInt64Param parses a numeric path parameter; ok is false when it is
// missing or not a base-10 int64.
func GetInt64Param(ctx context.Context, key string) (int64, bool) {
	v, err := strconv.ParseInt(GetParam(ctx, key), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
