package pkgrouter

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/shandysiswandi/chemviz/internal/pkg/pkgauth"
	"github.com/shandysiswandi/chemviz/internal/pkg/pkgerror"
)

// Authenticator resolves a bearer token to the caller's identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (pkgauth.Identity, error)
}

// BearerToken extracts the credential from "Authorization: Bearer <token>" or
// the equivalent "Token <token>" scheme.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok {
		return ""
	}

	switch strings.ToLower(scheme) {
	case "bearer", "token":
		return strings.TrimSpace(token)
	default:
		return ""
	}
}

// MiddlewareAuth rejects requests without a valid token before the endpoint
// runs and stores the caller's identity in the request context.
func MiddlewareAuth(auth Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r.Header.Get("Authorization"))
			if token == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="chemviz"`)
				writeJSON(w, errorResponse{Message: "authentication credentials were not provided"}, http.StatusUnauthorized)
				return
			}

			id, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				var gerr *pkgerror.Error
				if errors.As(err, &gerr) {
					if gerr.StatusCode() == http.StatusUnauthorized {
						w.Header().Set("WWW-Authenticate", `Bearer realm="chemviz", error="invalid_token"`)
					}
					writeJSON(w, errorResponse{Message: gerr.Msg()}, gerr.StatusCode())
					return
				}
				writeJSON(w, errorResponse{Message: "Internal server error"}, http.StatusInternalServerError)
				return
			}

			next.ServeHTTP(w, r.WithContext(pkgauth.SetIdentity(r.Context(), id)))
		})
	}
}
