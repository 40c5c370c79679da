package pkgrouter

import (
	"net/http"
	"strings"

	"github.com/shandysiswandi/chemviz/internal/pkg/pkglog"
	"github.com/shandysiswandi/chemviz/internal/pkg/pkguid"
)

const (
	HeaderCorrelationID = "X-Correlation-ID"
	HeaderRequestID     = "X-Request-ID"
)

const maxCIDLen = 128

// acceptCID returns v when it is a usable client supplied id: non-empty, at
// most maxCIDLen bytes, and made only of letters, digits and "-_.:".
func acceptCID(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || len(v) > maxCIDLen {
		return ""
	}

	bad := strings.IndexFunc(v, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return false
		case r == '-', r == '_', r == '.', r == ':':
			return false
		}
		return true
	})
	if bad >= 0 {
		return ""
	}

	return v
}

func middlewareCorrelationID(uid pkguid.StringID) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cid := acceptCID(r.Header.Get(HeaderCorrelationID))
			if cid == "" {
				cid = acceptCID(r.Header.Get(HeaderRequestID))
			}
			if cid == "" && uid != nil {
				cid = uid.Generate()
			}

			if cid != "" {
				w.Header().Set(HeaderCorrelationID, cid)
				r = r.WithContext(pkglog.SetCorrelationID(r.Context(), cid))
			}

			next.ServeHTTP(w, r)
		})
	}
}
