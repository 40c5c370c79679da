package pkgrouter

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shandysiswandi/chemviz/internal/pkg/pkglog"
)

type staticGenerator struct {
	value string
	calls int
}

func (g *staticGenerator) Generate() string {
	g.calls++
	return g.value
}

func TestMiddlewareCorrelationID(t *testing.T) {
	tests := []struct {
		name      string
		headers   map[string]string
		wantCID   string
		wantCalls int
	}{
		{name: "correlation header", headers: map[string]string{HeaderCorrelationID: "header-cid"}, wantCID: "header-cid"},
		{name: "request id header", headers: map[string]string{HeaderRequestID: "req:42"}, wantCID: "req:42"},
		{name: "missing", wantCID: "generated", wantCalls: 1},
		{name: "unsafe characters", headers: map[string]string{HeaderCorrelationID: "a b<script>"}, wantCID: "generated", wantCalls: 1},
		{name: "too long", headers: map[string]string{HeaderCorrelationID: strings.Repeat("a", maxCIDLen+1)}, wantCID: "generated", wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &staticGenerator{value: "generated"}

			var gotCID string
			wrapped := middlewareCorrelationID(gen)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotCID = pkglog.GetCorrelationID(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()

			wrapped.ServeHTTP(rec, req)

			if got := rec.Header().Get(HeaderCorrelationID); got != tt.wantCID {
				t.Fatalf("response cid = %q, want %q", got, tt.wantCID)
			}
			if gotCID != tt.wantCID {
				t.Fatalf("context cid = %q, want %q", gotCID, tt.wantCID)
			}
			if gen.calls != tt.wantCalls {
				t.Fatalf("generator calls = %d, want %d", gen.calls, tt.wantCalls)
			}
		})
	}
}
