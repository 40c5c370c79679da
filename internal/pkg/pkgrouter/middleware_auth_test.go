package pkgrouter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shandysiswandi/chemviz/internal/pkg/pkgauth"
	"github.com/shandysiswandi/chemviz/internal/pkg/pkgerror"
)

type authFunc func(ctx context.Context, token string) (pkgauth.Identity, error)

func (f authFunc) Authenticate(ctx context.Context, token string) (pkgauth.Identity, error) {
	return f(ctx, token)
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":     "abc",
		"bearer  abc ":   "abc",
		"Token xyz":      "xyz",
		"Basic dXNlcjpw": "",
		"abc":            "",
		"":               "",
	}
	for header, want := range cases {
		if got := BearerToken(header); got != want {
			t.Fatalf("BearerToken(%q) = %q, want %q", header, got, want)
		}
	}
}

func TestMiddlewareAuth(t *testing.T) {
	auth := authFunc(func(ctx context.Context, token string) (pkgauth.Identity, error) {
		switch token {
		case "good":
			return pkgauth.Identity{Username: "alice", Token: token}, nil
		case "broken":
			return pkgauth.Identity{}, errors.New("store down")
		default:
			return pkgauth.Identity{}, pkgerror.NewUnauthorized("invalid token")
		}
	})

	var called bool
	var gotUser string
	h := MiddlewareAuth(auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		id, _ := pkgauth.GetIdentity(r.Context())
		gotUser = id.Username
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantMsg    string
		wantCalled bool
	}{
		{name: "missing", header: "", wantStatus: http.StatusUnauthorized, wantMsg: "authentication credentials were not provided"},
		{name: "invalid", header: "Bearer nope", wantStatus: http.StatusUnauthorized, wantMsg: "invalid token"},
		{name: "backend failure", header: "Bearer broken", wantStatus: http.StatusInternalServerError, wantMsg: "Internal server error"},
		{name: "valid", header: "Token good", wantStatus: http.StatusOK, wantCalled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called, gotUser = false, ""

			req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if called != tt.wantCalled {
				t.Fatalf("handler called = %v, want %v", called, tt.wantCalled)
			}
			if tt.wantCalled {
				if gotUser != "alice" {
					t.Fatalf("identity = %q, want alice", gotUser)
				}
				return
			}

			var body errorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Message != tt.wantMsg {
				t.Fatalf("message = %q, want %q", body.Message, tt.wantMsg)
			}
		})
	}
}
