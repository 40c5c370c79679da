package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/chemviz/internal/equipment/inbound"
	"github.com/shandysiswandi/chemviz/internal/equipment/store"
	"github.com/shandysiswandi/chemviz/internal/equipment/usecase"
	"github.com/shandysiswandi/chemviz/internal/pkg/pkgauth"
	"github.com/shandysiswandi/chemviz/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/chemviz/internal/pkg/pkgstorage"
	"github.com/shandysiswandi/chemviz/internal/pkg/pkguid"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	blobs, err := pkgstorage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	ids, err := pkguid.NewSnowflake(2)
	if err != nil {
		t.Fatalf("NewSnowflake: %v", err)
	}

	uc := usecase.New(usecase.Dependency{
		Store:    store.NewInMemoryStore(),
		Blobs:    blobs,
		Sessions: pkgauth.NewSessionStore(time.Hour),
		ID:       ids,
	})

	hash, err := pkgauth.HashPassword("pw", pkgauth.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := uc.SeedUsers(context.Background(), map[string]string{"alice": hash}); err != nil {
		t.Fatalf("SeedUsers: %v", err)
	}

	router := pkgrouter.NewRouter(pkguid.NewUUID())
	inbound.RegisterHTTPEndpoint(router, uc)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientRoundTrip(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()

	c, err := New(srv.URL + "/")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	cred, err := c.Login(ctx, "alice", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !cred.Valid(time.Now()) || cred.Username != "alice" {
		t.Fatalf("unexpected credential: %+v", cred)
	}

	csv := "Type,Pressure,Temperature\nValve,10,20\nPump,20,30\nValve,30,10\n"
	up, err := c.Upload(ctx, cred, "plant.csv", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if up.FileName != "plant.csv" || up.Stats.TotalCount != 3 || up.Stats.AvgPressure != 20 {
		t.Fatalf("unexpected upload: %+v", up)
	}

	history, err := c.History(ctx, cred)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 || history[0].ID != up.ID {
		t.Fatalf("unexpected history: %+v", history)
	}

	got, err := c.Get(ctx, cred, up.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Stats.ChartLabels[0] != "Valve" {
		t.Fatalf("unexpected detail: %+v", got)
	}

	var file strings.Builder
	n, err := c.Download(ctx, cred, up.ID, &file)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if file.String() != csv || n != int64(len(csv)) {
		t.Fatalf("Download wrote %d bytes %q", n, file.String())
	}

	var apiErr *APIError
	if _, err := c.Download(ctx, cred, up.ID+1, &file); !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("Download of unknown id err = %v, want 404 APIError", err)
	}

	if err := c.Logout(ctx, cred); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := c.History(ctx, cred); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("History after logout err = %v, want ErrUnauthorized", err)
	}
}

func TestClientAnonymousUpload(t *testing.T) {
	srv := newServer(t)
	c, _ := New(srv.URL)

	_, err := c.Upload(context.Background(), Credential{}, "a.csv", strings.NewReader("Type\nPump\n"))
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Upload err = %v, want ErrUnauthorized", err)
	}
}

func TestClientParseErrorDetail(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()
	c, _ := New(srv.URL)

	cred, err := c.Login(ctx, "alice", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	_, err = c.Upload(ctx, cred, "bad.csv", strings.NewReader("Pressure\nhigh\n"))
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Upload err = %T (%v), want *APIError", err, err)
	}
	if apiErr.StatusCode != http.StatusUnprocessableEntity || apiErr.Message != "failed to parse csv" {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
	if !strings.Contains(apiErr.Detail, "non-numeric") {
		t.Fatalf("Detail = %q", apiErr.Detail)
	}
}

func TestClientNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, _ := New(srv.URL)
	_, err := c.History(context.Background(), Credential{Token: "t"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("err = %v, want 502 APIError", err)
	}
	if apiErr.Message != "Bad Gateway" {
		t.Fatalf("Message = %q", apiErr.Message)
	}
}

func TestClientSendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"ok","data":[]}`))
	}))
	defer srv.Close()

	c, _ := New(srv.URL)
	items, err := c.History(context.Background(), Credential{Token: "abc"})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if gotAuth != "Bearer abc" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("items = %#v, want empty", items)
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	for _, raw := range []string{"", "ftp://host", "://bad"} {
		if _, err := New(raw); err == nil {
			t.Fatalf("New(%q) expected error", raw)
		}
	}
}

func TestCredentialValid(t *testing.T) {
	now := time.Now()
	if (Credential{}).Valid(now) {
		t.Fatal("zero credential should be invalid")
	}
	if !(Credential{Token: "t"}).Valid(now) {
		t.Fatal("credential without expiry should be valid")
	}
	if (Credential{Token: "t", ExpiresAt: now.Add(-time.Second)}).Valid(now) {
		t.Fatal("expired credential should be invalid")
	}
}

func TestClientDoesNotSendExpiredCredential(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, _ := New(srv.URL)
	expired := Credential{Token: "t", ExpiresAt: time.Now().Add(-time.Minute)}

	if _, err := c.History(context.Background(), expired); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("History err = %v, want ErrUnauthorized", err)
	}
	if _, err := c.Upload(context.Background(), expired, "a.csv", strings.NewReader("Type\n")); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Upload err = %v, want ErrUnauthorized", err)
	}
	if calls != 0 {
		t.Fatalf("server saw %d requests, want none", calls)
	}
}
