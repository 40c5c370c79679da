package equipment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/chemviz/internal/pkg/pkgauth"
	"github.com/shandysiswandi/chemviz/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/chemviz/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/chemviz/internal/pkg/pkgroutine"
	"github.com/shandysiswandi/chemviz/internal/pkg/pkguid"
)

type mapConfig map[string]any

func (c mapConfig) GetInt(key string) int64 {
	v, _ := c[key].(int64)
	return v
}

func (c mapConfig) GetBool(key string) bool {
	v, _ := c[key].(bool)
	return v
}

func (c mapConfig) GetString(key string) string {
	v, _ := c[key].(string)
	return v
}

func (c mapConfig) GetDuration(key string) time.Duration {
	v, _ := c[key].(time.Duration)
	return v
}

func (c mapConfig) GetMap(key string) map[string]string {
	v, _ := c[key].(map[string]string)
	return v
}

func (c mapConfig) Close() error { return nil }

func TestNewWiresEndpoints(t *testing.T) {
	hash, err := pkgauth.HashPassword("pw", pkgauth.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	cfg := mapConfig{
		"database.driver":     "memory",
		"storage.driver":      "local",
		"storage.local.root":  t.TempDir(),
		"id.node":             int64(-1),
		"auth.users":          map[string]string{"alice": hash},
		"auth.sweep_interval": time.Hour,
		"auth.token_ttl":      time.Hour,
		"upload.max_bytes":    int64(1024),
	}

	ctx, cancel := context.WithCancel(context.Background())
	goroutines := pkgroutine.NewManager(2)
	router := pkgrouter.NewRouter(pkguid.NewUUID())

	closer, err := New(Dependency{
		Config:    cfg,
		Goroutine: goroutines,
		Router:    router,
		Context:   ctx,
	})
	if err != nil {
		t.Fatalf("New() err = %v", err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"username":"alice","password":"pw"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", rec.Code, rec.Body.String())
	}

	cancel()
	if err := goroutines.Wait(); err != nil {
		t.Fatalf("goroutines: %v", err)
	}
	if err := closer(context.Background()); err != nil {
		t.Fatalf("closer: %v", err)
	}
}

func TestNewRejectsUnknownDrivers(t *testing.T) {
	for _, cfg := range []mapConfig{
		{"database.driver": "oracle"},
		{"database.driver": "memory", "storage.driver": "ftp"},
		{"database.driver": "memory", "storage.local.root": t.TempDir(), "auth.users": map[string]string{"alice": "plain"}},
	} {
		_, err := New(Dependency{
			Config:    cfg,
			Goroutine: pkgroutine.NewManager(1),
			Router:    pkgrouter.NewRouter(pkguid.NewUUID()),
			Context:   context.Background(),
		})
		if err == nil {
			t.Fatalf("New(%v) expected error", cfg)
		}
	}
}

func TestNewWithShippedConfigInEmptyDir(t *testing.T) {
	path, err := filepath.Abs("../../config/config.yaml")
	if err != nil {
		t.Fatalf("abs: %v", err)
	}

	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := pkgconfig.NewViper(path)
	if err != nil {
		t.Fatalf("NewViper() err = %v", err)
	}
	defer cfg.Close()

	ctx, cancel := context.WithCancel(context.Background())
	goroutines := pkgroutine.NewManager(2)

	closer, err := New(Dependency{
		Config:    cfg,
		Goroutine: goroutines,
		Router:    pkgrouter.NewRouter(pkguid.NewUUID()),
		Context:   ctx,
	})
	if err != nil {
		t.Fatalf("New() err = %v", err)
	}

	cancel()
	if err := goroutines.Wait(); err != nil {
		t.Fatalf("goroutines: %v", err)
	}
	if err := closer(context.Background()); err != nil {
		t.Fatalf("closer: %v", err)
	}

	for _, p := range []string{"data/chemviz.db", "data/blobs"} {
		if _, err := os.Stat(filepath.Join(dir, p)); err != nil {
			t.Fatalf("%s not created: %v", p, err)
		}
	}
}
