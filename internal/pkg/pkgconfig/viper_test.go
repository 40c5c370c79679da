package pkgconfig

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestViperConfigValues(t *testing.T) {
	path := writeConfigFile(t, "int: 42\nbool: true\nstring: hi\nmap: k1:v1,k2:v2\n")

	cfg, err := NewViper(path)
	if err != nil {
		t.Fatalf("NewViper: %v", err)
	}
	defer func() {
		if err := cfg.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}()

	if got := cfg.GetInt("int"); got != 42 {
		t.Fatalf("GetInt: expected 42, got %d", got)
	}
	if got := cfg.GetBool("bool"); got != true {
		t.Fatalf("GetBool: expected true, got %v", got)
	}
	if got := cfg.GetString("string"); got != "hi" {
		t.Fatalf("GetString: expected hi, got %q", got)
	}
	if got := cfg.GetMap("map"); !reflect.DeepEqual(got, map[string]string{"k1": "v1", "k2": "v2"}) {
		t.Fatalf("GetMap: unexpected value: %#v", got)
	}
}

func TestViperDurationAndEnvOverride(t *testing.T) {
	path := writeConfigFile(t, "auth:\n  token_ttl: 90m\ndatabase:\n  dsn: file.db\n")
	t.Setenv("CHEMVIZ_DATABASE_DSN", ":memory:")

	cfg, err := NewViper(path)
	if err != nil {
		t.Fatalf("NewViper: %v", err)
	}

	if got := cfg.GetDuration("auth.token_ttl"); got != 90*time.Minute {
		t.Fatalf("GetDuration: expected 90m, got %v", got)
	}
	if got := cfg.GetString("database.dsn"); got != ":memory:" {
		t.Fatalf("GetString: expected env override, got %q", got)
	}
}

func TestViperGetMapKeepsColonsInValue(t *testing.T) {
	path := writeConfigFile(t, "users: \"alice:$2a$10$abc, bob:x:y\"\n")
	cfg, err := NewViper(path)
	if err != nil {
		t.Fatalf("NewViper: %v", err)
	}

	want := map[string]string{"alice": "$2a$10$abc", "bob": "x:y"}
	if got := cfg.GetMap("missing"); len(got) != 0 {
		t.Fatalf("GetMap: expected empty map for missing key, got %#v", got)
	}
	if got := cfg.GetMap("users"); !reflect.DeepEqual(got, want) {
		t.Fatalf("GetMap: unexpected value: %#v", got)
	}
}
