package pkgstorage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalWriteReadDelete(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocal(root)
	if err != nil {
		t.Fatalf("NewLocal() err = %v", err)
	}

	ctx := context.Background()
	key := "uploads/alice/1_data.csv"

	if err := store.Write(ctx, key, strings.NewReader("Type\nPump\n")); err != nil {
		t.Fatalf("Write() err = %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, "uploads", "alice", "1_data.csv")); err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}

	rc, err := store.Read(ctx, key)
	if err != nil {
		t.Fatalf("Read() err = %v", err)
	}
	got, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(got) != "Type\nPump\n" {
		t.Fatalf("Read() = %q", got)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() err = %v", err)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("second Delete() err = %v", err)
	}
	if _, err := store.Read(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Read() after delete err = %v, want ErrNotFound", err)
	}
}

func TestLocalWriteLeavesNoTempFiles(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocal(root)
	if err != nil {
		t.Fatalf("NewLocal() err = %v", err)
	}

	if err := store.Write(context.Background(), "a/b.csv", strings.NewReader("x")); err != nil {
		t.Fatalf("Write() err = %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(root, "a"))
	if err != nil {
		t.Fatalf("ReadDir() err = %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "b.csv" {
		t.Fatalf("unexpected entries: %v", entries)
	}
}

func TestLocalWriteCanceled(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal() err = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = store.Write(ctx, "a.csv", strings.NewReader("x"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Write() err = %v, want context.Canceled", err)
	}
}

func TestLocalRejectsBadKeys(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal() err = %v", err)
	}

	for _, key := range []string{"", "/", "../escape.csv", "a/../../b"} {
		err := store.Write(context.Background(), key, strings.NewReader("x"))
		if !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("Write(%q) err = %v, want ErrInvalidKey", key, err)
		}
	}
}

func TestNewLocalRequiresRoot(t *testing.T) {
	if _, err := NewLocal(""); err == nil {
		t.Fatal("NewLocal(\"\") expected error")
	}
}

func TestCleanKey(t *testing.T) {
	tests := map[string]string{
		"uploads/a.csv":     "uploads/a.csv",
		"/uploads//a.csv":   "uploads/a.csv",
		`uploads\a.csv`:     "uploads/a.csv",
		"./uploads/./a.csv": "uploads/a.csv",
	}

	for in, want := range tests {
		got, err := CleanKey(in)
		if err != nil {
			t.Fatalf("CleanKey(%q) err = %v", in, err)
		}
		if got != want {
			t.Fatalf("CleanKey(%q) = %q, want %q", in, got, want)
		}
	}
}
