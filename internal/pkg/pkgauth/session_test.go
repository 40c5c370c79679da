package pkgauth

import (
	"context"
	"testing"
	"time"
)

func TestSessionStoreLifecycle(t *testing.T) {
	now := time.Unix(1000, 0)
	store := NewSessionStore(time.Hour)
	store.now = func() time.Time { return now }

	session, err := store.Create("alice")
	if err != nil {
		t.Fatalf("Create() err = %v", err)
	}
	if len(session.Token) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(session.Token))
	}
	if !session.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected expiry: %v", session.ExpiresAt)
	}

	got, ok := store.Get(session.Token)
	if !ok || got.Username != "alice" {
		t.Fatalf("Get() = %+v, %v", got, ok)
	}

	store.Delete(session.Token)
	if _, ok := store.Get(session.Token); ok {
		t.Fatal("expected session to be revoked")
	}
}

func TestSessionStoreExpiryAndSweep(t *testing.T) {
	now := time.Unix(1000, 0)
	store := NewSessionStore(time.Minute)
	store.now = func() time.Time { return now }

	expired, err := store.Create("alice")
	if err != nil {
		t.Fatalf("Create() err = %v", err)
	}

	now = now.Add(30 * time.Second)
	live, err := store.Create("bob")
	if err != nil {
		t.Fatalf("Create() err = %v", err)
	}

	now = now.Add(30 * time.Second)
	if _, ok := store.Get(expired.Token); ok {
		t.Fatal("expected expired session to be rejected")
	}

	if n := store.Sweep(); n != 1 {
		t.Fatalf("Sweep() = %d, want 1", n)
	}
	if _, ok := store.Get(live.Token); !ok {
		t.Fatal("expected live session to survive sweep")
	}
}

func TestNewSessionStoreDefaultTTL(t *testing.T) {
	if got := NewSessionStore(0).ttl; got != DefaultTTL {
		t.Fatalf("expected default ttl, got %v", got)
	}
}

func TestSweepEveryStopsOnCancel(t *testing.T) {
	store := NewSessionStore(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- store.SweepEvery(ctx, time.Millisecond) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("SweepEvery() err = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("SweepEvery did not stop")
	}
}
