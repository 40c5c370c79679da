package pkgauth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"
)

// DefaultTTL is used when NewSessionStore receives a non-positive ttl.
const DefaultTTL = 24 * time.Hour

// Session binds an opaque bearer token to a user until ExpiresAt.
type Session struct {
	Token     string
	Username  string
	ExpiresAt time.Time
}

// SessionStore keeps sessions in memory. Restarting the process drops every
// session, so clients must log in again.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &SessionStore{
		sessions: make(map[string]Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create issues a new token for username.
func (s *SessionStore) Create(username string) (Session, error) {
	token, err := generateToken()
	if err != nil {
		return Session{}, err
	}

	session := Session{
		Token:     token,
		Username:  username,
		ExpiresAt: s.now().Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[token] = session
	s.mu.Unlock()

	return session, nil
}

// Get returns the live session for token.
func (s *SessionStore) Get(token string) (Session, bool) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok || !s.now().Before(session.ExpiresAt) {
		return Session{}, false
	}

	return session, true
}

// Delete revokes token. Unknown tokens are ignored.
func (s *SessionStore) Delete(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// Sweep removes expired sessions and returns how many were dropped.
func (s *SessionStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for token, session := range s.sessions {
		if !now.Before(session.ExpiresAt) {
			delete(s.sessions, token)
			n++
		}
	}

	return n
}

// SweepEvery calls Sweep on each tick until ctx is done.
func (s *SessionStore) SweepEvery(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.InfoContext(ctx, "expired sessions removed", "count", n)
			}
		}
	}
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
