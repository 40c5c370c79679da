package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/shandysiswandi/chemviz/internal/equipment/entity"
	"github.com/shandysiswandi/chemviz/internal/pkg/pkgauth"
	"github.com/shandysiswandi/chemviz/internal/pkg/pkgerror"
)

var (
	errNotAuthenticated = pkgerror.NewUnauthorized("authentication credentials were not provided")
	errBadCredentials   = pkgerror.NewUnauthorized("invalid username or password")
	errBadToken         = pkgerror.NewUnauthorized("invalid or expired token")
)

func (u *Usecase) Login(ctx context.Context, username, password string) (pkgauth.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return pkgauth.Session{}, pkgerror.NewValidation("username and password are required", nil)
	}

	user, err := u.store.GetUser(ctx, username)
	if errors.Is(err, pkgerror.ErrNotFound) {
		return pkgauth.Session{}, errBadCredentials
	}
	if err != nil {
		return pkgauth.Session{}, normalizeErr(err)
	}

	if !pkgauth.CheckPassword(password, user.PasswordHash) {
		slog.WarnContext(ctx, "login rejected", "username", username)
		return pkgauth.Session{}, errBadCredentials
	}

	session, err := u.sessions.Create(user.Username)
	if err != nil {
		return pkgauth.Session{}, pkgerror.NewServer(fmt.Errorf("creating session: %w", err))
	}

	return session, nil
}

func (u *Usecase) Logout(ctx context.Context, token string) error {
	if token == "" {
		return errNotAuthenticated
	}

	u.sessions.Delete(token)

	return nil
}

// Authenticate resolves a token to the identity that owns it.
func (u *Usecase) Authenticate(ctx context.Context, token string) (pkgauth.Identity, error) {
	session, ok := u.sessions.Get(token)
	if !ok {
		return pkgauth.Identity{}, errBadToken
	}

	return pkgauth.Identity{Username: session.Username, Token: session.Token}, nil
}

// SeedUsers creates or updates the accounts in users, a map of username to
// bcrypt hash.
func (u *Usecase) SeedUsers(ctx context.Context, users map[string]string) error {
	names := make([]string, 0, len(users))
	for name := range users {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		hash := users[name]
		if name == "" || !pkgauth.IsHash(hash) {
			return fmt.Errorf("user %q: password must be a bcrypt hash", name)
		}

		err := u.store.UpsertUser(ctx, entity.User{
			Username:     name,
			PasswordHash: hash,
			CreatedAt:    u.clock.Now().UTC(),
		})
		if err != nil {
			return err
		}
	}

	slog.InfoContext(ctx, "users seeded", "count", len(names))

	return nil
}
