// Copyright (c) 2026 Tomeswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/tomeswap/internal/platform/apperr"
	"github.com/taibuivan/tomeswap/internal/platform/sec"
	"github.com/taibuivan/tomeswap/internal/users/auth"
)

// # Fakes

type fakeUserStore struct {
	byID map[string]*auth.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byID: make(map[string]*auth.User)}
}

func (store *fakeUserStore) FindByID(_ context.Context, id string) (*auth.User, error) {
	if user, ok := store.byID[id]; ok {
		return user, nil
	}
	return nil, apperr.NotFound("User")
}

func (store *fakeUserStore) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, user := range store.byID {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (store *fakeUserStore) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	for _, user := range store.byID {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (store *fakeUserStore) Create(_ context.Context, user *auth.User) error {
	store.byID[user.ID] = user
	return nil
}

type fakeSessionStore struct {
	created []*auth.Session
	revoked []string
}

func (store *fakeSessionStore) Create(_ context.Context, session *auth.Session) error {
	store.created = append(store.created, session)
	return nil
}

func (store *fakeSessionStore) Revoke(_ context.Context, tokenHash string) error {
	store.revoked = append(store.revoked, tokenHash)
	return nil
}

type fakeTokenStore struct {
	live map[string]string
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{live: make(map[string]string)}
}

func (store *fakeTokenStore) Set(_ context.Context, tokenHash, userID string, _ time.Duration) error {
	store.live[tokenHash] = userID
	return nil
}

func (store *fakeTokenStore) Get(_ context.Context, tokenHash string) (string, error) {
	if userID, ok := store.live[tokenHash]; ok {
		return userID, nil
	}
	return "", apperr.NotFound("Refresh token")
}

func (store *fakeTokenStore) Delete(_ context.Context, tokenHash string) error {
	delete(store.live, tokenHash)
	return nil
}

type fakeTokenProvider struct{}

func (fakeTokenProvider) GenerateAccessToken(userID, _, _ string, _ time.Duration) (string, error) {
	return "access-" + userID, nil
}

// # Fixture

type fixture struct {
	users    *fakeUserStore
	sessions *fakeSessionStore
	tokens   *fakeTokenStore
	service  *auth.Service
}

func newFixture() *fixture {
	f := &fixture{
		users:    newFakeUserStore(),
		sessions: &fakeSessionStore{},
		tokens:   newFakeTokenStore(),
	}
	f.service = auth.NewService(f.users, f.sessions, f.tokens, fakeTokenProvider{})
	return f
}

func (f *fixture) register(t *testing.T) *auth.User {
	t.Helper()

	user, err := f.service.Register(context.Background(), auth.RegisterInput{
		Username:    "page_turner",
		Email:       "reader@example.com",
		Password:    "turn-the-page",
		DisplayName: "Page Turner",
	})
	require.NoError(t, err)
	return user
}

// # Tests

func TestService_Register(t *testing.T) {
	f := newFixture()

	user := f.register(t)

	assert.Equal(t, sec.RoleMember, user.Role)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "turn-the-page", user.PasswordHash)
	assert.True(t, sec.CheckPasswordHash("turn-the-page", user.PasswordHash))

	t.Run("duplicate email conflicts", func(t *testing.T) {
		_, err := f.service.Register(context.Background(), auth.RegisterInput{
			Username: "someone_else",
			Email:    "reader@example.com",
			Password: "turn-the-page",
		})
		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		_, err := f.service.Register(context.Background(), auth.RegisterInput{
			Username: "page_turner",
			Email:    "other@example.com",
			Password: "turn-the-page",
		})
		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)
	})

	t.Run("short password rejected", func(t *testing.T) {
		_, err := f.service.Register(context.Background(), auth.RegisterInput{
			Username: "brief",
			Email:    "brief@example.com",
			Password: "short",
		})
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})
}

func TestService_Login(t *testing.T) {
	f := newFixture()
	user := f.register(t)

	t.Run("by email", func(t *testing.T) {
		session, err := f.service.Login(context.Background(), auth.LoginInput{
			Login:    "reader@example.com",
			Password: "turn-the-page",
		})
		require.NoError(t, err)
		assert.Equal(t, "access-"+user.ID, session.AccessToken)
		assert.NotEmpty(t, session.RefreshToken)
		assert.Equal(t, user.ID, session.User.ID)
	})

	t.Run("by username", func(t *testing.T) {
		session, err := f.service.Login(context.Background(), auth.LoginInput{
			Login:    "page_turner",
			Password: "turn-the-page",
		})
		require.NoError(t, err)
		assert.Equal(t, user.ID, session.User.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.service.Login(context.Background(), auth.LoginInput{
			Login:    "page_turner",
			Password: "wrong-password",
		})
		require.Error(t, err)
		assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
	})

	t.Run("unknown identity", func(t *testing.T) {
		_, err := f.service.Login(context.Background(), auth.LoginInput{
			Login:    "nobody@example.com",
			Password: "turn-the-page",
		})
		require.Error(t, err)
		assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
	})

	// Every successful login leaves an audit row.
	assert.Len(t, f.sessions.created, 2)
}

func TestService_RefreshSession(t *testing.T) {
	f := newFixture()
	user := f.register(t)

	session, err := f.service.Login(context.Background(), auth.LoginInput{
		Login:    "page_turner",
		Password: "turn-the-page",
	})
	require.NoError(t, err)

	rotated, err := f.service.RefreshSession(context.Background(), session.RefreshToken, "agent", "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, rotated.User.ID)
	assert.NotEqual(t, session.RefreshToken, rotated.RefreshToken)

	t.Run("old token replays at most once", func(t *testing.T) {
		_, err := f.service.RefreshSession(context.Background(), session.RefreshToken, "agent", "127.0.0.1")
		require.Error(t, err)
		assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
	})

	t.Run("rotated token stays valid", func(t *testing.T) {
		_, err := f.service.RefreshSession(context.Background(), rotated.RefreshToken, "agent", "127.0.0.1")
		require.NoError(t, err)
	})
}

func TestService_Logout(t *testing.T) {
	f := newFixture()
	f.register(t)

	session, err := f.service.Login(context.Background(), auth.LoginInput{
		Login:    "page_turner",
		Password: "turn-the-page",
	})
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(context.Background(), session.RefreshToken))
	assert.NotEmpty(t, f.sessions.revoked)

	t.Run("token unusable afterwards", func(t *testing.T) {
		_, err := f.service.RefreshSession(context.Background(), session.RefreshToken, "agent", "127.0.0.1")
		require.Error(t, err)
		assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
	})

	t.Run("logout is idempotent", func(t *testing.T) {
		require.NoError(t, f.service.Logout(context.Background(), session.RefreshToken))
	})
}
