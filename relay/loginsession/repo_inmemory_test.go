package loginsession_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-login-relay/identity"
	"github.com/jrsteele09/go-login-relay/relay/loginsession"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	repo := loginsession.NewInMemoryRepo()

	session := loginsession.Session{
		AuthResult: identity.AuthResult{Provider: "google", AccessToken: "at-1"},
		CreatedAt:  time.Now(),
		ExpiresAt:  time.Now().Add(time.Hour),
	}
	require.NoError(t, repo.Upsert("sid-1", session))

	found, err := repo.Get("sid-1")
	require.NoError(t, err)
	require.Equal(t, "at-1", found.AuthResult.AccessToken)

	// Re-login replaces the AuthResult wholesale
	session.AuthResult = identity.AuthResult{Provider: "facebook", AccessToken: "at-2"}
	require.NoError(t, repo.Upsert("sid-1", session))
	found, err = repo.Get("sid-1")
	require.NoError(t, err)
	require.Equal(t, "facebook", found.AuthResult.Provider)

	require.NoError(t, repo.Delete("sid-1"))
	_, err = repo.Get("sid-1")
	require.ErrorIs(t, err, loginsession.ErrSessionNotFound)

	// Logout is idempotent
	require.NoError(t, repo.Delete("sid-1"))
}

func TestSessionExpiry(t *testing.T) {
	now := time.Now()
	loginsession.NowTimeFunc = func() time.Time { return now }
	defer func() { loginsession.NowTimeFunc = time.Now }()

	repo := loginsession.NewInMemoryRepo()
	require.NoError(t, repo.Upsert("live", loginsession.Session{ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, repo.Upsert("dead", loginsession.Session{ExpiresAt: now.Add(-time.Minute)}))

	_, err := repo.Get("live")
	require.NoError(t, err)

	_, err = repo.Get("dead")
	require.ErrorIs(t, err, loginsession.ErrSessionExpired)

	require.Equal(t, 1, repo.DeleteExpired())
	require.Equal(t, 1, repo.Len())
}
