package authflowrepo_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-login-relay/relay/authflowrepo"
	"github.com/stretchr/testify/require"
)

func TestUpsertGetDelete(t *testing.T) {
	repo := authflowrepo.NewInMemoryRepo(10 * time.Minute)

	err := repo.Upsert("state-1", &authflowrepo.AuthFlowState{
		Provider:     "google",
		CodeVerifier: "verifier-1",
	})
	require.NoError(t, err)

	flow, err := repo.Get("state-1")
	require.NoError(t, err)
	require.Equal(t, "google", flow.Provider)
	require.Equal(t, "verifier-1", flow.CodeVerifier)
	require.False(t, flow.CreatedAt.IsZero())

	require.NoError(t, repo.Delete("state-1"))
	_, err = repo.Get("state-1")
	require.ErrorIs(t, err, authflowrepo.ErrStateNotFound)

	// Deleting twice is not an error
	require.NoError(t, repo.Delete("state-1"))
}

func TestConsumeIsSingleUse(t *testing.T) {
	repo := authflowrepo.NewInMemoryRepo(10 * time.Minute)
	require.NoError(t, repo.Upsert("state-1", &authflowrepo.AuthFlowState{
		Provider:     "google",
		CodeVerifier: "verifier-1",
	}))

	flow, err := repo.Consume("state-1")
	require.NoError(t, err)
	require.Equal(t, "verifier-1", flow.CodeVerifier)

	_, err = repo.Consume("state-1")
	require.ErrorIs(t, err, authflowrepo.ErrStateNotFound)
}

func TestConsumeExpiredState(t *testing.T) {
	now := time.Now()
	authflowrepo.NowTimeFunc = func() time.Time { return now }
	defer func() { authflowrepo.NowTimeFunc = time.Now }()

	repo := authflowrepo.NewInMemoryRepo(10 * time.Minute)
	require.NoError(t, repo.Upsert("stale", &authflowrepo.AuthFlowState{
		Provider:  "google",
		CreatedAt: now.Add(-11 * time.Minute),
	}))

	_, err := repo.Consume("stale")
	require.ErrorIs(t, err, authflowrepo.ErrStateExpired)

	// The expired entry is gone either way
	require.Equal(t, 0, repo.Len())

	_, err = repo.Consume("")
	require.Error(t, err)
}

func TestGetReturnsCopy(t *testing.T) {
	repo := authflowrepo.NewInMemoryRepo(10 * time.Minute)
	require.NoError(t, repo.Upsert("state-1", &authflowrepo.AuthFlowState{Provider: "google"}))

	flow, err := repo.Get("state-1")
	require.NoError(t, err)
	flow.Provider = "facebook"

	again, err := repo.Get("state-1")
	require.NoError(t, err)
	require.Equal(t, "google", again.Provider)
}

func TestExpiry(t *testing.T) {
	now := time.Now()
	authflowrepo.NowTimeFunc = func() time.Time { return now }
	defer func() { authflowrepo.NowTimeFunc = time.Now }()

	repo := authflowrepo.NewInMemoryRepo(10 * time.Minute)
	require.NoError(t, repo.Upsert("fresh", &authflowrepo.AuthFlowState{Provider: "google"}))
	require.NoError(t, repo.Upsert("stale", &authflowrepo.AuthFlowState{
		Provider:  "facebook",
		CreatedAt: now.Add(-11 * time.Minute),
	}))

	_, err := repo.Get("fresh")
	require.NoError(t, err)

	_, err = repo.Get("stale")
	require.ErrorIs(t, err, authflowrepo.ErrStateExpired)

	require.Equal(t, 1, repo.DeleteExpired())
	require.Equal(t, 1, repo.Len())
}

func TestInvalidArguments(t *testing.T) {
	repo := authflowrepo.NewInMemoryRepo(time.Minute)

	require.Error(t, repo.Upsert("", &authflowrepo.AuthFlowState{}))
	require.Error(t, repo.Upsert("state", nil))

	_, err := repo.Get("")
	require.Error(t, err)
	require.Error(t, repo.Delete(""))
}
