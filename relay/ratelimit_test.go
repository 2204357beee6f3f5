package relay

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/go-login-relay/internal/config"
	"github.com/jrsteele09/go-login-relay/providers"
	"github.com/jrsteele09/go-login-relay/relay/authflowrepo"
	"github.com/jrsteele09/go-login-relay/relay/loginsession"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterCleanupDropsIdleClients(t *testing.T) {
	rl := NewConnectRateLimiter(30, 10)

	rl.limiterFor("10.0.0.1")
	rl.limiterFor("10.0.0.2")
	require.Len(t, rl.limiters, 2)

	rl.limiters["10.0.0.1"].lastAccess = time.Now().Add(-time.Hour)

	rl.Cleanup(10 * time.Minute)
	require.Len(t, rl.limiters, 1)
	require.Contains(t, rl.limiters, "10.0.0.2")
}

func TestRateLimiterReusesClientLimiter(t *testing.T) {
	rl := NewConnectRateLimiter(30, 10)

	first := rl.limiterFor("10.0.0.1")
	second := rl.limiterFor("10.0.0.1")
	require.Same(t, first, second)
	require.Len(t, rl.limiters, 1)
}

func TestJanitorSweepsIdleLimiters(t *testing.T) {
	cfg, err := config.LoadWithEnvironment(map[string]string{
		"BASE_URL":               "http://localhost:5000",
		"CLIENT_ORIGIN":          "http://localhost:3000",
		"GOOGLE_CLIENT_ID":       "g-id",
		"GOOGLE_CLIENT_SECRET":   "g-secret",
		"FACEBOOK_CLIENT_ID":     "f-id",
		"FACEBOOK_CLIENT_SECRET": "f-secret",
	})
	require.NoError(t, err)

	server, err := New(cfg, providers.NewRegistry(), loginsession.NewInMemoryRepo(), authflowrepo.NewInMemoryRepo(time.Minute), nil, nil)
	require.NoError(t, err)

	server.limiter.limiterFor("10.0.0.1")
	server.limiter.limiters["10.0.0.1"].lastAccess = time.Now().Add(-time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	go server.StartCleanup(ctx, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		server.limiter.mu.Lock()
		defer server.limiter.mu.Unlock()
		return len(server.limiter.limiters) == 0
	}, time.Second, 10*time.Millisecond)
	cancel()
}
