package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-login-relay/internal/config"
	"github.com/stretchr/testify/require"
)

func fullEnvironment() map[string]string {
	return map[string]string{
		"BASE_URL":               "http://localhost:5000",
		"CLIENT_ORIGIN":          "http://localhost:3000/",
		"GOOGLE_CLIENT_ID":       "g-id",
		"GOOGLE_CLIENT_SECRET":   "g-secret",
		"FACEBOOK_CLIENT_ID":     "f-id",
		"FACEBOOK_CLIENT_SECRET": "f-secret",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.LoadWithEnvironment(fullEnvironment())
	require.NoError(t, err)

	require.Equal(t, ":5000", cfg.GetPort())
	require.Equal(t, "http://localhost:5000", cfg.GetBaseURL())
	require.Equal(t, "http://localhost:3000", cfg.GetClientOrigin())
	require.Equal(t, time.Hour, cfg.GetSessionTTL())
	require.Equal(t, 10*time.Minute, cfg.GetPendingAuthTTL())
	require.Equal(t, 10, cfg.GetConnectBurst())
}

func TestLoadFailsWithoutCredentials(t *testing.T) {
	required := []string{
		"BASE_URL",
		"CLIENT_ORIGIN",
		"GOOGLE_CLIENT_ID",
		"GOOGLE_CLIENT_SECRET",
		"FACEBOOK_CLIENT_ID",
		"FACEBOOK_CLIENT_SECRET",
	}

	for _, missing := range required {
		environment := fullEnvironment()
		delete(environment, missing)

		_, err := config.LoadWithEnvironment(environment)
		require.Error(t, err, "expected failure without %s", missing)
	}
}

func TestProviderCredentials(t *testing.T) {
	cfg, err := config.LoadWithEnvironment(fullEnvironment())
	require.NoError(t, err)

	id, secret, err := cfg.GetProviderCredentials("google")
	require.NoError(t, err)
	require.Equal(t, "g-id", id)
	require.Equal(t, "g-secret", secret)

	id, secret, err = cfg.GetProviderCredentials("facebook")
	require.NoError(t, err)
	require.Equal(t, "f-id", id)
	require.Equal(t, "f-secret", secret)

	_, _, err = cfg.GetProviderCredentials("github")
	require.Error(t, err)
}

func TestAllowedOrigins(t *testing.T) {
	environment := fullEnvironment()
	environment["CORS_ALLOWED_ORIGINS"] = "http://extra:4000, http://other:4100"

	cfg, err := config.LoadWithEnvironment(environment)
	require.NoError(t, err)

	origins := cfg.GetAllowedOrigins()
	require.True(t, origins.IsAllowedOrigin("http://localhost:3000"))
	require.True(t, origins.IsAllowedOrigin("http://extra:4000"))
	require.True(t, origins.IsAllowedOrigin("http://other:4100"))
	require.False(t, origins.IsAllowedOrigin("http://evil:3000"))
}

func TestLoadClient(t *testing.T) {
	cfg, err := config.LoadClientWithEnvironment(map[string]string{
		"CLIENT_BASE_URL": "http://localhost:3000",
		"RELAY_ORIGIN":    "http://localhost:5000/",
	})
	require.NoError(t, err)
	require.Equal(t, ":3000", cfg.GetPort())
	require.Equal(t, "http://localhost:5000", cfg.GetRelayOrigin())

	_, err = config.LoadClientWithEnvironment(map[string]string{"CLIENT_BASE_URL": "http://localhost:3000"})
	require.Error(t, err)
}
