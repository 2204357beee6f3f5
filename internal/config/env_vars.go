package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvVars holds the relay's raw environment values. Secrets and origins
// are required so that a misconfigured deployment fails at startup.
type EnvVars struct {
	Port         string `env:"PORT" envDefault:"5000"`
	AppName      string `env:"APP_NAME" envDefault:"Login Relay"`
	Env          string `env:"ENV" envDefault:"DEV"`
	BaseURL      string `env:"BASE_URL,required"`
	ClientOrigin string `env:"CLIENT_ORIGIN,required"`

	GoogleClientID       string `env:"GOOGLE_CLIENT_ID,required"`
	GoogleClientSecret   string `env:"GOOGLE_CLIENT_SECRET,required"`
	FacebookClientID     string `env:"FACEBOOK_CLIENT_ID,required"`
	FacebookClientSecret string `env:"FACEBOOK_CLIENT_SECRET,required"`

	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"1h"`
	PendingAuthTTL time.Duration `env:"PENDING_AUTH_TTL" envDefault:"10m"`

	ConnectRatePerMinute float64 `env:"CONNECT_RATE_PER_MINUTE" envDefault:"30"`
	ConnectBurst         int     `env:"CONNECT_BURST" envDefault:"10"`

	ExtraAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	AllowedMethods      string   `env:"CORS_ALLOWED_METHODS" envDefault:"GET, OPTIONS"`
	AllowedHeaders      string   `env:"CORS_ALLOWED_HEADERS" envDefault:"Content-Type"`
}

type mainConfig struct {
	vars    EnvVars
	origins AllowedOrigins
}

var _ Config = mainConfig{}

// Load parses the relay configuration from the process environment.
func Load() (Config, error) {
	return load(nil)
}

// LoadWithEnvironment parses the relay configuration from the given map
// instead of the process environment. Used by tests.
func LoadWithEnvironment(environment map[string]string) (Config, error) {
	return load(environment)
}

func load(environment map[string]string) (Config, error) {
	var vars EnvVars
	var err error
	if environment == nil {
		err = env.Parse(&vars)
	} else {
		err = env.ParseWithOptions(&vars, env.Options{Environment: environment})
	}
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	origins := AllowedOrigins{strings.TrimRight(vars.ClientOrigin, "/"): nullValue{}}
	for _, origin := range vars.ExtraAllowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins[strings.TrimRight(origin, "/")] = nullValue{}
		}
	}

	return mainConfig{vars: vars, origins: origins}, nil
}

func (c mainConfig) GetPort() string {
	port := c.vars.Port
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (c mainConfig) GetAppName() string { return c.vars.AppName }

func (c mainConfig) GetEnv() string { return c.vars.Env }

func (c mainConfig) GetBaseURL() string { return strings.TrimRight(c.vars.BaseURL, "/") }

func (c mainConfig) GetClientOrigin() string { return strings.TrimRight(c.vars.ClientOrigin, "/") }

func (c mainConfig) GetSessionTTL() time.Duration { return c.vars.SessionTTL }

func (c mainConfig) GetPendingAuthTTL() time.Duration { return c.vars.PendingAuthTTL }

func (c mainConfig) GetConnectRatePerMinute() float64 { return c.vars.ConnectRatePerMinute }

func (c mainConfig) GetConnectBurst() int { return c.vars.ConnectBurst }

func (c mainConfig) GetProviderCredentials(providerID string) (string, string, error) {
	switch providerID {
	case "google":
		return c.vars.GoogleClientID, c.vars.GoogleClientSecret, nil
	case "facebook":
		return c.vars.FacebookClientID, c.vars.FacebookClientSecret, nil
	}
	return "", "", fmt.Errorf("no credentials configured for provider %q", providerID)
}
