package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// ClientEnvVars holds the profile client's raw environment values. The
// relay origin is required: the client is useless without it.
type ClientEnvVars struct {
	Port        string `env:"CLIENT_PORT" envDefault:"3000"`
	AppName     string `env:"CLIENT_APP_NAME" envDefault:"Social Login Demo"`
	Env         string `env:"ENV" envDefault:"DEV"`
	BaseURL     string `env:"CLIENT_BASE_URL,required"`
	RelayOrigin string `env:"RELAY_ORIGIN,required"`
}

type clientConfig struct {
	vars ClientEnvVars
}

var _ ClientConfig = clientConfig{}

// LoadClient parses the profile client configuration from the process
// environment.
func LoadClient() (ClientConfig, error) {
	return loadClient(nil)
}

// LoadClientWithEnvironment parses the profile client configuration from
// the given map instead of the process environment. Used by tests.
func LoadClientWithEnvironment(environment map[string]string) (ClientConfig, error) {
	return loadClient(environment)
}

func loadClient(environment map[string]string) (ClientConfig, error) {
	var vars ClientEnvVars
	var err error
	if environment == nil {
		err = env.Parse(&vars)
	} else {
		err = env.ParseWithOptions(&vars, env.Options{Environment: environment})
	}
	if err != nil {
		return nil, fmt.Errorf("config.LoadClient: %w", err)
	}
	return clientConfig{vars: vars}, nil
}

func (c clientConfig) GetPort() string {
	port := c.vars.Port
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (c clientConfig) GetAppName() string { return c.vars.AppName }

func (c clientConfig) GetEnv() string { return c.vars.Env }

func (c clientConfig) GetBaseURL() string { return strings.TrimRight(c.vars.BaseURL, "/") }

func (c clientConfig) GetRelayOrigin() string { return strings.TrimRight(c.vars.RelayOrigin, "/") }
