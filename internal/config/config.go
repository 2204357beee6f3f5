// Package config loads the relay and profile client configuration from
// the environment. Provider credentials and origins are required and have
// no usable defaults: a missing value fails startup rather than failing
// later at request time.
package config

import "time"

type Config interface {
	EnvConfig
	CorsConfig
	ProviderConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetBaseURL() string
	GetClientOrigin() string
	GetSessionTTL() time.Duration
	GetPendingAuthTTL() time.Duration
	GetConnectRatePerMinute() float64
	GetConnectBurst() int
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type ProviderConfig interface {
	// GetProviderCredentials returns the client id/secret pair registered
	// with the given provider.
	GetProviderCredentials(providerID string) (clientID, clientSecret string, err error)
}

// ClientConfig is the profile client's configuration surface.
type ClientConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetBaseURL() string
	GetRelayOrigin() string
}
