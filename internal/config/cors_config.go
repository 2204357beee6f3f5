package config

import "strings"

type AllowedOrigins map[string]struct{}
type nullValue = struct{}

func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	_, ok := a[strings.TrimRight(origin, "/")]
	return ok
}

func (a AllowedOrigins) String() string {
	var origins []string
	for k := range a {
		origins = append(origins, k)
	}
	return strings.Join(origins, ", ")
}

func (c mainConfig) GetAllowedOrigins() AllowedOrigins {
	return c.origins
}

func (c mainConfig) GetAllowedMethods() string {
	return c.vars.AllowedMethods
}

func (c mainConfig) GetAllowedHeaders() string {
	return c.vars.AllowedHeaders
}
