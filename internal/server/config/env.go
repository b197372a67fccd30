package config

import (
	"strings"

	"github.com/caarlos0/env/v11"
)

// envPrefix is the variable prefix of a service, e.g. TEAMS_DB_HOST.
func envPrefix(service string) string {
	return strings.ToUpper(service) + "_"
}

// parseEnv overlays variables that are set; unset ones keep the previous
// layer's value. A malformed value panics.
func parseEnv(config *Config) {
	if err := env.ParseWithOptions(config, env.Options{Prefix: envPrefix(config.Service)}); err != nil {
		panic(err)
	}
}
