package config

import (
	"strings"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every variable name, e.g. STOREADMIN_SERVER_URL.
const EnvPrefix = "STOREADMIN_"

// parseEnv overlays cfg with STOREADMIN_* variables from environ. Unset
// variables leave fields alone. Panics on malformed values.
func parseEnv(cfg *Config, environ map[string]string) {
	if err := env.ParseWithOptions(cfg, env.Options{
		Prefix:      EnvPrefix,
		Environment: environ,
	}); err != nil {
		panic(err)
	}
}

func envMap(pairs []string) map[string]string {
	m := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			m[k] = v
		}
	}
	return m
}
