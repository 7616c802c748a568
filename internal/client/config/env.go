package config

import (
	"fmt"
	"time"
)

const (
	EnvAPIBaseURL     = "SOCIAL_API_BASE_URL"
	EnvRequestTimeout = "SOCIAL_REQUEST_TIMEOUT"
	EnvDatabasePath   = "SOCIAL_DATABASE_PATH"
	EnvLogLevel       = "SOCIAL_LOG_LEVEL"
)

// parseEnv overlays cfg with non-empty environment values.
func parseEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvAPIBaseURL); ok && v != "" {
		cfg.APIBaseURL = v
	}
	if v, ok := lookup(EnvRequestTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRequestTimeout, err)
		}
		cfg.RequestTimeout = d
	}
	if v, ok := lookup(EnvDatabasePath); ok && v != "" {
		cfg.DatabasePath = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}
	return nil
}
