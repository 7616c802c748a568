package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields distinguish "absent" from zero so a partial file only overrides
// what it names.
type JsonConfig struct {
	APIBaseURL       *string   `json:"api_base_url"`
	RequestTimeout   *Duration `json:"request_timeout"`
	DatabasePath     *string   `json:"database_path"`
	CredentialMaxAge *Duration `json:"credential_max_age"`
	SecureStorage    *bool     `json:"secure_storage"`
	FeedPageSize     *int      `json:"feed_page_size"`
	TrendingPageSize *int      `json:"trending_page_size"`
	LogLevel         *string   `json:"log_level"`
	MetricsAddr      *string   `json:"metrics_addr"`
}

// parseJSON overlays cfg with the values present in the file at path.
func parseJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.APIBaseURL != nil {
		cfg.APIBaseURL = *jc.APIBaseURL
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.DatabasePath != nil {
		cfg.DatabasePath = *jc.DatabasePath
	}
	if jc.CredentialMaxAge != nil {
		cfg.CredentialMaxAge = jc.CredentialMaxAge.Duration
	}
	if jc.SecureStorage != nil {
		cfg.SecureStorage = *jc.SecureStorage
	}
	if jc.FeedPageSize != nil {
		cfg.FeedPageSize = *jc.FeedPageSize
	}
	if jc.TrendingPageSize != nil {
		cfg.TrendingPageSize = *jc.TrendingPageSize
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
	if jc.MetricsAddr != nil {
		cfg.MetricsAddr = *jc.MetricsAddr
	}
	return nil
}
