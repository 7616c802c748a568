package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/spf13/pflag"
)

// Config holds runtime settings for the client.
type Config struct {
	// APIBaseURL is the REST endpoint every resource path is resolved against.
	APIBaseURL     string
	RequestTimeout time.Duration
	// DatabasePath is the sqlite file holding the persisted credential.
	DatabasePath string
	// CredentialMaxAge bounds how long a persisted credential is honoured.
	CredentialMaxAge time.Duration
	// SecureStorage refuses to persist a credential for a plain-http base URL
	// other than loopback.
	SecureStorage    bool
	FeedPageSize     int
	TrendingPageSize int
	LogLevel         string
	// MetricsAddr serves Prometheus metrics when non-empty.
	MetricsAddr string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8000"
	c.RequestTimeout = 10 * time.Second
	c.DatabasePath = "gophsocial.db"
	c.CredentialMaxAge = 7 * 24 * time.Hour
	c.SecureStorage = true
	c.FeedPageSize = 100
	c.TrendingPageSize = 10
	c.LogLevel = "warn"
	c.MetricsAddr = ""
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return errors.New("api base url is empty")
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil {
		return fmt.Errorf("api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api base url %q: scheme must be http or https", c.APIBaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("api base url %q: missing host", c.APIBaseURL)
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request timeout must be positive")
	}
	if c.CredentialMaxAge <= 0 {
		return errors.New("credential max age must be positive")
	}
	if c.FeedPageSize <= 0 || c.TrendingPageSize <= 0 {
		return errors.New("page sizes must be positive")
	}
	return nil
}

// Load builds a Config from defaults, the JSON file named by the "config"
// flag, the process environment and the flags in fs.
func Load(fs *pflag.FlagSet) (*Config, error) {
	return load(fs, os.LookupEnv)
}

func load(fs *pflag.FlagSet, lookup func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if fs != nil {
		if path, _ := fs.GetString(flagConfig); path != "" {
			if err := parseJSON(cfg, path); err != nil {
				return nil, err
			}
		}
	}
	if err := parseEnv(cfg, lookup); err != nil {
		return nil, err
	}
	if fs != nil {
		if err := applyFlags(cfg, fs); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
