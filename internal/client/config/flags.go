package config

import (
	"github.com/spf13/pflag"
)

const (
	flagConfig      = "config"
	flagAPI         = "api"
	flagTimeout     = "timeout"
	flagDatabase    = "db"
	flagLogLevel    = "log-level"
	flagMetricsAddr = "metrics-addr"
)

// RegisterFlags defines the configuration flags on fs. Defaults shown in
// help text come from LoadDefaults; values are only applied when set.
func RegisterFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringP(flagConfig, "c", "", "path to JSON config file")
	fs.StringP(flagAPI, "a", d.APIBaseURL, "base URL of the REST API")
	fs.DurationP(flagTimeout, "t", d.RequestTimeout, "per-request timeout")
	fs.StringP(flagDatabase, "d", d.DatabasePath, "path of the local session database")
	fs.StringP(flagLogLevel, "l", d.LogLevel, "log level (debug, info, warn, error)")
	fs.String(flagMetricsAddr, d.MetricsAddr, "address to serve Prometheus metrics on (empty disables)")
}

// applyFlags copies every flag the user set explicitly into cfg.
func applyFlags(cfg *Config, fs *pflag.FlagSet) error {
	var err error
	set := func(name string, apply func() error) {
		if err != nil || fs.Lookup(name) == nil || !fs.Changed(name) {
			return
		}
		err = apply()
	}

	set(flagAPI, func() (e error) { cfg.APIBaseURL, e = fs.GetString(flagAPI); return })
	set(flagTimeout, func() (e error) { cfg.RequestTimeout, e = fs.GetDuration(flagTimeout); return })
	set(flagDatabase, func() (e error) { cfg.DatabasePath, e = fs.GetString(flagDatabase); return })
	set(flagLogLevel, func() (e error) { cfg.LogLevel, e = fs.GetString(flagLogLevel); return })
	set(flagMetricsAddr, func() (e error) { cfg.MetricsAddr, e = fs.GetString(flagMetricsAddr); return })
	return err
}
