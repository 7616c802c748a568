// Package config loads runtime configuration for the gophsocial client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c/--config.
//  3. Environment variables (SOCIAL_API_BASE_URL, SOCIAL_REQUEST_TIMEOUT,
//     SOCIAL_DATABASE_PATH, SOCIAL_LOG_LEVEL).
//  4. Command-line flags registered by RegisterFlags; only flags the user
//     actually set override earlier values.
//
// # JSON schema
//
// Durations are either strings like "10s" or integer nanoseconds:
//
//	{
//	  "api_base_url": "https://api.example.com",
//	  "request_timeout": "10s",
//	  "database_path": "gophsocial.db",
//	  "credential_max_age": "168h",
//	  "secure_storage": true,
//	  "feed_page_size": 100,
//	  "trending_page_size": 10,
//	  "log_level": "warn",
//	  "metrics_addr": "127.0.0.1:9464"
//	}
package config
