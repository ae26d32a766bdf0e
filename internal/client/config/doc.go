// Package config loads runtime configuration for the Agrisonic client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or --config.
//  3. Environment variables (AGRISONIC_*), optionally seeded from ./.env.
//  4. Command-line flags, which override everything else.
//
// A source that cannot be read or parsed makes LoadConfigE return an error;
// LoadConfig panics with it.
//
// # JSON schema
//
// Durations accept Go duration strings or integer nanoseconds:
//
//	{
//	  "server_base_url": "https://agrisonic.example/",
//	  "database_path": "/var/lib/agrisonic/app.db",
//	  "connect_timeout": "30s",
//	  "read_timeout": "30s",
//	  "write_timeout": "30s",
//	  "log_level": "info",
//	  "log_format": "text",
//	  "log_backend": "slog",
//	  "default_language": "en"
//	}
package config
