// Package config loads runtime configuration for the MaintKeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config. The extension picks
//     the format: .json, .yaml/.yml or .toml. Keys absent from the file keep
//     their defaults.
//  3. Command-line flags, which override earlier values.
//
// Durations in files use timex.Duration, so they can be strings like "3s"
// or integer nanoseconds:
//
//	{
//	  "base_url": "https://abc.supabase.co",
//	  "api_key": "anon-key",
//	  "request_timeout": "10s",
//	  "history_cache_ttl": "5m"
//	}
//
// S3 credentials are only read from the file.
package config
