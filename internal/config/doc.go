// Package config loads and validates the ndxr configuration.
//
// Configuration lives in ~/.config/ndxr/config.toml and is re-read on
// every invocation, so changes take effect immediately:
//
//	enable_cache = true      # master switch for the metadata cache
//	cache_ttl_days = 30      # freshness window, clamped to 1-30
//	auto_open = true         # open retrieved files after download
//	tool = "nakodx"          # external CLI binary
//	cache_dir = "~/.ndxr"    # optional cache directory override
//
// A missing file yields [Default] without error; out-of-range values
// are clamped rather than rejected.
package config
