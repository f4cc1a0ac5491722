package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// TTL bounds for cached metadata, in days.
const (
	MinTTLDays     = 1
	MaxTTLDays     = 30
	DefaultTTLDays = 30
)

// DefaultTool is the external CLI invoked for all remote operations.
const DefaultTool = "nakodx"

// Config holds the ndxr configuration
type Config struct {
	EnableCache  bool   `toml:"enable_cache"`   // master switch for the metadata cache
	CacheTTLDays int    `toml:"cache_ttl_days"` // 1-30, clamped on load
	AutoOpen     bool   `toml:"auto_open"`      // open retrieved files after download
	Tool         string `toml:"tool"`           // external CLI binary, defaults to "nakodx"
	CacheDir     string `toml:"cache_dir"`      // optional override of the cache directory
}

// Default returns the default configuration
func Default() Config {
	return Config{
		EnableCache:  true,
		CacheTTLDays: DefaultTTLDays,
		AutoOpen:     true,
		Tool:         DefaultTool,
	}
}

// TTL returns the cache time-to-live as a duration, clamped to [1d, 30d].
func (c *Config) TTL() time.Duration {
	days := c.CacheTTLDays
	if days < MinTTLDays {
		days = MinTTLDays
	}
	if days > MaxTTLDays {
		days = MaxTTLDays
	}
	return time.Duration(days) * 24 * time.Hour
}

// ExpandPath expands ~ to the user's home directory
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand ~: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	if path == "~" {
		return os.UserHomeDir()
	}
	return path, nil
}

// Path returns the location of the config file.
func Path() (string, error) {
	return configPath()
}

// configPath returns the path to the config file
func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ndxr", "config.toml"), nil
}

// Load reads config from ~/.config/ndxr/config.toml
// Returns Default() if file doesn't exist (no error)
// Returns error only if file exists but is invalid
func Load() (Config, error) {
	path, err := configPath()
	if err != nil {
		return Default(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from the given path, applying defaults for
// missing fields and clamping out-of-range values.
func LoadFrom(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Tool == "" {
		cfg.Tool = DefaultTool
	}
	if cfg.CacheTTLDays < MinTTLDays {
		cfg.CacheTTLDays = MinTTLDays
	}
	if cfg.CacheTTLDays > MaxTTLDays {
		cfg.CacheTTLDays = MaxTTLDays
	}

	if cfg.CacheDir != "" {
		expanded, err := ExpandPath(cfg.CacheDir)
		if err != nil {
			return cfg, err
		}
		cfg.CacheDir = expanded
	}

	return cfg, nil
}
