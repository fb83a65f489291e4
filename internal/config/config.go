// SPDX-License-Identifier: MIT

// Package config loads gateway configuration with precedence ENV > file > defaults.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config holds the gateway runtime configuration.
type Config struct {
	// ListenAddr is the address the local UI API binds to.
	ListenAddr string `yaml:"listen"`
	// EngineURL is the base URL of the remote subtitle processing engine.
	EngineURL string `yaml:"engine_url"`
	// DataDir stores the persisted session state file.
	DataDir string `yaml:"data_dir"`

	LogLevel string `yaml:"log_level"`

	// RequestTimeout bounds ordinary engine calls.
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// EmbedTimeout bounds subtitle embedding calls, which run for minutes.
	EmbedTimeout time.Duration `yaml:"embed_timeout"`

	// LoginRateLimit is the per-IP login attempt budget per minute.
	LoginRateLimit int `yaml:"login_rate_limit"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		ListenAddr:     ":8090",
		EngineURL:      "http://127.0.0.1:8000",
		DataDir:        defaultDataDir(),
		LogLevel:       "info",
		RequestTimeout: 5 * time.Minute,
		EmbedTimeout:   10 * time.Minute,
		LoginRateLimit: 10,
	}
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir + "/subflow"
	}
	return "/tmp/subflow"
}

// Validate rejects configurations the daemon cannot safely run with.
func Validate(cfg Config) error {
	if cfg.ListenAddr == "" {
		return fmt.Errorf("config: listen address must not be empty")
	}
	u, err := url.Parse(cfg.EngineURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: engine_url %q is not an absolute URL", cfg.EngineURL)
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("config: data_dir must not be empty")
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("config: request_timeout must be positive")
	}
	if cfg.EmbedTimeout < cfg.RequestTimeout {
		return fmt.Errorf("config: embed_timeout must not be shorter than request_timeout")
	}
	if cfg.LoginRateLimit <= 0 {
		return fmt.Errorf("config: login_rate_limit must be positive")
	}
	return nil
}

// ParseString reads an environment variable with a fallback default.
func ParseString(key, defaultVal string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return defaultVal
}

// ParseInt reads an integer environment variable with a fallback default.
func ParseInt(key string, defaultVal int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

// ParseDuration reads a duration environment variable with a fallback default.
func ParseDuration(key string, defaultVal time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
