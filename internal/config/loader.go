// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading with precedence ENV > file > defaults.
type Loader struct {
	configPath string
}

// NewLoader creates a new configuration loader. An empty path skips the file
// layer entirely.
func NewLoader(configPath string) *Loader {
	return &Loader{configPath: configPath}
}

// Load builds the effective configuration and validates it.
func (l *Loader) Load() (Config, error) {
	cfg := Defaults()

	if l.configPath != "" {
		data, err := os.ReadFile(l.configPath)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	l.applyEnv(&cfg)

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (l *Loader) applyEnv(cfg *Config) {
	cfg.ListenAddr = ParseString("SUBFLOW_LISTEN", cfg.ListenAddr)
	cfg.EngineURL = ParseString("SUBFLOW_ENGINE_URL", cfg.EngineURL)
	cfg.DataDir = ParseString("SUBFLOW_DATA_DIR", cfg.DataDir)
	cfg.LogLevel = ParseString("SUBFLOW_LOG_LEVEL", cfg.LogLevel)
	cfg.RequestTimeout = ParseDuration("SUBFLOW_REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.EmbedTimeout = ParseDuration("SUBFLOW_EMBED_TIMEOUT", cfg.EmbedTimeout)
	cfg.LoginRateLimit = ParseInt("SUBFLOW_LOGIN_RATE_LIMIT", cfg.LoginRateLimit)
}
