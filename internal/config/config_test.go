// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := NewLoader("").Load()
	require.NoError(t, err)
	assert.Equal(t, ":8090", cfg.ListenAddr)
	assert.Equal(t, "http://127.0.0.1:8000", cfg.EngineURL)
	assert.Equal(t, 10*time.Minute, cfg.EmbedTimeout)
}

func TestLoadFileThenEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: \":9000\"\nengine_url: http://engine:8000\nlog_level: debug\n"), 0o600))

	t.Setenv("SUBFLOW_LISTEN", ":9100")

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.ListenAddr, "ENV wins over file")
	assert.Equal(t, "http://engine:8000", cfg.EngineURL, "file wins over defaults")
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty listen", func(c *Config) { c.ListenAddr = "" }},
		{"relative engine url", func(c *Config) { c.EngineURL = "engine:8000" }},
		{"empty data dir", func(c *Config) { c.DataDir = "" }},
		{"zero request timeout", func(c *Config) { c.RequestTimeout = 0 }},
		{"embed shorter than request", func(c *Config) { c.EmbedTimeout = c.RequestTimeout - time.Second }},
		{"zero login rate", func(c *Config) { c.LoginRateLimit = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			tc.mutate(&cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}

func TestHolderReloadKeepsOldConfigOnFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: \":9000\"\n"), 0o600))

	loader := NewLoader(path)
	cfg, err := loader.Load()
	require.NoError(t, err)

	holder := NewHolder(cfg, loader, path)
	require.NoError(t, os.WriteFile(path, []byte("listen: \"\"\n"), 0o600))
	assert.Error(t, holder.Reload(t.Context()))
	assert.Equal(t, ":9000", holder.Get().ListenAddr)

	require.NoError(t, os.WriteFile(path, []byte("listen: \":9001\"\n"), 0o600))
	require.NoError(t, holder.Reload(t.Context()))
	assert.Equal(t, ":9001", holder.Get().ListenAddr)
}

func TestHolderReloadNotifiesListeners(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: info\n"), 0o600))

	loader := NewLoader(path)
	cfg, err := loader.Load()
	require.NoError(t, err)

	holder := NewHolder(cfg, loader, path)
	var applied []string
	holder.OnReload(func(c Config) { applied = append(applied, c.LogLevel) })

	// A failed reload keeps the old config and fires no hooks.
	require.NoError(t, os.WriteFile(path, []byte("listen: \"\"\n"), 0o600))
	assert.Error(t, holder.Reload(t.Context()))
	assert.Empty(t, applied)

	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o600))
	require.NoError(t, holder.Reload(t.Context()))
	require.Len(t, applied, 1)
	assert.Equal(t, "debug", applied[0])
}
