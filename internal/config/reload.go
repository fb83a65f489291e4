// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	sflog "github.com/krittawat/subflow/internal/log"
)

// Holder holds configuration with atomic hot-reloading from file.
type Holder struct {
	mu         sync.RWMutex
	current    Config
	loader     *Loader
	configPath string
	watcher    *fsnotify.Watcher
	logger     zerolog.Logger
	onReload   []func(Config)
}

// NewHolder creates a holder around an initial, already-validated config.
func NewHolder(initial Config, loader *Loader, configPath string) *Holder {
	return &Holder{
		current:    initial,
		loader:     loader,
		configPath: configPath,
		logger:     sflog.WithComponent("config"),
	}
}

// OnReload registers fn to run after every successful reload with the new
// configuration. Hooks run on the reload goroutine; keep them quick.
func (h *Holder) OnReload(fn func(Config)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onReload = append(h.onReload, fn)
}

// Get returns the current configuration.
func (h *Holder) Get() Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Reload re-runs the loader. If loading or validation fails the previous
// configuration is kept untouched.
func (h *Holder) Reload(_ context.Context) error {
	newCfg, err := h.loader.Load()
	if err != nil {
		h.logger.Error().Err(err).Str("event", "config.reload_failed").Msg("keeping previous configuration")
		return fmt.Errorf("reload config: %w", err)
	}

	h.mu.Lock()
	h.current = newCfg
	hooks := make([]func(Config), len(h.onReload))
	copy(hooks, h.onReload)
	h.mu.Unlock()

	h.logger.Info().Str("event", "config.reload_success").Msg("configuration reloaded")
	for _, fn := range hooks {
		fn(newCfg)
	}
	return nil
}

// StartWatcher watches the config file and reloads on change. A no-op when no
// config file is in use.
func (h *Holder) StartWatcher(ctx context.Context) error {
	if h.configPath == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(h.configPath); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch config file: %w", err)
	}
	h.watcher = watcher

	h.logger.Info().
		Str("event", "config.watcher_started").
		Str("path", h.configPath).
		Msg("watching config file for changes")

	go h.watchLoop(ctx)
	return nil
}

func (h *Holder) watchLoop(ctx context.Context) {
	// Editors produce bursts of write events; debounce them into one reload.
	var debounce *time.Timer
	const settle = 500 * time.Millisecond

	for {
		select {
		case <-ctx.Done():
			_ = h.watcher.Close()
			return
		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(settle, func() {
					_ = h.Reload(ctx)
				})
			}
		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.logger.Warn().Err(err).Str("event", "config.watch_error").Msg("config watcher error")
		}
	}
}
