// SPDX-License-Identifier: MIT

// Command subflowd is the local gateway daemon for the subtitle wizard. It
// serves the browser UI API and talks to the remote processing engine.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/krittawat/subflow/internal/admin"
	"github.com/krittawat/subflow/internal/api"
	"github.com/krittawat/subflow/internal/config"
	"github.com/krittawat/subflow/internal/engine"
	sflog "github.com/krittawat/subflow/internal/log"
	"github.com/krittawat/subflow/internal/session"
	"github.com/krittawat/subflow/internal/wizard"
)

var (
	version   = "v1.0.0"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// Safe logging defaults until the config is loaded.
	sflog.Configure(sflog.Config{
		Level:   "info",
		Service: "subflow",
		Version: version,
	})
	logger := sflog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	effectiveConfigPath := resolveConfigPath(strings.TrimSpace(*configPath))

	loader := config.NewLoader(effectiveConfigPath)
	cfg, err := loader.Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "config.load_failed").
			Str("config_path", effectiveConfigPath).
			Msg("failed to load configuration")
	}

	sflog.Configure(sflog.Config{
		Level:   cfg.LogLevel,
		Service: "subflow",
		Version: version,
	})
	logger.Info().
		Str("event", "config.loaded").
		Str("config_path", effectiveConfigPath).
		Str("listen", cfg.ListenAddr).
		Str("engine_url", cfg.EngineURL).
		Msg("configuration loaded")

	holder := config.NewHolder(cfg, loader, effectiveConfigPath)
	// The log level applies live on reload; address and timeout changes still
	// need a restart.
	holder.OnReload(func(next config.Config) {
		sflog.Configure(sflog.Config{
			Level:   next.LogLevel,
			Service: "subflow",
			Version: version,
		})
		logger.Info().
			Str("event", "config.reload_applied").
			Str("log_level", next.LogLevel).
			Msg("reloaded configuration applied")
	})
	if err := holder.StartWatcher(ctx); err != nil {
		logger.Warn().Err(err).Str("event", "config.watch_failed").Msg("hot reload disabled")
	}

	sessions := session.NewManager(session.NewStore(cfg.DataDir))
	client := engine.New(engine.Options{
		BaseURL:        cfg.EngineURL,
		Token:          sessions.Token,
		RequestTimeout: cfg.RequestTimeout,
		EmbedTimeout:   cfg.EmbedTimeout,
	})
	svc := wizard.New(client)
	sessions.OnReset(svc.Reset)

	server := api.New(api.Options{
		Engine:         client,
		Sessions:       sessions,
		Wizard:         svc,
		Dashboard:      admin.New(client),
		LoginRateLimit: cfg.LoginRateLimit,
	})

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().
			Str("event", "daemon.listening").
			Str("addr", cfg.ListenAddr).
			Msg("gateway listening")
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Str("event", "daemon.shutdown").Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Str("event", "daemon.failed").Msg("gateway terminated")
	}
	logger.Info().Str("event", "daemon.stopped").Msg("gateway stopped")
}

// resolveConfigPath prefers the explicit flag; otherwise a config.yaml inside
// the data dir is picked up when present, so a saved config persists across
// restarts without flags.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	dataDir := config.ParseString("SUBFLOW_DATA_DIR", config.Defaults().DataDir)
	autoPath := filepath.Join(dataDir, "config.yaml")
	if _, err := os.Stat(autoPath); err == nil {
		return autoPath
	}
	return ""
}
