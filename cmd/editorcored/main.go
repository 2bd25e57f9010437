// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jvecore/editorcore/internal/commandmanager"
	"github.com/jvecore/editorcore/internal/config"
	"github.com/jvecore/editorcore/internal/eventlog"
	_ "github.com/jvecore/editorcore/internal/executor" // self-registers command executors + schemas
	"github.com/jvecore/editorcore/internal/keymap"
	corelog "github.com/jvecore/editorcore/internal/log"
	"github.com/jvecore/editorcore/internal/store"
)

var (
	version   = "v0.1.0"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	projectPath := flag.String("project", "", "path to the project's primary database (sqlite)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("editorcored %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	corelog.Configure(corelog.Config{Level: "info", Service: "editorcore", Version: version})
	logger := corelog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	explicitConfigPath := strings.TrimSpace(*configPath)
	effectiveConfigPath := explicitConfigPath
	if effectiveConfigPath == "" {
		dataDir := strings.TrimSpace(os.Getenv("EDITORCORE_DATA_DIR"))
		if dataDir == "" {
			dataDir = "/tmp/editorcore"
		}
		autoPath := filepath.Join(dataDir, "config.yaml")
		if _, err := os.Stat(autoPath); err == nil {
			effectiveConfigPath = autoPath
		}
	}

	loader := config.NewLoader(effectiveConfigPath, version)
	cfg, err := loader.Load()
	if err != nil {
		logger.Fatal().Err(err).Str("event", "config.load_failed").Str("config_path", effectiveConfigPath).Msg("failed to load configuration")
	}

	corelog.Configure(corelog.Config{Level: cfg.LogLevel, Service: "editorcore", Version: cfg.Version})

	holder := config.NewHolder(cfg, loader, effectiveConfigPath)
	if err := holder.StartWatcher(ctx); err != nil {
		logger.Warn().Err(err).Str("event", "config.watcher_start_failed").Msg("continuing without hot-reload")
	}
	defer holder.Stop()

	dbPath := strings.TrimSpace(*projectPath)
	if dbPath == "" {
		dbPath = filepath.Join(cfg.DataDir, "project.sqlite")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		logger.Fatal().Err(err).Str("event", "store.datadir_create_failed").Msg("failed to create project data directory")
	}

	st, err := store.Open(dbPath)
	if err != nil {
		logger.Fatal().Err(err).Str("event", "store.open_failed").Str("path", dbPath).Msg("failed to open project database")
	}
	defer func() { _ = st.Close() }()

	evLog, err := eventlog.Open(dbPath + ".events")
	if err != nil {
		logger.Fatal().Err(err).Str("event", "eventlog.open_failed").Msg("failed to open event log")
	}
	defer func() { _ = evLog.Close() }()

	mgr := commandmanager.New(st.DB(), commandmanager.WithEventLog(evLog), commandmanager.WithProjector(evLog))
	_ = mgr // wired for the API/command-submission surface this process exposes

	keymapPath := filepath.Join(cfg.DataDir, "default.jvekeys")
	if _, statErr := os.Stat(keymapPath); statErr != nil {
		logger.Info().Str("event", "keymap.absent").Str("path", keymapPath).Msg("no keybinding file found, running without custom keymap")
	} else if keys, kerr := keymap.NewWatcher(ctx, keymapPath); kerr != nil {
		logger.Warn().Err(kerr).Str("event", "keymap.load_failed").Str("path", keymapPath).Msg("continuing without keybindings")
	} else {
		defer keys.Close()
		logger.Info().Str("event", "keymap.loaded").Str("path", keymapPath).Int("count", keys.Current().Len()).Msg("keybindings loaded")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	httpSrv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("event", "metrics.listen").Str("addr", cfg.MetricsAddr).Msg("serving metrics and health endpoints")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Str("event", "metrics.serve_failed").Msg("metrics server stopped")
		}
	}()

	logger.Info().Str("event", "daemon.started").Str("data_dir", cfg.DataDir).Str("db", dbPath).Msg("editorcore daemon started")

	<-ctx.Done()
	logger.Info().Str("event", "daemon.shutdown").Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
}
