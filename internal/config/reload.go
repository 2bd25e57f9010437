// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	corelog "github.com/jvecore/editorcore/internal/log"
	"github.com/rs/zerolog"
)

// errInvalidConfig is wrapped into Validate's error when a configuration
// fails sanity checks; a reload that fails them keeps the old configuration.
var errInvalidConfig = fmt.Errorf("invalid configuration")

// Validate rejects a configuration that cannot be used (spec.md ambient
// stack: reload must be atomic, either the whole new config is valid or the
// old one stays in effect).
func Validate(cfg AppConfig) error {
	if cfg.SnapToleranceDevicePixels < 0 {
		return fmt.Errorf("%w: snapToleranceDevicePixels must be >= 0", errInvalidConfig)
	}
	if cfg.MaxUndoDepth <= 0 {
		return fmt.Errorf("%w: maxUndoDepth must be > 0", errInvalidConfig)
	}
	if cfg.DefaultRate.Num == 0 || cfg.DefaultRate.Den == 0 {
		return fmt.Errorf("%w: defaultRate must have non-zero numerator and denominator", errInvalidConfig)
	}
	return nil
}

// Holder holds configuration with atomic reloading capability: thread-safe
// reads via atomic.Pointer, and hot reload from file triggered by an
// fsnotify watch (spec.md ambient stack, grounded on the teacher's
// config.ConfigHolder).
type Holder struct {
	reloadOpMu sync.Mutex
	epoch      atomic.Uint64
	current    atomic.Pointer[AppConfig]
	loader     *Loader
	configPath string
	configDir  string
	configFile string
	watcher    *fsnotify.Watcher
	logger     zerolog.Logger

	listenersMu sync.RWMutex
	listeners   []chan<- AppConfig
}

// NewHolder creates a new configuration holder with an initial config.
func NewHolder(initial AppConfig, loader *Loader, configPath string) *Holder {
	h := &Holder{
		loader:     loader,
		configPath: configPath,
		logger:     corelog.WithComponent("config"),
	}
	h.swap(initial)
	return h
}

// Get returns the current configuration (thread-safe read).
func (h *Holder) Get() AppConfig {
	cur := h.current.Load()
	if cur == nil {
		return AppConfig{}
	}
	return *cur
}

func (h *Holder) swap(cfg AppConfig) {
	h.epoch.Add(1)
	h.current.Store(&cfg)
}

// Reload reloads configuration from file and validates it. If validation
// fails, the old configuration is kept and an error is returned.
func (h *Holder) Reload(ctx context.Context) error {
	h.reloadOpMu.Lock()
	defer h.reloadOpMu.Unlock()

	h.logger.Info().Str("event", "config.reload_start").Msg("reloading configuration")

	oldCfg := h.Get()

	newCfg, err := h.loader.Load()
	if err != nil {
		h.logger.Error().Err(err).Str("event", "config.reload_failed").Msg("failed to load new configuration")
		return fmt.Errorf("load config: %w", err)
	}
	if err := Validate(newCfg); err != nil {
		h.logger.Error().Err(err).Str("event", "config.validation_failed").Msg("new configuration failed validation")
		return fmt.Errorf("validate config: %w", err)
	}

	h.swap(newCfg)
	h.notifyListeners(newCfg)

	if oldCfg.LogLevel != newCfg.LogLevel {
		if err := corelog.SetLevel(ctx, "config.reload", nil, newCfg.LogLevel); err != nil {
			h.logger.Warn().Err(err).Str("event", "config.log_level_apply_failed").Msg("failed to apply reloaded log level")
		}
	}

	h.logger.Info().Str("event", "config.reload_success").Msg("configuration reloaded successfully")
	return nil
}

// StartWatcher starts watching the config file for changes. If configPath
// is empty this is a no-op (config comes from ENV/defaults only).
func (h *Holder) StartWatcher(ctx context.Context) error {
	if h.configPath == "" {
		h.logger.Info().Str("event", "config.watcher_disabled").Msg("config file watcher disabled (no config file configured)")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	h.watcher = watcher

	// Watch the directory, not the file, so atomic replace writes
	// (tmp+rename) and editor saves are still observed.
	h.configDir = filepath.Dir(h.configPath)
	h.configFile = filepath.Base(h.configPath)

	if err := watcher.Add(h.configDir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch config dir: %w", err)
	}

	h.logger.Info().Str("event", "config.watcher_started").Str("path", h.configPath).Msg("watching config file for changes")
	go h.watchLoop(ctx)
	return nil
}

func (h *Holder) watchLoop(ctx context.Context) {
	var debounceTimer *time.Timer
	const debounceDuration = 500 * time.Millisecond

	for {
		select {
		case <-ctx.Done():
			h.logger.Info().Str("event", "config.watcher_stopped").Msg("config watcher stopped")
			_ = h.watcher.Close()
			return

		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			if h.configFile != "" && filepath.Base(event.Name) != h.configFile {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				h.logger.Debug().Str("event", "config.file_changed").Str("op", event.Op.String()).Msg("config file changed")
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounceDuration, func() {
					if err := h.Reload(ctx); err != nil {
						h.logger.Error().Err(err).Str("event", "config.auto_reload_failed").Msg("automatic config reload failed")
					}
				})
			}

		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().Err(err).Str("event", "config.watcher_error").Msg("config watcher error")
		}
	}
}

// Stop stops the config watcher, if running.
func (h *Holder) Stop() {
	if h.watcher != nil {
		_ = h.watcher.Close()
	}
}

// RegisterListener registers a channel to receive config reload
// notifications. Sends are non-blocking; a full channel drops the update.
// The caller owns the channel's lifecycle.
func (h *Holder) RegisterListener(ch chan<- AppConfig) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()
	h.listeners = append(h.listeners, ch)
}

func (h *Holder) notifyListeners(newCfg AppConfig) {
	h.listenersMu.RLock()
	defer h.listenersMu.RUnlock()
	for _, ch := range h.listeners {
		select {
		case ch <- newCfg:
		default:
			h.logger.Warn().Str("event", "config.listener_skip").Msg("skipped notifying listener (channel full)")
		}
	}
}
