// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package keymap

import (
	"context"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	corelog "github.com/jvecore/editorcore/internal/log"
)

// Watcher reloads a keybinding file whenever it changes on disk, using a
// directory watch like internal/config's Holder, applied to a *.jvekeys
// file instead of a *.yaml config file. Every matching event triggers a
// reload; events are not debounced.
type Watcher struct {
	path    string
	current atomic.Pointer[Bindings]
	watcher *fsnotify.Watcher
}

// NewWatcher loads path once and starts watching its containing directory.
func NewWatcher(ctx context.Context, path string) (*Watcher, error) {
	b, err := Load(path)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &Watcher{path: path, watcher: fw}
	w.current.Store(b)
	go w.loop(ctx)
	return w, nil
}

// Current returns the most recently loaded Bindings.
func (w *Watcher) Current() *Bindings {
	return w.current.Load()
}

// Close stops the underlying fsnotify watch.
func (w *Watcher) Close() {
	_ = w.watcher.Close()
}

func (w *Watcher) loop(ctx context.Context) {
	logger := corelog.WithComponent("keymap")
	fileName := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			_ = w.watcher.Close()
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != fileName {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			b, err := Load(w.path)
			if err != nil {
				logger.Warn().Err(err).Str("event", "keymap.reload_failed").Str("path", w.path).Msg("keybinding reload failed, keeping previous bindings")
				continue
			}
			w.current.Store(b)
			logger.Info().Str("event", "keymap.reloaded").Str("path", w.path).Int("count", b.Len()).Msg("keybindings reloaded")
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Error().Err(err).Str("event", "keymap.watch_error").Msg("keymap watcher error")
		}
	}
}
