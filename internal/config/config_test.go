// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithNoFileOrEnv(t *testing.T) {
	l := NewLoaderWithEnv("", "test", func(string) (string, bool) { return "", false })
	cfg, err := l.Load()
	require.NoError(t, err)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, uint32(30), cfg.DefaultRate.Num)
	require.Equal(t, 100, cfg.MaxUndoDepth)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	env := map[string]string{
		envLogLevel: "debug",
		envMaxUndo:  "5",
	}
	l := NewLoaderWithEnv("", "test", func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	cfg, err := l.Load()
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, 5, cfg.MaxUndoDepth)
}

func TestLoad_FileOverridesDefaultsButNotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logLevel: warn\nmaxUndoDepth: 7\n"), 0o600))

	env := map[string]string{envMaxUndo: "42"}
	l := NewLoaderWithEnv(path, "test", func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	cfg, err := l.Load()
	require.NoError(t, err)
	require.Equal(t, "warn", cfg.LogLevel)
	require.Equal(t, 42, cfg.MaxUndoDepth) // ENV wins over file
}

func TestLoad_UnknownFileFieldIsRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bogusField: 1\n"), 0o600))

	l := NewLoader(path, "test")
	_, err := l.Load()
	require.Error(t, err)
}

func TestValidate_RejectsNonPositiveUndoDepth(t *testing.T) {
	cfg := defaultAppConfig()
	cfg.MaxUndoDepth = 0
	require.Error(t, Validate(cfg))
}

func TestValidate_RejectsZeroRate(t *testing.T) {
	cfg := defaultAppConfig()
	cfg.DefaultRate.Den = 0
	require.Error(t, Validate(cfg))
}

func TestValidate_AcceptsDefaults(t *testing.T) {
	require.NoError(t, Validate(defaultAppConfig()))
}

func TestHolder_ReloadAppliesNewConfigAndNotifiesListeners(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logLevel: info\n"), 0o600))

	loader := NewLoader(path, "test")
	initial, err := loader.Load()
	require.NoError(t, err)

	h := NewHolder(initial, loader, path)
	ch := make(chan AppConfig, 1)
	h.RegisterListener(ch)

	require.NoError(t, os.WriteFile(path, []byte("logLevel: debug\n"), 0o600))
	require.NoError(t, h.Reload(context.Background()))

	require.Equal(t, "debug", h.Get().LogLevel)
	select {
	case got := <-ch:
		require.Equal(t, "debug", got.LogLevel)
	default:
		t.Fatal("expected listener notification")
	}
}

func TestHolder_ReloadKeepsOldConfigOnValidationFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logLevel: info\nmaxUndoDepth: 3\n"), 0o600))

	loader := NewLoader(path, "test")
	initial, err := loader.Load()
	require.NoError(t, err)
	h := NewHolder(initial, loader, path)

	require.NoError(t, os.WriteFile(path, []byte("maxUndoDepth: -1\n"), 0o600))
	require.Error(t, h.Reload(context.Background()))
	require.Equal(t, 3, h.Get().MaxUndoDepth)
}
