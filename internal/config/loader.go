// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jvecore/editorcore/internal/log"
	"github.com/jvecore/editorcore/internal/rationaltime"
	"gopkg.in/yaml.v3"
)

// Env var names, highest precedence over the YAML file.
const (
	envDataDir      = "EDITORCORE_DATA_DIR"
	envLogLevel     = "EDITORCORE_LOG_LEVEL"
	envEventLogPath = "EDITORCORE_EVENT_LOG_PATH"
	envSnapTol      = "EDITORCORE_SNAP_TOLERANCE_PX"
	envRateNum      = "EDITORCORE_DEFAULT_RATE_NUM"
	envRateDen      = "EDITORCORE_DEFAULT_RATE_DEN"
	envMaxUndo      = "EDITORCORE_MAX_UNDO_DEPTH"
	envMetricsAddr  = "EDITORCORE_METRICS_ADDR"
)

// Loader handles configuration loading with ENV > File > Defaults precedence
// (spec.md ambient stack, grounded on the teacher's config.Loader).
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{}
	lookupEnvFn     envLookupFunc
}

// NewLoader creates a new configuration loader.
func NewLoader(configPath, version string) *Loader {
	return NewLoaderWithEnv(configPath, version, os.LookupEnv)
}

// NewLoaderWithEnv creates a new configuration loader with an injected
// environment source, for deterministic tests.
func NewLoaderWithEnv(configPath, version string, lookup envLookupFunc) *Loader {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
		lookupEnvFn:     lookup,
	}
}

func (l *Loader) envLookup(key string) (string, bool) {
	l.ConsumedEnvKeys[key] = struct{}{}
	return l.lookupEnvFn(key)
}

// Load resolves the configuration with precedence Defaults -> File -> ENV.
func (l *Loader) Load() (AppConfig, error) {
	cfg := defaultAppConfig()

	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		mergeFileConfig(&cfg, fileCfg)
	}

	logger := log.WithComponent("config")
	cfg.DataDir = parseStringWithLookup(logger, l.envLookup, envDataDir, cfg.DataDir)
	cfg.LogLevel = parseStringWithLookup(logger, l.envLookup, envLogLevel, cfg.LogLevel)
	cfg.EventLogPath = parseStringWithLookup(logger, l.envLookup, envEventLogPath, cfg.EventLogPath)
	cfg.SnapToleranceDevicePixels = parseFloatWithLookup(logger, l.envLookup, envSnapTol, cfg.SnapToleranceDevicePixels)
	cfg.MaxUndoDepth = parseIntWithLookup(logger, l.envLookup, envMaxUndo, cfg.MaxUndoDepth)
	cfg.MetricsAddr = parseStringWithLookup(logger, l.envLookup, envMetricsAddr, cfg.MetricsAddr)

	num := parseIntWithLookup(logger, l.envLookup, envRateNum, int(cfg.DefaultRate.Num))
	den := parseIntWithLookup(logger, l.envLookup, envRateDen, int(cfg.DefaultRate.Den))
	if num > 0 && den > 0 {
		cfg.DefaultRate = rationaltime.Rate{Num: uint32(num), Den: uint32(den)}
	}

	if abs, err := filepath.Abs(cfg.DataDir); err == nil {
		cfg.DataDir = abs
	}
	cfg.Version = l.version

	return cfg, nil
}

// loadFile loads configuration from a YAML file with strict parsing:
// unknown fields are a fatal error, same as the teacher's loader, to catch
// typos in operator-edited config rather than silently ignoring them.
func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file path is provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fileCfg); err != nil {
		if err == io.EOF {
			return &FileConfig{}, nil
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("config file contains multiple documents or trailing content")
	}

	return &fileCfg, nil
}
