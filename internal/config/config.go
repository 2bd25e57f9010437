// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package config

import (
	"github.com/jvecore/editorcore/internal/rationaltime"
)

// FileConfig is the YAML on-disk shape (spec.md ambient stack: every field
// is optional, since the Loader fills unset fields from defaults before ENV
// overrides are applied).
type FileConfig struct {
	DataDir      string `yaml:"dataDir,omitempty"`
	LogLevel     string `yaml:"logLevel,omitempty"`
	EventLogPath string `yaml:"eventLogPath,omitempty"`

	SnapToleranceDevicePixels float64 `yaml:"snapToleranceDevicePixels,omitempty"`
	DefaultRateNum            uint32  `yaml:"defaultRateNum,omitempty"`
	DefaultRateDen            uint32  `yaml:"defaultRateDen,omitempty"`
	MaxUndoDepth              int     `yaml:"maxUndoDepth,omitempty"`

	MetricsAddr string `yaml:"metricsAddr,omitempty"`
}

// AppConfig is the fully resolved configuration the rest of the edit core
// consumes: never partially populated, always the result of a Loader.Load.
type AppConfig struct {
	Version      string
	DataDir      string
	LogLevel     string
	EventLogPath string

	SnapToleranceDevicePixels float64
	DefaultRate               rationaltime.Rate
	MaxUndoDepth              int

	MetricsAddr string
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		DataDir:                   "./data",
		LogLevel:                  "info",
		EventLogPath:              "./data/events.jsonl",
		SnapToleranceDevicePixels: 12.0,
		DefaultRate:               rationaltime.Rate{Num: 30, Den: 1},
		MaxUndoDepth:              100,
		MetricsAddr:               ":9090",
	}
}

func mergeFileConfig(cfg *AppConfig, file *FileConfig) {
	if file == nil {
		return
	}
	if file.DataDir != "" {
		cfg.DataDir = file.DataDir
	}
	if file.LogLevel != "" {
		cfg.LogLevel = file.LogLevel
	}
	if file.EventLogPath != "" {
		cfg.EventLogPath = file.EventLogPath
	}
	if file.SnapToleranceDevicePixels != 0 {
		cfg.SnapToleranceDevicePixels = file.SnapToleranceDevicePixels
	}
	if file.DefaultRateNum != 0 && file.DefaultRateDen != 0 {
		cfg.DefaultRate = rationaltime.Rate{Num: file.DefaultRateNum, Den: file.DefaultRateDen}
	}
	if file.MaxUndoDepth != 0 {
		cfg.MaxUndoDepth = file.MaxUndoDepth
	}
	if file.MetricsAddr != "" {
		cfg.MetricsAddr = file.MetricsAddr
	}
}
