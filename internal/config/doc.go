// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

// Package config loads edit-core settings (data directory, log level, event
// log path, snap tolerance, default sequence rate, undo depth, metrics
// address) with ENV > File > Defaults precedence, and hot-reloads the YAML
// file via fsnotify so a running process can pick up operator edits without
// a restart.
package config
