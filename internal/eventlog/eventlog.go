// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

// Package eventlog is the durable event log and read-model projector
// described in spec.md §4.3 and §6 "Event log on disk": an append-only
// JSONL stream of command envelopes plus a sidecar readmodels.sqlite
// projection database, opened alongside a project's primary store.
// Log implements commandmanager.EventLogger and commandmanager.Projector
// so a command pipeline wires it in with WithEventLog/WithProjector
// without this package needing to know anything about the manager.
package eventlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jvecore/editorcore/internal/commandmanager"
	"github.com/jvecore/editorcore/internal/log"
	persistsqlite "github.com/jvecore/editorcore/internal/persistence/sqlite"
)

var (
	_ commandmanager.EventLogger = (*Log)(nil)
	_ commandmanager.Projector   = (*Log)(nil)
)

var eventlogLogger = log.WithComponent("eventlog")

const (
	eventsDirName      = "events"
	snapshotsDirName   = "snapshots" // reserved for future point-in-time snapshots
	eventsFileName     = "events.jsonl"
	readModelsFileName = "readmodels.sqlite"
)

// Log owns one project's event stream and read-model database, rooted at
// <project>.events/ (spec.md §6 "Event log on disk").
type Log struct {
	dir string

	writeMu    sync.Mutex
	eventsFile *os.File

	roDB   *sql.DB
	roPath string
}

// Open creates (if necessary) the <project>.events/ directory layout,
// opens events/events.jsonl for append, and opens/migrates
// readmodels.sqlite. baseDir is the project's events root, e.g.
// "myproject.jvp.events".
func Open(baseDir string) (*Log, error) {
	eventsDir := filepath.Join(baseDir, eventsDirName)
	snapshotsDir := filepath.Join(baseDir, snapshotsDirName)
	for _, d := range []string{eventsDir, snapshotsDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("eventlog: create %s: %w", d, err)
		}
	}

	eventsPath := filepath.Join(eventsDir, eventsFileName)
	f, err := os.OpenFile(eventsPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("eventlog: open %s: %w", eventsPath, err)
	}

	roPath := filepath.Join(baseDir, readModelsFileName)
	roDB, err := persistsqlite.Open(roPath, persistsqlite.Config{
		BusyTimeout:  persistsqlite.DefaultConfig().BusyTimeout,
		MaxOpenConns: 1, // spec.md §5: "Read-model DB: opened exclusively by the event-log module"
	})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("eventlog: open read-model db: %w", err)
	}
	if err := migrateReadModels(roDB); err != nil {
		_ = f.Close()
		_ = roDB.Close()
		return nil, fmt.Errorf("eventlog: migrate read-model db: %w", err)
	}

	eventlogLogger.Info().
		Str("dir", baseDir).
		Msg("event log opened")

	return &Log{
		dir:        baseDir,
		eventsFile: f,
		roDB:       roDB,
		roPath:     roPath,
	}, nil
}

// Close checkpoints the read-model DB and resets its journal mode to
// DELETE, removes stale sidecar journal files, and closes the event
// stream file (spec.md §4.3 "Shutdown").
func (l *Log) Close() error {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	if _, err := l.roDB.Exec(`PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
		eventlogLogger.Warn().Err(err).Msg("wal checkpoint failed during shutdown")
	}
	if _, err := l.roDB.Exec(`PRAGMA journal_mode=DELETE`); err != nil {
		eventlogLogger.Warn().Err(err).Msg("journal mode reset failed during shutdown")
	}
	roErr := l.roDB.Close()

	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(l.roPath + suffix); err != nil && !os.IsNotExist(err) {
			eventlogLogger.Warn().Err(err).Str("file", l.roPath+suffix).Msg("failed to remove sidecar journal file")
		}
	}

	fileErr := l.eventsFile.Close()
	if roErr != nil {
		return fmt.Errorf("eventlog: close read-model db: %w", roErr)
	}
	if fileErr != nil {
		return fmt.Errorf("eventlog: close events file: %w", fileErr)
	}
	return nil
}

// withImmediateTx runs fn against one dedicated connection wrapped in
// BEGIN IMMEDIATE/COMMIT, rolling back on error (spec.md §5 "Transaction
// discipline": "every event application ... wraps ... in one BEGIN
// IMMEDIATE / COMMIT, with explicit ROLLBACK on any error").
func (l *Log) withImmediateTx(ctx context.Context, fn func(ctx context.Context, conn *sql.Conn) error) error {
	conn, err := l.roDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("eventlog: acquire read-model connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return fmt.Errorf("eventlog: begin immediate: %w", err)
	}
	if err := fn(ctx, conn); err != nil {
		if _, rbErr := conn.ExecContext(ctx, "ROLLBACK"); rbErr != nil {
			eventlogLogger.Warn().Err(rbErr).Msg("rollback failed after projection error")
		}
		return err
	}
	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("eventlog: commit: %w", err)
	}
	return nil
}
