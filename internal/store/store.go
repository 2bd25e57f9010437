// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package store

import (
	"database/sql"
	"fmt"
)

// Store wraps the primary project database connection. It is the single
// choke point through which executors and mutators read and write
// projects, sequences, tracks, clips, media, properties, clip links, and
// command records (spec.md §4.2's boundary rule).
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the primary project database at
// dbPath and applies pending migrations.
func Open(dbPath string) (*Store, error) {
	return OpenWithConfig(dbPath, DefaultConfig())
}

// OpenWithConfig opens the primary project database with an explicit
// connection configuration (used by tests to tune busy_timeout/pool size).
func OpenWithConfig(dbPath string, cfg Config) (*Store, error) {
	db, err := openConn(dbPath, cfg)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: migration failed: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying *sql.DB for transaction management by the
// command manager, which runs each command's store writes in one
// transaction on it (spec.md §4.6). The read-model projection writes to a
// separate database in its own transaction.
func (s *Store) DB() *sql.DB {
	return s.db
}
