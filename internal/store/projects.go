// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get-style lookups when no row matches.
var ErrNotFound = errors.New("store: not found")

// InsertProject creates a new project row.
func (s *Store) InsertProject(ctx context.Context, p *Project) error {
	const q = `INSERT INTO projects (id, name, settings_json, created_at_ms, modified_at_ms) VALUES (?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q, p.ID, p.Name, p.SettingsJSON, p.CreatedAtMs, p.ModifiedAtMs)
	if err != nil {
		return fmt.Errorf("store: insert project: %w", err)
	}
	return nil
}

// GetProject loads a project by id.
func (s *Store) GetProject(ctx context.Context, id string) (*Project, error) {
	const q = `SELECT id, name, settings_json, created_at_ms, modified_at_ms FROM projects WHERE id = ?`
	row := s.db.QueryRowContext(ctx, q, id)
	var p Project
	if err := row.Scan(&p.ID, &p.Name, &p.SettingsJSON, &p.CreatedAtMs, &p.ModifiedAtMs); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: get project: %w", err)
	}
	return &p, nil
}

// TouchProject updates a project's modified_at_ms timestamp.
func (s *Store) TouchProject(ctx context.Context, id string, modifiedAtMs int64) error {
	const q = `UPDATE projects SET modified_at_ms = ? WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, modifiedAtMs, id)
	if err != nil {
		return fmt.Errorf("store: touch project: %w", err)
	}
	return requireOneRowAffected(res, "project", id)
}

func requireOneRowAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: rows affected for %s %s: %w", entity, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s", ErrNotFound, entity, id)
	}
	return nil
}
