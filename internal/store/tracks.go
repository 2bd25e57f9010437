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

// InsertTrack creates a new track row.
func (s *Store) InsertTrack(ctx context.Context, t *Track) error {
	const q = `INSERT INTO tracks (id, sequence_id, track_type, track_index, name, enabled) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q, t.ID, t.SequenceID, t.TrackType, t.TrackIndex, t.Name, t.Enabled)
	if err != nil {
		return fmt.Errorf("store: insert track: %w", err)
	}
	return nil
}

func scanTrack(row interface{ Scan(...any) error }) (*Track, error) {
	var t Track
	if err := row.Scan(&t.ID, &t.SequenceID, &t.TrackType, &t.TrackIndex, &t.Name, &t.Enabled); err != nil {
		return nil, err
	}
	return &t, nil
}

const trackColumns = `id, sequence_id, track_type, track_index, name, enabled`

// GetTrack loads a track by id.
func (s *Store) GetTrack(ctx context.Context, id string) (*Track, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+trackColumns+` FROM tracks WHERE id = ?`, id)
	t, err := scanTrack(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: get track: %w", err)
	}
	return t, nil
}

// GetTrackQ loads a track by id using a Querier, usable inside a command
// transaction (mutator and executors run inside one).
func GetTrackQ(ctx context.Context, q Querier, id string) (*Track, error) {
	row := q.QueryRowContext(ctx, `SELECT `+trackColumns+` FROM tracks WHERE id = ?`, id)
	t, err := scanTrack(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: get track: %w", err)
	}
	return t, nil
}

// ListTracksBySequenceQ is the Querier variant of ListTracksBySequence.
func ListTracksBySequenceQ(ctx context.Context, q Querier, sequenceID string) ([]*Track, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+trackColumns+` FROM tracks WHERE sequence_id = ? ORDER BY track_type, track_index`, sequenceID)
	if err != nil {
		return nil, fmt.Errorf("store: list tracks: %w", err)
	}
	defer rows.Close()

	var out []*Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan track: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListTracksBySequence returns all tracks in a sequence ordered by type then index.
func (s *Store) ListTracksBySequence(ctx context.Context, sequenceID string) ([]*Track, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+trackColumns+` FROM tracks WHERE sequence_id = ? ORDER BY track_type, track_index`, sequenceID)
	if err != nil {
		return nil, fmt.Errorf("store: list tracks: %w", err)
	}
	defer rows.Close()

	var out []*Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan track: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
