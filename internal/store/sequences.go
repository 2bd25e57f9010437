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

// InsertSequence creates a new sequence row.
func (s *Store) InsertSequence(ctx context.Context, seq *Sequence) error {
	const q = `
	INSERT INTO sequences (
		id, project_id, name, kind, fps_numerator, fps_denominator, width, height,
		audio_sample_rate, playhead_frame, view_start_frame, view_duration_frames,
		current_sequence_number
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q,
		seq.ID, seq.ProjectID, seq.Name, seq.Kind, seq.FPSNumerator, seq.FPSDenominator,
		seq.Width, seq.Height, seq.AudioSampleRate, seq.PlayheadFrame, seq.ViewStartFrame,
		seq.ViewDurationFrames, seq.CurrentSequenceNumber,
	)
	if err != nil {
		return fmt.Errorf("store: insert sequence: %w", err)
	}
	return nil
}

func scanSequence(row interface{ Scan(...any) error }) (*Sequence, error) {
	var seq Sequence
	if err := row.Scan(
		&seq.ID, &seq.ProjectID, &seq.Name, &seq.Kind, &seq.FPSNumerator, &seq.FPSDenominator,
		&seq.Width, &seq.Height, &seq.AudioSampleRate, &seq.PlayheadFrame, &seq.ViewStartFrame,
		&seq.ViewDurationFrames, &seq.CurrentSequenceNumber,
	); err != nil {
		return nil, err
	}
	return &seq, nil
}

const sequenceColumns = `id, project_id, name, kind, fps_numerator, fps_denominator, width, height,
		audio_sample_rate, playhead_frame, view_start_frame, view_duration_frames,
		current_sequence_number`

// GetSequence loads a sequence by id.
func (s *Store) GetSequence(ctx context.Context, id string) (*Sequence, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sequenceColumns+` FROM sequences WHERE id = ?`, id)
	seq, err := scanSequence(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: get sequence: %w", err)
	}
	return seq, nil
}

// ListSequencesByProject returns all sequences belonging to a project.
func (s *Store) ListSequencesByProject(ctx context.Context, projectID string) ([]*Sequence, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sequenceColumns+` FROM sequences WHERE project_id = ?`, projectID)
	if err != nil {
		return nil, fmt.Errorf("store: list sequences: %w", err)
	}
	defer rows.Close()

	var out []*Sequence
	for rows.Next() {
		seq, err := scanSequence(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan sequence: %w", err)
		}
		out = append(out, seq)
	}
	return out, rows.Err()
}

// SetPlayhead updates a sequence's persisted playhead frame.
func (s *Store) SetPlayhead(ctx context.Context, sequenceID string, frame int64) error {
	return SetPlayhead(ctx, s.db, sequenceID, frame)
}

// SetCurrentSequenceNumber updates the persisted undo cursor for a sequence.
func (s *Store) SetCurrentSequenceNumber(ctx context.Context, sequenceID string, n int64) error {
	return SetCurrentSequenceNumber(ctx, s.db, sequenceID, n)
}

// SetPlayhead (Querier variant) updates a sequence's persisted playhead
// frame, usable inside a command transaction.
func SetPlayhead(ctx context.Context, q Querier, sequenceID string, frame int64) error {
	res, err := q.ExecContext(ctx, `UPDATE sequences SET playhead_frame = ? WHERE id = ?`, frame, sequenceID)
	if err != nil {
		return fmt.Errorf("store: set playhead: %w", err)
	}
	return requireOneRowAffected(res, "sequence", sequenceID)
}

// SetCurrentSequenceNumber (Querier variant) updates the persisted undo
// cursor for a sequence, usable inside a command transaction.
func SetCurrentSequenceNumber(ctx context.Context, q Querier, sequenceID string, n int64) error {
	res, err := q.ExecContext(ctx, `UPDATE sequences SET current_sequence_number = ? WHERE id = ?`, n, sequenceID)
	if err != nil {
		return fmt.Errorf("store: set current sequence number: %w", err)
	}
	return requireOneRowAffected(res, "sequence", sequenceID)
}

// GetSequence (Querier variant), usable inside a command transaction.
func GetSequence(ctx context.Context, q Querier, id string) (*Sequence, error) {
	row := q.QueryRowContext(ctx, `SELECT `+sequenceColumns+` FROM sequences WHERE id = ?`, id)
	seq, err := scanSequence(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: get sequence: %w", err)
	}
	return seq, nil
}
