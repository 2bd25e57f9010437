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

// Querier abstracts over *sql.DB and *sql.Tx so clip operations can run
// either standalone or inside the command manager's transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const clipColumns = `id, project_id, track_id, clip_kind, name, media_id, master_clip_id,
	owner_sequence_id, source_sequence_id, timeline_start_frame, duration_frames,
	source_in_frame, source_out_frame, fps_numerator, fps_denominator, enabled, offline,
	created_at_ms, modified_at_ms`

func scanClip(row interface{ Scan(...any) error }) (*Clip, error) {
	var c Clip
	if err := row.Scan(
		&c.ID, &c.ProjectID, &c.TrackID, &c.ClipKind, &c.Name, &c.MediaID, &c.MasterClipID,
		&c.OwnerSequenceID, &c.SourceSequenceID, &c.TimelineStartFrame, &c.DurationFrames,
		&c.SourceInFrame, &c.SourceOutFrame, &c.FPSNumerator, &c.FPSDenominator, &c.Enabled, &c.Offline,
		&c.CreatedAtMs, &c.ModifiedAtMs,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

// InsertClip creates a new clip row using the given querier (DB or Tx).
func InsertClip(ctx context.Context, q Querier, c *Clip) error {
	const stmt = `
	INSERT INTO clips (` + clipColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := q.ExecContext(ctx, stmt,
		c.ID, c.ProjectID, c.TrackID, c.ClipKind, c.Name, c.MediaID, c.MasterClipID,
		c.OwnerSequenceID, c.SourceSequenceID, c.TimelineStartFrame, c.DurationFrames,
		c.SourceInFrame, c.SourceOutFrame, c.FPSNumerator, c.FPSDenominator, c.Enabled, c.Offline,
		c.CreatedAtMs, c.ModifiedAtMs,
	)
	if err != nil {
		return fmt.Errorf("store: insert clip: %w", err)
	}
	return nil
}

// UpdateClip rewrites all mutable fields of an existing clip row.
func UpdateClip(ctx context.Context, q Querier, c *Clip) error {
	const stmt = `
	UPDATE clips SET
		track_id = ?, clip_kind = ?, name = ?, media_id = ?, master_clip_id = ?,
		owner_sequence_id = ?, source_sequence_id = ?, timeline_start_frame = ?,
		duration_frames = ?, source_in_frame = ?, source_out_frame = ?,
		fps_numerator = ?, fps_denominator = ?, enabled = ?, offline = ?, modified_at_ms = ?
	WHERE id = ?`
	res, err := q.ExecContext(ctx, stmt,
		c.TrackID, c.ClipKind, c.Name, c.MediaID, c.MasterClipID,
		c.OwnerSequenceID, c.SourceSequenceID, c.TimelineStartFrame,
		c.DurationFrames, c.SourceInFrame, c.SourceOutFrame,
		c.FPSNumerator, c.FPSDenominator, c.Enabled, c.Offline, c.ModifiedAtMs,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("store: update clip: %w", err)
	}
	return requireOneRowAffected(res, "clip", c.ID)
}

// DeleteClip removes a clip row by id.
func DeleteClip(ctx context.Context, q Querier, id string) error {
	res, err := q.ExecContext(ctx, `DELETE FROM clips WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete clip: %w", err)
	}
	return requireOneRowAffected(res, "clip", id)
}

// GetClip loads a single clip by id.
func GetClip(ctx context.Context, q Querier, id string) (*Clip, error) {
	row := q.QueryRowContext(ctx, `SELECT `+clipColumns+` FROM clips WHERE id = ?`, id)
	c, err := scanClip(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: get clip: %w", err)
	}
	return c, nil
}

// ListClipsByTrack returns every clip on a track ordered by timeline start,
// the ordering the clip mutator's occlusion/ripple algorithms depend on.
func ListClipsByTrack(ctx context.Context, q Querier, trackID string) ([]*Clip, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+clipColumns+` FROM clips WHERE track_id = ? ORDER BY timeline_start_frame`, trackID)
	if err != nil {
		return nil, fmt.Errorf("store: list clips by track: %w", err)
	}
	defer rows.Close()

	var out []*Clip
	for rows.Next() {
		c, err := scanClip(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan clip: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListClipsBySequence returns every clip owned by a sequence across all
// its tracks, used by the sequence accessor and ripple-across-all-tracks
// constraint checks.
func ListClipsBySequence(ctx context.Context, q Querier, sequenceID string) ([]*Clip, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+clipColumns+` FROM clips WHERE owner_sequence_id = ? ORDER BY timeline_start_frame`, sequenceID)
	if err != nil {
		return nil, fmt.Errorf("store: list clips by sequence: %w", err)
	}
	defer rows.Close()

	var out []*Clip
	for rows.Next() {
		c, err := scanClip(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan clip: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
