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

const mediaColumns = `id, project_id, name, file_path, duration_frames, fps_numerator,
	fps_denominator, width, height, audio_channels, codec, metadata_json`

func scanMedia(row interface{ Scan(...any) error }) (*Media, error) {
	var m Media
	if err := row.Scan(
		&m.ID, &m.ProjectID, &m.Name, &m.FilePath, &m.DurationFrames, &m.FPSNumerator,
		&m.FPSDenominator, &m.Width, &m.Height, &m.AudioChannels, &m.Codec, &m.MetadataJSON,
	); err != nil {
		return nil, err
	}
	return &m, nil
}

// InsertMedia registers a new media asset.
func InsertMedia(ctx context.Context, q Querier, m *Media) error {
	const stmt = `INSERT INTO media (` + mediaColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := q.ExecContext(ctx, stmt,
		m.ID, m.ProjectID, m.Name, m.FilePath, m.DurationFrames, m.FPSNumerator,
		m.FPSDenominator, m.Width, m.Height, m.AudioChannels, m.Codec, m.MetadataJSON,
	)
	if err != nil {
		return fmt.Errorf("store: insert media: %w", err)
	}
	return nil
}

// GetMedia loads a media row by id.
func GetMedia(ctx context.Context, q Querier, id string) (*Media, error) {
	row := q.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media WHERE id = ?`, id)
	m, err := scanMedia(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: get media: %w", err)
	}
	return m, nil
}

// DeleteMedia removes a media row by id.
func DeleteMedia(ctx context.Context, q Querier, id string) error {
	_, err := q.ExecContext(ctx, `DELETE FROM media WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete media: %w", err)
	}
	return nil
}

// ListMediaByProject returns all media assets belonging to a project.
func ListMediaByProject(ctx context.Context, q Querier, projectID string) ([]*Media, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+mediaColumns+` FROM media WHERE project_id = ?`, projectID)
	if err != nil {
		return nil, fmt.Errorf("store: list media: %w", err)
	}
	defer rows.Close()

	var out []*Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan media: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
