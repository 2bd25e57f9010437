// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"fmt"
)

// UpsertProperty sets a typed key-value annotation on a clip, replacing any
// existing value for the same (clip_id, key) pair.
func UpsertProperty(ctx context.Context, q Querier, p *Property) error {
	const stmt = `
	INSERT INTO properties (id, clip_id, key, value_type, value) VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(clip_id, key) DO UPDATE SET value_type = excluded.value_type, value = excluded.value`
	_, err := q.ExecContext(ctx, stmt, p.ID, p.ClipID, p.Key, p.ValueType, p.Value)
	if err != nil {
		return fmt.Errorf("store: upsert property: %w", err)
	}
	return nil
}

// ListPropertiesByClip returns all properties attached to a clip.
func ListPropertiesByClip(ctx context.Context, q Querier, clipID string) ([]*Property, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, clip_id, key, value_type, value FROM properties WHERE clip_id = ?`, clipID)
	if err != nil {
		return nil, fmt.Errorf("store: list properties: %w", err)
	}
	defer rows.Close()

	var out []*Property
	for rows.Next() {
		var p Property
		if err := rows.Scan(&p.ID, &p.ClipID, &p.Key, &p.ValueType, &p.Value); err != nil {
			return nil, fmt.Errorf("store: scan property: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// DeletePropertiesByClip removes all properties attached to a clip
// (invoked by clip deletion, to avoid orphaned property rows).
func DeletePropertiesByClip(ctx context.Context, q Querier, clipID string) error {
	_, err := q.ExecContext(ctx, `DELETE FROM properties WHERE clip_id = ?`, clipID)
	if err != nil {
		return fmt.Errorf("store: delete properties: %w", err)
	}
	return nil
}
