// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"fmt"
)

// InsertClipLink creates an A/V sync group joining two co-placed clips.
func InsertClipLink(ctx context.Context, q Querier, link *ClipLink) error {
	const stmt = `INSERT INTO clip_links (id, clip_id_a, clip_id_b) VALUES (?, ?, ?)`
	_, err := q.ExecContext(ctx, stmt, link.ID, link.ClipIDA, link.ClipIDB)
	if err != nil {
		return fmt.Errorf("store: insert clip link: %w", err)
	}
	return nil
}

// LinkedClips returns the ids of clips sync-linked to clipID (in either
// link direction), so an executor moving one half of an A/V pair can
// discover its partner. Named directly per spec.md's supplemented-features
// note: the data model names ClipLink but no read operation was specified.
func LinkedClips(ctx context.Context, q Querier, clipID string) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT clip_id_b FROM clip_links WHERE clip_id_a = ?
		 UNION
		 SELECT clip_id_a FROM clip_links WHERE clip_id_b = ?`, clipID, clipID)
	if err != nil {
		return nil, fmt.Errorf("store: linked clips: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("store: scan linked clip: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
