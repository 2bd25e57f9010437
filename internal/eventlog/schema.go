// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package eventlog

import (
	"database/sql"
	"fmt"
)

// readModelsDDL creates the four projection tables spec.md §4.3 names:
// tl_clips, tl_markers, media, ui_state. tl_markers has no producing
// command yet (no Marker entity exists in spec.md §3's entity list); it
// is created so a future marker-producing command can project into it
// without a schema migration, and so readers that scan every table in
// the database don't need special-casing (spec.md §6 "Consumers MUST
// tolerate unknown payload keys" — the same forward-compatibility spirit
// applied to the projection schema).
const readModelsDDL = `
CREATE TABLE IF NOT EXISTS tl_clips (
	clip_id TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	sequence_id TEXT NOT NULL DEFAULT '',
	track_id TEXT,
	clip_kind TEXT NOT NULL DEFAULT 'timeline',
	name TEXT NOT NULL DEFAULT '',
	media_id TEXT,
	master_clip_id TEXT,
	timeline_start_frame INTEGER NOT NULL DEFAULT 0,
	duration_frames INTEGER NOT NULL DEFAULT 0,
	source_in_frame INTEGER NOT NULL DEFAULT 0,
	source_out_frame INTEGER NOT NULL DEFAULT 0,
	fps_numerator INTEGER NOT NULL DEFAULT 0,
	fps_denominator INTEGER NOT NULL DEFAULT 0,
	enabled INTEGER NOT NULL DEFAULT 1,
	offline INTEGER NOT NULL DEFAULT 0,
	updated_at_ms INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_tl_clips_sequence ON tl_clips(sequence_id);
CREATE INDEX IF NOT EXISTS idx_tl_clips_track ON tl_clips(track_id);

CREATE TABLE IF NOT EXISTS tl_markers (
	marker_id TEXT PRIMARY KEY,
	sequence_id TEXT NOT NULL DEFAULT '',
	frame INTEGER NOT NULL DEFAULT 0,
	name TEXT NOT NULL DEFAULT '',
	color TEXT NOT NULL DEFAULT '',
	updated_at_ms INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_tl_markers_sequence ON tl_markers(sequence_id);

CREATE TABLE IF NOT EXISTS media (
	media_id TEXT PRIMARY KEY,
	project_id TEXT NOT NULL DEFAULT '',
	name TEXT NOT NULL DEFAULT '',
	file_path TEXT NOT NULL DEFAULT '',
	duration_frames INTEGER NOT NULL DEFAULT 0,
	fps_numerator INTEGER NOT NULL DEFAULT 0,
	fps_denominator INTEGER NOT NULL DEFAULT 0,
	width INTEGER NOT NULL DEFAULT 0,
	height INTEGER NOT NULL DEFAULT 0,
	audio_channels INTEGER NOT NULL DEFAULT 0,
	codec TEXT NOT NULL DEFAULT '',
	metadata_json TEXT NOT NULL DEFAULT '{}',
	updated_at_ms INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS ui_state (
	key TEXT PRIMARY KEY,
	value_json TEXT NOT NULL DEFAULT '{}',
	updated_at_ms INTEGER NOT NULL DEFAULT 0
);
`

// readModelsSchemaVersion follows the primary store's PRAGMA
// user_version migration convention (internal/store/schema.go).
const readModelsSchemaVersion = 1

func migrateReadModels(db *sql.DB) error {
	var current int
	if err := db.QueryRow(`PRAGMA user_version`).Scan(&current); err != nil {
		return fmt.Errorf("eventlog: read schema version: %w", err)
	}
	if current >= readModelsSchemaVersion {
		return nil
	}
	if _, err := db.Exec(readModelsDDL); err != nil {
		return fmt.Errorf("eventlog: apply schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", readModelsSchemaVersion)); err != nil {
		return fmt.Errorf("eventlog: set schema version: %w", err)
	}
	return nil
}
