// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package store

import "fmt"

const schemaVersion = 1

const schemaDDL = `
CREATE TABLE IF NOT EXISTS projects (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	settings_json TEXT NOT NULL DEFAULT '{}',
	created_at_ms INTEGER NOT NULL,
	modified_at_ms INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS sequences (
	id TEXT PRIMARY KEY,
	project_id TEXT NOT NULL REFERENCES projects(id),
	name TEXT NOT NULL,
	kind TEXT NOT NULL CHECK (kind IN ('timeline', 'masterclip')),
	fps_numerator INTEGER NOT NULL,
	fps_denominator INTEGER NOT NULL,
	width INTEGER NOT NULL DEFAULT 0,
	height INTEGER NOT NULL DEFAULT 0,
	audio_sample_rate INTEGER NOT NULL DEFAULT 48000,
	playhead_frame INTEGER NOT NULL DEFAULT 0,
	view_start_frame INTEGER NOT NULL DEFAULT 0,
	view_duration_frames INTEGER NOT NULL DEFAULT 0,
	current_sequence_number INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_sequences_project ON sequences(project_id);

CREATE TABLE IF NOT EXISTS tracks (
	id TEXT PRIMARY KEY,
	sequence_id TEXT NOT NULL REFERENCES sequences(id),
	track_type TEXT NOT NULL CHECK (track_type IN ('VIDEO', 'AUDIO')),
	track_index INTEGER NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	enabled INTEGER NOT NULL DEFAULT 1
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_tracks_seq_type_index ON tracks(sequence_id, track_type, track_index);

CREATE TABLE IF NOT EXISTS media (
	id TEXT PRIMARY KEY,
	project_id TEXT NOT NULL REFERENCES projects(id),
	name TEXT NOT NULL,
	file_path TEXT NOT NULL,
	duration_frames INTEGER NOT NULL,
	fps_numerator INTEGER NOT NULL,
	fps_denominator INTEGER NOT NULL,
	width INTEGER NOT NULL DEFAULT 0,
	height INTEGER NOT NULL DEFAULT 0,
	audio_channels INTEGER NOT NULL DEFAULT 0,
	codec TEXT NOT NULL DEFAULT '',
	metadata_json TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS clips (
	id TEXT PRIMARY KEY,
	project_id TEXT NOT NULL REFERENCES projects(id),
	track_id TEXT REFERENCES tracks(id),
	clip_kind TEXT NOT NULL CHECK (clip_kind IN ('timeline', 'master')),
	name TEXT NOT NULL DEFAULT '',
	media_id TEXT REFERENCES media(id),
	master_clip_id TEXT REFERENCES clips(id),
	owner_sequence_id TEXT NOT NULL,
	source_sequence_id TEXT,
	timeline_start_frame INTEGER NOT NULL,
	duration_frames INTEGER NOT NULL,
	source_in_frame INTEGER NOT NULL,
	source_out_frame INTEGER NOT NULL,
	fps_numerator INTEGER NOT NULL,
	fps_denominator INTEGER NOT NULL,
	enabled INTEGER NOT NULL DEFAULT 1,
	offline INTEGER NOT NULL DEFAULT 0,
	created_at_ms INTEGER NOT NULL,
	modified_at_ms INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_clips_track_start ON clips(track_id, timeline_start_frame);
CREATE INDEX IF NOT EXISTS idx_clips_owner_sequence ON clips(owner_sequence_id);

CREATE TABLE IF NOT EXISTS properties (
	id TEXT PRIMARY KEY,
	clip_id TEXT NOT NULL REFERENCES clips(id),
	key TEXT NOT NULL,
	value_type TEXT NOT NULL,
	value TEXT NOT NULL,
	UNIQUE(clip_id, key)
);

CREATE TABLE IF NOT EXISTS clip_links (
	id TEXT PRIMARY KEY,
	clip_id_a TEXT NOT NULL REFERENCES clips(id),
	clip_id_b TEXT NOT NULL REFERENCES clips(id)
);

CREATE INDEX IF NOT EXISTS idx_clip_links_a ON clip_links(clip_id_a);
CREATE INDEX IF NOT EXISTS idx_clip_links_b ON clip_links(clip_id_b);

CREATE TABLE IF NOT EXISTS commands (
	sequence_number INTEGER PRIMARY KEY,
	parent_sequence_number INTEGER,
	command_type TEXT NOT NULL,
	command_args_json TEXT NOT NULL,
	persisted_json TEXT NOT NULL DEFAULT '{}',
	project_id TEXT NOT NULL,
	sequence_id TEXT NOT NULL DEFAULT '',
	stack_id TEXT NOT NULL,
	executed_at_ms INTEGER NOT NULL,
	playhead_value INTEGER,
	undo_group_id TEXT
);

CREATE INDEX IF NOT EXISTS idx_commands_parent ON commands(parent_sequence_number);
CREATE INDEX IF NOT EXISTS idx_commands_stack ON commands(stack_id);
CREATE INDEX IF NOT EXISTS idx_commands_undo_group ON commands(undo_group_id);
`

// migrate applies schemaDDL and records schemaVersion via PRAGMA user_version.
// Following the teacher's versioned-migration convention
// (internal/domain/session/store/sqlite_store.go), migrations beyond v1
// would be added here as additional guarded blocks.
func (s *Store) migrate() error {
	var currentVersion int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&currentVersion); err != nil {
		return fmt.Errorf("store: read schema version: %w", err)
	}
	if currentVersion >= schemaVersion {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin migration: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(schemaDDL); err != nil {
		return fmt.Errorf("store: apply schema: %w", err)
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("store: set schema version: %w", err)
	}
	return tx.Commit()
}
