// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package eventlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jvecore/editorcore/internal/store"
)

// upsertTLClip writes one clip row into tl_clips from the plain map
// shape internal/executor's clipToMap produces (the same shape the
// persisted undo payload already carries).
func upsertTLClip(ctx context.Context, conn *sql.Conn, m map[string]any) error {
	id := mapStr(m, "id")
	if id == "" {
		return nil
	}
	_, err := conn.ExecContext(ctx, `
		INSERT INTO tl_clips (
			clip_id, project_id, sequence_id, track_id, clip_kind, name,
			media_id, master_clip_id, timeline_start_frame, duration_frames,
			source_in_frame, source_out_frame, fps_numerator, fps_denominator,
			enabled, offline, updated_at_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(clip_id) DO UPDATE SET
			project_id = excluded.project_id,
			sequence_id = excluded.sequence_id,
			track_id = excluded.track_id,
			clip_kind = excluded.clip_kind,
			name = excluded.name,
			media_id = excluded.media_id,
			master_clip_id = excluded.master_clip_id,
			timeline_start_frame = excluded.timeline_start_frame,
			duration_frames = excluded.duration_frames,
			source_in_frame = excluded.source_in_frame,
			source_out_frame = excluded.source_out_frame,
			fps_numerator = excluded.fps_numerator,
			fps_denominator = excluded.fps_denominator,
			enabled = excluded.enabled,
			offline = excluded.offline,
			updated_at_ms = excluded.updated_at_ms`,
		id, mapStr(m, "project_id"), mapStr(m, "owner_sequence_id"), mapNullStr(m, "track_id"),
		mapStr(m, "clip_kind"), mapStr(m, "name"), mapNullStr(m, "media_id"), mapNullStr(m, "master_clip_id"),
		mapInt64(m, "timeline_start_frame"), mapInt64(m, "duration_frames"),
		mapInt64(m, "source_in_frame"), mapInt64(m, "source_out_frame"),
		mapInt64(m, "fps_numerator"), mapInt64(m, "fps_denominator"),
		mapBool(m, "enabled"), mapBool(m, "offline"), nowMs(),
	)
	if err != nil {
		return fmt.Errorf("eventlog: upsert tl_clips %s: %w", id, err)
	}
	return nil
}

func deleteTLClip(ctx context.Context, conn *sql.Conn, id string) error {
	if id == "" {
		return nil
	}
	if _, err := conn.ExecContext(ctx, `DELETE FROM tl_clips WHERE clip_id = ?`, id); err != nil {
		return fmt.Errorf("eventlog: delete tl_clips %s: %w", id, err)
	}
	return nil
}

// upsertMedia writes one media row into the read model from the plain
// map shape internal/executor's mediaToMap produces.
func upsertMedia(ctx context.Context, conn *sql.Conn, m map[string]any) error {
	id := mapStr(m, "id")
	if id == "" {
		return nil
	}
	metadataJSON := mapStr(m, "metadata_json")
	if metadataJSON == "" {
		metadataJSON = "{}"
	}
	_, err := conn.ExecContext(ctx, `
		INSERT INTO media (
			media_id, project_id, name, file_path, duration_frames,
			fps_numerator, fps_denominator, width, height, audio_channels,
			codec, metadata_json, updated_at_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(media_id) DO UPDATE SET
			project_id = excluded.project_id,
			name = excluded.name,
			file_path = excluded.file_path,
			duration_frames = excluded.duration_frames,
			fps_numerator = excluded.fps_numerator,
			fps_denominator = excluded.fps_denominator,
			width = excluded.width,
			height = excluded.height,
			audio_channels = excluded.audio_channels,
			codec = excluded.codec,
			metadata_json = excluded.metadata_json,
			updated_at_ms = excluded.updated_at_ms`,
		id, mapStr(m, "project_id"), mapStr(m, "name"), mapStr(m, "file_path"), mapInt64(m, "duration_frames"),
		mapInt64(m, "fps_numerator"), mapInt64(m, "fps_denominator"), mapInt64(m, "width"), mapInt64(m, "height"),
		mapInt64(m, "audio_channels"), mapStr(m, "codec"), metadataJSON, nowMs(),
	)
	if err != nil {
		return fmt.Errorf("eventlog: upsert media %s: %w", id, err)
	}
	return nil
}

func deleteMediaRow(ctx context.Context, conn *sql.Conn, id string) error {
	if id == "" {
		return nil
	}
	if _, err := conn.ExecContext(ctx, `DELETE FROM media WHERE media_id = ?`, id); err != nil {
		return fmt.Errorf("eventlog: delete media %s: %w", id, err)
	}
	return nil
}

// clipStructToMap renders a *store.Clip the same way
// internal/executor's clipToMap does, for the resolveBareClipIDs
// fallback path that reads a row straight from the primary store.
func clipStructToMap(c *store.Clip) map[string]any {
	m := map[string]any{
		"id":                   c.ID,
		"project_id":           c.ProjectID,
		"clip_kind":            string(c.ClipKind),
		"name":                 c.Name,
		"owner_sequence_id":    c.OwnerSequenceID,
		"timeline_start_frame": c.TimelineStartFrame,
		"duration_frames":      c.DurationFrames,
		"source_in_frame":      c.SourceInFrame,
		"source_out_frame":     c.SourceOutFrame,
		"fps_numerator":        c.FPSNumerator,
		"fps_denominator":      c.FPSDenominator,
		"enabled":              c.Enabled,
		"offline":              c.Offline,
	}
	if c.TrackID != nil {
		m["track_id"] = *c.TrackID
	}
	if c.MediaID != nil {
		m["media_id"] = *c.MediaID
	}
	if c.MasterClipID != nil {
		m["master_clip_id"] = *c.MasterClipID
	}
	return m
}

func nowMs() int64 {
	return time.Now().UnixMilli()
}

func mapStr(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// mapNullStr returns a sql.NullString, since tl_clips.track_id/media_id/
// master_clip_id are nullable and a plain "" would collide with a real
// empty-string value if one ever existed.
func mapNullStr(m map[string]any, key string) sql.NullString {
	s, ok := m[key].(string)
	if !ok || s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func mapBool(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func mapInt64(m map[string]any, key string) int64 {
	switch n := m[key].(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case uint32:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	default:
		return 0
	}
}
