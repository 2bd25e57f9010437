// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package eventlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jvecore/editorcore/internal/command"
	"github.com/jvecore/editorcore/internal/store"
)

// Project folds one committed command into the read-model tables
// (spec.md §4.11 "Projection"), implementing commandmanager.Projector.
// It runs before the primary command transaction commits; q is that
// in-flight transaction, used to resolve full clip/media rows for any
// persisted payload that only names an id (spec.md §9 Open Question —
// resolved: a projection failure rolls back the primary transaction, so
// it's safe to read uncommitted rows here).
func (l *Log) Project(ctx context.Context, q store.Querier, rec *store.CommandRecord, persisted map[string]any) error {
	return l.withImmediateTx(ctx, func(ctx context.Context, conn *sql.Conn) error {
		return applyProjection(ctx, conn, q, rec, persisted)
	})
}

// Unproject reverses a command's read-model effect. Undo doesn't mint a
// new sequence_number or log line, so there's nothing to replay forward;
// instead it mirrors the same persisted payload the primary store's
// generic reverse algorithm consumes (internal/commandmanager/undo.go),
// applied against the read model instead of the primary store.
func (l *Log) Unproject(ctx context.Context, rec *store.CommandRecord) error {
	var persisted map[string]any
	if rec.PersistedJSON != "" && rec.PersistedJSON != "null" {
		if err := json.Unmarshal([]byte(rec.PersistedJSON), &persisted); err != nil {
			return fmt.Errorf("eventlog: unproject: decode persisted payload: %w", err)
		}
	}
	return l.withImmediateTx(ctx, func(ctx context.Context, conn *sql.Conn) error {
		return unprojectPersisted(ctx, conn, rec.CommandType, persisted)
	})
}

func applyProjection(ctx context.Context, conn *sql.Conn, q store.Querier, rec *store.CommandRecord, persisted map[string]any) error {
	if rec.CommandType == command.TypeBatchCommand {
		for _, raw := range anySlice(persisted["child_results"]) {
			child, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			childType, _ := child["type"].(string)
			childPersisted, _ := child["persisted"].(map[string]any)
			childRec := &store.CommandRecord{
				CommandType: childType,
				ProjectID:   rec.ProjectID,
				SequenceID:  rec.SequenceID,
				StackID:     rec.StackID,
			}
			if err := applyProjection(ctx, conn, q, childRec, childPersisted); err != nil {
				return fmt.Errorf("project batch child %s: %w", childType, err)
			}
		}
		return nil
	}

	switch rec.CommandType {
	case command.TypeSetPlayhead, command.TypeSetActiveSequence:
		return projectUIState(ctx, conn, rec)
	}

	applied := map[string]bool{}
	if err := projectMutations(ctx, conn, persisted, applied); err != nil {
		return err
	}
	if err := projectNewClips(ctx, conn, persisted, applied); err != nil {
		return err
	}
	if err := projectNewMedia(ctx, conn, persisted); err != nil {
		return err
	}
	// Forward-compatibility fallback: an executor that names a new row's
	// id but (unlike this tree's executors) doesn't also carry the full
	// row resolves it from the primary store's in-flight transaction.
	if err := resolveBareClipIDs(ctx, conn, q, persisted, applied); err != nil {
		return err
	}
	return nil
}

func projectUIState(ctx context.Context, conn *sql.Conn, rec *store.CommandRecord) error {
	var args map[string]any
	if rec.CommandArgsJSON != "" {
		if err := json.Unmarshal([]byte(rec.CommandArgsJSON), &args); err != nil {
			return fmt.Errorf("eventlog: decode command args: %w", err)
		}
	}

	var key string
	var value map[string]any
	switch rec.CommandType {
	case command.TypeSetPlayhead:
		sequenceID, _ := args["sequence_id"].(string)
		key = "playhead:" + sequenceID
		value = map[string]any{"sequence_id": sequenceID, "frame": args["frame"]}
	case command.TypeSetActiveSequence:
		key = "active_sequence:" + rec.ProjectID
		value = map[string]any{"project_id": rec.ProjectID, "sequence_id": args["sequence_id"]}
	default:
		return nil
	}

	valueJSON, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("eventlog: marshal ui_state value: %w", err)
	}
	_, err = conn.ExecContext(ctx, `
		INSERT INTO ui_state (key, value_json, updated_at_ms) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value_json = excluded.value_json, updated_at_ms = excluded.updated_at_ms`,
		key, string(valueJSON), rec.ExecutedAtMs)
	if err != nil {
		return fmt.Errorf("eventlog: upsert ui_state %s: %w", key, err)
	}
	return nil
}

func projectMutations(ctx context.Context, conn *sql.Conn, persisted map[string]any, applied map[string]bool) error {
	for _, raw := range anySlice(persisted["executed_mutations"]) {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		op, _ := m["op"].(string)
		clipID, _ := m["clip_id"].(string)
		if op == "delete" {
			if err := deleteTLClip(ctx, conn, clipID); err != nil {
				return err
			}
			applied[clipID] = true
			continue
		}
		clipMap, ok := m["clip"].(map[string]any)
		if !ok {
			continue
		}
		if err := upsertTLClip(ctx, conn, clipMap); err != nil {
			return err
		}
		applied[clipID] = true
	}
	return nil
}

func projectNewClips(ctx context.Context, conn *sql.Conn, persisted map[string]any, applied map[string]bool) error {
	for _, raw := range anySlice(persisted["new_clips"]) {
		clipMap, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if err := upsertTLClip(ctx, conn, clipMap); err != nil {
			return err
		}
		if id, _ := clipMap["id"].(string); id != "" {
			applied[id] = true
		}
	}
	for _, key := range []string{"right_clip", "left_clip"} {
		clipMap, ok := persisted[key].(map[string]any)
		if !ok {
			continue
		}
		if err := upsertTLClip(ctx, conn, clipMap); err != nil {
			return err
		}
		if id, _ := clipMap["id"].(string); id != "" {
			applied[id] = true
		}
	}
	return nil
}

func projectNewMedia(ctx context.Context, conn *sql.Conn, persisted map[string]any) error {
	for _, raw := range anySlice(persisted["new_media"]) {
		mediaMap, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if err := upsertMedia(ctx, conn, mediaMap); err != nil {
			return err
		}
	}
	return nil
}

func resolveBareClipIDs(ctx context.Context, conn *sql.Conn, q store.Querier, persisted map[string]any, applied map[string]bool) error {
	if q == nil {
		return nil
	}
	for _, key := range []string{"new_clip_id", "right_clip_id", "new_master_clip_id"} {
		id, _ := persisted[key].(string)
		if id == "" || applied[id] {
			continue
		}
		clip, err := store.GetClip(ctx, q, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return fmt.Errorf("eventlog: resolve %s %s: %w", key, id, err)
		}
		if err := upsertTLClip(ctx, conn, clipStructToMap(clip)); err != nil {
			return err
		}
		applied[id] = true
	}
	return nil
}

func unprojectPersisted(ctx context.Context, conn *sql.Conn, commandType string, persisted map[string]any) error {
	if commandType == command.TypeBatchCommand {
		children, _ := persisted["child_results"].([]any)
		for i := len(children) - 1; i >= 0; i-- {
			child, ok := children[i].(map[string]any)
			if !ok {
				continue
			}
			childType, _ := child["type"].(string)
			childPersisted, _ := child["persisted"].(map[string]any)
			if err := unprojectPersisted(ctx, conn, childType, childPersisted); err != nil {
				return fmt.Errorf("unproject batch child %d (%s): %w", i, childType, err)
			}
		}
		return nil
	}
	if persisted == nil {
		return nil
	}

	for _, id := range stringSlice(persisted["new_clip_ids"]) {
		if err := deleteTLClip(ctx, conn, id); err != nil {
			return err
		}
	}
	for _, id := range stringSlice(persisted["new_media_ids"]) {
		if err := deleteMediaRow(ctx, conn, id); err != nil {
			return err
		}
	}
	for _, raw := range anySlice(persisted["original_states"]) {
		fields, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if err := upsertTLClip(ctx, conn, fields); err != nil {
			return err
		}
	}
	return nil
}

func anySlice(v any) []any {
	switch s := v.(type) {
	case []any:
		return s
	case []map[string]any:
		out := make([]any, len(s))
		for i, m := range s {
			out[i] = m
		}
		return out
	default:
		return nil
	}
}

func stringSlice(v any) []string {
	switch s := v.(type) {
	case []any:
		out := make([]string, 0, len(s))
		for _, e := range s {
			if str, ok := e.(string); ok {
				out = append(out, str)
			}
		}
		return out
	case []string:
		return s
	default:
		return nil
	}
}
