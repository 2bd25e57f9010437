// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package commandmanager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jvecore/editorcore/internal/command"
	"github.com/jvecore/editorcore/internal/log"
	"github.com/jvecore/editorcore/internal/metrics"
	"github.com/jvecore/editorcore/internal/store"
)

// Undo reverses the most recent undoable command on a stack, walking
// parent_sequence_number backward one step (or one undo group, reversed
// as a unit) (spec.md §4.6). It returns the command record that was
// reversed.
func (m *Manager) Undo(ctx context.Context, stackID string) (*store.CommandRecord, error) {
	if stackID == "" {
		stackID = DefaultStackID
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.cursorFor(stackID, "")
	if cur.current == nil {
		metrics.IncUndo(stackID, "empty")
		return nil, ErrNothingToUndo
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("commandmanager: undo: begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	rec, err := store.GetCommand(ctx, tx, *cur.current)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// The cursor points at a sequence number that no longer
			// exists. Reset to root rather than leaving the stack stuck.
			cur.current = nil
			metrics.IncOrphanedCursorRepaired()
			managerLogger.Warn().
				Str("stack_id", stackID).
				Msg("undo cursor pointed at a missing command, reset to root")
			metrics.IncUndo(stackID, "empty")
			return nil, ErrNothingToUndo
		}
		return nil, fmt.Errorf("commandmanager: undo: load command: %w", err)
	}

	var newCursor *int64
	if rec.UndoGroupID != nil {
		members, err := store.CommandsByUndoGroup(ctx, tx, *rec.UndoGroupID)
		if err != nil {
			return nil, fmt.Errorf("commandmanager: undo: load undo group: %w", err)
		}
		if len(members) == 0 {
			members = []*store.CommandRecord{rec}
		}
		for i := len(members) - 1; i >= 0; i-- {
			if err := m.reverseOne(ctx, tx, members[i]); err != nil {
				metrics.IncUndo(stackID, "error")
				return nil, fmt.Errorf("commandmanager: undo: reverse group member seq %d: %w", members[i].SequenceNumber, err)
			}
			if m.projector != nil {
				if err := m.projector.Unproject(ctx, members[i]); err != nil {
					metrics.IncUndo(stackID, "error")
					return nil, fmt.Errorf("commandmanager: undo: unproject group member seq %d: %w", members[i].SequenceNumber, err)
				}
			}
		}
		newCursor = members[0].ParentSequenceNumber
	} else {
		if err := m.reverseOne(ctx, tx, rec); err != nil {
			metrics.IncUndo(stackID, "error")
			return nil, fmt.Errorf("commandmanager: undo: reverse seq %d: %w", rec.SequenceNumber, err)
		}
		if m.projector != nil {
			if err := m.projector.Unproject(ctx, rec); err != nil {
				metrics.IncUndo(stackID, "error")
				return nil, fmt.Errorf("commandmanager: undo: unproject seq %d: %w", rec.SequenceNumber, err)
			}
		}
		newCursor = rec.ParentSequenceNumber
	}

	if cur.sequenceID != "" {
		cursorValue := int64(0)
		if newCursor != nil {
			cursorValue = *newCursor
		}
		if err := store.SetCurrentSequenceNumber(ctx, tx, cur.sequenceID, cursorValue); err != nil {
			return nil, fmt.Errorf("commandmanager: undo: update persisted cursor: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commandmanager: undo: commit: %w", err)
	}
	committed = true

	cur.current = newCursor
	metrics.IncUndo(stackID, "success")
	managerLogger.Info().
		Str("stack_id", stackID).
		Int64("sequence_number", rec.SequenceNumber).
		Msg("command undone")
	log.AuditInfo(ctx, "command.undone", "command undone", map[string]any{
		"stack_id":        stackID,
		"sequence_number": rec.SequenceNumber,
		"project_id":      rec.ProjectID,
		"command_type":    rec.CommandType,
	})

	return rec, nil
}

// Redo replays the command a prior Undo reversed. It does this by
// re-executing the original command's normalized args through the
// ordinary Execute pipeline rather than restoring the old row: the
// replay gets a fresh sequence_number and any new ids it mints (clips,
// media) are newly generated, since nothing else in the tree still
// references the ids the undone execution produced. This keeps Redo
// built entirely on the pipeline Execute already defines (spec.md §9
// Open Question — resolved: redo re-executes rather than restores).
func (m *Manager) Redo(ctx context.Context, stackID string) (*Result, error) {
	if stackID == "" {
		stackID = DefaultStackID
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.cursorFor(stackID, "")

	var child *store.CommandRecord
	var err error
	if cur.current == nil {
		child, err = store.FindLatestRootCommand(ctx, m.db, stackID)
	} else {
		child, err = store.FindLatestChildCommand(ctx, m.db, *cur.current)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.IncRedo(stackID, "empty")
			return nil, ErrNothingToRedo
		}
		return nil, fmt.Errorf("commandmanager: redo: find child command: %w", err)
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(child.CommandArgsJSON), &args); err != nil {
		return nil, fmt.Errorf("commandmanager: redo: decode command args: %w", err)
	}

	result, err := m.executeLocked(ctx, ExecuteRequest{
		CommandType: child.CommandType,
		Params:      args,
		ProjectID:   child.ProjectID,
		SequenceID:  cur.sequenceID,
		StackID:     stackID,
	})
	if err != nil {
		metrics.IncRedo(stackID, "error")
		return nil, fmt.Errorf("commandmanager: redo: %w", err)
	}

	metrics.IncRedo(stackID, "success")
	managerLogger.Info().
		Str("stack_id", stackID).
		Int64("replayed_sequence_number", child.SequenceNumber).
		Int64("new_sequence_number", result.Record.SequenceNumber).
		Msg("command redone")
	log.AuditInfo(ctx, "command.redone", "command redone", map[string]any{
		"stack_id":                 stackID,
		"replayed_sequence_number": child.SequenceNumber,
		"new_sequence_number":      result.Record.SequenceNumber,
		"project_id":               result.Record.ProjectID,
		"command_type":             result.Record.CommandType,
	})

	return result, nil
}

// reverseOne decodes one command's persisted payload and reverses its
// effect in place.
func (m *Manager) reverseOne(ctx context.Context, q store.Querier, rec *store.CommandRecord) error {
	var persisted map[string]any
	if rec.PersistedJSON != "" && rec.PersistedJSON != "null" {
		if err := json.Unmarshal([]byte(rec.PersistedJSON), &persisted); err != nil {
			return fmt.Errorf("decode persisted payload: %w", err)
		}
	}
	return reversePersisted(ctx, q, rec.CommandType, persisted)
}

// reversePersisted applies the generic reverse algorithm for a single
// command's persisted payload (spec.md §4.6: "persisted ... enough undo
// payload to deterministically reverse the operation"). BatchCommand is
// special-cased: its children are reversed in the opposite order they
// were originally applied in.
func reversePersisted(ctx context.Context, q store.Querier, commandType string, persisted map[string]any) error {
	if commandType == command.TypeBatchCommand {
		children, _ := persisted["child_results"].([]any)
		for i := len(children) - 1; i >= 0; i-- {
			child, ok := children[i].(map[string]any)
			if !ok {
				continue
			}
			childType, _ := child["type"].(string)
			childPersisted, _ := child["persisted"].(map[string]any)
			if err := reversePersisted(ctx, q, childType, childPersisted); err != nil {
				return fmt.Errorf("reverse batch child %d (%s): %w", i, childType, err)
			}
		}
		return nil
	}
	return reverseGeneric(ctx, q, persisted)
}

// reverseGeneric undoes the two reserved persisted-payload conventions
// every non-batch executor follows: delete whatever the command
// created (new_clip_ids, new_media_ids), then restore whatever it
// mutated or deleted (original_states), inserting rows that no longer
// exist and updating rows that still do.
func reverseGeneric(ctx context.Context, q store.Querier, persisted map[string]any) error {
	if persisted == nil {
		return nil
	}

	for _, id := range stringSlice(persisted["new_clip_ids"]) {
		if err := store.DeleteClip(ctx, q, id); err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("delete new clip %s: %w", id, err)
		}
	}
	for _, id := range stringSlice(persisted["new_media_ids"]) {
		if err := store.DeleteMedia(ctx, q, id); err != nil {
			return fmt.Errorf("delete new media %s: %w", id, err)
		}
	}

	for _, raw := range anySlice(persisted["original_states"]) {
		fields, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		clip, err := clipFromMap(fields)
		if err != nil {
			return fmt.Errorf("decode original clip state: %w", err)
		}
		_, getErr := store.GetClip(ctx, q, clip.ID)
		switch {
		case errors.Is(getErr, store.ErrNotFound):
			if err := store.InsertClip(ctx, q, clip); err != nil {
				return fmt.Errorf("restore deleted clip %s: %w", clip.ID, err)
			}
		case getErr != nil:
			return fmt.Errorf("load clip %s before restore: %w", clip.ID, getErr)
		default:
			if err := store.UpdateClip(ctx, q, clip); err != nil {
				return fmt.Errorf("restore clip %s: %w", clip.ID, err)
			}
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

// clipFromMap is the inverse of the executor package's clipToMap: it
// rebuilds a store.Clip from the plain map a persisted undo payload
// carries, including restoring the JSON-number-as-float64 fields
// encoding/json produces on decode.
func clipFromMap(m map[string]any) (*store.Clip, error) {
	id, _ := m["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("clip map missing id")
	}
	c := &store.Clip{
		ID:                 id,
		ProjectID:          stringField(m, "project_id"),
		ClipKind:           store.ClipKind(stringField(m, "clip_kind")),
		Name:               stringField(m, "name"),
		OwnerSequenceID:    stringField(m, "owner_sequence_id"),
		TimelineStartFrame: intField(m, "timeline_start_frame"),
		DurationFrames:     intField(m, "duration_frames"),
		SourceInFrame:      intField(m, "source_in_frame"),
		SourceOutFrame:     intField(m, "source_out_frame"),
		FPSNumerator:       uint32(intField(m, "fps_numerator")),
		FPSDenominator:     uint32(intField(m, "fps_denominator")),
		Enabled:            boolField(m, "enabled"),
		Offline:            boolField(m, "offline"),
	}
	if v, ok := m["track_id"].(string); ok && v != "" {
		c.TrackID = &v
	}
	if v, ok := m["media_id"].(string); ok && v != "" {
		c.MediaID = &v
	}
	if v, ok := m["master_clip_id"].(string); ok && v != "" {
		c.MasterClipID = &v
	}
	return c, nil
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func boolField(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func intField(m map[string]any, key string) int64 {
	switch n := m[key].(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	default:
		return 0
	}
}
