// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

// Package executor implements the behavioral contract of each command
// type (spec.md §4.6 "Key executors"). Every executor runs inside the
// command manager's transaction, applies a mutator plan or direct store
// writes, and returns a persisted undo/redo payload.
package executor

import (
	"context"
	"fmt"
	"sync"

	"github.com/jvecore/editorcore/internal/mutator"
	"github.com/jvecore/editorcore/internal/store"
)

// Context carries the ambient identifiers an executor needs beyond its
// own parameters (spec.md §4.6 execution pipeline).
type Context struct {
	ProjectID            string
	SequenceID            string
	ParentSequenceNumber *int64
	StackID              string
}

// Executor applies one command's effect within an open transaction and
// returns the persisted undo/redo payload.
type Executor func(ctx context.Context, q store.Querier, ec Context, params map[string]any) (persisted map[string]any, err error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Executor{}
)

// Register adds an executor to the global registry, keyed by command
// type name. Panics on duplicate registration.
func Register(commandType string, fn Executor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[commandType]; exists {
		panic("executor: already registered: " + commandType)
	}
	registry[commandType] = fn
}

// Lookup returns the registered executor for a command type.
func Lookup(commandType string) (Executor, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	fn, ok := registry[commandType]
	return fn, ok
}

// sequenceRateForTrack loads a track and the sequence it belongs to.
func sequenceRateForTrack(ctx context.Context, q store.Querier, trackID string) (store.Track, store.Sequence, error) {
	track, err := store.GetTrackQ(ctx, q, trackID)
	if err != nil {
		return store.Track{}, store.Sequence{}, fmt.Errorf("executor: load track %s: %w", trackID, err)
	}
	seq, err := store.GetSequence(ctx, q, track.SequenceID)
	if err != nil {
		return store.Track{}, store.Sequence{}, fmt.Errorf("executor: load sequence %s: %w", track.SequenceID, err)
	}
	return *track, *seq, nil
}

// applyPlan writes every mutation in plan to the store in order.
func applyPlan(ctx context.Context, q store.Querier, plan *mutator.Plan) error {
	for _, m := range plan.Mutations {
		switch m.Op {
		case mutator.OpInsert:
			if err := store.InsertClip(ctx, q, m.Clip); err != nil {
				return err
			}
		case mutator.OpUpdate:
			if err := store.UpdateClip(ctx, q, m.Clip); err != nil {
				return err
			}
		case mutator.OpDelete:
			if err := store.DeleteClip(ctx, q, m.ClipID); err != nil {
				return err
			}
		default:
			return fmt.Errorf("executor: unknown mutation op %q", m.Op)
		}
	}
	return nil
}

// snapshotClips loads the current row for each clip id, used to build an
// undo payload's original_states before an executor mutates them.
func snapshotClips(ctx context.Context, q store.Querier, ids []string) ([]*store.Clip, error) {
	out := make([]*store.Clip, 0, len(ids))
	for _, id := range ids {
		c, err := store.GetClip(ctx, q, id)
		if err != nil {
			return nil, fmt.Errorf("executor: snapshot clip %s: %w", id, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// snapshotPlanTargets loads the pre-mutation row for every clip a plan's
// Update/Delete mutations touch, and collects the ids of clips its Insert
// mutations create. Every executor that applies a mutator.Plan calls this
// before applyPlan, so its persisted payload's original_states/new_clip_ids
// are enough for the command manager to reverse the command generically
// (spec.md §4.6 "persisted ... enough undo payload to deterministically
// reverse the operation").
func snapshotPlanTargets(ctx context.Context, q store.Querier, plan *mutator.Plan) (originalStates []*store.Clip, newClipIDs []string, err error) {
	for _, m := range plan.Mutations {
		switch m.Op {
		case mutator.OpInsert:
			newClipIDs = append(newClipIDs, m.ClipID)
		case mutator.OpUpdate, mutator.OpDelete:
			c, err := store.GetClip(ctx, q, m.ClipID)
			if err != nil {
				return nil, nil, fmt.Errorf("executor: snapshot plan target %s: %w", m.ClipID, err)
			}
			originalStates = append(originalStates, c)
		}
	}
	return originalStates, newClipIDs, nil
}

// clipToMap renders a clip row as a plain map for inclusion in a
// persisted undo payload, which the command manager serializes to JSON.
func clipToMap(c *store.Clip) map[string]any {
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

func clipsToMaps(clips []*store.Clip) []map[string]any {
	out := make([]map[string]any, len(clips))
	for i, c := range clips {
		out[i] = clipToMap(c)
	}
	return out
}

// mediaToMap renders a media row as a plain map. Executors that create
// media rows outside a mutator.Plan (ImportMedia) include the full row
// under its own key so the read-model projector can mirror it without
// a second read of the primary store after commit (spec.md §4.11).
func mediaToMap(m *store.Media) map[string]any {
	return map[string]any{
		"id":              m.ID,
		"project_id":      m.ProjectID,
		"name":            m.Name,
		"file_path":       m.FilePath,
		"duration_frames": m.DurationFrames,
		"fps_numerator":   m.FPSNumerator,
		"fps_denominator": m.FPSDenominator,
		"width":           m.Width,
		"height":          m.Height,
		"audio_channels":  m.AudioChannels,
		"codec":           m.Codec,
		"metadata_json":   m.MetadataJSON,
	}
}

func numberToInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	case float32:
		return int64(n), true
	default:
		return 0, false
	}
}
