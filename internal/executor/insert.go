// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package executor

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jvecore/editorcore/internal/command"
	"github.com/jvecore/editorcore/internal/mutator"
	"github.com/jvecore/editorcore/internal/rationaltime"
	"github.com/jvecore/editorcore/internal/store"
)

func init() {
	Register(command.TypeInsert, Insert)
}

// Insert places a new clip at insert_time on track_id, rippling every
// later clip on the same track forward by the new clip's duration
// (spec.md §4.6 "Insert").
func Insert(ctx context.Context, q store.Querier, ec Context, params map[string]any) (map[string]any, error) {
	trackID, _ := params["track_id"].(string)
	clipPayload, _ := params["clip"].(map[string]any)
	advance, _ := params["advance_playhead"].(bool)

	track, seq, err := sequenceRateForTrack(ctx, q, trackID)
	if err != nil {
		return nil, err
	}
	rate := seq.Rate()

	insertFrame, ok := numberToInt64(params["insert_time"])
	if !ok {
		return nil, fmt.Errorf("executor: insert: insert_time must be a frame count")
	}
	durationFrames, ok := numberToInt64(clipPayload["duration_frames"])
	if !ok {
		return nil, fmt.Errorf("executor: insert: clip.duration_frames must be numeric")
	}

	plan, err := mutator.PlanRipple(ctx, q, trackID,
		rationaltime.Value{Frames: insertFrame, Rate: rate},
		rationaltime.Value{Frames: durationFrames, Rate: rate})
	if err != nil {
		return nil, fmt.Errorf("executor: insert: plan ripple: %w", err)
	}
	originalStates, newClipIDs, err := snapshotPlanTargets(ctx, q, plan)
	if err != nil {
		return nil, fmt.Errorf("executor: insert: %w", err)
	}
	if err := applyPlan(ctx, q, plan); err != nil {
		return nil, fmt.Errorf("executor: insert: apply ripple: %w", err)
	}

	newClip := clipFromPayload(clipPayload, ec, track.ID, seq, insertFrame, durationFrames)
	if err := store.InsertClip(ctx, q, newClip); err != nil {
		return nil, fmt.Errorf("executor: insert: insert clip: %w", err)
	}
	newClipIDs = append(newClipIDs, newClip.ID)

	if advance {
		if err := store.SetPlayhead(ctx, q, ec.SequenceID, insertFrame+durationFrames); err != nil {
			return nil, fmt.Errorf("executor: insert: advance playhead: %w", err)
		}
	}

	return map[string]any{
		"new_clip_id":        newClip.ID,
		"new_clips":          []map[string]any{clipToMap(newClip)},
		"executed_mutations": mutationsToMaps(plan),
		"new_clip_ids":       newClipIDs,
		"original_states":    clipsToMaps(originalStates),
	}, nil
}

func clipFromPayload(payload map[string]any, ec Context, trackID string, seq store.Sequence, start, duration int64) *store.Clip {
	c := &store.Clip{
		ID:                 uuid.NewString(),
		ProjectID:          ec.ProjectID,
		TrackID:            &trackID,
		ClipKind:           store.ClipTimeline,
		OwnerSequenceID:    seq.ID,
		TimelineStartFrame: start,
		DurationFrames:     duration,
		Enabled:            true,
	}
	if name, ok := payload["name"].(string); ok {
		c.Name = name
	}
	if mediaID, ok := payload["media_id"].(string); ok && mediaID != "" {
		c.MediaID = &mediaID
	}
	if masterClipID, ok := payload["master_clip_id"].(string); ok && masterClipID != "" {
		c.MasterClipID = &masterClipID
	}
	if v, ok := numberToInt64(payload["source_in_frame"]); ok {
		c.SourceInFrame = v
	}
	if v, ok := numberToInt64(payload["source_out_frame"]); ok {
		c.SourceOutFrame = v
	}
	if v, ok := numberToInt64(payload["fps_numerator"]); ok {
		c.FPSNumerator = uint32(v)
	} else {
		c.FPSNumerator = seq.FPSNumerator
	}
	if v, ok := numberToInt64(payload["fps_denominator"]); ok {
		c.FPSDenominator = uint32(v)
	} else {
		c.FPSDenominator = seq.FPSDenominator
	}
	return c
}

// mutationsToMaps renders a mutator plan as a JSON-friendly undo record:
// enough to know which clips were touched and what they became.
func mutationsToMaps(plan *mutator.Plan) []map[string]any {
	out := make([]map[string]any, 0, len(plan.Mutations))
	for _, m := range plan.Mutations {
		entry := map[string]any{"op": string(m.Op), "clip_id": m.ClipID}
		if m.Clip != nil {
			entry["clip"] = clipToMap(m.Clip)
		}
		out = append(out, entry)
	}
	return out
}
