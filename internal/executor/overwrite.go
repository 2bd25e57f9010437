// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package executor

import (
	"context"
	"fmt"

	"github.com/jvecore/editorcore/internal/command"
	"github.com/jvecore/editorcore/internal/mutator"
	"github.com/jvecore/editorcore/internal/rationaltime"
	"github.com/jvecore/editorcore/internal/store"
)

func init() {
	Register(command.TypeOverwrite, Overwrite)
}

// Overwrite places a new clip at overwrite_time, resolving occlusion
// against whatever it lands on top of (spec.md §4.6 "Overwrite").
func Overwrite(ctx context.Context, q store.Querier, ec Context, params map[string]any) (map[string]any, error) {
	trackID, _ := params["track_id"].(string)
	clipPayload, _ := params["clip"].(map[string]any)

	track, seq, err := sequenceRateForTrack(ctx, q, trackID)
	if err != nil {
		return nil, err
	}
	rate := seq.Rate()

	startFrame, ok := numberToInt64(params["overwrite_time"])
	if !ok {
		return nil, fmt.Errorf("executor: overwrite: overwrite_time must be a frame count")
	}
	durationFrames, ok := numberToInt64(clipPayload["duration_frames"])
	if !ok {
		return nil, fmt.Errorf("executor: overwrite: clip.duration_frames must be numeric")
	}

	plan, err := mutator.PlanOcclusion(ctx, q, trackID,
		rationaltime.Value{Frames: startFrame, Rate: rate},
		rationaltime.Value{Frames: durationFrames, Rate: rate}, "")
	if err != nil {
		return nil, fmt.Errorf("executor: overwrite: plan occlusion: %w", err)
	}
	originalStates, newClipIDs, err := snapshotPlanTargets(ctx, q, plan)
	if err != nil {
		return nil, fmt.Errorf("executor: overwrite: %w", err)
	}
	if err := applyPlan(ctx, q, plan); err != nil {
		return nil, fmt.Errorf("executor: overwrite: apply occlusion: %w", err)
	}

	newClip := clipFromPayload(clipPayload, ec, track.ID, seq, startFrame, durationFrames)
	if err := store.InsertClip(ctx, q, newClip); err != nil {
		return nil, fmt.Errorf("executor: overwrite: insert clip: %w", err)
	}
	newClipIDs = append(newClipIDs, newClip.ID)

	return map[string]any{
		"new_clip_id":        newClip.ID,
		"new_clips":          []map[string]any{clipToMap(newClip)},
		"executed_mutations": mutationsToMaps(plan),
		"new_clip_ids":       newClipIDs,
		"original_states":    clipsToMaps(originalStates),
	}, nil
}
