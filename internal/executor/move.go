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
	Register(command.TypeMoveClipToTrack, MoveClipToTrack)
}

// MoveClipToTrack reassigns a clip's track_id, resolving occlusion
// against whatever already occupies its interval on the target track
// (spec.md §4.6 "MoveClipToTrack").
func MoveClipToTrack(ctx context.Context, q store.Querier, ec Context, params map[string]any) (map[string]any, error) {
	clipID, _ := params["clip_id"].(string)
	targetTrackID, _ := params["target_track_id"].(string)

	clip, err := store.GetClip(ctx, q, clipID)
	if err != nil {
		return nil, fmt.Errorf("executor: move clip to track: load %s: %w", clipID, err)
	}
	originalTrackID := ""
	if clip.TrackID != nil {
		originalTrackID = *clip.TrackID
	}

	_, seq, err := sequenceRateForTrack(ctx, q, targetTrackID)
	if err != nil {
		return nil, err
	}
	rate := seq.Rate()

	plan, err := mutator.PlanOcclusion(ctx, q, targetTrackID,
		rationaltime.Value{Frames: clip.TimelineStartFrame, Rate: rate},
		rationaltime.Value{Frames: clip.DurationFrames, Rate: rate}, clipID)
	if err != nil {
		return nil, fmt.Errorf("executor: move clip to track: plan occlusion: %w", err)
	}
	originalStates, newClipIDs, err := snapshotPlanTargets(ctx, q, plan)
	if err != nil {
		return nil, fmt.Errorf("executor: move clip to track: %w", err)
	}
	if err := applyPlan(ctx, q, plan); err != nil {
		return nil, fmt.Errorf("executor: move clip to track: apply occlusion: %w", err)
	}

	updated := *clip
	updated.TrackID = &targetTrackID
	if err := store.UpdateClip(ctx, q, &updated); err != nil {
		return nil, fmt.Errorf("executor: move clip to track: update clip: %w", err)
	}
	originalStates = append(originalStates, clip)

	return map[string]any{
		"original_track_id":  originalTrackID,
		"executed_mutations": mutationsToMaps(plan),
		"new_clip_ids":       newClipIDs,
		"original_states":    clipsToMaps(originalStates),
	}, nil
}
