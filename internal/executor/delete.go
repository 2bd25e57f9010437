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
	Register(command.TypeDeleteClip, DeleteClip)
	Register(command.TypeRippleDelete, RippleDelete)
}

// DeleteClip removes a single clip, leaving a gap behind (spec.md §4.6
// "DeleteClip").
func DeleteClip(ctx context.Context, q store.Querier, ec Context, params map[string]any) (map[string]any, error) {
	clipID, _ := params["clip_id"].(string)
	clip, err := store.GetClip(ctx, q, clipID)
	if err != nil {
		return nil, fmt.Errorf("executor: delete clip: load %s: %w", clipID, err)
	}
	if err := store.DeleteClip(ctx, q, clipID); err != nil {
		return nil, fmt.Errorf("executor: delete clip: %w", err)
	}
	return map[string]any{
		"original_state":  clipToMap(clip),
		"original_states": []map[string]any{clipToMap(clip)},
	}, nil
}

// RippleDelete deletes the target clip(s), then ripples every later clip
// on the same track backward by the total deleted duration (spec.md
// §4.6 "RippleDelete / RippleDeleteSelection").
func RippleDelete(ctx context.Context, q store.Querier, ec Context, params map[string]any) (map[string]any, error) {
	trackID, _ := params["track_id"].(string)
	clipIDsRaw, _ := params["clip_ids"].([]any)

	clipIDs := make([]string, 0, len(clipIDsRaw))
	for _, v := range clipIDsRaw {
		if s, ok := v.(string); ok {
			clipIDs = append(clipIDs, s)
		}
	}

	originals, err := snapshotClips(ctx, q, clipIDs)
	if err != nil {
		return nil, fmt.Errorf("executor: ripple delete: %w", err)
	}

	var earliestStart int64
	var totalDuration int64
	for i, c := range originals {
		if i == 0 || c.TimelineStartFrame < earliestStart {
			earliestStart = c.TimelineStartFrame
		}
		totalDuration += c.DurationFrames
	}

	for _, id := range clipIDs {
		if err := store.DeleteClip(ctx, q, id); err != nil {
			return nil, fmt.Errorf("executor: ripple delete: delete %s: %w", id, err)
		}
	}

	_, seq, err := sequenceRateForTrack(ctx, q, trackID)
	if err != nil {
		return nil, err
	}
	rate := seq.Rate()

	plan, err := mutator.PlanRipple(ctx, q, trackID,
		rationaltime.Value{Frames: earliestStart, Rate: rate},
		rationaltime.Value{Frames: -totalDuration, Rate: rate})
	if err != nil {
		return nil, fmt.Errorf("executor: ripple delete: plan ripple: %w", err)
	}
	rippleOriginals, newClipIDs, err := snapshotPlanTargets(ctx, q, plan)
	if err != nil {
		return nil, fmt.Errorf("executor: ripple delete: %w", err)
	}
	if err := applyPlan(ctx, q, plan); err != nil {
		return nil, fmt.Errorf("executor: ripple delete: apply ripple: %w", err)
	}

	allOriginals := append(originals, rippleOriginals...)

	return map[string]any{
		"original_states":    clipsToMaps(allOriginals),
		"executed_mutations": mutationsToMaps(plan),
		"new_clip_ids":       newClipIDs,
	}, nil
}
