// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package executor

import (
	"context"
	"fmt"

	"github.com/jvecore/editorcore/internal/command"
	"github.com/jvecore/editorcore/internal/constraints"
	"github.com/jvecore/editorcore/internal/store"
)

func init() {
	Register(command.TypeNudge, Nudge)
}

// Nudge shifts the selected clips by nudge_amount_frames, clamping each
// clip's delta against its own move range so no clip crosses a neighbor
// it doesn't also own (spec.md §4.6 "Nudge", §4.7).
func Nudge(ctx context.Context, q store.Querier, ec Context, params map[string]any) (map[string]any, error) {
	clipIDsRaw, _ := params["clip_ids"].([]any)
	amount, ok := numberToInt64(params["nudge_amount_frames"])
	if !ok {
		return nil, fmt.Errorf("executor: nudge: nudge_amount_frames must be numeric")
	}

	clipIDs := make([]string, 0, len(clipIDsRaw))
	for _, v := range clipIDsRaw {
		if s, ok := v.(string); ok {
			clipIDs = append(clipIDs, s)
		}
	}

	originals, err := snapshotClips(ctx, q, clipIDs)
	if err != nil {
		return nil, fmt.Errorf("executor: nudge: %w", err)
	}

	selected := map[string]bool{}
	for _, id := range clipIDs {
		selected[id] = true
	}

	for _, clip := range originals {
		if clip.TrackID == nil {
			continue
		}
		allOnTrack, err := store.ListClipsByTrack(ctx, q, *clip.TrackID)
		if err != nil {
			return nil, fmt.Errorf("executor: nudge: list track clips: %w", err)
		}
		// Exclude the other selected clips from collision checks so a
		// contiguous selection can nudge together.
		filtered := allOnTrack[:0:0]
		for _, c := range allOnTrack {
			if c.ID == clip.ID || !selected[c.ID] {
				filtered = append(filtered, c)
			}
		}

		moveRange := constraints.CalculateMoveRange(clip, *clip.TrackID, filtered)
		newStart := clip.TimelineStartFrame + amount
		if newStart < moveRange.MinTime {
			newStart = moveRange.MinTime
		}
		if newStart > moveRange.MaxTime {
			newStart = moveRange.MaxTime
		}

		updated := *clip
		updated.TimelineStartFrame = newStart
		if err := store.UpdateClip(ctx, q, &updated); err != nil {
			return nil, fmt.Errorf("executor: nudge: update %s: %w", clip.ID, err)
		}
	}

	return map[string]any{"original_states": clipsToMaps(originals)}, nil
}
