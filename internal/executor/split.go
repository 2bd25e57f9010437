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
	"github.com/jvecore/editorcore/internal/store"
)

func init() {
	Register(command.TypeSplitClip, SplitClip)
}

// SplitClip closes clip_id's right edge at split_time and creates a new
// right-half clip with advanced source_in (spec.md §4.6 "SplitClip").
func SplitClip(ctx context.Context, q store.Querier, ec Context, params map[string]any) (map[string]any, error) {
	clipID, _ := params["clip_id"].(string)
	splitFrame, ok := numberToInt64(params["split_time"])
	if !ok {
		return nil, fmt.Errorf("executor: split clip: split_time must be a frame count")
	}

	clip, err := store.GetClip(ctx, q, clipID)
	if err != nil {
		return nil, fmt.Errorf("executor: split clip: load %s: %w", clipID, err)
	}
	if splitFrame <= clip.TimelineStartFrame || splitFrame >= clip.TimelineEnd() {
		return nil, fmt.Errorf("executor: split clip: split_time %d is outside clip %s's interval", splitFrame, clipID)
	}

	advance := splitFrame - clip.TimelineStartFrame
	leftDuration := advance
	rightDuration := clip.DurationFrames - advance

	original := clipToMap(clip)

	left := *clip
	left.DurationFrames = leftDuration
	left.SourceOutFrame = clip.SourceInFrame + advance
	if err := store.UpdateClip(ctx, q, &left); err != nil {
		return nil, fmt.Errorf("executor: split clip: update left half: %w", err)
	}

	right := *clip
	right.ID = uuid.NewString()
	right.TimelineStartFrame = splitFrame
	right.DurationFrames = rightDuration
	right.SourceInFrame = clip.SourceInFrame + advance
	right.SourceOutFrame = clip.SourceOutFrame
	if err := store.InsertClip(ctx, q, &right); err != nil {
		return nil, fmt.Errorf("executor: split clip: insert right half: %w", err)
	}

	return map[string]any{
		"right_clip_id":   right.ID,
		"right_clip":      clipToMap(&right),
		"left_clip":       clipToMap(&left),
		"original_state":  original,
		"new_clip_ids":    []string{right.ID},
		"original_states": []map[string]any{original},
	}, nil
}
