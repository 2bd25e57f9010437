// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package mutator

import (
	"context"
	"fmt"

	"github.com/jvecore/editorcore/internal/rationaltime"
	"github.com/jvecore/editorcore/internal/store"
)

// PlanRipple cascade-shifts clips on trackID by shiftAmount starting at
// insertTime (spec.md §4.5.2). A clip straddling insertTime is split: the
// left half shortens in place, the right half is a new clip shifted by
// shiftAmount with its source-in advanced by the split offset.
//
// When shiftAmount is positive, the returned plan's per-clip mutation
// groups are ordered rightmost-clip-first, so applying them in order never
// creates a transient overlap.
func PlanRipple(ctx context.Context, q store.Querier, trackID string, insertTime, shiftAmount rationaltime.Value) (*Plan, error) {
	if !insertTime.Rate.Equal(shiftAmount.Rate) {
		return nil, fmt.Errorf("mutator: insertTime and shiftAmount must share a rate")
	}

	clips, err := store.ListClipsByTrack(ctx, q, trackID)
	if err != nil {
		return nil, fmt.Errorf("mutator: plan ripple: %w", err)
	}

	seqRate := insertTime.Rate
	insertFrame := insertTime.Frames
	shift := shiftAmount.Frames

	// groups[i] holds the mutation(s) for clips[i], preserving the
	// ascending-start processing order until the final reversal decision.
	var groups [][]Mutation

	for _, clip := range clips {
		clipStart := clip.TimelineStartFrame
		clipEnd := clip.TimelineEnd()

		switch {
		case clipStart >= insertFrame:
			shifted := cloneClip(clip)
			shifted.TimelineStartFrame = clipStart + shift
			groups = append(groups, []Mutation{{Op: OpUpdate, ClipID: clip.ID, Clip: shifted}})

		case clipStart < insertFrame && insertFrame < clipEnd:
			mediaRate := clip.Rate()
			splitOffset := insertFrame - clipStart

			// Right half is placed before the left half within the group: it
			// moves out of the way first, then the left half is finalized.
			var group []Mutation

			rightDuration := clipEnd - insertFrame
			if rightDuration >= 1 {
				right := cloneClip(clip)
				right.ID = newClipID()
				right.TimelineStartFrame = insertFrame + shift
				right.DurationFrames = rightDuration
				right.SourceInFrame = clip.SourceInFrame + floorRescaleFrames(splitOffset, seqRate, mediaRate)
				right.SourceOutFrame = clip.SourceOutFrame
				group = append(group, Mutation{Op: OpInsert, ClipID: right.ID, Clip: right})
			}

			left := cloneClip(clip)
			leftDuration := splitOffset
			if leftDuration < 1 {
				group = append(group, Mutation{Op: OpDelete, ClipID: clip.ID})
			} else {
				left.DurationFrames = leftDuration
				left.SourceOutFrame = left.SourceInFrame + floorRescaleFrames(leftDuration, seqRate, mediaRate)
				group = append(group, Mutation{Op: OpUpdate, ClipID: clip.ID, Clip: left})
			}
			groups = append(groups, group)

		default:
			// clipEnd <= insertFrame: entirely before the insert point, untouched.
		}
	}

	if shift > 0 {
		reverseGroups(groups)
	}

	plan := &Plan{}
	for _, g := range groups {
		plan.Mutations = append(plan.Mutations, g...)
	}
	return plan, nil
}

func reverseGroups(groups [][]Mutation) {
	for i, j := 0, len(groups)-1; i < j; i, j = i+1, j-1 {
		groups[i], groups[j] = groups[j], groups[i]
	}
}
