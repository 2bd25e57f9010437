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

// PlanOcclusion resolves how a new clip's footprint trims, splits, or
// deletes existing clips on trackID (spec.md §4.5.1). timelineStart and
// duration are rational values at the sequence's rate. excludeClipID, if
// non-empty, is skipped (used when resizing an existing clip in place).
func PlanOcclusion(ctx context.Context, q store.Querier, trackID string, timelineStart, duration rationaltime.Value, excludeClipID string) (*Plan, error) {
	if !timelineStart.Rate.Equal(duration.Rate) {
		return nil, fmt.Errorf("mutator: timelineStart and duration must share a rate")
	}
	if duration.Frames < 1 {
		return nil, fmt.Errorf("mutator: duration must be >= 1 frame, got %d", duration.Frames)
	}

	clips, err := store.ListClipsByTrack(ctx, q, trackID)
	if err != nil {
		return nil, fmt.Errorf("mutator: plan occlusion: %w", err)
	}

	newStart := timelineStart.Frames
	newEnd := newStart + duration.Frames
	seqRate := timelineStart.Rate

	plan := &Plan{}

	for _, clip := range clips {
		if excludeClipID != "" && clip.ID == excludeClipID {
			continue
		}
		clipStart := clip.TimelineStartFrame
		clipEnd := clip.TimelineEnd()

		// No overlap with the new interval: leave untouched.
		if clipEnd <= newStart || clipStart >= newEnd {
			continue
		}

		mediaRate := clip.Rate()

		switch {
		case newStart <= clipStart && newEnd >= clipEnd:
			// Fully covered.
			plan.delete(clip.ID)

		case clipStart < newStart && newStart <= clipEnd && clipEnd <= newEnd:
			// Overlap on tail: trim clip's end back to newStart.
			trimmed := cloneClip(clip)
			newDuration := newStart - clipStart
			if newDuration < 1 {
				plan.delete(clip.ID)
				continue
			}
			trimmed.DurationFrames = newDuration
			trimmed.SourceOutFrame = trimmed.SourceInFrame + floorRescaleFrames(newDuration, seqRate, mediaRate)
			plan.update(trimmed)

		case newStart <= clipStart && clipStart < newEnd && newEnd < clipEnd:
			// Overlap on head: trim clip's start forward to newEnd.
			trimmed := cloneClip(clip)
			newDuration := clipEnd - newEnd
			if newDuration < 1 {
				plan.delete(clip.ID)
				continue
			}
			advance := floorRescaleFrames(newEnd-clipStart, seqRate, mediaRate)
			trimmed.TimelineStartFrame = newEnd
			trimmed.DurationFrames = newDuration
			trimmed.SourceInFrame = clip.SourceInFrame + advance
			// SourceOutFrame is preserved.
			plan.update(trimmed)

		case clipStart < newStart && clipEnd > newEnd:
			// Straddles: split into a trimmed left half (keeps the id) and
			// a new right half.
			left := cloneClip(clip)
			leftDuration := newStart - clipStart
			if leftDuration < 1 {
				plan.delete(clip.ID)
			} else {
				left.DurationFrames = leftDuration
				left.SourceOutFrame = left.SourceInFrame + floorRescaleFrames(leftDuration, seqRate, mediaRate)
				plan.update(left)
			}

			rightDuration := clipEnd - newEnd
			if rightDuration >= 1 {
				right := cloneClip(clip)
				right.ID = newClipID()
				advance := floorRescaleFrames(newEnd-clipStart, seqRate, mediaRate)
				right.TimelineStartFrame = newEnd
				right.DurationFrames = rightDuration
				right.SourceInFrame = clip.SourceInFrame + advance
				right.SourceOutFrame = clip.SourceOutFrame
				plan.insert(right)
			}

		default:
			// Unreachable given the overlap test above, but guard against
			// silently dropping an overlapping clip if the classification
			// above has a gap.
			return nil, fmt.Errorf("mutator: clip %s overlaps [%d,%d) but matched no occlusion case", clip.ID, newStart, newEnd)
		}
	}

	return plan, nil
}
