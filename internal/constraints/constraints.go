// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

// Package constraints computes the feasible range for a trim or move
// edit before it is attempted, so the executor can clamp a caller's
// requested delta to something the mutator can apply without violating
// minimum-duration, source-range, or adjacent-clip bounds (spec.md §4.7).
package constraints

import (
	"github.com/jvecore/editorcore/internal/rationaltime"
	"github.com/jvecore/editorcore/internal/store"
)

// Edge identifies which end of a clip is being trimmed.
type Edge string

const (
	EdgeIn       Edge = "in"
	EdgeOut      Edge = "out"
	EdgeGapBefore Edge = "gap_before"
	EdgeGapAfter  Edge = "gap_after"
)

// TrimRange is the feasible delta window for trimming one edge of a clip.
type TrimRange struct {
	MinDelta   int64
	MaxDelta   int64
	LimitLeft  bool
	LimitRight bool
}

// MoveRange is the feasible window for a clip's new timeline start.
type MoveRange struct {
	MinTime      int64
	MaxTime      int64
	BlockingLeft  string
	BlockingRight string
}

// CollisionKind describes why a requested trim or move is infeasible.
type CollisionKind string

const (
	CollisionMinDuration CollisionKind = "min_duration"
	CollisionSourceBound CollisionKind = "source_bound"
	CollisionTimelineStart CollisionKind = "timeline_start"
	CollisionAdjacentClip CollisionKind = "adjacent_clip"
)

// Collision is a typed description of why an edit was rejected.
type Collision struct {
	Kind        CollisionKind
	BlockingClipID string
}

// neighborsOnTrack returns, among allClips on clip's track (or among every
// clip in allClips when allTracks is set), the nearest clip ending
// at-or-before clip's start, and the nearest clip starting at-or-after
// clip's end. Either may be nil.
func neighborsOnTrack(clip *store.Clip, allClips []*store.Clip, allTracks bool) (left, right *store.Clip) {
	for _, c := range allClips {
		if c.ID == clip.ID {
			continue
		}
		if !allTracks && (clip.TrackID == nil || c.TrackID == nil || *c.TrackID != *clip.TrackID) {
			continue
		}
		if c.TimelineEnd() <= clip.TimelineStartFrame {
			if left == nil || c.TimelineEnd() > left.TimelineEnd() {
				left = c
			}
		}
		if c.TimelineStartFrame >= clip.TimelineEnd() {
			if right == nil || c.TimelineStartFrame < right.TimelineStartFrame {
				right = c
			}
		}
	}
	return left, right
}

// CalculateTrimRange computes the feasible delta window for trimming
// clip's edge, given every clip on the relevant track(s) (spec.md §4.7).
// checkAllTracks widens the adjacency search to every track a ripple
// trim would also touch; the single-track search already covers the
// in-place (non-ripple) case.
func CalculateTrimRange(clip *store.Clip, edge Edge, allClips []*store.Clip, checkAllTracks bool) TrimRange {
	left, right := neighborsOnTrack(clip, allClips, checkAllTracks)

	// min duration: the clip must keep at least 1 frame.
	minDurationDelta := -(clip.DurationFrames - 1)

	switch edge {
	case EdgeIn:
		// Increasing source_in (positive delta) shortens the clip from the
		// left; it's bounded below by -clip.SourceInFrame (can't go before
		// frame 0 of the source) and above by leaving >=1 frame.
		minDelta := -clip.SourceInFrame
		maxDelta := clip.DurationFrames - 1
		limitLeft := false
		if left != nil {
			// Can't move the start earlier than the left neighbor's end
			// (that's a move, not this clip's own trim), so the in edge
			// trimming backward is bounded by 0 relative to the timeline.
			backLimit := -(clip.TimelineStartFrame - left.TimelineEnd())
			if backLimit > minDelta {
				minDelta = backLimit
				limitLeft = true
			}
		} else if -clip.TimelineStartFrame > minDelta {
			minDelta = -clip.TimelineStartFrame
		}
		if minDurationDelta > minDelta {
			minDelta = minDurationDelta
		}
		return TrimRange{MinDelta: minDelta, MaxDelta: maxDelta, LimitLeft: limitLeft}

	case EdgeOut:
		// Positive delta extends the clip's duration; bounded above only by
		// the right neighbor's start (the source's remaining media is not
		// checked here).
		minDelta := minDurationDelta
		maxDelta := int64(1<<62) - 1
		limitRight := false
		if right != nil {
			gap := right.TimelineStartFrame - clip.TimelineEnd()
			if gap < maxDelta {
				maxDelta = gap
				limitRight = true
			}
		}
		return TrimRange{MinDelta: minDelta, MaxDelta: maxDelta, LimitRight: limitRight}

	default:
		// gap_before / gap_after: ripple trims that also shift a neighbor;
		// bounded only by this clip's own minimum duration until the
		// adjacent gap has been fully consumed.
		return TrimRange{MinDelta: minDurationDelta, MaxDelta: int64(1 << 62)}
	}
}

// CalculateMoveRange computes the feasible window for relocating a clip
// on a track without overlapping its neighbors (spec.md §4.7).
func CalculateMoveRange(clip *store.Clip, trackID string, allClips []*store.Clip) MoveRange {
	var left, right *store.Clip
	for _, c := range allClips {
		if c.ID == clip.ID || c.TrackID == nil || *c.TrackID != trackID {
			continue
		}
		if c.TimelineEnd() <= clip.TimelineStartFrame && (left == nil || c.TimelineEnd() > left.TimelineEnd()) {
			left = c
		}
		if c.TimelineStartFrame >= clip.TimelineEnd() && (right == nil || c.TimelineStartFrame < right.TimelineStartFrame) {
			right = c
		}
	}

	mr := MoveRange{MinTime: 0, MaxTime: int64(1 << 62)}
	if left != nil {
		mr.MinTime = left.TimelineEnd()
		mr.BlockingLeft = left.ID
	}
	if right != nil {
		mr.MaxTime = right.TimelineStartFrame - clip.DurationFrames
		mr.BlockingRight = right.ID
	}
	return mr
}

// CheckTrimCollision reports why a requested delta falls outside a trim
// range, or nil if it's feasible.
func CheckTrimCollision(r TrimRange, delta int64) *Collision {
	if delta < r.MinDelta {
		if r.LimitLeft {
			return &Collision{Kind: CollisionAdjacentClip}
		}
		return &Collision{Kind: CollisionMinDuration}
	}
	if delta > r.MaxDelta {
		if r.LimitRight {
			return &Collision{Kind: CollisionAdjacentClip}
		}
		return &Collision{Kind: CollisionSourceBound}
	}
	return nil
}

// CheckMoveCollision reports why a requested new start time falls
// outside a move range, or nil if it's feasible.
func CheckMoveCollision(r MoveRange, newStart int64) *Collision {
	if newStart < 0 && r.BlockingLeft == "" {
		return &Collision{Kind: CollisionTimelineStart}
	}
	if newStart < r.MinTime {
		return &Collision{Kind: CollisionAdjacentClip, BlockingClipID: r.BlockingLeft}
	}
	if newStart > r.MaxTime {
		return &Collision{Kind: CollisionAdjacentClip, BlockingClipID: r.BlockingRight}
	}
	return nil
}

// ClampTrimDelta clamps delta into clip's feasible trim range for edge,
// snapping to the nearest feasible whole frame (spec.md §4.7).
func ClampTrimDelta(clip *store.Clip, edge Edge, delta int64, allClips []*store.Clip, rate rationaltime.Rate) int64 {
	r := CalculateTrimRange(clip, edge, allClips, false)
	if delta < r.MinDelta {
		return r.MinDelta
	}
	if delta > r.MaxDelta {
		return r.MaxDelta
	}
	return delta
}
