// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package constraints

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jvecore/editorcore/internal/rationaltime"
	"github.com/jvecore/editorcore/internal/store"
)

func clip(id string, trackID string, start, dur, sourceIn int64) *store.Clip {
	return &store.Clip{
		ID: id, TrackID: &trackID, TimelineStartFrame: start, DurationFrames: dur,
		SourceInFrame: sourceIn, SourceOutFrame: sourceIn + dur, FPSNumerator: 30, FPSDenominator: 1,
	}
}

func TestCalculateTrimRange_OutEdgeBoundedByRightNeighbor(t *testing.T) {
	a := clip("A", "t1", 0, 100, 0)
	b := clip("B", "t1", 150, 100, 0)

	r := CalculateTrimRange(a, EdgeOut, []*store.Clip{a, b}, false)
	require.Equal(t, int64(50), r.MaxDelta)
	require.True(t, r.LimitRight)
}

func TestCalculateTrimRange_GapAfterIgnoresNeighborBound(t *testing.T) {
	a := clip("A", "t1", 0, 100, 0)
	b := clip("B", "t1", 100, 100, 0)

	r := CalculateTrimRange(a, EdgeGapAfter, []*store.Clip{a, b}, false)
	require.Greater(t, r.MaxDelta, int64(1000))
}

func TestCalculateTrimRange_InEdgeBoundedBySourceInFrame(t *testing.T) {
	a := clip("A", "t1", 50, 100, 20)

	r := CalculateTrimRange(a, EdgeIn, []*store.Clip{a}, false)
	require.Equal(t, int64(-20), r.MinDelta)
}

func TestClampTrimDelta_ClampsToMaxWhenBeyondRange(t *testing.T) {
	a := clip("A", "t1", 0, 100, 0)
	b := clip("B", "t1", 150, 100, 0)

	got := ClampTrimDelta(a, EdgeOut, 200, []*store.Clip{a, b}, rationaltime.Rate{Num: 30, Den: 1})
	require.Equal(t, int64(50), got)
}

func TestCalculateMoveRange_BoundedByBothNeighbors(t *testing.T) {
	a := clip("A", "t1", 0, 50, 0)
	mid := clip("MID", "t1", 100, 50, 0)
	c := clip("C", "t1", 300, 50, 0)

	r := CalculateMoveRange(mid, "t1", []*store.Clip{a, mid, c})
	require.Equal(t, int64(50), r.MinTime)
	require.Equal(t, int64(250), r.MaxTime)
	require.Equal(t, "A", r.BlockingLeft)
	require.Equal(t, "C", r.BlockingRight)
}

func TestCheckMoveCollision_RejectsBeforeTimelineStart(t *testing.T) {
	r := MoveRange{MinTime: 0, MaxTime: 1000}
	c := CheckMoveCollision(r, -1)
	require.NotNil(t, c)
	require.Equal(t, CollisionTimelineStart, c.Kind)
}
