// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package snap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jvecore/editorcore/internal/rationaltime"
	"github.com/jvecore/editorcore/internal/store"
)

var rate30 = rationaltime.Rate{Num: 30, Den: 1}

func clip(id, trackID string, start, dur int64) *store.Clip {
	return &store.Clip{
		ID: id, TrackID: &trackID, TimelineStartFrame: start, DurationFrames: dur,
		FPSNumerator: 30, FPSDenominator: 1,
	}
}

// pixelsPerFrame pins a trivial 1px-per-frame mapping so tests can reason
// about pixel tolerance directly in frame counts.
func pixelsPerFrame(v rationaltime.Value) float64 {
	return float64(v.Frames)
}

func TestCandidates_EmitsBothEdgesPerClip(t *testing.T) {
	clips := []*store.Clip{clip("A", "t1", 0, 100)}
	cands := Candidates(clips, Options{})
	require.Len(t, cands, 2)
	require.Equal(t, SourceClipStart, cands[0].Source)
	require.Equal(t, int64(0), cands[0].Time.Frames)
	require.Equal(t, SourceClipEnd, cands[1].Source)
	require.Equal(t, int64(100), cands[1].Time.Frames)
}

func TestCandidates_ExcludesClipWholesale(t *testing.T) {
	clips := []*store.Clip{clip("A", "t1", 0, 100), clip("B", "t1", 200, 50)}
	cands := Candidates(clips, Options{ExcludedClipIDs: map[string]bool{"A": true}})
	require.Len(t, cands, 2)
	for _, c := range cands {
		require.Equal(t, "B", c.ClipID)
	}
}

func TestCandidates_ExcludesSpecificEdge(t *testing.T) {
	clips := []*store.Clip{clip("A", "t1", 0, 100)}
	cands := Candidates(clips, Options{
		ExcludedEdges: map[ExcludedEdge]bool{{ClipID: "A", Edge: "in"}: true},
	})
	require.Len(t, cands, 1)
	require.Equal(t, "out", cands[0].Edge)
}

func TestCandidates_IncludesPlayheadWhenRequested(t *testing.T) {
	clips := []*store.Clip{clip("A", "t1", 0, 100)}
	ph := rationaltime.FromFrames(50, rate30)
	cands := Candidates(clips, Options{IncludePlayhead: true, Playhead: ph})
	require.Len(t, cands, 3)
	require.Equal(t, SourcePlayhead, cands[1].Source)
}

func TestCandidates_SortedByTime(t *testing.T) {
	clips := []*store.Clip{clip("B", "t1", 200, 50), clip("A", "t1", 0, 100)}
	cands := Candidates(clips, Options{})
	for i := 1; i < len(cands); i++ {
		require.LessOrEqual(t, cands[i-1].Time.Frames, cands[i].Time.Frames)
	}
}

func TestNearest_WithinTolerance(t *testing.T) {
	cands := []Candidate{{Time: rationaltime.FromFrames(100, rate30), Source: SourceClipStart, ClipID: "A", Edge: "in"}}
	pointer := rationaltime.FromFrames(105, rate30)

	got, ok := Nearest(cands, pointer, pixelsPerFrame, 12)
	require.True(t, ok)
	require.Equal(t, "A", got.ClipID)
}

func TestNearest_OutsideTolerance(t *testing.T) {
	cands := []Candidate{{Time: rationaltime.FromFrames(100, rate30), Source: SourceClipStart, ClipID: "A", Edge: "in"}}
	pointer := rationaltime.FromFrames(130, rate30)

	_, ok := Nearest(cands, pointer, pixelsPerFrame, 12)
	require.False(t, ok)
}

func TestNearest_PicksClosestAmongSeveral(t *testing.T) {
	cands := []Candidate{
		{Time: rationaltime.FromFrames(95, rate30), Source: SourceClipStart, ClipID: "A", Edge: "in"},
		{Time: rationaltime.FromFrames(102, rate30), Source: SourceClipEnd, ClipID: "B", Edge: "out"},
	}
	pointer := rationaltime.FromFrames(100, rate30)

	got, ok := Nearest(cands, pointer, pixelsPerFrame, 12)
	require.True(t, ok)
	require.Equal(t, "B", got.ClipID)
}

func TestNearestWithDefaultTolerance_Uses12Pixels(t *testing.T) {
	cands := []Candidate{{Time: rationaltime.FromFrames(112, rate30), Source: SourceClipStart, ClipID: "A", Edge: "in"}}
	pointer := rationaltime.FromFrames(100, rate30)

	got, ok := NearestWithDefaultTolerance(cands, pointer, pixelsPerFrame)
	require.True(t, ok)
	require.Equal(t, "A", got.ClipID)

	far := rationaltime.FromFrames(113, rate30)
	cands[0].Time = far
	_, ok = NearestWithDefaultTolerance(cands, pointer, pixelsPerFrame)
	require.False(t, ok)
}

func TestExcludedEdge_DoesNotAffectOtherClips(t *testing.T) {
	clips := []*store.Clip{clip("A", "t1", 0, 100), clip("B", "t1", 200, 50)}
	cands := Candidates(clips, Options{
		ExcludedEdges: map[ExcludedEdge]bool{{ClipID: "A", Edge: "out"}: true},
	})
	require.Len(t, cands, 3)
}
