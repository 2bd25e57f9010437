// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package accessor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jvecore/editorcore/internal/store"
)

func track(id string, kind store.TrackType, index int) *store.Track {
	return &store.Track{ID: id, TrackType: kind, TrackIndex: index, Name: id, Enabled: true}
}

func clip(id, trackID string, start, dur, sourceIn int64, mediaID *string) *store.Clip {
	return &store.Clip{
		ID: id, TrackID: &trackID, ClipKind: store.ClipTimeline, MediaID: mediaID,
		TimelineStartFrame: start, DurationFrames: dur, SourceInFrame: sourceIn,
		SourceOutFrame: sourceIn + dur, FPSNumerator: 30, FPSDenominator: 1,
	}
}

func strp(s string) *string { return &s }

func TestGetVideoAt_ReturnsEntryWithinInterval(t *testing.T) {
	v1 := track("v1", store.TrackVideo, 1)
	media := map[string]*store.Media{"m1": {ID: "m1", FilePath: "/media/a.mov"}}
	c := clip("A", v1.ID, 100, 50, 10, strp("m1"))

	a := New([]*store.Track{v1}, []*store.Clip{c}, media)
	entries := a.GetVideoAt(120)
	require.Len(t, entries, 1)
	require.Equal(t, "/media/a.mov", entries[0].MediaPath)
	require.Equal(t, int64(30), entries[0].SourceFrame) // 10 + (120-100)
}

func TestGetVideoAt_HalfOpenInterval(t *testing.T) {
	v1 := track("v1", store.TrackVideo, 1)
	c := clip("A", v1.ID, 100, 50, 0, nil)
	a := New([]*store.Track{v1}, []*store.Clip{c}, nil)

	require.Len(t, a.GetVideoAt(150), 0) // end is exclusive
	require.Len(t, a.GetVideoAt(149), 1)
	require.Len(t, a.GetVideoAt(99), 0)
	require.Len(t, a.GetVideoAt(100), 1)
}

func TestGetVideoAt_OrdersByTrackIndexPriority(t *testing.T) {
	v1 := track("v1", store.TrackVideo, 2)
	v2 := track("v2", store.TrackVideo, 1)
	top := clip("top", v2.ID, 0, 100, 0, nil)
	bottom := clip("bottom", v1.ID, 0, 100, 0, nil)

	a := New([]*store.Track{v1, v2}, []*store.Clip{bottom, top}, nil)
	entries := a.GetVideoAt(50)
	require.Len(t, entries, 2)
	require.Equal(t, "top", entries[0].Clip.ID)
	require.Equal(t, "bottom", entries[1].Clip.ID)
}

func TestGetAudioAt_IgnoresVideoTracks(t *testing.T) {
	v1 := track("v1", store.TrackVideo, 1)
	a1 := track("a1", store.TrackAudio, 1)
	vc := clip("V", v1.ID, 0, 100, 0, nil)
	ac := clip("A", a1.ID, 0, 100, 0, nil)

	a := New([]*store.Track{v1, a1}, []*store.Clip{vc, ac}, nil)
	entries := a.GetAudioAt(10)
	require.Len(t, entries, 1)
	require.Equal(t, "A", entries[0].Clip.ID)
}

func TestGetNextVideo_FindsNextBoundary(t *testing.T) {
	v1 := track("v1", store.TrackVideo, 1)
	first := clip("A", v1.ID, 0, 100, 0, nil)
	second := clip("B", v1.ID, 100, 100, 0, nil)

	a := New([]*store.Track{v1}, []*store.Clip{first, second}, nil)
	entry, ok := a.GetNextVideo(50)
	require.True(t, ok)
	require.Equal(t, "B", entry.Clip.ID)
}

func TestGetPrevVideo_FindsPrevBoundary(t *testing.T) {
	v1 := track("v1", store.TrackVideo, 1)
	first := clip("A", v1.ID, 0, 100, 0, nil)
	second := clip("B", v1.ID, 100, 100, 0, nil)

	a := New([]*store.Track{v1}, []*store.Clip{first, second}, nil)
	entry, ok := a.GetPrevVideo(150)
	require.True(t, ok)
	require.Equal(t, "A", entry.Clip.ID)
}

func TestGetNextVideo_NoMoreBoundaries(t *testing.T) {
	v1 := track("v1", store.TrackVideo, 1)
	only := clip("A", v1.ID, 0, 100, 0, nil)

	a := New([]*store.Track{v1}, []*store.Clip{only}, nil)
	_, ok := a.GetNextVideo(200)
	require.False(t, ok)
}

func TestSourceFrameMath_AccountsForSourceIn(t *testing.T) {
	v1 := track("v1", store.TrackVideo, 1)
	c := clip("A", v1.ID, 1000, 300, 500, nil)

	a := New([]*store.Track{v1}, []*store.Clip{c}, nil)
	entries := a.GetVideoAt(1010)
	require.Len(t, entries, 1)
	require.Equal(t, int64(510), entries[0].SourceFrame)
}
