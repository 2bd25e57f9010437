// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package executor

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jvecore/editorcore/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "project.jvp"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedTrack(t *testing.T, s *store.Store) (projectID, sequenceID, trackID string) {
	t.Helper()
	ctx := context.Background()

	projectID = "proj-1"
	require.NoError(t, s.InsertProject(ctx, &store.Project{
		ID: projectID, Name: "P", SettingsJSON: "{}", CreatedAtMs: 1, ModifiedAtMs: 1,
	}))
	sequenceID = "seq-1"
	require.NoError(t, s.InsertSequence(ctx, &store.Sequence{
		ID: sequenceID, ProjectID: projectID, Name: "Seq", Kind: store.SequenceTimeline,
		FPSNumerator: 30, FPSDenominator: 1, Width: 1920, Height: 1080, AudioSampleRate: 48000,
	}))
	trackID = "track-1"
	require.NoError(t, s.InsertTrack(ctx, &store.Track{
		ID: trackID, SequenceID: sequenceID, TrackType: store.TrackVideo, TrackIndex: 1, Name: "V1", Enabled: true,
	}))
	return projectID, sequenceID, trackID
}

func putClip(t *testing.T, s *store.Store, id, projectID, sequenceID, trackID string, start, dur int64) {
	t.Helper()
	c := &store.Clip{
		ID: id, ProjectID: projectID, TrackID: &trackID, ClipKind: store.ClipTimeline,
		OwnerSequenceID: sequenceID, TimelineStartFrame: start, DurationFrames: dur,
		SourceInFrame: 0, SourceOutFrame: dur, FPSNumerator: 30, FPSDenominator: 1, Enabled: true,
	}
	require.NoError(t, store.InsertClip(context.Background(), s.DB(), c))
}

func TestInsert_RipplesLaterClipsAndCreatesNewClip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	projectID, sequenceID, trackID := seedTrack(t, s)
	putClip(t, s, "A", projectID, sequenceID, trackID, 0, 100)

	ec := Context{ProjectID: projectID, SequenceID: sequenceID}
	persisted, err := Insert(ctx, s.DB(), ec, map[string]any{
		"track_id":    trackID,
		"insert_time": int64(50),
		"clip": map[string]any{
			"duration_frames":  100.0,
			"source_out_frame": 100.0,
			"fps_numerator":    30.0,
			"fps_denominator":  1.0,
		},
		"advance_playhead": true,
	})
	require.NoError(t, err)
	newClipID, _ := persisted["new_clip_id"].(string)
	require.NotEmpty(t, newClipID)

	newClip, err := store.GetClip(ctx, s.DB(), newClipID)
	require.NoError(t, err)
	require.Equal(t, int64(50), newClip.TimelineStartFrame)

	seq, err := store.GetSequence(ctx, s.DB(), sequenceID)
	require.NoError(t, err)
	require.Equal(t, int64(150), seq.PlayheadFrame)
}

func TestDeleteClip_RemovesRowAndReturnsOriginalState(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	projectID, sequenceID, trackID := seedTrack(t, s)
	putClip(t, s, "A", projectID, sequenceID, trackID, 0, 100)

	ec := Context{ProjectID: projectID, SequenceID: sequenceID}
	persisted, err := DeleteClip(ctx, s.DB(), ec, map[string]any{"clip_id": "A"})
	require.NoError(t, err)
	original, _ := persisted["original_state"].(map[string]any)
	require.Equal(t, "A", original["id"])

	_, err = store.GetClip(ctx, s.DB(), "A")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRippleEdit_RippleTrimShiftsDownstreamClips(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	projectID, sequenceID, trackID := seedTrack(t, s)
	putClip(t, s, "A", projectID, sequenceID, trackID, 0, 100)
	putClip(t, s, "B", projectID, sequenceID, trackID, 100, 100)

	ec := Context{ProjectID: projectID, SequenceID: sequenceID}
	_, err := RippleEdit(ctx, s.DB(), ec, map[string]any{
		"edges": []any{
			map[string]any{
				"clip_id":      "A",
				"edge_type":    "gap_after",
				"trim_type":    "ripple",
				"delta_frames": int64(20),
			},
		},
	})
	require.NoError(t, err)

	a, err := store.GetClip(ctx, s.DB(), "A")
	require.NoError(t, err)
	require.Equal(t, int64(120), a.DurationFrames)

	b, err := store.GetClip(ctx, s.DB(), "B")
	require.NoError(t, err)
	require.Equal(t, int64(120), b.TimelineStartFrame)
}

func TestRippleEdit_RollTrimOnlyAffectsSharedNeighbor(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	projectID, sequenceID, trackID := seedTrack(t, s)
	putClip(t, s, "A", projectID, sequenceID, trackID, 0, 100)
	putClip(t, s, "B", projectID, sequenceID, trackID, 100, 100)

	ec := Context{ProjectID: projectID, SequenceID: sequenceID}
	_, err := RippleEdit(ctx, s.DB(), ec, map[string]any{
		"edges": []any{
			map[string]any{
				"clip_id":      "B",
				"edge_type":    "in",
				"trim_type":    "roll",
				"delta_frames": int64(10),
			},
		},
	})
	require.NoError(t, err)

	a, err := store.GetClip(ctx, s.DB(), "A")
	require.NoError(t, err)
	require.Equal(t, int64(110), a.DurationFrames)

	b, err := store.GetClip(ctx, s.DB(), "B")
	require.NoError(t, err)
	require.Equal(t, int64(110), b.TimelineStartFrame)
	require.Equal(t, int64(90), b.DurationFrames)
}

func TestRippleDelete_ShiftsLaterClipsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	projectID, sequenceID, trackID := seedTrack(t, s)
	putClip(t, s, "A", projectID, sequenceID, trackID, 0, 100)
	putClip(t, s, "B", projectID, sequenceID, trackID, 100, 100)

	ec := Context{ProjectID: projectID, SequenceID: sequenceID}
	_, err := RippleDelete(ctx, s.DB(), ec, map[string]any{
		"track_id": trackID,
		"clip_ids": []any{"A"},
	})
	require.NoError(t, err)

	b, err := store.GetClip(ctx, s.DB(), "B")
	require.NoError(t, err)
	require.Equal(t, int64(0), b.TimelineStartFrame)
}
