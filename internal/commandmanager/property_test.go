// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package commandmanager

import (
	"context"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/jvecore/editorcore/internal/store"
)

// interval is a clip reduced to its timeline shape, so comparisons across
// undo/redo don't depend on the fresh clip ids Redo mints (undo.go: "new
// ids it mints ... are newly generated").
type interval struct {
	Start int64
	Dur   int64
}

func trackIntervals(t *testing.T, s *store.Store, trackID string) []interval {
	t.Helper()
	clips, err := store.ListClipsByTrack(context.Background(), s.DB(), trackID)
	require.NoError(t, err)
	out := make([]interval, 0, len(clips))
	for _, c := range clips {
		out = append(out, interval{Start: c.TimelineStartFrame, Dur: c.DurationFrames})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// TestProperty_UndoRoundTripRestoresEmptyTrack exercises spec.md §4.6's
// undo/redo round-trip invariant directly: undoing every command executed
// against a fresh track must return it to exactly its starting state.
func TestProperty_UndoRoundTripRestoresEmptyTrack(t *testing.T) {
	m, s := newTestManager(t)
	projectID, sequenceID, trackID := seedTrack(t, s)

	before := trackIntervals(t, s, trackID)
	require.Empty(t, before)

	n := 5
	for i := 0; i < n; i++ {
		insertClip(t, m, projectID, sequenceID, trackID, int64(i*100))
	}
	require.Len(t, trackIntervals(t, s, trackID), n)

	for i := 0; i < n; i++ {
		_, err := m.Undo(context.Background(), "")
		require.NoError(t, err)
	}

	after := trackIntervals(t, s, trackID)
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("track state after full undo round-trip mismatches starting state (-want +got):\n%s", diff)
	}
}

// TestProperty_RedoRestoresTimelineShape checks that redoing every undone
// command reproduces the same set of timeline intervals, even though each
// redo mints fresh clip ids (undo.go's documented redo-by-replay design).
func TestProperty_RedoRestoresTimelineShape(t *testing.T) {
	m, s := newTestManager(t)
	projectID, sequenceID, trackID := seedTrack(t, s)

	n := 4
	for i := 0; i < n; i++ {
		insertClip(t, m, projectID, sequenceID, trackID, int64(i*100))
	}
	want := trackIntervals(t, s, trackID)

	for i := 0; i < n; i++ {
		_, err := m.Undo(context.Background(), "")
		require.NoError(t, err)
	}
	require.Empty(t, trackIntervals(t, s, trackID))

	for i := 0; i < n; i++ {
		_, err := m.Redo(context.Background(), "")
		require.NoError(t, err)
	}

	got := trackIntervals(t, s, trackID)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("track shape after redo mismatches pre-undo shape (-want +got):\n%s", diff)
	}
}

// TestProperty_SequenceNumbersAreStrictlyMonotonic checks spec.md §4's
// "monotonically increasing sequence number" invariant across a mix of
// commands on the same stack.
func TestProperty_SequenceNumbersAreStrictlyMonotonic(t *testing.T) {
	m, s := newTestManager(t)
	projectID, sequenceID, trackID := seedTrack(t, s)

	var seqs []int64
	for i := 0; i < 6; i++ {
		result, err := m.Execute(context.Background(), ExecuteRequest{
			CommandType: "Insert",
			ProjectID:   projectID,
			SequenceID:  sequenceID,
			Params: map[string]any{
				"track_id":    trackID,
				"insert_time": int64(i * 100),
				"clip": map[string]any{
					"duration_frames":  int64(50),
					"source_out_frame": int64(50),
					"fps_numerator":    int64(30),
					"fps_denominator":  int64(1),
				},
			},
		})
		require.NoError(t, err)
		seqs = append(seqs, result.Record.SequenceNumber)
	}

	want := make([]int64, len(seqs))
	for i := range want {
		want[i] = seqs[0] + int64(i)
	}
	if diff := cmp.Diff(want, seqs); diff != "" {
		t.Fatalf("sequence numbers are not strictly monotonic (-want +got):\n%s", diff)
	}
}
