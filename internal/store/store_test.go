// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "project.jvp")
	s, err := Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedProjectSequenceTrack(t *testing.T, s *Store) (projectID, sequenceID, trackID string) {
	t.Helper()
	ctx := context.Background()

	projectID = "proj-1"
	require.NoError(t, s.InsertProject(ctx, &Project{
		ID: projectID, Name: "Test Project", SettingsJSON: "{}",
		CreatedAtMs: 1, ModifiedAtMs: 1,
	}))

	sequenceID = "seq-1"
	require.NoError(t, s.InsertSequence(ctx, &Sequence{
		ID: sequenceID, ProjectID: projectID, Name: "Sequence 1", Kind: SequenceTimeline,
		FPSNumerator: 30, FPSDenominator: 1, Width: 1920, Height: 1080, AudioSampleRate: 48000,
	}))

	trackID = "track-1"
	require.NoError(t, s.InsertTrack(ctx, &Track{
		ID: trackID, SequenceID: sequenceID, TrackType: TrackVideo, TrackIndex: 1, Name: "V1", Enabled: true,
	}))

	return projectID, sequenceID, trackID
}

func TestProjectRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertProject(ctx, &Project{
		ID: "p1", Name: "Demo", SettingsJSON: `{"width":1920}`, CreatedAtMs: 100, ModifiedAtMs: 100,
	}))

	got, err := s.GetProject(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, "Demo", got.Name)

	require.NoError(t, s.TouchProject(ctx, "p1", 200))
	got2, err := s.GetProject(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, int64(200), got2.ModifiedAtMs)

	_, err = s.GetProject(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestClipCRUDAndOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	projectID, sequenceID, trackID := seedProjectSequenceTrack(t, s)

	mkClip := func(id string, start, dur int64) *Clip {
		return &Clip{
			ID: id, ProjectID: projectID, TrackID: &trackID, ClipKind: ClipTimeline,
			OwnerSequenceID: sequenceID, TimelineStartFrame: start, DurationFrames: dur,
			SourceInFrame: 0, SourceOutFrame: dur, FPSNumerator: 30, FPSDenominator: 1,
			Enabled: true, CreatedAtMs: 1, ModifiedAtMs: 1,
		}
	}

	require.NoError(t, InsertClip(ctx, s.DB(), mkClip("clip-b", 200, 100)))
	require.NoError(t, InsertClip(ctx, s.DB(), mkClip("clip-a", 0, 100)))

	clips, err := ListClipsByTrack(ctx, s.DB(), trackID)
	require.NoError(t, err)
	require.Len(t, clips, 2)
	require.Equal(t, "clip-a", clips[0].ID)
	require.Equal(t, "clip-b", clips[1].ID)

	clipA, err := GetClip(ctx, s.DB(), "clip-a")
	require.NoError(t, err)
	clipA.DurationFrames = 50
	clipA.ModifiedAtMs = 2
	require.NoError(t, UpdateClip(ctx, s.DB(), clipA))

	updated, err := GetClip(ctx, s.DB(), "clip-a")
	require.NoError(t, err)
	require.Equal(t, int64(50), updated.DurationFrames)

	require.NoError(t, DeleteClip(ctx, s.DB(), "clip-b"))
	_, err = GetClip(ctx, s.DB(), "clip-b")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCommandSequenceAndUndoGroupQueries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	projectID, _, _ := seedProjectSequenceTrack(t, s)

	last, err := LastSequenceNumber(ctx, s.DB())
	require.NoError(t, err)
	require.Equal(t, int64(0), last)

	groupID := "group-1"
	for i := int64(1); i <= 3; i++ {
		var parent *int64
		if i > 1 {
			p := i - 1
			parent = &p
		}
		require.NoError(t, InsertCommand(ctx, s.DB(), &CommandRecord{
			SequenceNumber: i, ParentSequenceNumber: parent, CommandType: "DeleteClip",
			CommandArgsJSON: "{}", ProjectID: projectID, StackID: "global",
			ExecutedAtMs: i, UndoGroupID: &groupID,
		}))
	}

	last, err = LastSequenceNumber(ctx, s.DB())
	require.NoError(t, err)
	require.Equal(t, int64(3), last)

	group, err := CommandsByUndoGroup(ctx, s.DB(), groupID)
	require.NoError(t, err)
	require.Len(t, group, 3)
	require.Equal(t, int64(1), group[0].SequenceNumber)

	child, err := FindLatestChildCommand(ctx, s.DB(), 1)
	require.NoError(t, err)
	require.Equal(t, int64(2), child.SequenceNumber)
}

func TestClipLinkLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	projectID, sequenceID, trackID := seedProjectSequenceTrack(t, s)

	video := &Clip{
		ID: "v1", ProjectID: projectID, TrackID: &trackID, ClipKind: ClipTimeline,
		OwnerSequenceID: sequenceID, TimelineStartFrame: 0, DurationFrames: 100,
		SourceOutFrame: 100, FPSNumerator: 30, FPSDenominator: 1, Enabled: true,
	}
	audio := &Clip{
		ID: "a1", ProjectID: projectID, TrackID: &trackID, ClipKind: ClipTimeline,
		OwnerSequenceID: sequenceID, TimelineStartFrame: 0, DurationFrames: 100,
		SourceOutFrame: 100, FPSNumerator: 30, FPSDenominator: 1, Enabled: true,
	}
	require.NoError(t, InsertClip(ctx, s.DB(), video))
	require.NoError(t, InsertClip(ctx, s.DB(), audio))
	require.NoError(t, InsertClipLink(ctx, s.DB(), &ClipLink{ID: "link1", ClipIDA: "v1", ClipIDB: "a1"}))

	linked, err := LinkedClips(ctx, s.DB(), "v1")
	require.NoError(t, err)
	require.Equal(t, []string{"a1"}, linked)

	linkedReverse, err := LinkedClips(ctx, s.DB(), "a1")
	require.NoError(t, err)
	require.Equal(t, []string{"v1"}, linkedReverse)
}
