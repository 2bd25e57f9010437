// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package commandmanager

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jvecore/editorcore/internal/store"
)

func newTestManager(t *testing.T) (*Manager, *store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "project.jvp"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return New(s.DB()), s
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

func insertClip(t *testing.T, m *Manager, projectID, sequenceID, trackID string, insertFrame int64) string {
	t.Helper()
	ctx := context.Background()
	result, err := m.Execute(ctx, ExecuteRequest{
		CommandType: "Insert",
		ProjectID:   projectID,
		SequenceID:  sequenceID,
		Params: map[string]any{
			"track_id":    trackID,
			"insert_time": insertFrame,
			"clip": map[string]any{
				"duration_frames":  int64(100),
				"source_out_frame": int64(100),
				"fps_numerator":    int64(30),
				"fps_denominator":  int64(1),
			},
		},
	})
	require.NoError(t, err)
	clipID, _ := result.Persisted["new_clip_id"].(string)
	require.NotEmpty(t, clipID)
	return clipID
}

func TestExecute_AssignsSequenceNumbersAndAdvancesCursor(t *testing.T) {
	m, s := newTestManager(t)
	projectID, sequenceID, trackID := seedTrack(t, s)

	clipID := insertClip(t, m, projectID, sequenceID, trackID, 0)

	rec, err := store.GetCommand(context.Background(), s.DB(), 1)
	require.NoError(t, err)
	require.Equal(t, "Insert", rec.CommandType)
	require.Nil(t, rec.ParentSequenceNumber)

	cur := m.cursorFor(DefaultStackID, "")
	require.NotNil(t, cur.current)
	require.Equal(t, int64(1), *cur.current)

	clip, err := store.GetClip(context.Background(), s.DB(), clipID)
	require.NoError(t, err)
	require.Equal(t, int64(0), clip.TimelineStartFrame)
}

func TestExecute_RejectsInvalidParams(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.Execute(context.Background(), ExecuteRequest{
		CommandType: "Insert",
		Params:      map[string]any{},
	})
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestUndo_RestoresDeletedClip(t *testing.T) {
	m, s := newTestManager(t)
	ctx := context.Background()
	projectID, sequenceID, trackID := seedTrack(t, s)
	clipID := insertClip(t, m, projectID, sequenceID, trackID, 0)

	_, err := m.Execute(ctx, ExecuteRequest{
		CommandType: "DeleteClip",
		ProjectID:   projectID,
		SequenceID:  sequenceID,
		Params:      map[string]any{"clip_id": clipID},
	})
	require.NoError(t, err)

	_, err = store.GetClip(ctx, s.DB(), clipID)
	require.ErrorIs(t, err, store.ErrNotFound)

	undone, err := m.Undo(ctx, DefaultStackID)
	require.NoError(t, err)
	require.Equal(t, "DeleteClip", undone.CommandType)

	clip, err := store.GetClip(ctx, s.DB(), clipID)
	require.NoError(t, err)
	require.Equal(t, int64(0), clip.TimelineStartFrame)
}

func TestUndo_RemovesClipCreatedByInsert(t *testing.T) {
	m, s := newTestManager(t)
	ctx := context.Background()
	projectID, sequenceID, trackID := seedTrack(t, s)
	clipID := insertClip(t, m, projectID, sequenceID, trackID, 0)

	_, err := m.Undo(ctx, DefaultStackID)
	require.NoError(t, err)

	_, err = store.GetClip(ctx, s.DB(), clipID)
	require.ErrorIs(t, err, store.ErrNotFound)

	cur := m.cursorFor(DefaultStackID, "")
	require.Nil(t, cur.current)
}

func TestUndo_EmptyStackReturnsErrNothingToUndo(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.Undo(context.Background(), DefaultStackID)
	require.ErrorIs(t, err, ErrNothingToUndo)
}

func TestRedo_ReplaysUndoneCommand(t *testing.T) {
	m, s := newTestManager(t)
	ctx := context.Background()
	projectID, sequenceID, trackID := seedTrack(t, s)
	clipID := insertClip(t, m, projectID, sequenceID, trackID, 0)

	_, err := m.Undo(ctx, DefaultStackID)
	require.NoError(t, err)
	_, err = store.GetClip(ctx, s.DB(), clipID)
	require.ErrorIs(t, err, store.ErrNotFound)

	result, err := m.Redo(ctx, DefaultStackID)
	require.NoError(t, err)
	newClipID, _ := result.Persisted["new_clip_id"].(string)
	require.NotEmpty(t, newClipID)

	clip, err := store.GetClip(ctx, s.DB(), newClipID)
	require.NoError(t, err)
	require.Equal(t, int64(0), clip.TimelineStartFrame)
}

func TestRedo_EmptyStackReturnsErrNothingToRedo(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.Redo(context.Background(), DefaultStackID)
	require.ErrorIs(t, err, ErrNothingToRedo)
}

func TestUndoGroup_ReversesAllMembersAsOneUnit(t *testing.T) {
	m, s := newTestManager(t)
	ctx := context.Background()
	projectID, sequenceID, trackID := seedTrack(t, s)
	clipA := insertClip(t, m, projectID, sequenceID, trackID, 0)

	m.BeginUndoGroup(DefaultStackID)
	_, err := m.Execute(ctx, ExecuteRequest{
		CommandType: "DeleteClip",
		ProjectID:   projectID,
		SequenceID:  sequenceID,
		Params:      map[string]any{"clip_id": clipA},
	})
	require.NoError(t, err)
	clipB := insertClip(t, m, projectID, sequenceID, trackID, 200)
	m.EndUndoGroup(DefaultStackID)

	_, err = store.GetClip(ctx, s.DB(), clipB)
	require.NoError(t, err)

	_, err = m.Undo(ctx, DefaultStackID)
	require.NoError(t, err)

	// Both the delete and the second insert reverse together: clip A is
	// back, clip B is gone.
	_, err = store.GetClip(ctx, s.DB(), clipB)
	require.ErrorIs(t, err, store.ErrNotFound)
	clip, err := store.GetClip(ctx, s.DB(), clipA)
	require.NoError(t, err)
	require.Equal(t, int64(0), clip.TimelineStartFrame)

	// Clip A's own insert (sequence 1) is outside the group and stays
	// on the undo stack.
	cur := m.cursorFor(DefaultStackID, "")
	require.NotNil(t, cur.current)
	require.Equal(t, int64(1), *cur.current)
}

func TestNonUndoableCommand_DoesNotAdvanceCursor(t *testing.T) {
	m, s := newTestManager(t)
	ctx := context.Background()
	projectID, sequenceID, trackID := seedTrack(t, s)
	insertClip(t, m, projectID, sequenceID, trackID, 0)

	curBefore := m.cursorFor(DefaultStackID, "")
	before := *curBefore.current

	_, err := m.Execute(ctx, ExecuteRequest{
		CommandType: "SetPlayhead",
		ProjectID:   projectID,
		SequenceID:  sequenceID,
		Params:      map[string]any{"sequence_id": sequenceID, "frame": int64(42)},
	})
	require.NoError(t, err)

	cur := m.cursorFor(DefaultStackID, "")
	require.Equal(t, before, *cur.current)

	seq, err := store.GetSequence(ctx, s.DB(), sequenceID)
	require.NoError(t, err)
	require.Equal(t, int64(42), seq.PlayheadFrame)
}

func TestRecoverStack_RepairsDanglingPersistedCursor(t *testing.T) {
	m, s := newTestManager(t)
	ctx := context.Background()
	projectID, sequenceID, trackID := seedTrack(t, s)
	_ = projectID
	_ = trackID

	require.NoError(t, store.SetCurrentSequenceNumber(ctx, s.DB(), sequenceID, 999))

	require.NoError(t, m.RecoverStack(ctx, DefaultStackID, sequenceID))

	cur := m.cursorFor(DefaultStackID, "")
	require.Nil(t, cur.current)

	seq, err := store.GetSequence(ctx, s.DB(), sequenceID)
	require.NoError(t, err)
	require.Equal(t, int64(0), seq.CurrentSequenceNumber)
}
