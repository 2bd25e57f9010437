// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package eventlog

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jvecore/editorcore/internal/commandmanager"
	"github.com/jvecore/editorcore/internal/store"
)

func newHarness(t *testing.T) (*commandmanager.Manager, *Log, *store.Store, string, string, string) {
	t.Helper()
	dir := t.TempDir()

	s, err := store.Open(filepath.Join(dir, "project.jvp"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	l, err := Open(filepath.Join(dir, "project.jvp.events"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	m := commandmanager.New(s.DB(), commandmanager.WithEventLog(l), commandmanager.WithProjector(l))

	ctx := context.Background()
	projectID, sequenceID, trackID := "proj-1", "seq-1", "track-1"
	require.NoError(t, s.InsertProject(ctx, &store.Project{
		ID: projectID, Name: "P", SettingsJSON: "{}", CreatedAtMs: 1, ModifiedAtMs: 1,
	}))
	require.NoError(t, s.InsertSequence(ctx, &store.Sequence{
		ID: sequenceID, ProjectID: projectID, Name: "Seq", Kind: store.SequenceTimeline,
		FPSNumerator: 30, FPSDenominator: 1, Width: 1920, Height: 1080, AudioSampleRate: 48000,
	}))
	require.NoError(t, s.InsertTrack(ctx, &store.Track{
		ID: trackID, SequenceID: sequenceID, TrackType: store.TrackVideo, TrackIndex: 1, Name: "V1", Enabled: true,
	}))
	return m, l, s, projectID, sequenceID, trackID
}

func readEventLines(t *testing.T, dir string) []map[string]any {
	t.Helper()
	f, err := os.Open(filepath.Join(dir, "events", "events.jsonl"))
	require.NoError(t, err)
	defer f.Close()

	var lines []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var env map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &env))
		lines = append(lines, env)
	}
	require.NoError(t, scanner.Err())
	return lines
}

func TestAppendWritesDeterministicIDs(t *testing.T) {
	m, l, _, projectID, sequenceID, trackID := newHarness(t)
	ctx := context.Background()

	_, err := m.Execute(ctx, commandmanager.ExecuteRequest{
		CommandType: "Insert",
		ProjectID:   projectID,
		SequenceID:  sequenceID,
		Params: map[string]any{
			"track_id":    trackID,
			"insert_time": int64(0),
			"clip": map[string]any{
				"duration_frames":  int64(100),
				"source_out_frame": int64(100),
				"fps_numerator":    int64(30),
				"fps_denominator":  int64(1),
			},
		},
	})
	require.NoError(t, err)

	lines := readEventLines(t, l.dir)
	require.Len(t, lines, 1)
	require.Equal(t, "00000000000000000000000001", lines[0]["id"])
	require.Equal(t, "Insert", lines[0]["type"])
	require.Equal(t, "timeline:"+sequenceID, lines[0]["scope"])
	require.Equal(t, []any{}, lines[0]["parents"])
}

func TestProjectMirrorsNewClipIntoReadModel(t *testing.T) {
	m, l, _, projectID, sequenceID, trackID := newHarness(t)
	ctx := context.Background()

	result, err := m.Execute(ctx, commandmanager.ExecuteRequest{
		CommandType: "Insert",
		ProjectID:   projectID,
		SequenceID:  sequenceID,
		Params: map[string]any{
			"track_id":    trackID,
			"insert_time": int64(0),
			"clip": map[string]any{
				"duration_frames":  int64(100),
				"source_out_frame": int64(100),
				"fps_numerator":    int64(30),
				"fps_denominator":  int64(1),
			},
		},
	})
	require.NoError(t, err)
	newClipID, _ := result.Persisted["new_clip_id"].(string)
	require.NotEmpty(t, newClipID)

	var sequenceIDInRM string
	err = l.roDB.QueryRowContext(ctx, `SELECT sequence_id FROM tl_clips WHERE clip_id = ?`, newClipID).Scan(&sequenceIDInRM)
	require.NoError(t, err)
	require.Equal(t, sequenceID, sequenceIDInRM)
}

func TestUndoUnprojectsReadModel(t *testing.T) {
	m, l, _, projectID, sequenceID, trackID := newHarness(t)
	ctx := context.Background()

	result, err := m.Execute(ctx, commandmanager.ExecuteRequest{
		CommandType: "Insert",
		ProjectID:   projectID,
		SequenceID:  sequenceID,
		Params: map[string]any{
			"track_id":    trackID,
			"insert_time": int64(0),
			"clip": map[string]any{
				"duration_frames":  int64(100),
				"source_out_frame": int64(100),
				"fps_numerator":    int64(30),
				"fps_denominator":  int64(1),
			},
		},
	})
	require.NoError(t, err)
	newClipID, _ := result.Persisted["new_clip_id"].(string)

	_, err = m.Undo(ctx, "")
	require.NoError(t, err)

	var count int
	err = l.roDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM tl_clips WHERE clip_id = ?`, newClipID).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func TestSetPlayheadProjectsUIState(t *testing.T) {
	m, l, _, projectID, sequenceID, _ := newHarness(t)
	ctx := context.Background()

	_, err := m.Execute(ctx, commandmanager.ExecuteRequest{
		CommandType: "SetPlayhead",
		ProjectID:   projectID,
		SequenceID:  sequenceID,
		Params: map[string]any{
			"sequence_id": sequenceID,
			"frame":       int64(42),
		},
	})
	require.NoError(t, err)

	var valueJSON string
	err = l.roDB.QueryRowContext(ctx, `SELECT value_json FROM ui_state WHERE key = ?`, "playhead:"+sequenceID).Scan(&valueJSON)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(valueJSON), &decoded))
	require.EqualValues(t, 42, decoded["frame"])
}

func TestCloseResetsJournalMode(t *testing.T) {
	_, l, _, _, _, _ := newHarness(t)
	require.NoError(t, l.Close())
}
