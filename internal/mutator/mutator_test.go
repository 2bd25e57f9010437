// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package mutator

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jvecore/editorcore/internal/rationaltime"
	"github.com/jvecore/editorcore/internal/store"
)

const seqRateNum, seqRateDen = 30, 1

func rv(frames int64) rationaltime.Value {
	return rationaltime.Value{Frames: frames, Rate: rationaltime.Rate{Num: seqRateNum, Den: seqRateDen}}
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "project.jvp"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedTrack(t *testing.T, s *store.Store, trackIndex int, trackType store.TrackType) (projectID, sequenceID, trackID string) {
	t.Helper()
	ctx := context.Background()

	projectID = "proj-1"
	require.NoError(t, s.InsertProject(ctx, &store.Project{
		ID: projectID, Name: "P", SettingsJSON: "{}", CreatedAtMs: 1, ModifiedAtMs: 1,
	}))

	sequenceID = "seq-1"
	require.NoError(t, s.InsertSequence(ctx, &store.Sequence{
		ID: sequenceID, ProjectID: projectID, Name: "Seq", Kind: store.SequenceTimeline,
		FPSNumerator: seqRateNum, FPSDenominator: seqRateDen, Width: 1920, Height: 1080, AudioSampleRate: 48000,
	}))

	trackID = "track-1"
	require.NoError(t, s.InsertTrack(ctx, &store.Track{
		ID: trackID, SequenceID: sequenceID, TrackType: trackType, TrackIndex: trackIndex, Name: "V1", Enabled: true,
	}))

	return projectID, sequenceID, trackID
}

func putClip(t *testing.T, s *store.Store, id, projectID, sequenceID, trackID string, start, dur int64) *store.Clip {
	t.Helper()
	c := &store.Clip{
		ID: id, ProjectID: projectID, TrackID: &trackID, ClipKind: store.ClipTimeline,
		OwnerSequenceID: sequenceID, TimelineStartFrame: start, DurationFrames: dur,
		SourceInFrame: 0, SourceOutFrame: dur, FPSNumerator: seqRateNum, FPSDenominator: seqRateDen,
		Enabled: true, CreatedAtMs: 1, ModifiedAtMs: 1,
	}
	require.NoError(t, store.InsertClip(context.Background(), s.DB(), c))
	return c
}

func mutationByClipID(t *testing.T, plan *Plan, id string) Mutation {
	t.Helper()
	for _, m := range plan.Mutations {
		if m.ClipID == id {
			return m
		}
	}
	t.Fatalf("no mutation found for clip id %s", id)
	return Mutation{}
}

// S1: Overwrite trims straddled clip on head and tail (spec.md §8 S1).
func TestPlanOcclusion_OverwriteTrimsHeadAndTail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	projectID, sequenceID, trackID := seedTrack(t, s, 1, store.TrackVideo)

	putClip(t, s, "A", projectID, sequenceID, trackID, 0, 100)
	putClip(t, s, "B", projectID, sequenceID, trackID, 200, 100)

	plan, err := PlanOcclusion(ctx, s.DB(), trackID, rv(90), rv(120), "")
	require.NoError(t, err)
	require.Len(t, plan.Mutations, 2)

	mA := mutationByClipID(t, plan, "A")
	require.Equal(t, OpUpdate, mA.Op)
	require.Equal(t, int64(0), mA.Clip.TimelineStartFrame)
	require.Equal(t, int64(90), mA.Clip.DurationFrames)
	require.Equal(t, int64(90), mA.Clip.SourceOutFrame)

	mB := mutationByClipID(t, plan, "B")
	require.Equal(t, OpUpdate, mB.Op)
	require.Equal(t, int64(210), mB.Clip.TimelineStartFrame)
	require.Equal(t, int64(90), mB.Clip.DurationFrames)
	require.Equal(t, int64(10), mB.Clip.SourceInFrame)
	require.Equal(t, int64(100), mB.Clip.SourceOutFrame)
}

// S2: Ripple insert cascades later clips (spec.md §8 S2).
func TestPlanRipple_InsertCascadesLaterClips(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	projectID, sequenceID, trackID := seedTrack(t, s, 1, store.TrackVideo)

	putClip(t, s, "A", projectID, sequenceID, trackID, 0, 100)
	putClip(t, s, "B", projectID, sequenceID, trackID, 100, 100)

	plan, err := PlanRipple(ctx, s.DB(), trackID, rv(50), rv(40))
	require.NoError(t, err)
	require.Len(t, plan.Mutations, 3)

	// Positive shift reverses per-clip group order: B's update comes before A's split group.
	require.Equal(t, "B", plan.Mutations[0].ClipID)
	require.Equal(t, OpUpdate, plan.Mutations[0].Op)
	require.Equal(t, int64(140), plan.Mutations[0].Clip.TimelineStartFrame)

	require.Equal(t, OpInsert, plan.Mutations[1].Op) // A's right half
	aRight := plan.Mutations[1].Clip
	require.Equal(t, int64(90), aRight.TimelineStartFrame)
	require.Equal(t, int64(50), aRight.DurationFrames)
	require.Equal(t, int64(50), aRight.SourceInFrame)

	require.Equal(t, "A", plan.Mutations[2].ClipID)
	require.Equal(t, OpUpdate, plan.Mutations[2].Op)
	aLeft := plan.Mutations[2].Clip
	require.Equal(t, int64(0), aLeft.TimelineStartFrame)
	require.Equal(t, int64(50), aLeft.DurationFrames)
}

// S3: Duplicate block clamps across target collision (spec.md §8 S3).
func TestPlanDuplicateBlock_ClampsAcrossTargetCollision(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	projectID, sequenceID, trackID := seedTrack(t, s, 1, store.TrackVideo)

	putClip(t, s, "A", projectID, sequenceID, trackID, 0, 100)
	putClip(t, s, "X", projectID, sequenceID, trackID, 150, 50)

	plan, err := PlanDuplicateBlock(ctx, s.DB(), []string{"A"}, trackID, "A", rv(100))
	require.NoError(t, err)

	var copyClip *store.Clip
	for _, m := range plan.Mutations {
		if m.Op == OpInsert && m.Clip.TimelineStartFrame == 200 {
			copyClip = m.Clip
		}
	}
	require.NotNil(t, copyClip, "expected the copy to be clamped to start at frame 200")
	require.Equal(t, int64(100), copyClip.DurationFrames)
}
