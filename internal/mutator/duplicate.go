// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package mutator

import (
	"context"
	"fmt"
	"sort"

	"github.com/jvecore/editorcore/internal/rationaltime"
	"github.com/jvecore/editorcore/internal/store"
)

// PlanDuplicateBlock copies clipIDs onto tracks offset by deltaTrackIndex
// from anchorClipID's track to targetTrackID, shifted in time by delta
// (spec.md §4.5.3). Sources whose mapped track doesn't exist are dropped.
// The returned plan's insert mutations never overlap each other; if no
// feasible delta exists after clamping, PlanDuplicateBlock returns an
// empty plan rather than an error.
func PlanDuplicateBlock(ctx context.Context, q store.Querier, clipIDs []string, targetTrackID, anchorClipID string, delta rationaltime.Value) (*Plan, error) {
	if len(clipIDs) == 0 {
		return &Plan{}, nil
	}

	anchor, err := store.GetClip(ctx, q, anchorClipID)
	if err != nil {
		return nil, fmt.Errorf("mutator: plan duplicate: load anchor: %w", err)
	}
	if anchor.TrackID == nil {
		return nil, fmt.Errorf("mutator: plan duplicate: anchor clip %s has no track", anchorClipID)
	}
	anchorTrack, err := store.GetTrackQ(ctx, q, *anchor.TrackID)
	if err != nil {
		return nil, fmt.Errorf("mutator: plan duplicate: load anchor track: %w", err)
	}
	targetTrack, err := store.GetTrackQ(ctx, q, targetTrackID)
	if err != nil {
		return nil, fmt.Errorf("mutator: plan duplicate: load target track: %w", err)
	}
	if anchorTrack.TrackType != targetTrack.TrackType {
		return nil, fmt.Errorf("mutator: plan duplicate: anchor track type %s does not match target track type %s", anchorTrack.TrackType, targetTrack.TrackType)
	}
	deltaTrackIndex := targetTrack.TrackIndex - anchorTrack.TrackIndex

	sources := make([]*store.Clip, 0, len(clipIDs))
	minStart := int64(0)
	for i, id := range clipIDs {
		c, err := store.GetClip(ctx, q, id)
		if err != nil {
			return nil, fmt.Errorf("mutator: plan duplicate: load source %s: %w", id, err)
		}
		if i == 0 || c.TimelineStartFrame < minStart {
			minStart = c.TimelineStartFrame
		}
		sources = append(sources, c)
	}

	deltaFrames := delta.Frames
	if minStart+deltaFrames < 0 {
		deltaFrames = -minStart
	}

	tracksBySeq := map[string][]*store.Track{}
	mappedTrackFor := func(sourceTrack *store.Track) (*store.Track, error) {
		tracks, ok := tracksBySeq[sourceTrack.SequenceID]
		if !ok {
			var err error
			tracks, err = store.ListTracksBySequenceQ(ctx, q, sourceTrack.SequenceID)
			if err != nil {
				return nil, err
			}
			tracksBySeq[sourceTrack.SequenceID] = tracks
		}
		wantIndex := sourceTrack.TrackIndex + deltaTrackIndex
		for _, t := range tracks {
			if t.TrackType == sourceTrack.TrackType && t.TrackIndex == wantIndex {
				return t, nil
			}
		}
		return nil, nil
	}

	type placement struct {
		source    *store.Clip
		targetTrk *store.Track
		copyStart int64
		copyEnd   int64
	}

	var placements []placement
	for _, c := range sources {
		if c.TrackID == nil {
			continue
		}
		srcTrack, err := store.GetTrackQ(ctx, q, *c.TrackID)
		if err != nil {
			return nil, fmt.Errorf("mutator: plan duplicate: load source track: %w", err)
		}
		tgtTrack, err := mappedTrackFor(srcTrack)
		if err != nil {
			return nil, fmt.Errorf("mutator: plan duplicate: resolve target track: %w", err)
		}
		if tgtTrack == nil {
			continue
		}
		copyStart := c.TimelineStartFrame + deltaFrames
		placements = append(placements, placement{
			source: c, targetTrk: tgtTrack,
			copyStart: copyStart, copyEnd: copyStart + c.DurationFrames,
		})
	}
	if len(placements) == 0 {
		return &Plan{}, nil
	}

	// Forbidden-delta clamp: a delta is forbidden if it would make any copy
	// overlap an existing interval already on its target track (including
	// the source's own original position, when copying in place). For an
	// existing interval [existStart, existEnd) and a copy of the source's
	// own [start, end) shifted by deltaFrames, the overlap range is
	// [existStart - end + 1, existEnd - start - 1].
	existingByTrack := map[string][]*store.Clip{}
	var forbidLow, forbidHigh int64
	haveForbid := false
	for _, p := range placements {
		existing, ok := existingByTrack[p.targetTrk.ID]
		if !ok {
			var err error
			existing, err = store.ListClipsByTrack(ctx, q, p.targetTrk.ID)
			if err != nil {
				return nil, fmt.Errorf("mutator: plan duplicate: load target track clips: %w", err)
			}
			existingByTrack[p.targetTrk.ID] = existing
		}
		start := p.source.TimelineStartFrame
		end := p.source.TimelineEnd()
		for _, e := range existing {
			low := e.TimelineStartFrame - end + 1
			high := e.TimelineEnd() - start - 1
			if low > high {
				continue
			}
			if !haveForbid {
				forbidLow, forbidHigh = low, high
				haveForbid = true
			} else {
				if low < forbidLow {
					forbidLow = low
				}
				if high > forbidHigh {
					forbidHigh = high
				}
			}
		}
	}
	if haveForbid && deltaFrames >= forbidLow && deltaFrames <= forbidHigh {
		if delta.Frames >= 0 {
			deltaFrames = forbidHigh + 1
		} else {
			deltaFrames = forbidLow - 1
		}
		if minStart+deltaFrames < 0 {
			return &Plan{}, nil
		}
		for i := range placements {
			placements[i].copyStart = placements[i].source.TimelineStartFrame + deltaFrames
			placements[i].copyEnd = placements[i].copyStart + placements[i].source.DurationFrames
		}
	}

	// No two planned copies may overlap on the same track.
	byTrack := map[string][]placement{}
	for _, p := range placements {
		byTrack[p.targetTrk.ID] = append(byTrack[p.targetTrk.ID], p)
	}
	for trackID, ps := range byTrack {
		sort.Slice(ps, func(i, j int) bool { return ps[i].copyStart < ps[j].copyStart })
		for i := 1; i < len(ps); i++ {
			if ps[i].copyStart < ps[i-1].copyEnd {
				return nil, fmt.Errorf("mutator: plan duplicate: copies overlap on track %s", trackID)
			}
		}
	}

	plan := &Plan{}
	for _, p := range placements {
		copyClip := cloneClip(p.source)
		copyClip.ID = newClipID()
		copyClip.TrackID = &p.targetTrk.ID
		copyClip.TimelineStartFrame = p.copyStart

		occl, err := PlanOcclusion(ctx, q, p.targetTrk.ID, rationaltime.Value{
			Frames: p.copyStart, Rate: delta.Rate,
		}, rationaltime.Value{
			Frames: p.source.DurationFrames, Rate: delta.Rate,
		}, "")
		if err != nil {
			return nil, fmt.Errorf("mutator: plan duplicate: occlusion for copy of %s: %w", p.source.ID, err)
		}

		plan.insert(copyClip)
		plan.Mutations = append(plan.Mutations, occl.Mutations...)
	}

	return plan, nil
}
