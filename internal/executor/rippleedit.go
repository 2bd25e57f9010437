// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package executor

import (
	"context"
	"fmt"

	"github.com/jvecore/editorcore/internal/command"
	"github.com/jvecore/editorcore/internal/constraints"
	"github.com/jvecore/editorcore/internal/store"
)

func init() {
	Register(command.TypeRippleEdit, RippleEdit)
	Register(command.TypeBatchRippleEdit, BatchRippleEdit)
}

// rippleEdgeRequest is one caller-requested trim: clip_id/edge_type/
// trim_type/delta_frames (spec.md §4.6 "RippleEdit"). trim_type "ripple"
// is meant for edge_type gap_before/gap_after, where only this clip's own
// minimum duration bounds the delta and every downstream clip shifts to
// stay adjacent; trim_type "roll" is meant for edge_type in/out, where
// the clip sharing the trimmed boundary absorbs the inverse delta and the
// adjacent-clip bound in constraints.CalculateTrimRange applies.
type rippleEdgeRequest struct {
	ClipID   string
	Edge     constraints.Edge
	TrimType string // "ripple" or "roll"
	Delta    int64
}

func parseEdgeRequest(raw map[string]any) (rippleEdgeRequest, error) {
	clipID, _ := raw["clip_id"].(string)
	edgeType, _ := raw["edge_type"].(string)
	trimType, _ := raw["trim_type"].(string)
	delta, ok := numberToInt64(raw["delta_frames"])
	if clipID == "" || !ok {
		return rippleEdgeRequest{}, fmt.Errorf("executor: ripple edit: clip_id and delta_frames required")
	}
	switch trimType {
	case "ripple", "roll":
	default:
		return rippleEdgeRequest{}, fmt.Errorf("executor: ripple edit: unknown trim_type %q", trimType)
	}
	return rippleEdgeRequest{ClipID: clipID, Edge: constraints.Edge(edgeType), TrimType: trimType, Delta: delta}, nil
}

// RippleEdit applies a single edge trim, either rippling everything
// downstream on the track by the same delta ("ripple") or absorbing the
// delta into the clip on the other side of the shared boundary ("roll"),
// per spec.md §4.6/§4.7.
func RippleEdit(ctx context.Context, q store.Querier, ec Context, params map[string]any) (map[string]any, error) {
	edgesRaw, _ := params["edges"].([]any)
	originals, mutations, err := applyRippleEdges(ctx, q, edgesRaw)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"original_states":    clipsToMaps(originals),
		"executed_mutations": mutations,
	}, nil
}

// BatchRippleEdit applies several independent groups of ripple/roll
// edits as one atomic command, for edits that must move together (e.g.
// a linked video+audio edit point) but do not share a single delta
// (spec.md §4.6 "BatchRippleEdit").
func BatchRippleEdit(ctx context.Context, q store.Querier, ec Context, params map[string]any) (map[string]any, error) {
	groupsRaw, _ := params["groups"].([]any)

	var allOriginals []*store.Clip
	var allMutations []map[string]any
	for _, g := range groupsRaw {
		edgesRaw, _ := g.([]any)
		originals, mutations, err := applyRippleEdges(ctx, q, edgesRaw)
		if err != nil {
			return nil, err
		}
		allOriginals = append(allOriginals, originals...)
		allMutations = append(allMutations, mutations...)
	}
	return map[string]any{
		"original_states":    clipsToMaps(allOriginals),
		"executed_mutations": allMutations,
	}, nil
}

func applyRippleEdges(ctx context.Context, q store.Querier, edgesRaw []any) ([]*store.Clip, []map[string]any, error) {
	var originals []*store.Clip
	var mutations []map[string]any

	for _, e := range edgesRaw {
		raw, _ := e.(map[string]any)
		req, err := parseEdgeRequest(raw)
		if err != nil {
			return nil, nil, err
		}
		clip, err := store.GetClip(ctx, q, req.ClipID)
		if err != nil {
			return nil, nil, fmt.Errorf("executor: ripple edit: load %s: %w", req.ClipID, err)
		}
		if clip.TrackID == nil {
			return nil, nil, fmt.Errorf("executor: ripple edit: clip %s has no track", req.ClipID)
		}
		trackClips, err := store.ListClipsByTrack(ctx, q, *clip.TrackID)
		if err != nil {
			return nil, nil, fmt.Errorf("executor: ripple edit: list track clips: %w", err)
		}

		clamped := constraints.ClampTrimDelta(clip, req.Edge, req.Delta, trackClips, clip.Rate())
		before := *clip
		originals = append(originals, &before)

		updated, affected, err := applyOneEdge(clip, req.Edge, req.TrimType, clamped, trackClips)
		if err != nil {
			return nil, nil, err
		}
		if err := store.UpdateClip(ctx, q, updated); err != nil {
			return nil, nil, fmt.Errorf("executor: ripple edit: update %s: %w", updated.ID, err)
		}
		mutations = append(mutations, clipToMap(updated))

		for _, other := range affected {
			before := *other
			originals = append(originals, &before)
			if err := store.UpdateClip(ctx, q, other); err != nil {
				return nil, nil, fmt.Errorf("executor: ripple edit: update neighbor %s: %w", other.ID, err)
			}
			mutations = append(mutations, clipToMap(other))
		}
	}
	return originals, mutations, nil
}

// applyOneEdge mutates clip in place for a single trim and returns any
// other clips on the track that must also change: the downstream clips
// shifted by a ripple trim, or the single neighbor absorbing a roll trim.
func applyOneEdge(clip *store.Clip, edge constraints.Edge, trimType string, delta int64, trackClips []*store.Clip) (*store.Clip, []*store.Clip, error) {
	originalStart := clip.TimelineStartFrame
	originalEnd := clip.TimelineEnd()

	switch edge {
	case constraints.EdgeIn:
		clip.SourceInFrame += delta
		clip.TimelineStartFrame += delta
		clip.DurationFrames -= delta
	case constraints.EdgeOut:
		clip.SourceOutFrame += delta
		clip.DurationFrames += delta
	case constraints.EdgeGapBefore:
		clip.TimelineStartFrame -= delta
		clip.DurationFrames += delta
		clip.SourceInFrame -= delta
	case constraints.EdgeGapAfter:
		clip.SourceOutFrame += delta
		clip.DurationFrames += delta
	default:
		return nil, nil, fmt.Errorf("executor: ripple edit: unknown edge %q", edge)
	}

	var affected []*store.Clip

	switch trimType {
	case "ripple":
		// Keep every downstream clip adjacent: everything that used to
		// start at or after this clip's original trailing boundary shifts
		// by the same delta the boundary moved.
		boundaryShift := clip.TimelineEnd() - originalEnd
		if boundaryShift != 0 {
			for _, c := range trackClips {
				if c.ID == clip.ID {
					continue
				}
				if c.TimelineStartFrame >= originalEnd {
					shifted := *c
					shifted.TimelineStartFrame += boundaryShift
					affected = append(affected, &shifted)
				}
			}
		}
	case "roll":
		// The clip on the other side of the shared boundary absorbs the
		// inverse delta so the edit point moves without a gap or overlap.
		for _, c := range trackClips {
			if c.ID == clip.ID {
				continue
			}
			switch edge {
			case constraints.EdgeIn, constraints.EdgeGapBefore:
				if c.TimelineEnd() == originalStart {
					rolled := *c
					rolled.SourceOutFrame += delta
					rolled.DurationFrames += delta
					affected = append(affected, &rolled)
				}
			default:
				if c.TimelineStartFrame == originalEnd {
					rolled := *c
					rolled.SourceInFrame += delta
					rolled.TimelineStartFrame += delta
					rolled.DurationFrames -= delta
					affected = append(affected, &rolled)
				}
			}
		}
	}

	return clip, affected, nil
}
