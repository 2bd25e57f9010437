// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

// Package snap computes snap candidates for a drag in progress: the
// visible clip edges plus the playhead, filtered to the closest candidate
// within a pixel tolerance of the pointer (spec.md §4.8 "Snap engine").
package snap

import (
	"sort"

	"github.com/jvecore/editorcore/internal/rationaltime"
	"github.com/jvecore/editorcore/internal/store"
)

// DefaultToleranceDevicePixels is the default snap tolerance in device
// pixels (spec.md §4.8: "12 px by default").
const DefaultToleranceDevicePixels = 12.0

// SourceKind identifies what a candidate's time was taken from.
type SourceKind string

const (
	SourceClipStart SourceKind = "clip_start"
	SourceClipEnd   SourceKind = "clip_end"
	SourcePlayhead  SourceKind = "playhead"
)

// Candidate is one point a drag can snap to. Time always carries the rate
// it was computed at (spec.md §4.8: "All candidates carry rational time").
type Candidate struct {
	Time   rationaltime.Value
	Source SourceKind
	ClipID string // empty for SourcePlayhead
	Edge   string // "in" or "out", empty for SourcePlayhead
}

// TimeToPixel maps a rational time to a horizontal pixel position in the
// caller's current timeline zoom/scroll, so the engine never needs to know
// about view geometry itself.
type TimeToPixel func(rationaltime.Value) float64

// Options configures one candidate-gathering pass.
type Options struct {
	// ExcludedClipIDs skips edges belonging to clips being dragged.
	ExcludedClipIDs map[string]bool
	// ExcludedEdges skips specific {clip_id, edge} pairs — the edges
	// actually being dragged, as opposed to clips excluded wholesale.
	ExcludedEdges map[ExcludedEdge]bool
	// IncludePlayhead adds the playhead as a candidate when true.
	IncludePlayhead bool
	Playhead        rationaltime.Value
}

// ExcludedEdge names one clip edge to omit from candidate generation.
type ExcludedEdge struct {
	ClipID string
	Edge   string // "in" or "out"
}

func (o Options) excludesClip(id string) bool {
	return o.ExcludedClipIDs != nil && o.ExcludedClipIDs[id]
}

func (o Options) excludesEdge(id, edge string) bool {
	return o.ExcludedEdges != nil && o.ExcludedEdges[ExcludedEdge{ClipID: id, Edge: edge}]
}

// Candidates returns every visible clip's in/out edges plus the playhead
// (when requested), minus anything named in opts, sorted by time.
func Candidates(clips []*store.Clip, opts Options) []Candidate {
	out := make([]Candidate, 0, len(clips)*2+1)
	for _, c := range clips {
		if opts.excludesClip(c.ID) {
			continue
		}
		rate := rationaltime.Rate{Num: c.FPSNumerator, Den: c.FPSDenominator}
		if !opts.excludesEdge(c.ID, "in") {
			out = append(out, Candidate{
				Time:   rationaltime.FromFrames(c.TimelineStartFrame, rate),
				Source: SourceClipStart,
				ClipID: c.ID,
				Edge:   "in",
			})
		}
		if !opts.excludesEdge(c.ID, "out") {
			out = append(out, Candidate{
				Time:   rationaltime.FromFrames(c.TimelineStartFrame+c.DurationFrames, rate),
				Source: SourceClipEnd,
				ClipID: c.ID,
				Edge:   "out",
			})
		}
	}
	if opts.IncludePlayhead {
		out = append(out, Candidate{Time: opts.Playhead, Source: SourcePlayhead})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.Frames < out[j].Time.Frames
	})
	return out
}

// Nearest returns the candidate within toleranceDevicePixels of pointerTime
// (mapped through toPixel), and true if one was found. When several
// candidates tie at the same pixel distance, the earliest in time wins.
func Nearest(candidates []Candidate, pointerTime rationaltime.Value, toPixel TimeToPixel, toleranceDevicePixels float64) (Candidate, bool) {
	pointerPx := toPixel(pointerTime)

	best := Candidate{}
	bestDist := toleranceDevicePixels
	found := false
	for _, c := range candidates {
		dist := toPixel(c.Time) - pointerPx
		if dist < 0 {
			dist = -dist
		}
		if dist > toleranceDevicePixels {
			continue
		}
		if !found || dist < bestDist {
			best, bestDist, found = c, dist, true
		}
	}
	return best, found
}

// NearestWithDefaultTolerance is Nearest with the spec's default 12px
// tolerance.
func NearestWithDefaultTolerance(candidates []Candidate, pointerTime rationaltime.Value, toPixel TimeToPixel) (Candidate, bool) {
	return Nearest(candidates, pointerTime, toPixel, DefaultToleranceDevicePixels)
}
