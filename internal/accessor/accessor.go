// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

// Package accessor resolves which clip (and which file-relative frame) is
// active at a given timeline frame, for a single sequence (spec.md §4.9
// "Sequence accessor (resolver)"). Playback and scrubbing both go through
// here rather than walking track/clip rows directly.
package accessor

import (
	"sort"

	"github.com/jvecore/editorcore/internal/rationaltime"
	"github.com/jvecore/editorcore/internal/store"
)

// Entry is one resolvable clip at a given frame.
type Entry struct {
	Clip           *store.Clip
	MediaPath      string
	SourceFrame    int64
	ClipStartFrame int64
	ClipEndFrame int64 // exclusive
}

// Accessor resolves clips for one sequence's track/clip set. Callers build
// one per sequence (or per playback tick if the timeline just changed) from
// whatever rows the store currently holds.
type Accessor struct {
	clips      []*store.Clip
	trackIndex map[string]int
	trackType  map[string]store.TrackType
	media      map[string]*store.Media
}

// New builds an Accessor from a sequence's tracks, clips, and the media
// rows its clips reference. media may be nil or partial; entries for
// offline/unresolved media simply carry an empty MediaPath.
func New(tracks []*store.Track, clips []*store.Clip, media map[string]*store.Media) *Accessor {
	trackIndex := make(map[string]int, len(tracks))
	trackType := make(map[string]store.TrackType, len(tracks))
	for _, t := range tracks {
		trackIndex[t.ID] = t.TrackIndex
		trackType[t.ID] = t.TrackType
	}
	if media == nil {
		media = map[string]*store.Media{}
	}
	return &Accessor{clips: clips, trackIndex: trackIndex, trackType: trackType, media: media}
}

func (a *Accessor) clipTrackID(c *store.Clip) string {
	if c.TrackID == nil {
		return ""
	}
	return *c.TrackID
}

func (a *Accessor) kindAt(c *store.Clip) store.TrackType {
	return a.trackType[a.clipTrackID(c)]
}

// entriesAt returns every clip of the given track kind whose half-open
// interval [timeline_start, timeline_start+duration) contains frame,
// ordered by ascending track_index (spec.md §4.9: "ordered by priority
// (lowest track_index = highest priority)").
func (a *Accessor) entriesAt(frame int64, kind store.TrackType) []Entry {
	var out []Entry
	for _, c := range a.clips {
		if c.ClipKind != store.ClipTimeline || a.kindAt(c) != kind {
			continue
		}
		start := c.TimelineStartFrame
		end := start + c.DurationFrames
		if frame < start || frame >= end {
			continue
		}
		out = append(out, a.toEntry(c, frame, start, end))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return a.trackIndex[a.clipTrackID(out[i].Clip)] < a.trackIndex[a.clipTrackID(out[j].Clip)]
	})
	return out
}

func (a *Accessor) toEntry(c *store.Clip, frame, start, end int64) Entry {
	// source_frame = source_in + floor_rescale(frame - clip.timeline_start,
	// clip.rate) (spec.md §4.9). The raw frame delta is timeline-rate; hydrate
	// it at the clip's own rate so a mixed-rate clip rescales exactly once.
	rate := c.Rate()
	delta := rationaltime.FromFrames(frame-start, rate)
	sourceFrame := c.SourceInFrame + delta.Frames

	var path string
	if c.MediaID != nil {
		if m, ok := a.media[*c.MediaID]; ok {
			path = m.FilePath
		}
	}
	return Entry{
		Clip:           c,
		MediaPath:      path,
		SourceFrame:    sourceFrame,
		ClipStartFrame: start,
		ClipEndFrame:   end,
	}
}

// GetVideoAt returns every video entry active at frame, highest-priority
// (lowest track_index) first. The caller displays entries[0].
func (a *Accessor) GetVideoAt(frame int64) []Entry {
	return a.entriesAt(frame, store.TrackVideo)
}

// GetAudioAt returns every audio entry active at frame.
func (a *Accessor) GetAudioAt(frame int64) []Entry {
	return a.entriesAt(frame, store.TrackAudio)
}

// boundaries returns the sorted, de-duplicated set of clip start/end
// frames for the given track kind.
func (a *Accessor) boundaries(kind store.TrackType) []int64 {
	seen := map[int64]bool{}
	var out []int64
	for _, c := range a.clips {
		if c.ClipKind != store.ClipTimeline || a.kindAt(c) != kind {
			continue
		}
		start := c.TimelineStartFrame
		end := start + c.DurationFrames
		for _, f := range []int64{start, end} {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// nextEntry returns the first resolvable entry at or after the nearest
// clip boundary strictly after frame.
func (a *Accessor) nextEntry(frame int64, kind store.TrackType) (Entry, bool) {
	for _, b := range a.boundaries(kind) {
		if b <= frame {
			continue
		}
		if entries := a.entriesAt(b, kind); len(entries) > 0 {
			return entries[0], true
		}
	}
	return Entry{}, false
}

// prevEntry returns the resolvable entry just before the nearest clip
// boundary strictly before frame (the clip reverse playback enters next),
// falling back to the entry starting at that boundary.
func (a *Accessor) prevEntry(frame int64, kind store.TrackType) (Entry, bool) {
	bounds := a.boundaries(kind)
	for i := len(bounds) - 1; i >= 0; i-- {
		b := bounds[i]
		if b >= frame {
			continue
		}
		if b > 0 {
			if entries := a.entriesAt(b-1, kind); len(entries) > 0 {
				return entries[0], true
			}
		}
		if entries := a.entriesAt(b, kind); len(entries) > 0 {
			return entries[0], true
		}
	}
	return Entry{}, false
}

// GetNextVideo returns the resolvable video entry at the next clip
// boundary after frame, for playback lookahead (spec.md §4.9).
func (a *Accessor) GetNextVideo(frame int64) (Entry, bool) { return a.nextEntry(frame, store.TrackVideo) }

// GetPrevVideo returns the resolvable video entry at the previous clip
// boundary before frame.
func (a *Accessor) GetPrevVideo(frame int64) (Entry, bool) { return a.prevEntry(frame, store.TrackVideo) }

// GetNextAudio returns the resolvable audio entry at the next clip
// boundary after frame.
func (a *Accessor) GetNextAudio(frame int64) (Entry, bool) { return a.nextEntry(frame, store.TrackAudio) }

// GetPrevAudio returns the resolvable audio entry at the previous clip
// boundary before frame.
func (a *Accessor) GetPrevAudio(frame int64) (Entry, bool) { return a.prevEntry(frame, store.TrackAudio) }
