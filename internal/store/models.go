// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package store

import "github.com/jvecore/editorcore/internal/rationaltime"

// TrackType distinguishes video and audio lanes.
type TrackType string

const (
	TrackVideo TrackType = "VIDEO"
	TrackAudio TrackType = "AUDIO"
)

// ClipKind distinguishes timeline-placed clips from master clips.
type ClipKind string

const (
	ClipTimeline ClipKind = "timeline"
	ClipMaster   ClipKind = "master"
)

// SequenceKind distinguishes a multi-track timeline from a single-media
// master clip container.
type SequenceKind string

const (
	SequenceTimeline   SequenceKind = "timeline"
	SequenceMasterClip SequenceKind = "masterclip"
)

// Project is the top-level container.
type Project struct {
	ID           string
	Name         string
	SettingsJSON string
	CreatedAtMs  int64
	ModifiedAtMs int64
}

// Sequence is a timeline or master-clip container.
type Sequence struct {
	ID                    string
	ProjectID             string
	Name                  string
	Kind                  SequenceKind
	FPSNumerator          uint32
	FPSDenominator        uint32
	Width                 int
	Height                int
	AudioSampleRate       int
	PlayheadFrame         int64
	ViewStartFrame        int64
	ViewDurationFrames    int64
	CurrentSequenceNumber int64
}

// Rate returns the sequence's frame rate as a rationaltime.Rate.
func (s Sequence) Rate() rationaltime.Rate {
	return rationaltime.Rate{Num: s.FPSNumerator, Den: s.FPSDenominator}
}

// Track is an ordered lane within a sequence.
type Track struct {
	ID         string
	SequenceID string
	TrackType  TrackType
	TrackIndex int
	Name       string
	Enabled    bool
}

// Clip is a placed interval referencing media or a nested master clip.
type Clip struct {
	ID                 string
	ProjectID          string
	TrackID            *string
	ClipKind           ClipKind
	Name               string
	MediaID            *string
	MasterClipID       *string
	OwnerSequenceID    string
	SourceSequenceID   *string
	TimelineStartFrame int64
	DurationFrames     int64
	SourceInFrame      int64
	SourceOutFrame     int64
	FPSNumerator       uint32
	FPSDenominator     uint32
	Enabled            bool
	Offline            bool
	CreatedAtMs        int64
	ModifiedAtMs       int64
}

// Rate returns the clip's own media rate.
func (c Clip) Rate() rationaltime.Rate {
	return rationaltime.Rate{Num: c.FPSNumerator, Den: c.FPSDenominator}
}

// TimelineEnd returns the half-open interval end on the timeline axis:
// timeline_start + duration.
func (c Clip) TimelineEnd() int64 {
	return c.TimelineStartFrame + c.DurationFrames
}

// Media is an external asset referenced by clips.
type Media struct {
	ID             string
	ProjectID      string
	Name           string
	FilePath       string
	DurationFrames int64
	FPSNumerator   uint32
	FPSDenominator uint32
	Width          int
	Height         int
	AudioChannels  int
	Codec          string
	MetadataJSON   string
}

// Property is a typed key-value annotation on a clip.
type Property struct {
	ID        string
	ClipID    string
	Key       string
	ValueType string
	Value     string
}

// ClipLink joins co-placed A/V clips into a sync group.
type ClipLink struct {
	ID      string
	ClipIDA string
	ClipIDB string
}

// CommandRecord is a persisted command execution.
type CommandRecord struct {
	SequenceNumber       int64
	ParentSequenceNumber *int64
	CommandType          string
	CommandArgsJSON      string
	PersistedJSON        string
	ProjectID            string
	SequenceID           string
	StackID              string
	ExecutedAtMs         int64
	PlayheadValue        *int64
	UndoGroupID          *string
}
