// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

// Package mutator is the single choke point for clip geometry changes
// (spec.md §4.5). It plans integer mutations — occlusion resolution,
// ripple shifts, and duplicate-block placement — without touching the
// store. Callers (the command executors, via the command manager's
// transaction) apply the returned plan.
package mutator

import (
	"github.com/google/uuid"
	"github.com/jvecore/editorcore/internal/rationaltime"
	"github.com/jvecore/editorcore/internal/store"
)

// newClipID generates a fresh clip identifier for split-off right halves
// and duplicated copies.
func newClipID() string {
	return uuid.NewString()
}

// Op identifies the kind of change a Mutation represents.
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Mutation is one planned change to a clip row. Delete only needs ClipID;
// Insert and Update carry the full clip payload.
type Mutation struct {
	Op     Op
	ClipID string
	Clip   *store.Clip
}

// Plan is an ordered sequence of mutations. Order matters: spec.md §4.5.2
// requires ripple updates to apply rightmost-first when the shift is
// positive, to avoid transient overlap.
type Plan struct {
	Mutations []Mutation
}

func (p *Plan) update(c *store.Clip) {
	p.Mutations = append(p.Mutations, Mutation{Op: OpUpdate, ClipID: c.ID, Clip: c})
}

func (p *Plan) delete(clipID string) {
	p.Mutations = append(p.Mutations, Mutation{Op: OpDelete, ClipID: clipID})
}

func (p *Plan) insert(c *store.Clip) {
	p.Mutations = append(p.Mutations, Mutation{Op: OpInsert, ClipID: c.ID, Clip: c})
}

// floorRescaleFrames converts a frame count from one rate to another,
// flooring, via internal/rationaltime.
func floorRescaleFrames(frames int64, from, to rationaltime.Rate) int64 {
	return rationaltime.FromFrames(frames, from).RescaleFloor(to).Frames
}

// cloneClip returns a shallow copy of c suitable for in-place field
// mutation without aliasing the original row the caller loaded.
func cloneClip(c *store.Clip) *store.Clip {
	cp := *c
	return &cp
}
