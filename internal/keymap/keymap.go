// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

// Package keymap loads the TOML keybinding file spec.md §6's command-input
// API assumes exists somewhere upstream of execute_ui: a flat mapping from
// a key chord string ("cmd+z", "shift+/") to the command type it invokes.
// It is a read-only lookup table; nothing in this package executes
// commands, it only resolves which one a chord names.
package keymap

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// fileFormat is the on-disk shape of a *.jvekeys file: one [bindings]
// table of chord -> command-type strings.
type fileFormat struct {
	Bindings map[string]string `toml:"bindings"`
}

// Bindings is an immutable, loaded keymap.
type Bindings struct {
	byChord map[string]string
}

// Load parses a TOML keybinding file at path.
func Load(path string) (*Bindings, error) {
	var ff fileFormat
	if _, err := toml.DecodeFile(path, &ff); err != nil {
		return nil, fmt.Errorf("keymap: decode %s: %w", path, err)
	}
	return FromMap(ff.Bindings), nil
}

// FromMap builds Bindings directly from a chord->command-type map, for
// tests and for callers that assemble bindings without a file on disk.
func FromMap(chordToCommand map[string]string) *Bindings {
	b := &Bindings{byChord: make(map[string]string, len(chordToCommand))}
	for chord, cmd := range chordToCommand {
		b.byChord[chord] = cmd
	}
	return b
}

// Lookup resolves a key chord to the command type it is bound to.
func (b *Bindings) Lookup(chord string) (commandType string, ok bool) {
	if b == nil {
		return "", false
	}
	cmd, ok := b.byChord[chord]
	return cmd, ok
}

// Len reports how many chords are bound.
func (b *Bindings) Len() int {
	if b == nil {
		return 0
	}
	return len(b.byChord)
}
