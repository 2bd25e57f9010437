// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

// Package command defines the Command value, its per-type parameter
// schema, and validate-and-normalize entry point (spec.md §4.4). The
// command manager uses this package to accept, reject, and canonicalize
// caller-supplied parameters before an executor ever sees them.
package command

import (
	"strings"
	"time"
)

// Command is one user- or script-initiated edit action. SequenceNumber,
// ParentSequenceNumber, and ExecutedAt are assigned by the command
// manager at execution time, never by the caller.
type Command struct {
	ID                   string
	Type                 string
	ProjectID            string
	Parameters           map[string]any
	SequenceNumber       int64
	ParentSequenceNumber *int64
	ExecutedAt           time.Time
	StackID              string
}

// stripEphemeral removes keys beginning with "__" from params, returning
// a new map. Ephemeral keys are always accepted by validation but never
// persisted (spec.md §4.4).
func stripEphemeral(params map[string]any) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		if strings.HasPrefix(k, "__") {
			continue
		}
		out[k] = v
	}
	return out
}
