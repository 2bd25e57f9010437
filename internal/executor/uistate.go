// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package executor

import (
	"context"
	"fmt"

	"github.com/jvecore/editorcore/internal/command"
	"github.com/jvecore/editorcore/internal/store"
)

func init() {
	Register(command.TypeSetPlayhead, SetPlayhead)
	Register(command.TypeSetActiveSequence, SetActiveSequence)
}

// SetPlayhead is a UI-state event: it only writes the playhead position
// (spec.md §4.6 "SetPlayhead / SetActiveSequence").
func SetPlayhead(ctx context.Context, q store.Querier, ec Context, params map[string]any) (map[string]any, error) {
	sequenceID, _ := params["sequence_id"].(string)
	frame, ok := numberToInt64(params["frame"])
	if !ok {
		return nil, fmt.Errorf("executor: set playhead: frame must be numeric")
	}
	if err := store.SetPlayhead(ctx, q, sequenceID, frame); err != nil {
		return nil, fmt.Errorf("executor: set playhead: %w", err)
	}
	return nil, nil
}

// SetActiveSequence is a UI-state event recording which sequence is
// currently focused; it has no persisted undo payload of its own.
func SetActiveSequence(ctx context.Context, q store.Querier, ec Context, params map[string]any) (map[string]any, error) {
	sequenceID, _ := params["sequence_id"].(string)
	if _, err := store.GetSequence(ctx, q, sequenceID); err != nil {
		return nil, fmt.Errorf("executor: set active sequence: %w", err)
	}
	return nil, nil
}
