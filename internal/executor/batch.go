// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package executor

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jvecore/editorcore/internal/command"
	"github.com/jvecore/editorcore/internal/store"
)

func init() {
	Register(command.TypeBatchCommand, BatchCommand)
}

// BatchCommand runs a list of child command specs under one
// sequence_number and one undo_group_id (spec.md §4.6 "DeleteClip /
// BatchCommand"). Each child spec is {"type": "...", "params": {...}}.
func BatchCommand(ctx context.Context, q store.Querier, ec Context, params map[string]any) (map[string]any, error) {
	childrenRaw, _ := params["commands"].([]any)
	groupID := uuid.NewString()

	results := make([]map[string]any, 0, len(childrenRaw))
	for i, raw := range childrenRaw {
		spec, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("executor: batch: command %d is not a table", i)
		}
		childType, _ := spec["type"].(string)
		childParams, _ := spec["params"].(map[string]any)

		fn, found := Lookup(childType)
		if !found {
			return nil, fmt.Errorf("executor: batch: unknown child command type %q", childType)
		}
		persisted, err := fn(ctx, q, ec, childParams)
		if err != nil {
			return nil, fmt.Errorf("executor: batch: child %d (%s): %w", i, childType, err)
		}
		results = append(results, map[string]any{
			"type":      childType,
			"persisted": persisted,
		})
	}

	return map[string]any{
		"undo_group_id": groupID,
		"child_results": results,
	}, nil
}
