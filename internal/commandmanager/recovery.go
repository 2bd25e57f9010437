// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package commandmanager

import (
	"context"
	"errors"
	"fmt"

	"github.com/jvecore/editorcore/internal/log"
	"github.com/jvecore/editorcore/internal/metrics"
	"github.com/jvecore/editorcore/internal/store"
)

// RecoverStack seeds a stack's in-memory undo cursor from a sequence's
// persisted current_sequence_number, used on process startup since the
// cursor table in Manager is otherwise empty until a command runs
// (spec.md §4.6 undo stack state is "per stack_id", but the process
// only ever persists the sequence's own cursor column). If the
// persisted value no longer corresponds to an existing command — the
// database was edited externally, or a prior crash left a dangling
// write — the cursor is repaired to the root instead of leaving the
// stack permanently stuck.
func (m *Manager) RecoverStack(ctx context.Context, stackID, sequenceID string) error {
	if stackID == "" {
		stackID = DefaultStackID
	}
	seq, err := store.GetSequence(ctx, m.db, sequenceID)
	if err != nil {
		return fmt.Errorf("commandmanager: recover stack %s: load sequence %s: %w", stackID, sequenceID, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	cur := m.cursorFor(stackID, sequenceID)

	if seq.CurrentSequenceNumber == 0 {
		cur.current = nil
		return nil
	}

	if _, err := store.GetCommand(ctx, m.db, seq.CurrentSequenceNumber); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			cur.current = nil
			metrics.IncOrphanedCursorRepaired()
			managerLogger.Warn().
				Str("stack_id", stackID).
				Str("sequence_id", sequenceID).
				Int64("dangling_sequence_number", seq.CurrentSequenceNumber).
				Msg("persisted undo cursor pointed at a missing command, reset to root")
			if err := store.SetCurrentSequenceNumber(ctx, m.db, sequenceID, 0); err != nil {
				return fmt.Errorf("commandmanager: recover stack %s: repair persisted cursor: %w", stackID, err)
			}
			return nil
		}
		return fmt.Errorf("commandmanager: recover stack %s: load command %d: %w", stackID, seq.CurrentSequenceNumber, err)
	}

	n := seq.CurrentSequenceNumber
	cur.current = &n
	return nil
}
