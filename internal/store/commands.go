// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const commandColumns = `sequence_number, parent_sequence_number, command_type, command_args_json,
	persisted_json, project_id, sequence_id, stack_id, executed_at_ms, playhead_value, undo_group_id`

func scanCommand(row interface{ Scan(...any) error }) (*CommandRecord, error) {
	var c CommandRecord
	if err := row.Scan(
		&c.SequenceNumber, &c.ParentSequenceNumber, &c.CommandType, &c.CommandArgsJSON,
		&c.PersistedJSON, &c.ProjectID, &c.SequenceID, &c.StackID, &c.ExecutedAtMs, &c.PlayheadValue, &c.UndoGroupID,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

// InsertCommand persists a command record. sequence_number must already be
// assigned by the caller (the command manager), which is the sole source of
// monotonic sequence numbers (spec.md invariant 5).
func InsertCommand(ctx context.Context, q Querier, c *CommandRecord) error {
	const stmt = `INSERT INTO commands (` + commandColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := q.ExecContext(ctx, stmt,
		c.SequenceNumber, c.ParentSequenceNumber, c.CommandType, c.CommandArgsJSON,
		c.PersistedJSON, c.ProjectID, c.SequenceID, c.StackID, c.ExecutedAtMs, c.PlayheadValue, c.UndoGroupID,
	)
	if err != nil {
		return fmt.Errorf("store: insert command: %w", err)
	}
	return nil
}

// GetCommand loads a command record by its sequence number.
func GetCommand(ctx context.Context, q Querier, seq int64) (*CommandRecord, error) {
	row := q.QueryRowContext(ctx, `SELECT `+commandColumns+` FROM commands WHERE sequence_number = ?`, seq)
	c, err := scanCommand(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: get command: %w", err)
	}
	return c, nil
}

// LastSequenceNumber returns the highest persisted sequence_number, or 0 if
// no commands have been persisted yet.
func LastSequenceNumber(ctx context.Context, q Querier) (int64, error) {
	row := q.QueryRowContext(ctx, `SELECT COALESCE(MAX(sequence_number), 0) FROM commands`)
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("store: last sequence number: %w", err)
	}
	return n, nil
}

// FindLatestChildCommand returns the most recently executed command whose
// parent_sequence_number equals parentSeq, used by redo to pick a branch
// when the undo DAG forks (spec.md §9 Open Question — resolved: latest
// child by executed_at).
func FindLatestChildCommand(ctx context.Context, q Querier, parentSeq int64) (*CommandRecord, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+commandColumns+` FROM commands WHERE parent_sequence_number = ?
		 ORDER BY executed_at_ms DESC, sequence_number DESC LIMIT 1`, parentSeq)
	c, err := scanCommand(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: find latest child command: %w", err)
	}
	return c, nil
}

// FindLatestRootCommand returns the most recently executed command on a
// stack with no parent (parent_sequence_number IS NULL), the redo target
// when a stack's cursor is at the root (spec.md §9 Open Question —
// resolved: latest child by executed_at).
func FindLatestRootCommand(ctx context.Context, q Querier, stackID string) (*CommandRecord, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+commandColumns+` FROM commands WHERE parent_sequence_number IS NULL AND stack_id = ?
		 ORDER BY executed_at_ms DESC, sequence_number DESC LIMIT 1`, stackID)
	c, err := scanCommand(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: find latest root command: %w", err)
	}
	return c, nil
}

// CommandsByUndoGroup returns every command sharing an undo_group_id,
// ordered by sequence_number, so an undo group can be reversed as one unit
// (spec.md §4.6 undo groups).
func CommandsByUndoGroup(ctx context.Context, q Querier, groupID string) ([]*CommandRecord, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+commandColumns+` FROM commands WHERE undo_group_id = ? ORDER BY sequence_number`, groupID)
	if err != nil {
		return nil, fmt.Errorf("store: commands by undo group: %w", err)
	}
	defer rows.Close()

	var out []*CommandRecord
	for rows.Next() {
		c, err := scanCommand(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan command: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
