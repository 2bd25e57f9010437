// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

// Package commandmanager drives the validate -> assign sequence ->
// transaction -> execute -> persist -> project -> log -> commit
// pipeline (spec.md §4), and owns the per-stack undo/redo cursor and
// undo-group bookkeeping described in spec.md §4.6.
package commandmanager

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jvecore/editorcore/internal/command"
	"github.com/jvecore/editorcore/internal/executor"
	"github.com/jvecore/editorcore/internal/log"
	"github.com/jvecore/editorcore/internal/metrics"
	"github.com/jvecore/editorcore/internal/store"
)

// DefaultStackID is the undo stack used when a caller doesn't opt into
// per-timeline stacks (spec.md §4.6 "stack_id defaults to global").
const DefaultStackID = "global"

// managerLogger is a package-level zerolog.Logger value so every log
// call site can invoke its pointer-receiver methods directly without
// re-deriving the component logger each time.
var managerLogger = log.WithComponent("commandmanager")

// ErrNothingToUndo is returned by Undo when a stack's cursor is already
// at the root (no command to reverse).
var ErrNothingToUndo = errors.New("commandmanager: nothing to undo")

// ErrNothingToRedo is returned by Redo when a stack's cursor has no
// undone child to replay.
var ErrNothingToRedo = errors.New("commandmanager: nothing to redo")

// ValidationError wraps a command.ValidateAndNormalize failure so
// callers can distinguish a rejected command from an execution error.
type ValidationError struct {
	CommandType string
	Message     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("commandmanager: %s: %s", e.CommandType, e.Message)
}

// EventLogger appends a committed command to the durable event log
// (spec.md §4.11). Implemented by internal/eventlog; kept as an
// interface here so the manager doesn't import storage concerns it
// doesn't own.
type EventLogger interface {
	Append(ctx context.Context, rec *store.CommandRecord, args, persisted map[string]any) error
}

// Projector folds a command into a read model (spec.md §4.11
// "Projection"), before the primary transaction commits, so a
// projection failure still rolls back the command transaction (spec.md
// §9 Open Question — resolved: the log and primary store never
// diverge). Project is handed the in-flight transaction so it can
// resolve full rows for ids the persisted payload only names (new
// clips, split children, imported media). Implemented by
// internal/eventlog's projection writer.
type Projector interface {
	Project(ctx context.Context, q store.Querier, rec *store.CommandRecord, persisted map[string]any) error

	// Unproject reverses a command's effect on the read model. Undo
	// doesn't mint a new sequence_number or log line (spec.md §4.11
	// invariant: one log line per persisted command), so it can't
	// replay forward; it mirrors the same persisted payload the
	// primary store's reverseGeneric applies, against the read model.
	Unproject(ctx context.Context, rec *store.CommandRecord) error
}

// stackCursor is the in-memory undo stack state for one stack_id
// (spec.md §4.6: "{current_sequence_number, sequence_id,
// position_initialized}"). current is nil at the root, meaning no
// undoable command has yet been executed or all have been undone.
type stackCursor struct {
	current    *int64
	sequenceID string
	groupDepth int
	groupID    string
}

// Manager is the single entry point commands flow through. It is safe
// for concurrent use; Execute/Undo/Redo serialize against the in-memory
// cursor table with a mutex, matching the single-writer-per-project
// assumption of spec.md §4's pipeline description.
type Manager struct {
	db        *sql.DB
	eventLog  EventLogger
	projector Projector
	now       func() time.Time

	mu      sync.Mutex
	cursors map[string]*stackCursor
}

// Option configures a Manager at construction time.
type Option func(*Manager)

// WithEventLog attaches the durable event log appender.
func WithEventLog(l EventLogger) Option {
	return func(m *Manager) { m.eventLog = l }
}

// WithProjector attaches the read-model projector.
func WithProjector(p Projector) Option {
	return func(m *Manager) { m.projector = p }
}

// New constructs a Manager over an already-migrated database handle.
func New(db *sql.DB, opts ...Option) *Manager {
	m := &Manager{
		db:      db,
		now:     time.Now,
		cursors: map[string]*stackCursor{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) cursorFor(stackID, sequenceID string) *stackCursor {
	if stackID == "" {
		stackID = DefaultStackID
	}
	c, ok := m.cursors[stackID]
	if !ok {
		c = &stackCursor{sequenceID: sequenceID}
		m.cursors[stackID] = c
	}
	if sequenceID != "" {
		c.sequenceID = sequenceID
	}
	return c
}

// ExecuteRequest is one command submission.
type ExecuteRequest struct {
	CommandType string
	Params      map[string]any
	ProjectID   string
	SequenceID  string
	StackID     string // empty means DefaultStackID
	UIContext   bool
}

// Result is what Execute returns on success.
type Result struct {
	Record    *store.CommandRecord
	Persisted map[string]any
}

// Execute runs the full command pipeline: validate, assign the next
// sequence number, open a transaction, run the registered executor,
// persist the command row (including its undo/redo payload), project into
// the read model, append to the event log, and commit (spec.md §4's
// data flow). NonUndoable commands (SetPlayhead, SetActiveSequence) are
// still sequenced and persisted, but never become the undo stack's
// cursor, so they're invisible to Undo/Redo (spec.md §4.6).
func (m *Manager) Execute(ctx context.Context, req ExecuteRequest) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.executeLocked(ctx, req)
}

// executeLocked runs the pipeline assuming m.mu is already held. Redo
// calls this directly to replay a command without deadlocking on its
// own lock.
func (m *Manager) executeLocked(ctx context.Context, req ExecuteRequest) (*Result, error) {
	schema, found := command.Lookup(req.CommandType)
	if !found {
		return nil, fmt.Errorf("commandmanager: unknown command type %q", req.CommandType)
	}
	ok, normalized, errMsg := command.ValidateAndNormalize(req.CommandType, req.Params, command.Options{
		ApplyDefaults: true,
		UIContext:     req.UIContext,
	})
	if !ok {
		metrics.RecordCommandExecuted(req.CommandType, "validation_error")
		return nil, &ValidationError{CommandType: req.CommandType, Message: errMsg}
	}
	fn, found := executor.Lookup(req.CommandType)
	if !found {
		return nil, fmt.Errorf("commandmanager: no executor registered for %q", req.CommandType)
	}

	start := m.now()
	stackID := req.StackID
	if stackID == "" {
		stackID = DefaultStackID
	}

	commandID := uuid.NewString()
	ctx = log.ContextWithCommandID(ctx, commandID)

	cur := m.cursorFor(stackID, req.SequenceID)

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("commandmanager: begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	lastSeq, err := store.LastSequenceNumber(ctx, tx)
	if err != nil {
		return nil, err
	}
	nextSeq := lastSeq + 1

	ec := executor.Context{
		ProjectID:            req.ProjectID,
		SequenceID:           req.SequenceID,
		ParentSequenceNumber: cur.current,
		StackID:              stackID,
	}

	persisted, err := fn(ctx, tx, ec, normalized)
	if err != nil {
		metrics.RecordCommandExecuted(req.CommandType, "error")
		return nil, fmt.Errorf("commandmanager: execute %s: %w", req.CommandType, err)
	}

	argsJSON, err := json.Marshal(normalized)
	if err != nil {
		return nil, fmt.Errorf("commandmanager: marshal command args: %w", err)
	}
	persistedJSON, err := json.Marshal(persisted)
	if err != nil {
		return nil, fmt.Errorf("commandmanager: marshal persisted payload: %w", err)
	}

	var groupID *string
	if cur.groupDepth > 0 {
		id := cur.groupID
		groupID = &id
	}

	rec := &store.CommandRecord{
		SequenceNumber:       nextSeq,
		ParentSequenceNumber: cur.current,
		CommandType:          req.CommandType,
		CommandArgsJSON:      string(argsJSON),
		PersistedJSON:        string(persistedJSON),
		ProjectID:            req.ProjectID,
		SequenceID:           req.SequenceID,
		StackID:              stackID,
		ExecutedAtMs:         start.UnixMilli(),
		UndoGroupID:          groupID,
	}
	if err := store.InsertCommand(ctx, tx, rec); err != nil {
		return nil, fmt.Errorf("commandmanager: insert command: %w", err)
	}

	if req.SequenceID != "" && !schema.NonUndoable {
		if err := store.SetCurrentSequenceNumber(ctx, tx, req.SequenceID, nextSeq); err != nil {
			return nil, fmt.Errorf("commandmanager: set undo cursor: %w", err)
		}
	}

	if m.projector != nil {
		if err := m.projector.Project(ctx, tx, rec, persisted); err != nil {
			return nil, fmt.Errorf("commandmanager: project: %w", err)
		}
	}
	if m.eventLog != nil {
		if err := m.eventLog.Append(ctx, rec, normalized, persisted); err != nil {
			return nil, fmt.Errorf("commandmanager: append event log: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commandmanager: commit: %w", err)
	}
	committed = true

	if !schema.NonUndoable {
		seq := nextSeq
		cur.current = &seq
	}

	metrics.RecordCommandExecuted(req.CommandType, "success")
	metrics.ObserveCommandDuration(req.CommandType, m.now().Sub(start).Seconds())
	managerLogger.Info().
		Str("command_type", req.CommandType).
		Int64("sequence_number", nextSeq).
		Str("stack_id", stackID).
		Bool("non_undoable", schema.NonUndoable).
		Msg("command executed")
	log.AuditInfo(ctx, "command.executed", "command executed", map[string]any{
		"command_id":      commandID,
		"sequence_number": nextSeq,
		"stack_id":        stackID,
		"project_id":      req.ProjectID,
		"command_type":    req.CommandType,
	})

	return &Result{Record: rec, Persisted: persisted}, nil
}

// BeginUndoGroup opens an undo group on a stack: every undoable command
// executed until the matching EndUndoGroup shares one undo_group_id, so
// Undo reverses them together (spec.md §4.6 undo groups). Nested calls
// collapse into the outermost group.
func (m *Manager) BeginUndoGroup(stackID string) {
	if stackID == "" {
		stackID = DefaultStackID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cur := m.cursorFor(stackID, "")
	if cur.groupDepth == 0 {
		cur.groupID = uuid.NewString()
	}
	cur.groupDepth++
}

// EndUndoGroup closes the innermost undo group opened by BeginUndoGroup.
// It is a no-op if no group is open.
func (m *Manager) EndUndoGroup(stackID string) {
	if stackID == "" {
		stackID = DefaultStackID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cur := m.cursorFor(stackID, "")
	if cur.groupDepth == 0 {
		return
	}
	cur.groupDepth--
	if cur.groupDepth == 0 {
		cur.groupID = ""
	}
}
