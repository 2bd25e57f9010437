// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package playback

import (
	"context"
	"fmt"
	"sync"
)

// transition describes one edge of the transport FSM (spec.md §4.10
// "States & inputs"). Guard may reject the transition; Action runs the
// side effect (audio/video handoff) once the guard passes.
type transition struct {
	From   state
	Event  event
	To     state
	Guard  func(ctx context.Context) error
	Action func(ctx context.Context, from, to state) error
}

// stateMachine is a small strict FSM runner: unknown transitions are
// errors rather than no-ops, so a caller feeding an invalid input (e.g.
// seek() while already stopped) finds out immediately instead of the
// engine silently doing nothing.
type stateMachine struct {
	mu    sync.Mutex
	cur   state
	index map[string]transition
}

func newStateMachine(initial state, transitions []transition) *stateMachine {
	idx := make(map[string]transition, len(transitions))
	for _, t := range transitions {
		idx[fsmKey(t.From, t.Event)] = t
	}
	return &stateMachine{cur: initial, index: idx}
}

func (m *stateMachine) State() state {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cur
}

func (m *stateMachine) set(s state) {
	m.mu.Lock()
	m.cur = s
	m.mu.Unlock()
}

// fire attempts to apply event atomically, running Guard/Action outside
// the lock so a slow Action (e.g. an audio device call) doesn't block
// State() reads from other goroutines.
func (m *stateMachine) fire(ctx context.Context, ev event) (state, error) {
	m.mu.Lock()
	from := m.cur
	t, ok := m.index[fsmKey(from, ev)]
	m.mu.Unlock()
	if !ok {
		return from, fmt.Errorf("playback: invalid transition: state=%s event=%s", from, ev)
	}

	if t.Guard != nil {
		if err := t.Guard(ctx); err != nil {
			return from, err
		}
	}
	if t.Action != nil {
		if err := t.Action(ctx, from, t.To); err != nil {
			return from, err
		}
	}

	m.mu.Lock()
	if m.cur != from {
		cur := m.cur
		m.mu.Unlock()
		return cur, fmt.Errorf("playback: concurrent transition: from=%s cur=%s event=%s", from, cur, ev)
	}
	m.cur = t.To
	m.mu.Unlock()
	return t.To, nil
}

func fsmKey(s state, e event) string {
	return string(s) + "|" + string(e)
}
