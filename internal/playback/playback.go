// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

// Package playback implements the per-view transport controller (spec.md
// §4.10 "Playback engine"): a small state machine over stopped/playing/
// latched driven by a unified tick, delegating frame resolution to
// internal/accessor and frame presentation/audio handoff to caller-supplied
// hooks.
package playback

import (
	"context"
	"fmt"
	"sync"

	"github.com/jvecore/editorcore/internal/accessor"
	"github.com/jvecore/editorcore/internal/log"
	"github.com/jvecore/editorcore/internal/metrics"
	"github.com/jvecore/editorcore/internal/rationaltime"
)

// state is the engine's coarse transport state (spec.md §4.10 "States").
type state string

const (
	stateStopped state = "stopped"
	statePlaying state = "playing"
	stateLatched state = "latched"
)

// event drives the transport FSM.
type event string

const (
	evPlay           event = "play"
	evShuttle        event = "shuttle"
	evStop           event = "stop"
	evBoundaryLatch  event = "boundary_latch"
	evUnlatch        event = "unlatch"
)

// TransportMode distinguishes plain play from shuttle, per spec.md §4.10
// ("playing (transport_mode ∈ {none, play, shuttle})").
type TransportMode string

const (
	TransportNone    TransportMode = "none"
	TransportPlay    TransportMode = "play"
	TransportShuttle TransportMode = "shuttle"
)

const (
	minShuttleSpeed = 0.5
	maxShuttleSpeed = 8.0
	// maxAudioBoundaryLookaheadUS is the audio pre-buffer lookahead window
	// (spec.md §4.10 step 8: "within 2,000,000 µs of an audio boundary").
	maxAudioBoundaryLookaheadUS = 2_000_000
)

// Display receives the resolved video entries for the current frame
// (spec.md §4.10 step 6, via the sequence accessor and media cache).
type Display interface {
	ShowVideo(entries []accessor.Entry)
}

// AudioDevice is the handle to actual audio output. Only the audio-owning
// engine for a given view talks to it (spec.md §4.10 "Audio ownership").
type AudioDevice interface {
	// Activate hands off the audio sources active at the current frame.
	Activate(entries []accessor.Entry) error
	// Deactivate stops audio output.
	Deactivate()
	// SetMaxTime clamps the device's playable range, in microseconds.
	SetMaxTime(maxMediaTimeUS int64)
	// AudioFrame returns the device's current playback position
	// (rescaled by the caller into the engine's sequence rate) and
	// whether it has advanced since the previous call.
	AudioFrame() (frame int64, changed bool, hasAudio bool)
}

// MediaCache prebuffers upcoming media so playback doesn't stall crossing
// a clip boundary (spec.md §6).
type MediaCache interface {
	Prebuffer(mediaPath string, frame int64)
}

var playbackLogger = log.WithComponent("playback")

// Engine is one view's transport controller. Callers construct one per
// view and call LoadSequence before Play/Shuttle/Seek do anything useful.
type Engine struct {
	mu sync.Mutex

	machine *stateMachine

	display Display
	cache   MediaCache
	audio   AudioDevice
	isAudioOwner bool

	accessor    *accessor.Accessor
	rate        rationaltime.Rate
	totalFrames int64

	transportMode  TransportMode
	direction      int
	speed          float64
	speedRemainder float64
	position       int64
	latchedFrame   int64

	lastVideoClipIDs map[string]bool
	prebufferedOnce  map[string]bool
	generation       int
}

// New constructs a stopped Engine. display is required; cache and an
// AudioDevice may be wired in later via ActivateAudio.
func New(display Display, cache MediaCache) *Engine {
	e := &Engine{display: display, cache: cache, transportMode: TransportNone}
	e.machine = newStateMachine(stateStopped, []transition{
		{From: stateStopped, Event: evPlay, To: statePlaying},
		{From: stateStopped, Event: evShuttle, To: statePlaying},
		{From: statePlaying, Event: evShuttle, To: statePlaying},
		{From: statePlaying, Event: evStop, To: stateStopped},
		{From: statePlaying, Event: evBoundaryLatch, To: stateLatched},
		{From: stateLatched, Event: evUnlatch, To: statePlaying},
		{From: stateLatched, Event: evStop, To: stateStopped},
	})
	return e
}

// State reports the engine's current coarse transport state.
func (e *Engine) State() string {
	return string(e.machine.State())
}

// Position returns the current frame.
func (e *Engine) Position() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position
}

// LoadSequence points the engine at a new sequence's resolver (spec.md
// §4.10 input "load_sequence(seq_id)"). It stops playback and resets the
// transport to frame 0.
func (e *Engine) LoadSequence(acc *accessor.Accessor, rate rationaltime.Rate, totalFrames int64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.accessor = acc
	e.rate = rate
	e.totalFrames = totalFrames
	e.position = 0
	e.transportMode = TransportNone
	e.direction = 0
	e.speed = 0
	e.lastVideoClipIDs = nil
	e.prebufferedOnce = map[string]bool{}
	e.generation++
	e.machine.set(stateStopped)
}

// Play starts forward playback at 1x (spec.md §4.10 input "play()").
func (e *Engine) Play(ctx context.Context) error {
	e.mu.Lock()
	wasLatched := e.machine.State() == stateLatched
	e.mu.Unlock()

	ev := evPlay
	if wasLatched {
		// Resuming from latch is only defined for shuttle input; plain
		// play() while latched behaves like an unlatch-and-play.
		ev = evUnlatch
	}
	if _, err := e.machine.fire(ctx, ev); err != nil {
		return err
	}

	e.mu.Lock()
	e.transportMode = TransportPlay
	e.direction = 1
	e.speed = 1
	e.mu.Unlock()
	metrics.IncPlaybackTransition("play")
	return nil
}

// Shuttle applies one shuttle input in dir (+1 forward, −1 reverse),
// implementing the speed ladder and boundary-latch unlatch rule (spec.md
// §4.10 "Shuttle speed ladder" and "Boundary latch").
func (e *Engine) Shuttle(ctx context.Context, dir int) error {
	if dir != 1 && dir != -1 {
		return fmt.Errorf("playback: shuttle: direction must be +1 or -1, got %d", dir)
	}

	e.mu.Lock()
	cur := e.machine.State()

	if cur == stateLatched {
		if dir == -e.direction {
			e.mu.Unlock()
			if _, err := e.machine.fire(ctx, evUnlatch); err != nil {
				return err
			}
			e.mu.Lock()
			e.direction = dir
			e.speed = 1
			e.transportMode = TransportShuttle
			e.mu.Unlock()
			metrics.IncPlaybackTransition("unlatch")
			return nil
		}
		// Same-direction shuttle input while latched is a no-op.
		e.mu.Unlock()
		return nil
	}

	if cur == stateStopped {
		e.mu.Unlock()
		if _, err := e.machine.fire(ctx, evShuttle); err != nil {
			return err
		}
		e.mu.Lock()
		e.direction = dir
		e.speed = 1
		e.transportMode = TransportShuttle
		e.mu.Unlock()
		metrics.IncPlaybackTransition("shuttle_start")
		return nil
	}

	// Already playing: apply the ladder in place, no state transition.
	stop := false
	if dir == e.direction {
		e.speed *= 2
		if e.speed > maxShuttleSpeed {
			e.speed = maxShuttleSpeed
		}
	} else {
		next := e.speed / 2
		if e.speed <= minShuttleSpeed {
			stop = true
		} else if next < minShuttleSpeed {
			e.speed = minShuttleSpeed
		} else {
			e.speed = next
		}
	}
	e.transportMode = TransportShuttle
	e.mu.Unlock()

	if stop {
		return e.Stop(ctx)
	}
	metrics.IncPlaybackTransition("shuttle_ladder")
	return nil
}

// SlowPlay pins speed to 0.5 in dir, independent of the shuttle ladder
// (spec.md §4.10 "Slow play").
func (e *Engine) SlowPlay(ctx context.Context, dir int) error {
	if dir != 1 && dir != -1 {
		return fmt.Errorf("playback: slow_play: direction must be +1 or -1, got %d", dir)
	}

	e.mu.Lock()
	cur := e.machine.State()
	e.mu.Unlock()

	if cur == stateStopped {
		if _, err := e.machine.fire(ctx, evShuttle); err != nil {
			return err
		}
	} else if cur == stateLatched {
		if _, err := e.machine.fire(ctx, evUnlatch); err != nil {
			return err
		}
	}

	e.mu.Lock()
	e.direction = dir
	e.speed = minShuttleSpeed
	e.transportMode = TransportShuttle
	e.mu.Unlock()
	metrics.IncPlaybackTransition("slow_play")
	return nil
}

// Stop halts playback and releases the boundary latch if set (spec.md
// §4.10 input "stop()").
func (e *Engine) Stop(ctx context.Context) error {
	cur := e.machine.State()
	if cur == stateStopped {
		return nil
	}
	if _, err := e.machine.fire(ctx, evStop); err != nil {
		return err
	}
	e.mu.Lock()
	e.transportMode = TransportNone
	e.direction = 0
	e.speed = 0
	e.mu.Unlock()
	metrics.IncPlaybackTransition("stop")
	return nil
}

// Seek repositions the playhead directly (spec.md §4.10 input
// "seek(frame)"), clamping to the loaded sequence's frame range and
// releasing any boundary latch.
func (e *Engine) Seek(ctx context.Context, frame int64) error {
	e.mu.Lock()
	if frame < 0 {
		frame = 0
	}
	if e.totalFrames > 0 && frame > e.totalFrames-1 {
		frame = e.totalFrames - 1
	}
	e.position = frame
	e.generation++
	e.prebufferedOnce = map[string]bool{}
	wasLatched := e.machine.State() == stateLatched
	e.mu.Unlock()

	if wasLatched {
		if _, err := e.machine.fire(ctx, evUnlatch); err != nil {
			return err
		}
	}

	e.resolveAndDisplay(ctx)
	return nil
}

// ActivateAudio claims audio ownership for this engine (spec.md §4.10
// "Audio ownership"). Callers must deactivate the previous view's engine
// before activating the next one.
func (e *Engine) ActivateAudio(device AudioDevice, maxMediaTimeUS int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.audio = device
	e.isAudioOwner = true
	e.lastVideoClipIDs = nil
	if device != nil {
		device.SetMaxTime(maxMediaTimeUS)
	}
}

// DeactivateAudio releases audio ownership and stops the device.
func (e *Engine) DeactivateAudio() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.audio != nil {
		e.audio.Deactivate()
	}
	e.audio = nil
	e.isAudioOwner = false
}
