// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package playback

import (
	"context"
	"math"

	"github.com/jvecore/editorcore/internal/accessor"
)

// speedRemainder and friends live on Engine; Tick is the unified tick
// algorithm (spec.md §4.10 "Unified tick algorithm"), run once per
// scheduled interval by the scheduler (scheduler.go) or directly by tests.
func (e *Engine) Tick(ctx context.Context) error {
	e.mu.Lock()
	cur := e.machine.State()
	if cur == stateStopped {
		e.mu.Unlock()
		return nil // step 1: not playing, exit
	}
	if cur == stateLatched {
		frame := e.latchedFrame
		e.mu.Unlock()
		e.display.ShowVideo(e.accessor.GetVideoAt(frame)) // step 2: redisplay latched frame
		return nil
	}

	rawNewPos := e.advancePosition() // step 3
	total := e.totalFrames
	direction := e.direction
	e.mu.Unlock()

	newPos := rawNewPos
	if total > 0 { // step 4: clamp
		if newPos < 0 {
			newPos = 0
		}
		if newPos > total-1 {
			newPos = total - 1
		}
	}

	// step 5: a boundary is "hit" only when advancing further in the
	// current direction would leave the sequence, not merely because
	// playback happens to sit at frame 0 while still moving forward.
	hitBoundary := total > 0 && ((direction >= 0 && newPos == total-1) || (direction < 0 && newPos == 0))
	if hitBoundary {
		return e.handleBoundary(ctx, newPos)
	}

	e.mu.Lock()
	e.position = newPos
	e.mu.Unlock()

	e.resolveAndDisplay(ctx) // steps 6-7
	e.prebufferLookahead(newPos) // step 8
	e.commitPosition(newPos) // step 9 (idempotent: position already set above)
	return nil
}

// advancePosition computes the new raw (pre-clamp) position for this tick
// (spec.md §4.10 step 3), preferring the audio clock when this engine owns
// audio and audio is actively driving.
func (e *Engine) advancePosition() int64 {
	if e.isAudioOwner && e.audio != nil {
		if frame, changed, hasAudio := e.audio.AudioFrame(); hasAudio && changed {
			return frame
		}
	}

	e.speedRemainder += e.speed
	steps := int64(math.Trunc(e.speedRemainder))
	e.speedRemainder -= float64(steps)
	return e.position + int64(e.direction)*steps
}

// commitPosition sets the committed frame (spec.md step 9) under the lock,
// without running display or prebuffer. Tick stores the value returned by
// advancePosition itself before display, so this only updates the stored
// frame for callers that set the position directly.
func (e *Engine) commitPosition(frame int64) {
	e.mu.Lock()
	e.position = frame
	e.mu.Unlock()
}

func (e *Engine) handleBoundary(ctx context.Context, boundaryFrame int64) error {
	e.mu.Lock()
	mode := e.transportMode
	e.position = boundaryFrame
	e.mu.Unlock()

	e.resolveAndDisplay(ctx)

	switch mode {
	case TransportPlay:
		return e.Stop(ctx)
	case TransportShuttle:
		e.mu.Lock()
		e.latchedFrame = boundaryFrame
		e.mu.Unlock()
		if _, err := e.machine.fire(ctx, evBoundaryLatch); err != nil {
			return err
		}
		if e.audio != nil {
			e.audio.SetMaxTime(e.boundaryAudioTimeUS(boundaryFrame))
		}
		return nil
	default:
		return e.Stop(ctx)
	}
}

// boundaryAudioTimeUS converts the boundary frame to microseconds at the
// engine's sequence rate, for clamping the audio device (spec.md §4.10
// "Boundary latch": "clamp audio to max_media_time_us").
func (e *Engine) boundaryAudioTimeUS(frame int64) int64 {
	if e.rate.Num == 0 {
		return 0
	}
	return int64(float64(frame) * 1_000_000 * float64(e.rate.Den) / float64(e.rate.Num))
}

// resolveAndDisplay resolves the current frame via the sequence accessor
// and presents it, re-resolving audio only when the active clip-id set has
// changed since the last tick (spec.md §4.10 steps 6-7).
func (e *Engine) resolveAndDisplay(ctx context.Context) {
	e.mu.Lock()
	acc := e.accessor
	frame := e.position
	isOwner := e.isAudioOwner
	audio := e.audio
	e.mu.Unlock()
	if acc == nil {
		return
	}

	video := acc.GetVideoAt(frame)
	e.display.ShowVideo(video)

	if !isOwner || audio == nil {
		return
	}
	audioEntries := acc.GetAudioAt(frame)
	ids := clipIDSet(audioEntries)

	e.mu.Lock()
	changed := !sameIDSet(e.lastVideoClipIDs, ids)
	if changed {
		e.lastVideoClipIDs = ids
	}
	e.mu.Unlock()

	if changed {
		if err := audio.Activate(audioEntries); err != nil {
			playbackLogger.Warn().Err(err).Msg("audio activate failed")
		}
	}
}

// prebufferLookahead pre-buffers the next/prev clip's seek when within
// fps frames of a video boundary (in the current direction), and the
// next/prev audio source within 2s of an audio boundary (spec.md §4.10
// step 8), each clip at most once per transport (tracked by generation).
func (e *Engine) prebufferLookahead(frame int64) {
	e.mu.Lock()
	acc := e.accessor
	cache := e.cache
	direction := e.direction
	rate := e.rate
	generation := e.generation
	e.mu.Unlock()
	if acc == nil || cache == nil {
		return
	}

	fpsFrames := int64(math.Round(float64(rate.Num) / float64(rate.Den)))
	if fpsFrames <= 0 {
		fpsFrames = 1
	}

	var videoEntry accessor.Entry
	var haveVideo bool
	if direction >= 0 {
		videoEntry, haveVideo = acc.GetNextVideo(frame)
	} else {
		videoEntry, haveVideo = acc.GetPrevVideo(frame)
	}
	if haveVideo {
		dist := videoEntry.ClipStartFrame - frame
		if dist < 0 {
			dist = -dist
		}
		if dist <= fpsFrames {
			e.prebufferOnce(generation, "video:"+videoEntry.Clip.ID, func() {
				cache.Prebuffer(videoEntry.MediaPath, videoEntry.SourceFrame)
			})
		}
	}

	var audioEntry accessor.Entry
	var haveAudio bool
	if direction >= 0 {
		audioEntry, haveAudio = acc.GetNextAudio(frame)
	} else {
		audioEntry, haveAudio = acc.GetPrevAudio(frame)
	}
	if haveAudio {
		distFrames := audioEntry.ClipStartFrame - frame
		if distFrames < 0 {
			distFrames = -distFrames
		}
		distUS := e.boundaryAudioTimeUS(distFrames)
		if distUS <= maxAudioBoundaryLookaheadUS {
			e.prebufferOnce(generation, "audio:"+audioEntry.Clip.ID, func() {
				cache.Prebuffer(audioEntry.MediaPath, audioEntry.SourceFrame)
			})
		}
	}
}

func (e *Engine) prebufferOnce(generation int, key string, do func()) {
	e.mu.Lock()
	if e.generation != generation {
		e.mu.Unlock()
		return
	}
	if e.prebufferedOnce[key] {
		e.mu.Unlock()
		return
	}
	e.prebufferedOnce[key] = true
	e.mu.Unlock()
	do()
}

func clipIDSet(entries []accessor.Entry) map[string]bool {
	ids := make(map[string]bool, len(entries))
	for _, en := range entries {
		ids[en.Clip.ID] = true
	}
	return ids
}

func sameIDSet(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}
