// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package playback

import (
	"context"
	"math"
	"time"
)

const maxTickIntervalMs = 16 // spec.md §4.10: "scheduled at ~1000/fps ms, capped at 16 ms"

// tickInterval returns the scheduling interval for the engine's loaded
// sequence rate, capped at 16ms.
func (e *Engine) tickInterval() time.Duration {
	e.mu.Lock()
	rate := e.rate
	e.mu.Unlock()

	ms := maxTickIntervalMs
	if rate.Num > 0 {
		computed := int(math.Round(1000 * float64(rate.Den) / float64(rate.Num)))
		if computed > 0 && computed < maxTickIntervalMs {
			ms = computed
		}
	}
	return time.Duration(ms) * time.Millisecond
}

// Run drives Tick on the engine's schedule until ctx is cancelled, the
// way the teacher's session heartbeat monitor drives its poll loop. The
// interval is recomputed each iteration since LoadSequence can change the
// sequence rate mid-run.
func (e *Engine) Run(ctx context.Context) {
	timer := time.NewTimer(e.tickInterval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			if err := e.Tick(ctx); err != nil {
				playbackLogger.Warn().Err(err).Msg("tick failed")
			}
			timer.Reset(e.tickInterval())
		}
	}
}
