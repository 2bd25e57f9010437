// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var playbackTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "editorcore_playback_transitions_total",
	Help: "Playback transport transitions by kind (play, stop, shuttle_start, shuttle_ladder, unlatch, slow_play)",
}, []string{"kind"})

func IncPlaybackTransition(kind string) {
	playbackTransitionsTotal.WithLabelValues(kind).Inc()
}
