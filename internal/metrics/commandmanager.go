// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	commandsExecutedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "editorcore_commands_executed_total",
		Help: "Commands executed by the command manager, by type and outcome",
	}, []string{"command_type", "outcome"}) // outcome=success|error

	commandDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "editorcore_command_duration_seconds",
		Help: "Command execution latency including store transaction and projection",
	}, []string{"command_type"})

	undoTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "editorcore_undo_total",
		Help: "Undo operations by stack and outcome",
	}, []string{"stack_id", "outcome"}) // outcome=success|empty|error

	redoTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "editorcore_redo_total",
		Help: "Redo operations by stack and outcome",
	}, []string{"stack_id", "outcome"})

	orphanedCursorsRepaired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "editorcore_orphaned_cursors_repaired_total",
		Help: "Undo cursors reset to root because their sequence number no longer exists",
	})
)

func RecordCommandExecuted(commandType, outcome string) {
	commandsExecutedTotal.WithLabelValues(commandType, outcome).Inc()
}

func ObserveCommandDuration(commandType string, seconds float64) {
	commandDuration.WithLabelValues(commandType).Observe(seconds)
}

func IncUndo(stackID, outcome string) {
	undoTotal.WithLabelValues(stackID, outcome).Inc()
}

func IncRedo(stackID, outcome string) {
	redoTotal.WithLabelValues(stackID, outcome).Inc()
}

func IncOrphanedCursorRepaired() {
	orphanedCursorsRepaired.Inc()
}
