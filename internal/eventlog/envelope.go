// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package eventlog

import (
	"context"
	"encoding/json"
	"fmt"
	"os/user"

	"github.com/jvecore/editorcore/internal/command"
	"github.com/jvecore/editorcore/internal/log"
	"github.com/jvecore/editorcore/internal/store"
)

// envelope is the on-disk shape of one events.jsonl line (spec.md §4.3).
type envelope struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Scope     string `json:"scope"`
	TS        int64  `json:"ts"`
	Author    string `json:"author"`
	Parents   []string `json:"parents"`
	Schema    int    `json:"schema"`
	PayloadV  int    `json:"payload_v"`
	CommandID string `json:"command_id"`
	ProjectID string `json:"project_id"`
	StackID   string `json:"stack_id"`

	TimelinePayload map[string]any `json:"timeline_payload"`
	MediaPayload    map[string]any `json:"media_payload"`
	UIPayload       map[string]any `json:"ui_payload"`
	GenericPayload  map[string]any `json:"generic_payload"`
}

const (
	envelopeSchemaVersion  = 1
	envelopePayloadVersion = 1
)

var envelopeAuthor = resolveAuthor()

func resolveAuthor() string {
	u, err := user.Current()
	if err != nil || u.Username == "" {
		return "node:unknown"
	}
	return "node:" + u.Username
}

// scopeFor classifies a command's event-log scope (spec.md §4.3: "scope":
// "timeline:<sequence_id>" | "media" | "ui" | "command").
func scopeFor(rec *store.CommandRecord) string {
	switch rec.CommandType {
	case command.TypeSetPlayhead, command.TypeSetActiveSequence:
		return "ui"
	case command.TypeImportMedia, command.TypeDuplicateMasterClip:
		return "media"
	}
	if rec.SequenceID != "" {
		return "timeline:" + rec.SequenceID
	}
	return "command"
}

// buildEnvelope assembles the envelope for a committed command. The
// domain-specific payload (timeline/media/ui) mirrors the persisted undo
// payload; the others stay nil (serialized as JSON null per the spec
// example) so a reader can tell at a glance which projection the line
// targets.
func buildEnvelope(ctx context.Context, rec *store.CommandRecord, args, persisted map[string]any) envelope {
	scope := scopeFor(rec)

	env := envelope{
		ID:        fmt.Sprintf("%026d", rec.SequenceNumber),
		Type:      rec.CommandType,
		Scope:     scope,
		TS:        rec.ExecutedAtMs,
		Author:    envelopeAuthor,
		Parents:   parentsFor(rec),
		Schema:    envelopeSchemaVersion,
		PayloadV:  envelopePayloadVersion,
		CommandID: log.CommandIDFromContext(ctx),
		ProjectID: rec.ProjectID,
		StackID:   rec.StackID,
		GenericPayload: map[string]any{
			"parameters":      args,
			"sequence_number": rec.SequenceNumber,
			"playhead_value":  rec.PlayheadValue,
		},
	}

	switch {
	case scope == "ui":
		env.UIPayload = persisted
	case scope == "media":
		env.MediaPayload = persisted
	case len(scope) >= len("timeline:") && scope[:len("timeline:")] == "timeline:":
		env.TimelinePayload = persisted
	default:
		env.TimelinePayload = persisted
	}

	return env
}

func parentsFor(rec *store.CommandRecord) []string {
	if rec.ParentSequenceNumber == nil {
		return []string{}
	}
	return []string{fmt.Sprintf("%026d", *rec.ParentSequenceNumber)}
}

// Append writes one envelope to events/events.jsonl, implementing
// commandmanager.EventLogger. One JSON object per line, UTF-8, LF
// terminator (spec.md §6 "Event log on disk").
func (l *Log) Append(ctx context.Context, rec *store.CommandRecord, args, persisted map[string]any) error {
	env := buildEnvelope(ctx, rec, args, persisted)
	line, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("eventlog: marshal envelope: %w", err)
	}
	line = append(line, '\n')

	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	if _, err := l.eventsFile.Write(line); err != nil {
		return fmt.Errorf("eventlog: append event: %w", err)
	}
	if err := l.eventsFile.Sync(); err != nil {
		return fmt.Errorf("eventlog: sync events file: %w", err)
	}
	return nil
}
