// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package executor

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jvecore/editorcore/internal/command"
	"github.com/jvecore/editorcore/internal/store"
)

func init() {
	Register(command.TypeImportMedia, ImportMedia)
	Register(command.TypeDuplicateMasterClip, DuplicateMasterClip)
}

// ImportMedia registers a new media asset. It never touches the
// timeline (spec.md §4.6 "ImportMedia").
func ImportMedia(ctx context.Context, q store.Querier, ec Context, params map[string]any) (map[string]any, error) {
	uri, _ := params["uri"].(string)
	durationFrames, _ := numberToInt64(params["duration_frames"])
	fpsNum, _ := numberToInt64(params["fps_numerator"])
	fpsDen, _ := numberToInt64(params["fps_denominator"])
	audioChannels, _ := numberToInt64(params["audio_channels"])

	m := &store.Media{
		ID:             uuid.NewString(),
		ProjectID:      ec.ProjectID,
		FilePath:       uri,
		DurationFrames: durationFrames,
		FPSNumerator:   uint32(fpsNum),
		FPSDenominator: uint32(fpsDen),
		AudioChannels:  int(audioChannels),
	}
	if err := store.InsertMedia(ctx, q, m); err != nil {
		return nil, fmt.Errorf("executor: import media: %w", err)
	}
	return map[string]any{
		"media_id":      m.ID,
		"new_media_ids": []string{m.ID},
		"new_media":     []map[string]any{mediaToMap(m)},
	}, nil
}

// DuplicateMasterClip inserts a new master clip row copied from an
// existing one, with a fresh id and copied properties (spec.md §4.6
// "DuplicateMasterClip").
func DuplicateMasterClip(ctx context.Context, q store.Querier, ec Context, params map[string]any) (map[string]any, error) {
	sourceID, _ := params["source_master_clip_id"].(string)
	targetBinID, _ := params["target_bin_id"].(string)

	source, err := store.GetClip(ctx, q, sourceID)
	if err != nil {
		return nil, fmt.Errorf("executor: duplicate master clip: load %s: %w", sourceID, err)
	}
	if source.ClipKind != store.ClipMaster {
		return nil, fmt.Errorf("executor: duplicate master clip: %s is not a master clip", sourceID)
	}

	copyClip := *source
	copyClip.ID = uuid.NewString()
	if targetBinID != "" {
		copyClip.TrackID = nil
		copyClip.OwnerSequenceID = targetBinID
	}
	if err := store.InsertClip(ctx, q, &copyClip); err != nil {
		return nil, fmt.Errorf("executor: duplicate master clip: insert copy: %w", err)
	}

	props, err := store.ListPropertiesByClip(ctx, q, sourceID)
	if err != nil {
		return nil, fmt.Errorf("executor: duplicate master clip: list properties: %w", err)
	}
	for _, p := range props {
		copyProp := *p
		copyProp.ID = uuid.NewString()
		copyProp.ClipID = copyClip.ID
		if err := store.UpsertProperty(ctx, q, &copyProp); err != nil {
			return nil, fmt.Errorf("executor: duplicate master clip: copy property %s: %w", p.Key, err)
		}
	}

	return map[string]any{
		"new_master_clip_id": copyClip.ID,
		"new_clip_ids":       []string{copyClip.ID},
		"new_clips":          []map[string]any{clipToMap(&copyClip)},
	}, nil
}
