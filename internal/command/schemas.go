// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package command

// Registered command types (spec.md §4.6 key executors).
const (
	TypeInsert              = "Insert"
	TypeOverwrite           = "Overwrite"
	TypeSplitClip           = "SplitClip"
	TypeDeleteClip          = "DeleteClip"
	TypeBatchCommand        = "BatchCommand"
	TypeRippleDelete        = "RippleDelete"
	TypeRippleEdit          = "RippleEdit"
	TypeBatchRippleEdit     = "BatchRippleEdit"
	TypeNudge               = "Nudge"
	TypeMoveClipToTrack     = "MoveClipToTrack"
	TypeDuplicateMasterClip = "DuplicateMasterClip"
	TypeSetPlayhead         = "SetPlayhead"
	TypeSetActiveSequence   = "SetActiveSequence"
	TypeImportMedia         = "ImportMedia"
)

func init() {
	Register(&Schema{
		Name: TypeInsert,
		Args: map[string]KeyRule{
			"track_id":       {Kind: KindString, Required: true},
			"insert_time":    {Kind: KindAny, Required: true},
			"clip":           {Kind: KindTable, Required: true, Fields: clipPayloadFields},
			"advance_playhead": {Kind: KindBoolean, Default: false},
		},
		Persisted: map[string]KeyRule{
			"new_clip_id":        {Kind: KindString},
			"executed_mutations": {Kind: KindAny},
			"new_clip_ids":       {Kind: KindAny},
			"original_states":    {Kind: KindAny},
		},
	})

	Register(&Schema{
		Name: TypeOverwrite,
		Args: map[string]KeyRule{
			"track_id":        {Kind: KindString, Required: true},
			"overwrite_time":  {Kind: KindAny, Required: true},
			"clip":            {Kind: KindTable, Required: true, Fields: clipPayloadFields},
		},
		Persisted: map[string]KeyRule{
			"new_clip_id":        {Kind: KindString},
			"executed_mutations": {Kind: KindAny},
			"new_clip_ids":       {Kind: KindAny},
			"original_states":    {Kind: KindAny},
		},
	})

	Register(&Schema{
		Name: TypeSplitClip,
		Args: map[string]KeyRule{
			"clip_id":    {Kind: KindString, Required: true},
			"split_time": {Kind: KindAny, Required: true},
		},
		Persisted: map[string]KeyRule{
			"right_clip_id":   {Kind: KindString},
			"original_state":  {Kind: KindTable, Fields: clipPayloadFields},
			"new_clip_ids":    {Kind: KindAny},
			"original_states": {Kind: KindAny},
		},
	})

	Register(&Schema{
		Name: TypeDeleteClip,
		Args: map[string]KeyRule{
			"clip_id": {Kind: KindString, Required: true},
		},
		Persisted: map[string]KeyRule{
			"original_state":  {Kind: KindTable, Fields: clipPayloadFields},
			"original_states": {Kind: KindAny},
		},
	})

	Register(&Schema{
		Name: TypeBatchCommand,
		Args: map[string]KeyRule{
			"commands": {Kind: KindAny, Required: true},
		},
		Persisted: map[string]KeyRule{
			"undo_group_id": {Kind: KindString},
			"child_results": {Kind: KindAny},
		},
	})

	Register(&Schema{
		Name: TypeRippleDelete,
		Args: map[string]KeyRule{
			"clip_ids": {Kind: KindAny, Required: true},
			"track_id": {Kind: KindString, Required: true},
		},
		Persisted: map[string]KeyRule{
			"original_states":    {Kind: KindAny},
			"executed_mutations": {Kind: KindAny},
			"new_clip_ids":       {Kind: KindAny},
		},
	})

	Register(&Schema{
		Name: TypeRippleEdit,
		Args: map[string]KeyRule{
			"edges": {Kind: KindAny, Required: true},
		},
		Persisted: map[string]KeyRule{
			"original_states":    {Kind: KindAny},
			"executed_mutations": {Kind: KindAny},
		},
	})

	Register(&Schema{
		Name: TypeBatchRippleEdit,
		Args: map[string]KeyRule{
			"groups": {Kind: KindAny, Required: true},
		},
		Persisted: map[string]KeyRule{
			"original_states":    {Kind: KindAny},
			"executed_mutations": {Kind: KindAny},
		},
	})

	Register(&Schema{
		Name: TypeNudge,
		Args: map[string]KeyRule{
			"clip_ids":           {Kind: KindAny, Required: true},
			"nudge_amount_frames": {Kind: KindNumber, Required: true},
		},
		Persisted: map[string]KeyRule{
			"original_states": {Kind: KindAny},
		},
	})

	Register(&Schema{
		Name: TypeMoveClipToTrack,
		Args: map[string]KeyRule{
			"clip_id":        {Kind: KindString, Required: true},
			"target_track_id": {Kind: KindString, Required: true},
		},
		Persisted: map[string]KeyRule{
			"original_track_id":  {Kind: KindString},
			"executed_mutations": {Kind: KindAny},
			"new_clip_ids":       {Kind: KindAny},
			"original_states":    {Kind: KindAny},
		},
	})

	Register(&Schema{
		Name: TypeDuplicateMasterClip,
		Args: map[string]KeyRule{
			"source_master_clip_id": {Kind: KindString, Required: true},
			"target_bin_id":         {Kind: KindString, EmptyAsNil: true},
		},
		Persisted: map[string]KeyRule{
			"new_master_clip_id": {Kind: KindString},
			"new_clip_ids":       {Kind: KindAny},
		},
	})

	Register(&Schema{
		Name: TypeSetPlayhead,
		Args: map[string]KeyRule{
			"sequence_id": {Kind: KindString, Required: true},
			"frame":       {Kind: KindNumber, Required: true},
		},
		NonUndoable: true,
	})

	Register(&Schema{
		Name: TypeSetActiveSequence,
		Args: map[string]KeyRule{
			"sequence_id": {Kind: KindString, Required: true},
		},
		NonUndoable: true,
	})

	Register(&Schema{
		Name: TypeImportMedia,
		Args: map[string]KeyRule{
			"uri":             {Kind: KindString, Required: true},
			"duration_frames": {Kind: KindNumber, Required: true},
			"fps_numerator":   {Kind: KindNumber, Required: true},
			"fps_denominator": {Kind: KindNumber, Required: true},
			"audio_channels":  {Kind: KindNumber, Default: 0.0},
		},
		Persisted: map[string]KeyRule{
			"media_id":      {Kind: KindString},
			"new_media_ids": {Kind: KindAny},
		},
	})
}

// clipPayloadFields describes the shape of a clip table argument shared
// by Insert and Overwrite.
var clipPayloadFields = map[string]KeyRule{
	"media_id":         {Kind: KindString, EmptyAsNil: true},
	"master_clip_id":   {Kind: KindString, EmptyAsNil: true},
	"name":             {Kind: KindString, Default: ""},
	"duration_frames":  {Kind: KindNumber, Required: true},
	"source_in_frame":  {Kind: KindNumber, Default: 0.0},
	"source_out_frame": {Kind: KindNumber, Required: true},
	"fps_numerator":    {Kind: KindNumber, Required: true},
	"fps_denominator":  {Kind: KindNumber, Required: true},
}
