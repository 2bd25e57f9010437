// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package validate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidator_StartsValid(t *testing.T) {
	v := New()
	require.True(t, v.IsValid())
	require.NoError(t, v.Err())
	require.Empty(t, v.Errors())
}

func TestValidator_AddErrorMarksInvalid(t *testing.T) {
	v := New()
	v.AddError("clip_id", "required parameter missing", nil)

	require.False(t, v.IsValid())
	require.Len(t, v.Errors(), 1)
	require.Equal(t, "clip_id", v.Errors()[0].Field)
}

func TestValidator_ErrMessageSingular(t *testing.T) {
	v := New()
	v.AddError("frame", "expected a number", "abc")

	err := v.Err()
	require.Error(t, err)
	require.Equal(t, `validation failed for frame: expected a number`, err.Error())
}

func TestValidator_ErrMessageJoinsMultiple(t *testing.T) {
	v := New()
	v.AddError("a", "bad a", nil)
	v.AddError("b", "bad b", nil)

	err := v.Err()
	require.Error(t, err)
	require.Contains(t, err.Error(), "bad a")
	require.Contains(t, err.Error(), "bad b")
	require.Contains(t, err.Error(), "; ")
}

func TestValidationError_ErrorsReturnsAccumulated(t *testing.T) {
	v := New()
	v.AddError("a", "bad a", 1)
	v.AddError("b", "bad b", 2)

	verr, ok := v.Err().(ValidationError)
	require.True(t, ok)
	require.Len(t, verr.Errors(), 2)
}
