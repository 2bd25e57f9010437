// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package rationaltime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatParseRoundTrip(t *testing.T) {
	r := Rate{Num: 30, Den: 1}
	cases := []string{
		"00:00:00:00",
		"00:00:01:00",
		"00:01:00:00",
		"01:00:00:00",
		"01:02:03:04",
	}
	for _, tc := range cases {
		v, err := Parse(tc, r)
		require.NoError(t, err)
		assert.Equal(t, tc, v.Format())
	}
}

func TestFormatParseNonIntegerRate(t *testing.T) {
	// 30000/1001 ("29.97") rounds to 30 fps for the non-drop boundary.
	r := Rate{Num: 30000, Den: 1001}
	v, err := Parse("00:00:01:00", r)
	require.NoError(t, err)
	assert.Equal(t, int64(30), v.Frames)
	assert.Equal(t, "00:00:01:00", v.Format())
}

func TestParseRejectsInvalidFrameField(t *testing.T) {
	r := Rate{Num: 30, Den: 1}
	_, err := Parse("00:00:00:30", r)
	require.Error(t, err)
}

func TestParseRejectsMalformed(t *testing.T) {
	r := Rate{Num: 30, Den: 1}
	_, err := Parse("not-a-timecode", r)
	require.Error(t, err)
}

func TestCanonicalize(t *testing.T) {
	r := Rate{Num: 25, Den: 1}
	got, err := Canonicalize("1:2:3:4", r)
	require.NoError(t, err)
	assert.Equal(t, "01:02:03:04", got)
}
