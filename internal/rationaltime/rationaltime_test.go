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

func TestAddSubRequireSameRate(t *testing.T) {
	r30 := Rate{Num: 30, Den: 1}
	r24 := Rate{Num: 24, Den: 1}

	a := FromFrames(10, r30)
	b := FromFrames(5, r30)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, int64(15), sum.Frames)

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, int64(5), diff.Frames)

	_, err = a.Add(FromFrames(1, r24))
	require.Error(t, err)
	var mismatch ErrRateMismatch
	require.ErrorAs(t, err, &mismatch)
}

func TestRescaleFloorDoesNotOvershoot(t *testing.T) {
	// 10 frames at 30fps -> media at 24fps: 10 * 24 / 30 = 8 exactly.
	v := FromFrames(10, Rate{Num: 30, Den: 1})
	got := v.RescaleFloor(Rate{Num: 24, Den: 1})
	assert.Equal(t, int64(8), got.Frames)

	// 11 frames at 30fps -> 24fps: 11*24/30 = 8.8 -> floor 8.
	v2 := FromFrames(11, Rate{Num: 30, Den: 1})
	got2 := v2.RescaleFloor(Rate{Num: 24, Den: 1})
	assert.Equal(t, int64(8), got2.Frames)
}

func TestRescaleFloorIdentityWhenMultiple(t *testing.T) {
	// Property 6: rescaling back to the original rate introduces no
	// rounding when the original was an exact multiple of the target.
	original := FromFrames(100, Rate{Num: 60, Den: 1})
	down := original.RescaleFloor(Rate{Num: 30, Den: 1})
	back := down.RescaleFloor(Rate{Num: 60, Den: 1})
	assert.Equal(t, original.Frames, back.Frames)
}

func TestHydratePassesRationalThrough(t *testing.T) {
	r := Rate{Num: 25, Den: 1}
	v := FromFrames(7, r)

	got, err := Hydrate(v, Rate{Num: 30, Den: 1})
	require.NoError(t, err)
	assert.Equal(t, v, got)

	got2, err := Hydrate(42, r)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got2.Frames)
	assert.True(t, got2.Rate.Equal(r))
}

func TestHydrateRejectsNonIntegerFloat(t *testing.T) {
	_, err := Hydrate(3.5, Rate{Num: 30, Den: 1})
	require.Error(t, err)
}

func TestToSecondsFromSeconds(t *testing.T) {
	r := Rate{Num: 30, Den: 1}
	v := FromFrames(90, r)
	assert.InDelta(t, 3.0, v.ToSeconds(), 1e-9)

	back := FromSeconds(3.0, r)
	assert.Equal(t, int64(90), back.Frames)
}

func TestCompareAndLess(t *testing.T) {
	r := Rate{Num: 30, Den: 1}
	a := FromFrames(1, r)
	b := FromFrames(2, r)
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))

	c, err := a.Compare(a)
	require.NoError(t, err)
	assert.Equal(t, 0, c)
}

func TestZeroAndFromFrames(t *testing.T) {
	r := Rate{Num: 24, Den: 1}
	z := Zero(r)
	assert.Equal(t, int64(0), z.Frames)
	assert.True(t, z.Rate.Equal(r))
}
