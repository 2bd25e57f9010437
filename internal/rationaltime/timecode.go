// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package rationaltime

import (
	"fmt"
	"regexp"
	"strconv"
)

// timecodePattern matches non-drop HH:MM:SS:FF timecode strings.
var timecodePattern = regexp.MustCompile(`^(\d+):(\d{1,2}):(\d{1,2}):(\d+)$`)

// Format renders v as HH:MM:SS:FF non-drop timecode, using
// round(rate.Num/rate.Den) as the integer fps for the seconds-to-frames
// boundary. Drop-frame timecode is a reserved future extension; this
// function always produces non-drop output.
func (v Value) Format() string {
	fps := roundRate(v.Rate)
	if fps <= 0 {
		fps = 1
	}
	totalFrames := v.Frames
	negative := totalFrames < 0
	if negative {
		totalFrames = -totalFrames
	}

	frames := totalFrames % int64(fps)
	totalSeconds := totalFrames / int64(fps)
	seconds := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	minutes := totalMinutes % 60
	hours := totalMinutes / 60

	sign := ""
	if negative {
		sign = "-"
	}
	return fmt.Sprintf("%s%02d:%02d:%02d:%02d", sign, hours, minutes, seconds, frames)
}

// Parse parses an HH:MM:SS:FF non-drop timecode string at rate.
func Parse(tc string, rate Rate) (Value, error) {
	if err := rate.validate(); err != nil {
		return Value{}, err
	}
	negative := false
	s := tc
	if len(s) > 0 && s[0] == '-' {
		negative = true
		s = s[1:]
	}
	m := timecodePattern.FindStringSubmatch(s)
	if m == nil {
		return Value{}, fmt.Errorf("rationaltime: invalid timecode %q", tc)
	}
	hours, _ := strconv.ParseInt(m[1], 10, 64)
	minutes, _ := strconv.ParseInt(m[2], 10, 64)
	seconds, _ := strconv.ParseInt(m[3], 10, 64)
	frames, _ := strconv.ParseInt(m[4], 10, 64)

	if minutes > 59 || seconds > 59 {
		return Value{}, fmt.Errorf("rationaltime: invalid timecode %q: minutes/seconds must be 0-59", tc)
	}

	fps := int64(roundRate(rate))
	if frames >= fps {
		return Value{}, fmt.Errorf("rationaltime: invalid timecode %q: frame field %d >= fps %d", tc, frames, fps)
	}

	total := ((hours*60+minutes)*60+seconds)*fps + frames
	if negative {
		total = -total
	}
	return Value{Frames: total, Rate: rate}, nil
}

// Canonicalize normalizes a timecode string to the canonical zero-padded
// form at rate, for round-trip comparisons (format(parse(tc)) == canonicalize(tc)).
func Canonicalize(tc string, rate Rate) (string, error) {
	v, err := Parse(tc, rate)
	if err != nil {
		return "", err
	}
	return v.Format(), nil
}

// roundRate returns the nearest integer fps for rate.Num/rate.Den, used as
// the seconds-to-frames boundary for non-drop timecode.
func roundRate(rate Rate) int {
	if rate.Den == 0 {
		return 0
	}
	num := float64(rate.Num)
	den := float64(rate.Den)
	return int(num/den + 0.5)
}
