// pkg/clock/get.go
// Copyright(c) 2024-2026 apollo64 contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package clock formats and parses Ground Elapsed Time (GET), mission
// seconds since liftoff expressed as HHH:MM:SS.
package clock

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatGET renders seconds (which may be fractional; the fraction is
// truncated) as HHH:MM:SS. Negative values are clamped to zero.
func FormatGET(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int64(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%03d:%02d:%02d", h, m, s)
}

// ParseGET parses an HHH:MM:SS string (or a bare number of seconds)
// into mission seconds. It accepts both GET-formatted strings and
// numeric-seconds strings, per the Manual Dispatcher's timestamp
// resolution rule (spec §4.3).
func ParseGET(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if !strings.Contains(s, ":") {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}

	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	sec, err3 := strconv.ParseFloat(parts[2], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, false
	}
	return float64(h)*3600 + float64(m)*60 + sec, true
}
