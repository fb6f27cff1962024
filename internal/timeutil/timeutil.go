// Package timeutil parses the time arguments accepted by loupe commands.
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Parse interprets a time argument relative to a fixed reference instant:
// an RFC3339 or RFC3339Nano timestamp, a plain date ("2026-01-02", midnight
// UTC), or a relative expression ("now", "now-7d"). Passing the reference
// explicitly keeps multiple arguments of one command consistent.
//
// Relative units: s, m, h, d, w. Days and weeks go through AddDate so clock
// time is preserved across DST transitions.
func Parse(s string, now time.Time) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if s == "now" {
		return now, nil
	}
	if rest, ok := strings.CutPrefix(s, "now-"); ok {
		return subtract(now, rest)
	}
	return time.Time{}, fmt.Errorf("invalid time %q (use RFC3339, a date like 2026-01-02, or a relative form like now-7d)", s)
}

func subtract(now time.Time, offset string) (time.Time, error) {
	if len(offset) < 2 {
		return time.Time{}, fmt.Errorf("invalid offset %q (expected <number><unit>, e.g. 7d)", offset)
	}
	unit := offset[len(offset)-1]
	n, err := strconv.Atoi(offset[:len(offset)-1])
	if err != nil || n < 0 {
		return time.Time{}, fmt.Errorf("invalid offset %q (expected a non-negative number before the unit)", offset)
	}
	switch unit {
	case 'd':
		return now.AddDate(0, 0, -n), nil
	case 'w':
		return now.AddDate(0, 0, -7*n), nil
	case 'h':
		return now.Add(-time.Duration(n) * time.Hour), nil
	case 'm':
		return now.Add(-time.Duration(n) * time.Minute), nil
	case 's':
		return now.Add(-time.Duration(n) * time.Second), nil
	}
	return time.Time{}, fmt.Errorf("invalid offset unit %q (use s, m, h, d, or w)", string(unit))
}
