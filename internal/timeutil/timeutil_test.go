package timeutil

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2026-01-02T15:04:05Z", time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)},
		{"2026-01-02T15:04:05.123456789Z", time.Date(2026, 1, 2, 15, 4, 5, 123456789, time.UTC)},
		{"2026-01-02", time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"now", now},
		{"now-7d", now.AddDate(0, 0, -7)},
		{"now-2w", now.AddDate(0, 0, -14)},
		{"now-3h", now.Add(-3 * time.Hour)},
		{"now-45m", now.Add(-45 * time.Minute)},
		{"now-30s", now.Add(-30 * time.Second)},
	}
	for _, tc := range tests {
		got, err := Parse(tc.in, now)
		if err != nil {
			t.Errorf("Parse(%q): %v", tc.in, err)
			continue
		}
		if !got.Equal(tc.want) {
			t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	now := time.Now()
	for _, in := range []string{"", "yesterday", "now+1d", "now-d", "now-1y", "now--1d"} {
		if _, err := Parse(in, now); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", in)
		}
	}
}
