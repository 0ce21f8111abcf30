package reminder

import (
	"testing"
	"time"
)

// helper: a fixed UTC instant
func utc(t *testing.T, y int, m time.Month, d, hh, mm int) time.Time {
	t.Helper()
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestLocalHour_KnownOffsets(t *testing.T) {
	// 2025-07-15 23:30 UTC: New York is on EDT (UTC-4), Tokyo is UTC+9.
	now := utc(t, 2025, time.July, 15, 23, 30)

	cases := []struct {
		zone string
		want int
	}{
		{"UTC", 23},
		{"", 23}, // empty zone means UTC
		{"America/New_York", 19},
		{"Asia/Tokyo", 8}, // already the 16th there
		{"Europe/Moscow", 2},
	}

	for _, tc := range cases {
		if got := LocalHour(now, tc.zone); got != tc.want {
			t.Errorf("LocalHour(%q) = %d, want %d", tc.zone, got, tc.want)
		}
	}
}

func TestLocalHour_DSTTransition(t *testing.T) {
	// 2025-11-02 06:30 UTC is after the US fall-back (02:00 EDT -> 01:00 EST),
	// so New York reads 01:30 EST.
	now := utc(t, 2025, time.November, 2, 6, 30)
	if got := LocalHour(now, "America/New_York"); got != 1 {
		t.Fatalf("LocalHour after fall-back = %d, want 1", got)
	}

	// An hour earlier it is 01:30 EDT, still hour 1: the repeated hour.
	before := utc(t, 2025, time.November, 2, 5, 30)
	if got := LocalHour(before, "America/New_York"); got != 1 {
		t.Fatalf("LocalHour in repeated hour = %d, want 1", got)
	}
}

func TestLocalHour_InvalidZone(t *testing.T) {
	now := utc(t, 2025, time.July, 15, 12, 0)
	if got := LocalHour(now, "Not/AZone"); got != UnresolvableHour {
		t.Fatalf("LocalHour(invalid) = %d, want %d", got, UnresolvableHour)
	}
}

func TestLocalDate(t *testing.T) {
	// 23:30 UTC on the 15th is already the 16th in Tokyo, still the 15th
	// in New York.
	now := utc(t, 2025, time.July, 15, 23, 30)

	cases := []struct {
		zone string
		want string
	}{
		{"UTC", "2025-07-15"},
		{"America/New_York", "2025-07-15"},
		{"Asia/Tokyo", "2025-07-16"},
		{"", "2025-07-15"},
		{"Not/AZone", "2025-07-15"}, // invalid falls back to UTC's date
	}

	for _, tc := range cases {
		if got := LocalDate(now, tc.zone); got != tc.want {
			t.Errorf("LocalDate(%q) = %q, want %q", tc.zone, got, tc.want)
		}
	}
}
