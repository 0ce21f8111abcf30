// Package reminder decides who should be nudged to log their daily
// check-in and delivers the encrypted push messages.
package reminder

import "time"

// UnresolvableHour is returned by LocalHour when the zone cannot be
// loaded. Callers skip such subscriptions instead of guessing an hour.
const UnresolvableHour = -1

// LocalDate returns the calendar date ("YYYY-MM-DD") at the given instant
// in the given IANA zone. Empty or unknown zones fall back to UTC, which
// matches how subscriptions without a stored timezone behave.
func LocalDate(now time.Time, zone string) string {
	loc := time.UTC
	if zone != "" {
		if l, err := time.LoadLocation(zone); err == nil {
			loc = l
		}
	}
	return now.In(loc).Format("2006-01-02")
}

// LocalHour returns the wall-clock hour (0..23) at the given instant in
// the given IANA zone, or UnresolvableHour when the zone cannot be loaded.
// Empty means UTC; an unknown name is unresolvable, never a guess.
func LocalHour(now time.Time, zone string) int {
	loc := time.UTC
	if zone != "" {
		l, err := time.LoadLocation(zone)
		if err != nil {
			return UnresolvableHour
		}
		loc = l
	}
	return now.In(loc).Hour()
}
