package timeutil

import "time"

const secondsPerDay = 24 * 60 * 60

// CivilDate drops the clock and zone, keeping the calendar date in UTC so
// day differences are immune to DST transitions.
func CivilDate(value time.Time) time.Time {
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts calendar days from a to b (negative when b is before a).
func DaysBetween(a, b time.Time) int {
	return int(CivilDate(b).Unix()/secondsPerDay - CivilDate(a).Unix()/secondsPerDay)
}

func StartOfYear(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

func EndOfYear(year int) time.Time {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
}

func MaxDate(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func MinDate(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
