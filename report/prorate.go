package report

import (
	"time"

	"carbonreport/internal/timeutil"
)

// ApplicableAmount returns the share of total that falls inside year, in
// proportion to the calendar days of [start, end] (both inclusive) that
// overlap the year. The sign of total is preserved. Missing dates, an
// inverted period or a zero total give 0.
func ApplicableAmount(start, end time.Time, total float64, year int) float64 {
	if start.IsZero() || end.IsZero() || total == 0 {
		return 0
	}
	start = timeutil.CivilDate(start)
	end = timeutil.CivilDate(end)
	if end.Before(start) {
		return 0
	}

	overlapStart := timeutil.MaxDate(start, timeutil.StartOfYear(year))
	overlapEnd := timeutil.MinDate(end, timeutil.EndOfYear(year))
	if overlapEnd.Before(overlapStart) {
		return 0
	}

	totalDays := timeutil.DaysBetween(start, end) + 1
	overlappedDays := timeutil.DaysBetween(overlapStart, overlapEnd) + 1
	if overlappedDays == totalDays {
		return total
	}
	return total * float64(overlappedDays) / float64(totalDays)
}
