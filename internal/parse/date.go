// Package parse holds the forgiving parsers used on provider spreadsheet
// cells and on the reference CSV files. None of them return errors: callers
// get ok=false and decide how the row degrades.
package parse

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

type dateLayout struct {
	layout     string
	shortYear  bool
	monthFirst bool
}

// Priority order matters: ISO first, day-first before month-first, and the
// compact yyyyMMdd form last.
var dateLayouts = []dateLayout{
	{layout: "2006-1-2"},
	{layout: "2006/1/2"},
	{layout: "2/1/2006"},
	{layout: "2-1-2006"},
	{layout: "2.1.2006"},
	{layout: "2/1/06", shortYear: true},
	{layout: "2-1-06", shortYear: true},
	{layout: "2.1.06", shortYear: true},
	{layout: "1/2/2006", monthFirst: true},
	{layout: "1-2-2006", monthFirst: true},
	{layout: "1/2/06", shortYear: true, monthFirst: true},
	{layout: "1-2-06", shortYear: true, monthFirst: true},
	{layout: "20060102"},
}

// Date parses a calendar date in UTC. Day-first readings win over
// month-first ones; month-first is only reached when the day-first reading
// is not a valid calendar date, so "03/04/2024" is the 3rd of April.
// Two-digit years pivot at 50 (50..99 -> 19xx, 00..49 -> 20xx). Bare Excel
// serial numbers are accepted as a last resort.
func Date(text string) (time.Time, bool) {
	value := strings.TrimSpace(text)
	if value == "" {
		return time.Time{}, false
	}
	if cut := strings.IndexAny(value, " T"); cut > 0 {
		value = value[:cut]
	}

	for _, candidate := range dateLayouts {
		parsed, err := time.ParseInLocation(candidate.layout, value, time.UTC)
		if err != nil {
			continue
		}
		if candidate.shortYear {
			parsed = pivotShortYear(parsed)
		}
		return parsed, true
	}

	return excelSerialDate(value)
}

func pivotShortYear(parsed time.Time) time.Time {
	yy := parsed.Year() % 100
	year := 2000 + yy
	if yy >= 50 {
		year = 1900 + yy
	}
	return time.Date(year, parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
}

func excelSerialDate(value string) (time.Time, bool) {
	whole := value
	if dot := strings.IndexByte(value, '.'); dot >= 0 {
		whole = value[:dot]
	}
	if len(whole) == 0 || len(whole) > 6 || strings.Trim(whole, "0123456789") != "" {
		return time.Time{}, false
	}
	serial, err := strconv.ParseFloat(value, 64)
	if err != nil || serial < 1 {
		return time.Time{}, false
	}
	parsed, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), true
}
