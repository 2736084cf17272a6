package timeutil

import (
	"testing"
	"time"
)

func TestCivilDate(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("CET", 3600)
	input := time.Date(2026, 3, 1, 23, 37, 9, 123, loc)
	got := CivilDate(input)

	if got.Year() != 2026 || got.Month() != time.March || got.Day() != 1 {
		t.Fatalf("unexpected date: %v", got)
	}
	if got.Location() != time.UTC || got.Hour() != 0 || got.Nanosecond() != 0 {
		t.Fatalf("expected UTC midnight, got %v", got)
	}
}

func TestDaysBetween(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{name: "same day", a: date(2025, 6, 15), b: date(2025, 6, 15), want: 0},
		{name: "leap february", a: date(2024, 2, 1), b: date(2024, 3, 1), want: 29},
		{name: "common february", a: date(2023, 2, 1), b: date(2023, 3, 1), want: 28},
		{name: "whole leap year", a: date(2024, 1, 1), b: date(2024, 12, 31), want: 365},
		{name: "reversed", a: date(2025, 1, 10), b: date(2025, 1, 1), want: -9},
		{name: "over three centuries", a: date(1700, 1, 1), b: date(2024, 12, 31), want: 118703},
		{name: "before unix epoch", a: date(1969, 12, 31), b: date(1970, 1, 2), want: 2},
		{
			name: "ignores clock across dst",
			a:    time.Date(2025, 3, 29, 23, 0, 0, 0, time.FixedZone("CET", 3600)),
			b:    time.Date(2025, 3, 31, 1, 0, 0, 0, time.FixedZone("CEST", 7200)),
			want: 2,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := DaysBetween(tc.a, tc.b); got != tc.want {
				t.Fatalf("DaysBetween = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestYearBounds(t *testing.T) {
	t.Parallel()

	if got := DaysBetween(StartOfYear(2024), EndOfYear(2024)) + 1; got != 366 {
		t.Fatalf("expected 366 days in 2024, got %d", got)
	}
	if got := MaxDate(StartOfYear(2025), date(2024, 12, 1)); !got.Equal(StartOfYear(2025)) {
		t.Fatalf("unexpected max: %v", got)
	}
	if got := MinDate(EndOfYear(2025), date(2026, 1, 5)); !got.Equal(EndOfYear(2025)) {
		t.Fatalf("unexpected min: %v", got)
	}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
