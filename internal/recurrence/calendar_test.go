package recurrence

import (
	"testing"
	"time"
)

func TestWeekBounds(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		day        string
		start, end string
	}{
		{"sunday starts the week", "2024-06-16", "2024-06-16", "2024-06-22"},
		{"saturday ends the week", "2024-06-15", "2024-06-09", "2024-06-15"},
		{"wednesday", "2024-06-12", "2024-06-09", "2024-06-15"},
		{"monday", "2024-06-10", "2024-06-09", "2024-06-15"},
		{"across year end", "2025-01-01", "2024-12-29", "2025-01-04"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			start, end := WeekBounds(MustDate(tt.day))
			if start.String() != tt.start || end.String() != tt.end {
				t.Fatalf("WeekBounds(%s) = %s..%s, want %s..%s", tt.day, start, end, tt.start, tt.end)
			}
		})
	}
}

func TestWeekBoundsProperties(t *testing.T) {
	t.Parallel()
	d := MustDate("2023-12-01")
	for i := 0; i < 800; i++ {
		start, end := WeekBounds(d)
		if start.After(d) || end.Before(d) {
			t.Fatalf("%s not within %s..%s", d, start, end)
		}
		if start.DaysUntil(end) != 6 {
			t.Fatalf("week %s..%s is not 7 days", start, end)
		}
		if start.Weekday() != time.Sunday {
			t.Fatalf("week of %s starts on %s", d, start.Weekday())
		}
		d = d.AddDays(1)
	}
}

func TestNthWeekdayOfMonth(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		year    int
		month   time.Month
		wd      time.Weekday
		ordinal int
		want    string
	}{
		{"first monday", 2024, time.June, time.Monday, WeekFirst, "2024-06-03"},
		{"second tuesday", 2024, time.June, time.Tuesday, WeekSecond, "2024-06-11"},
		{"last saturday", 2024, time.June, time.Saturday, WeekLast, "2024-06-29"},
		{"last sunday on month end", 2024, time.June, time.Sunday, WeekLast, "2024-06-30"},
		{"last is the 4th when only four exist", 2024, time.June, time.Monday, WeekLast, "2024-06-24"},
		{"fourth monday", 2024, time.June, time.Monday, WeekFourth, "2024-06-24"},
		{"first sunday", 2024, time.June, time.Sunday, WeekFirst, "2024-06-02"},
		{"first of month is the weekday", 2024, time.June, time.Saturday, WeekFirst, "2024-06-01"},
		{"last friday in leap february", 2024, time.February, time.Friday, WeekLast, "2024-02-23"},
		{"last thursday in leap february", 2024, time.February, time.Thursday, WeekLast, "2024-02-29"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := NthWeekdayOfMonth(tt.year, tt.month, tt.wd, tt.ordinal)
			if !ok {
				t.Fatalf("NthWeekdayOfMonth not found, want %s", tt.want)
			}
			if got.String() != tt.want {
				t.Fatalf("NthWeekdayOfMonth = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNthWeekdayOfMonthNotFound(t *testing.T) {
	t.Parallel()
	// February 2023 has exactly four of every weekday; a 5th never exists and
	// ordinals past 5 never exist.
	if d, ok := NthWeekdayOfMonth(2023, time.February, time.Wednesday, 6); ok {
		t.Fatalf("expected not found, got %s", d)
	}
	if d, ok := NthWeekdayOfMonth(2024, time.June, time.Monday, 0); ok {
		t.Fatalf("ordinal 0 should not resolve, got %s", d)
	}
}

func TestNthWeekdayOfMonthLastWithinFinalWeek(t *testing.T) {
	t.Parallel()
	for y := 2023; y <= 2025; y++ {
		for m := time.January; m <= time.December; m++ {
			last := DaysIn(y, m)
			for wd := time.Sunday; wd <= time.Saturday; wd++ {
				d, ok := NthWeekdayOfMonth(y, m, wd, WeekLast)
				if !ok {
					t.Fatalf("%d-%02d %s: last not found", y, m, wd)
				}
				if d.Month != m || d.Day <= last-7 || d.Weekday() != wd {
					t.Fatalf("%d-%02d %s: last = %s, not in final 7 days", y, m, wd, d)
				}

				// A 4th occurrence exists exactly when the last one is on day 22 or later,
				// and it must never spill into the next month.
				fourth, ok := NthWeekdayOfMonth(y, m, wd, WeekFourth)
				if !ok {
					t.Fatalf("%d-%02d %s: every month has a 4th occurrence", y, m, wd)
				}
				if fourth.Month != m || fourth.Day < 22 || fourth.Day > 28 {
					t.Fatalf("%d-%02d %s: 4th = %s", y, m, wd, fourth)
				}
			}
		}
	}
}
