package recurrence

import (
	"slices"
	"time"
)

// maxPatternSearch bounds the forward search for a week pattern that is
// missing from the target month.
const maxPatternSearch = 12

// NextAnchoredWeekly returns the next date strictly after from whose weekday is
// one of days.
//
// If an anchor is still ahead in the current (Sunday-based) week the earliest
// one wins. Otherwise the result is the earliest anchor in the week that starts
// weeks weeks after the current one. An empty days falls back to from plus
// weeks weeks.
func NextAnchoredWeekly(from Date, days []time.Weekday, weeks int) Date {
	if weeks < 1 {
		weeks = 1
	}
	if len(days) == 0 {
		return from.AddDays(7 * weeks)
	}

	sorted := slices.Clone(days)
	slices.Sort(sorted)

	cur := from.Weekday()
	for _, d := range sorted {
		if d > cur {
			return from.AddDays(int(d - cur))
		}
	}

	toSunday := (7 - int(cur)) % 7
	if toSunday == 0 {
		toSunday = 7
	}
	return from.AddDays(toSunday + int(sorted[0]) + 7*(weeks-1))
}

// MonthlyAnchor is a calendar slot within a month.
//
// For AnchorDayOfMonth only DayOfMonth is used (0 means the 1st). For
// AnchorWeekPattern Week is an ordinal 1-4 or WeekLast; Week 0 means the
// pattern is incomplete.
type MonthlyAnchor struct {
	Type       AnchorType
	DayOfMonth int
	Week       int
	Weekday    time.Weekday
}

// NextAnchoredMonthly returns the next slot strictly after from, moving months
// months at a time once the slot in from's month has passed.
func NextAnchoredMonthly(from Date, a MonthlyAnchor, months int) Date {
	if months < 1 {
		months = 1
	}

	switch a.Type {
	case AnchorDayOfMonth:
		day := a.DayOfMonth
		if day < 1 {
			day = 1
		}
		if d := clampDay(from.Year, from.Month, day); d.After(from) {
			return d
		}
		next := from.AddMonths(months)
		return clampDay(next.Year, next.Month, day)

	case AnchorWeekPattern:
		if a.Week == 0 {
			return from.AddMonths(months)
		}
		if d, ok := NthWeekdayOfMonth(from.Year, from.Month, a.Weekday, a.Week); ok && d.After(from) {
			return d
		}
		next := from.AddMonths(months)
		d, ok := NthWeekdayOfMonth(next.Year, next.Month, a.Weekday, a.Week)
		for i := 0; !ok && i < maxPatternSearch; i++ {
			next = next.AddMonths(1)
			d, ok = NthWeekdayOfMonth(next.Year, next.Month, a.Weekday, a.Week)
		}
		if ok {
			return d
		}
		return from.AddMonths(months)
	}

	return from.AddMonths(months)
}

func clampDay(y int, m time.Month, day int) Date {
	if last := DaysIn(y, m); day > last {
		day = last
	}
	return Date{Year: y, Month: m, Day: day}
}
