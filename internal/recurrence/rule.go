package recurrence

import (
	"fmt"
	"strings"
	"time"
)

// Rule is a validated recurrence. The set of implementations is closed:
// OnceRule, IntervalRule, AnchoredWeeklyRule and AnchoredMonthlyRule.
type Rule interface {
	// Next returns the next due date after from; ok is false when the rule
	// never recurs.
	Next(from Date) (next Date, ok bool)
	String() string
	isRule()
}

// OnceRule is a one-off chore.
type OnceRule struct{}

// IntervalRule advances by one fixed period of Frequency.
type IntervalRule struct {
	Frequency Frequency
}

// AnchoredWeeklyRule lands on the given weekdays every Weeks weeks.
type AnchoredWeeklyRule struct {
	Days  []time.Weekday
	Weeks int
}

// AnchoredMonthlyRule lands on Anchor every Months months. Yearly anchored
// recurrence is an AnchoredMonthlyRule with Months a multiple of 12.
type AnchoredMonthlyRule struct {
	Anchor MonthlyAnchor
	Months int
}

func (OnceRule) isRule()            {}
func (IntervalRule) isRule()        {}
func (AnchoredWeeklyRule) isRule()  {}
func (AnchoredMonthlyRule) isRule() {}

func (OnceRule) Next(Date) (Date, bool) { return Date{}, false }

func (r IntervalRule) Next(from Date) (Date, bool) { return NextDue(from, r.Frequency) }

func (r AnchoredWeeklyRule) Next(from Date) (Date, bool) {
	return NextAnchoredWeekly(from, r.Days, r.Weeks), true
}

func (r AnchoredMonthlyRule) Next(from Date) (Date, bool) {
	return NextAnchoredMonthly(from, r.Anchor, r.Months), true
}

func (OnceRule) String() string { return "once" }

func (r IntervalRule) String() string { return string(r.Frequency) }

func (r AnchoredWeeklyRule) String() string {
	names := make([]string, 0, len(r.Days))
	for _, d := range r.Days {
		names = append(names, d.String()[:3])
	}
	return fmt.Sprintf("every %s on %s", plural(r.Weeks, "week"), strings.Join(names, ", "))
}

func (r AnchoredMonthlyRule) String() string {
	var slot string
	switch {
	case r.Anchor.Type == AnchorWeekPattern && r.Anchor.Week != 0:
		slot = fmt.Sprintf("%s %s", ordinalName(r.Anchor.Week), r.Anchor.Weekday)
	case r.Anchor.Type == AnchorWeekPattern:
		slot = "same day"
	default:
		day := r.Anchor.DayOfMonth
		if day < 1 {
			day = 1
		}
		slot = "day " + fmt.Sprint(day)
	}
	if r.Months%12 == 0 {
		return fmt.Sprintf("every %s, %s of the month", plural(r.Months/12, "year"), slot)
	}
	return fmt.Sprintf("every %s, %s of the month", plural(r.Months, "month"), slot)
}

func ordinalName(week int) string {
	switch week {
	case WeekFirst:
		return "1st"
	case WeekSecond:
		return "2nd"
	case WeekThird:
		return "3rd"
	case WeekFourth:
		return "4th"
	case WeekLast:
		return "last"
	default:
		return fmt.Sprintf("#%d", week)
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
