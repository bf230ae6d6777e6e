package recurrence

import "time"

// Week ordinals for week-pattern anchors. WeekLast means "last occurrence in
// the month" and is not the same as "5th from the start".
const (
	WeekFirst  = 1
	WeekSecond = 2
	WeekThird  = 3
	WeekFourth = 4
	WeekLast   = 5
)

// NthWeekdayOfMonth returns the ordinal-th wd of the month (ordinal 1-4), or
// the last wd of the month for WeekLast. ok is false when the requested
// occurrence falls outside the month.
func NthWeekdayOfMonth(year int, month time.Month, wd time.Weekday, ordinal int) (Date, bool) {
	wd = normWeekday(wd)

	if ordinal == WeekLast {
		last := Date{Year: year, Month: month, Day: DaysIn(year, month)}
		back := (int(last.Weekday()) - int(wd) + 7) % 7
		return last.AddDays(-back), true
	}

	first := Date{Year: year, Month: month, Day: 1}
	ahead := (int(wd) - int(first.Weekday()) + 7) % 7
	res := first.AddDays(ahead + 7*(ordinal-1))
	if res.Year != year || res.Month != month {
		return Date{}, false
	}
	return res, true
}

// WeekBounds returns the Sunday that starts d's week and the Saturday that ends it.
func WeekBounds(d Date) (start, end Date) {
	start = d.AddDays(-int(d.Weekday()))
	return start, start.AddDays(6)
}

func normWeekday(wd time.Weekday) time.Weekday {
	return time.Weekday((int(wd)%7 + 7) % 7)
}
