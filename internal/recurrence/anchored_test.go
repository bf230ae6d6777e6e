package recurrence

import (
	"testing"
	"time"
)

func TestNextAnchoredWeekly(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		from  string
		days  []time.Weekday
		weeks int
		want  string
	}{
		{"single anchor later this week", "2024-06-10", []time.Weekday{time.Thursday}, 1, "2024-06-13"},
		{"single anchor next week", "2024-06-14", []time.Weekday{time.Monday}, 1, "2024-06-17"},
		{"pick the next of several", "2024-06-11", []time.Weekday{time.Monday, time.Thursday}, 1, "2024-06-13"},
		{"wrap past all anchors", "2024-06-14", []time.Weekday{time.Monday, time.Thursday}, 1, "2024-06-17"},
		{"unsorted anchors", "2024-06-11", []time.Weekday{time.Saturday, time.Thursday, time.Monday}, 1, "2024-06-13"},
		{"biweekly skips a week", "2024-06-14", []time.Weekday{time.Monday}, 2, "2024-06-24"},
		{"same weekday moves a full period", "2024-06-10", []time.Weekday{time.Monday}, 1, "2024-06-17"},
		{"sunday anchor from sunday", "2024-06-16", []time.Weekday{time.Sunday}, 1, "2024-06-23"},
		{"sunday anchor from saturday", "2024-06-15", []time.Weekday{time.Sunday}, 1, "2024-06-16"},
		{"every 3 weeks", "2024-06-14", []time.Weekday{time.Tuesday}, 3, "2024-07-02"},
		{"empty anchors fall back to interval", "2024-06-15", nil, 1, "2024-06-22"},
		{"empty anchors biweekly", "2024-06-15", []time.Weekday{}, 2, "2024-06-29"},
		{"non-positive weeks treated as one", "2024-06-14", []time.Weekday{time.Monday}, 0, "2024-06-17"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := NextAnchoredWeekly(MustDate(tt.from), tt.days, tt.weeks)
			if got.String() != tt.want {
				t.Fatalf("NextAnchoredWeekly(%s, %v, %d) = %s, want %s", tt.from, tt.days, tt.weeks, got, tt.want)
			}
		})
	}
}

func TestNextAnchoredWeeklyDoesNotReorderInput(t *testing.T) {
	t.Parallel()
	days := []time.Weekday{time.Friday, time.Monday}
	_ = NextAnchoredWeekly(MustDate("2024-06-11"), days, 1)
	if days[0] != time.Friday || days[1] != time.Monday {
		t.Fatalf("input slice was modified: %v", days)
	}
}

func TestNextAnchoredWeeklyLandsOnAnchor(t *testing.T) {
	t.Parallel()
	days := []time.Weekday{time.Tuesday, time.Saturday}
	d := MustDate("2024-01-01")
	for i := 0; i < 120; i++ {
		next := NextAnchoredWeekly(d, days, 1)
		if !next.After(d) || d.DaysUntil(next) > 7 {
			t.Fatalf("from %s got %s", d, next)
		}
		if wd := next.Weekday(); wd != time.Tuesday && wd != time.Saturday {
			t.Fatalf("from %s landed on %s", d, wd)
		}
		d = d.AddDays(1)
	}
}

func TestNextAnchoredMonthlyDayOfMonth(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		from   string
		day    int
		months int
		want   string
	}{
		{"later this month", "2024-06-10", 15, 1, "2024-06-15"},
		{"already passed", "2024-06-20", 15, 1, "2024-07-15"},
		{"due today moves on", "2024-06-15", 15, 1, "2024-07-15"},
		{"31st in a 30-day month", "2024-06-01", 31, 1, "2024-06-30"},
		{"31st clamps again next month", "2024-04-30", 31, 1, "2024-05-31"},
		{"31st into february", "2024-01-31", 31, 1, "2024-02-29"},
		{"quarterly", "2024-06-20", 15, 3, "2024-09-15"},
		{"quarterly on the 1st", "2024-06-05", 1, 3, "2024-09-01"},
		{"yearly", "2024-06-05", 1, 12, "2025-06-01"},
		{"unset day means the 1st", "2024-06-05", 0, 1, "2024-07-01"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := MonthlyAnchor{Type: AnchorDayOfMonth, DayOfMonth: tt.day}
			got := NextAnchoredMonthly(MustDate(tt.from), a, tt.months)
			if got.String() != tt.want {
				t.Fatalf("NextAnchoredMonthly(%s, day %d, %d) = %s, want %s", tt.from, tt.day, tt.months, got, tt.want)
			}
		})
	}
}

func TestNextAnchoredMonthlyWeekPattern(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		from   string
		week   int
		wd     time.Weekday
		months int
		want   string
	}{
		{"2nd tuesday later this month", "2024-06-01", WeekSecond, time.Tuesday, 1, "2024-06-11"},
		{"2nd tuesday already passed", "2024-06-15", WeekSecond, time.Tuesday, 1, "2024-07-09"},
		{"2nd tuesday is today", "2024-06-11", WeekSecond, time.Tuesday, 1, "2024-07-09"},
		{"last friday", "2024-06-01", WeekLast, time.Friday, 1, "2024-06-28"},
		{"last friday passed", "2024-06-29", WeekLast, time.Friday, 1, "2024-07-26"},
		{"bimonthly 1st monday", "2024-06-20", WeekFirst, time.Monday, 2, "2024-08-05"},
		{"yearly 3rd wednesday", "2024-06-20", WeekThird, time.Wednesday, 12, "2025-06-18"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := MonthlyAnchor{Type: AnchorWeekPattern, Week: tt.week, Weekday: tt.wd}
			got := NextAnchoredMonthly(MustDate(tt.from), a, tt.months)
			if got.String() != tt.want {
				t.Fatalf("NextAnchoredMonthly(%s, %d %s, %d) = %s, want %s", tt.from, tt.week, tt.wd, tt.months, got, tt.want)
			}
		})
	}
}

func TestNextAnchoredMonthlyPatternSearchAndFallback(t *testing.T) {
	t.Parallel()
	// Ordinal 6 never exists: after the bounded search the result falls back to
	// a plain month advance.
	a := MonthlyAnchor{Type: AnchorWeekPattern, Week: 6, Weekday: time.Monday}
	if got := NextAnchoredMonthly(MustDate("2024-01-31"), a, 1); got != MustDate("2024-02-29") {
		t.Fatalf("fallback = %s, want 2024-02-29", got)
	}

	// Incomplete pattern falls back as well.
	a = MonthlyAnchor{Type: AnchorWeekPattern}
	if got := NextAnchoredMonthly(MustDate("2024-06-15"), a, 3); got != MustDate("2024-09-15") {
		t.Fatalf("incomplete pattern = %s, want 2024-09-15", got)
	}

	// Unknown anchor type advances by the interval.
	a = MonthlyAnchor{Type: AnchorType("equinox")}
	if got := NextAnchoredMonthly(MustDate("2024-06-15"), a, 2); got != MustDate("2024-08-15") {
		t.Fatalf("unknown anchor = %s, want 2024-08-15", got)
	}
}

func TestNextAnchoredMonthlyStrictlyAfter(t *testing.T) {
	t.Parallel()
	anchors := []MonthlyAnchor{
		{Type: AnchorDayOfMonth, DayOfMonth: 31},
		{Type: AnchorDayOfMonth, DayOfMonth: 1},
		{Type: AnchorWeekPattern, Week: WeekLast, Weekday: time.Sunday},
		{Type: AnchorWeekPattern, Week: WeekFourth, Weekday: time.Thursday},
	}
	d := MustDate("2024-01-01")
	for i := 0; i < 400; i++ {
		for _, a := range anchors {
			for _, months := range []int{1, 2, 3, 6, 12} {
				if next := NextAnchoredMonthly(d, a, months); !next.After(d) {
					t.Fatalf("from %s anchor %+v months %d: got %s", d, a, months, next)
				}
			}
		}
		d = d.AddDays(1)
	}
}
