package recurrence

import (
	"strings"
	"time"
)

// Config is the recurrence part of a persisted chore record.
//
// Optional fields are pointers or zero values so that legacy records (which
// predate anchored recurrence) still decode. Config is never mutated by the
// calculators.
type Config struct {
	Frequency        Frequency      `json:"frequency"`
	RecurrenceType   RecurrenceType `json:"recurrence_type,omitempty"`
	Interval         int            `json:"interval,omitempty"`
	AnchorDaysOfWeek []time.Weekday `json:"anchor_days_of_week,omitempty"`
	AnchorType       AnchorType     `json:"anchor_type,omitempty"`
	AnchorDayOfMonth *int           `json:"anchor_day_of_month,omitempty"`
	AnchorWeek       *int           `json:"anchor_week,omitempty"`
	AnchorWeekday    *time.Weekday  `json:"anchor_weekday,omitempty"`
}

// Normalize returns a copy with the defaults a freshly stored record gets:
// lower-case frequency, recurrence type "interval" and interval 1.
func (c Config) Normalize() Config {
	c.Frequency = Frequency(strings.ToLower(strings.TrimSpace(string(c.Frequency))))
	if c.RecurrenceType == "" {
		c.RecurrenceType = RecurrenceInterval
	}
	if c.Interval == 0 {
		c.Interval = 1
	}
	if c.AnchorDaysOfWeek != nil {
		c.AnchorDaysOfWeek = append([]time.Weekday(nil), c.AnchorDaysOfWeek...)
	}
	return c
}

// Validate reports the first configuration error, if any.
//
// Anchored yearly is accepted without anchor fields; it reuses the monthly
// anchor (day 1 of the month by default).
func (c Config) Validate() error {
	c = c.Normalize()

	if !c.Frequency.Valid() {
		return invalidf(ErrInvalidFrequency, "%q (want one of %s)", c.Frequency, joinFrequencies())
	}
	if !c.RecurrenceType.Valid() {
		return invalidf(ErrInvalidRecurrenceType, "%q (want interval or anchored)", c.RecurrenceType)
	}
	if c.Interval < 1 {
		return invalidf(ErrInvalidInterval, "got %d", c.Interval)
	}
	if c.RecurrenceType != RecurrenceAnchored {
		return nil
	}

	switch {
	case c.Frequency.isWeeklyFamily():
		if len(c.AnchorDaysOfWeek) == 0 {
			return ErrMissingAnchorDays
		}
		for _, d := range c.AnchorDaysOfWeek {
			if d < time.Sunday || d > time.Saturday {
				return invalidf(ErrInvalidWeekday, "day of week %d (want 0-6, Sunday-Saturday)", int(d))
			}
		}

	case c.Frequency.isMonthlyFamily():
		if c.AnchorType == "" {
			return ErrMissingAnchorType
		}
		switch c.AnchorType {
		case AnchorDayOfMonth:
			if c.AnchorDayOfMonth == nil || *c.AnchorDayOfMonth < 1 || *c.AnchorDayOfMonth > 31 {
				return ErrInvalidDayOfMonth
			}
		case AnchorWeekPattern:
			if c.AnchorWeek == nil || *c.AnchorWeek < WeekFirst || *c.AnchorWeek > WeekLast {
				return invalidf(ErrInvalidAnchorWeek, "want 1-5 (1st-4th, or 5 for last)")
			}
			if c.AnchorWeekday == nil || *c.AnchorWeekday < time.Sunday || *c.AnchorWeekday > time.Saturday {
				return invalidf(ErrInvalidWeekday, "anchor_weekday (want 0-6, Sunday-Saturday)")
			}
		default:
			return invalidf(ErrInvalidAnchorType, "%q (want day_of_month or week_pattern)", c.AnchorType)
		}
	}
	return nil
}

// Rule validates c and returns its recurrence rule.
func (c Config) Rule() (Rule, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c.rule(), nil
}

// NextDueForChore is the lenient entry point used when completing or skipping
// a stored chore. It never fails: missing fields take the record defaults and
// unsupported combinations fall back to the fixed-interval calculator.
//
// ok is false only for one-off chores.
func NextDueForChore(c Config, from Date) (Date, bool) {
	return c.rule().Next(from)
}

// rule routes c to a calculator without validating it.
func (c Config) rule() Rule {
	c = c.Normalize()
	if c.Frequency == "" {
		c.Frequency = Weekly
	}
	if c.Interval < 1 {
		c.Interval = 1
	}

	if c.Frequency == Once {
		return OnceRule{}
	}
	if c.RecurrenceType != RecurrenceAnchored {
		return IntervalRule{Frequency: c.Frequency}
	}

	switch {
	case c.Frequency.isWeeklyFamily():
		weeks := c.Interval
		if c.Frequency == Biweekly {
			weeks = 2
		}
		return AnchoredWeeklyRule{Days: c.AnchorDaysOfWeek, Weeks: weeks}
	case c.Frequency.isMonthlyFamily(), c.Frequency == Yearly:
		return AnchoredMonthlyRule{Anchor: c.monthlyAnchor(), Months: c.Frequency.monthsPerPeriod() * c.Interval}
	default:
		return IntervalRule{Frequency: c.Frequency}
	}
}

func (c Config) monthlyAnchor() MonthlyAnchor {
	a := MonthlyAnchor{Type: c.AnchorType}
	if a.Type == "" {
		a.Type = AnchorDayOfMonth
	}
	if c.AnchorDayOfMonth != nil {
		a.DayOfMonth = *c.AnchorDayOfMonth
	}
	if c.AnchorWeek != nil && c.AnchorWeekday != nil {
		a.Week = *c.AnchorWeek
		a.Weekday = *c.AnchorWeekday
	}
	return a
}
