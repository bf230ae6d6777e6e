package recurrence

import "strings"

// Frequency is how often a chore recurs.
type Frequency string

const (
	Once      Frequency = "once"
	Daily     Frequency = "daily"
	Weekly    Frequency = "weekly"
	Biweekly  Frequency = "biweekly"
	Monthly   Frequency = "monthly"
	Bimonthly Frequency = "bimonthly"
	Quarterly Frequency = "quarterly"
	Biannual  Frequency = "biannual"
	Yearly    Frequency = "yearly"
)

// Frequencies lists every supported frequency in display order.
var Frequencies = []Frequency{Once, Daily, Weekly, Biweekly, Monthly, Bimonthly, Quarterly, Biannual, Yearly}

// ParseFrequency normalizes s (case-insensitive) and validates it.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", invalidf(ErrInvalidFrequency, "%q (want one of %s)", s, joinFrequencies())
	}
	return f, nil
}

func (f Frequency) Valid() bool {
	for _, v := range Frequencies {
		if f == v {
			return true
		}
	}
	return false
}

// monthsPerPeriod is the anchored month step of the monthly family (0 for
// anything else).
func (f Frequency) monthsPerPeriod() int {
	switch f {
	case Monthly:
		return 1
	case Bimonthly:
		return 2
	case Quarterly:
		return 3
	case Biannual:
		return 6
	case Yearly:
		return 12
	default:
		return 0
	}
}

func (f Frequency) isWeeklyFamily() bool { return f == Weekly || f == Biweekly }

func (f Frequency) isMonthlyFamily() bool {
	return f == Monthly || f == Bimonthly || f == Quarterly || f == Biannual
}

func joinFrequencies() string {
	parts := make([]string, len(Frequencies))
	for i, f := range Frequencies {
		parts[i] = string(f)
	}
	return strings.Join(parts, ", ")
}

// RecurrenceType selects between offset-based and calendar-anchored scheduling.
type RecurrenceType string

const (
	// RecurrenceInterval counts from the completion (or skip) date.
	RecurrenceInterval RecurrenceType = "interval"
	// RecurrenceAnchored snaps to fixed calendar slots.
	RecurrenceAnchored RecurrenceType = "anchored"
)

func (t RecurrenceType) Valid() bool { return t == RecurrenceInterval || t == RecurrenceAnchored }

// AnchorType selects how a monthly-family anchor is expressed.
type AnchorType string

const (
	AnchorDayOfMonth  AnchorType = "day_of_month"
	AnchorWeekPattern AnchorType = "week_pattern"
)

func (t AnchorType) Valid() bool { return t == AnchorDayOfMonth || t == AnchorWeekPattern }
