package root

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"chorebot/internal/chores"
	"chorebot/internal/recurrence"
)

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// parseWeekday accepts an English day name or abbreviation, or 0-6 with
// Sunday as 0.
func parseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if d, ok := weekdayNames[s]; ok {
		return d, nil
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n <= 6 {
		return time.Weekday(n), nil
	}
	return 0, fmt.Errorf("invalid weekday %q (want mon..sun or 0-6)", s)
}

func shortWeekday(d time.Weekday) string { return strings.ToLower(d.String()[:3]) }

// weekdaysValue is a comma separated weekday list. Repeating the flag
// appends.
type weekdaysValue struct {
	days *[]time.Weekday
}

var _ pflag.Value = (*weekdaysValue)(nil)

func newWeekdaysValue(p *[]time.Weekday) *weekdaysValue { return &weekdaysValue{days: p} }

func (v *weekdaysValue) Set(s string) error {
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		d, err := parseWeekday(part)
		if err != nil {
			return err
		}
		*v.days = append(*v.days, d)
	}
	return nil
}

func (v *weekdaysValue) String() string {
	if v.days == nil {
		return ""
	}
	parts := make([]string, 0, len(*v.days))
	for _, d := range *v.days {
		parts = append(parts, shortWeekday(d))
	}
	return strings.Join(parts, ",")
}

func (v *weekdaysValue) Type() string { return "weekdays" }

type weekdayValue struct{ day *time.Weekday }

var _ pflag.Value = (*weekdayValue)(nil)

func (v *weekdayValue) Set(s string) error {
	d, err := parseWeekday(s)
	if err != nil {
		return err
	}
	*v.day = d
	return nil
}

func (v *weekdayValue) String() string {
	if v.day == nil {
		return ""
	}
	return shortWeekday(*v.day)
}

func (v *weekdayValue) Type() string { return "weekday" }

// dateValue is a YYYY-MM-DD calendar date. The empty string leaves it zero.
type dateValue struct{ date *recurrence.Date }

var _ pflag.Value = (*dateValue)(nil)

func (v *dateValue) Set(s string) error {
	if strings.TrimSpace(s) == "" {
		*v.date = recurrence.Date{}
		return nil
	}
	d, err := recurrence.ParseDate(s)
	if err != nil {
		return err
	}
	*v.date = d
	return nil
}

func (v *dateValue) String() string {
	if v.date == nil || v.date.IsZero() {
		return ""
	}
	return v.date.String()
}

func (v *dateValue) Type() string { return "date" }

// recurrenceFlags binds the recurrence fields of a chore to a flag set.
type recurrenceFlags struct {
	fs *pflag.FlagSet

	frequency  string
	rtype      string
	interval   int
	days       []time.Weekday
	anchorType string
	dayOfMonth int
	week       int
	weekday    time.Weekday
}

func bindRecurrenceFlags(fs *pflag.FlagSet, defFrequency string) *recurrenceFlags {
	f := &recurrenceFlags{fs: fs}
	fs.StringVarP(&f.frequency, "frequency", "f", defFrequency, "Frequency ("+frequencyList()+")")
	fs.StringVar(&f.rtype, "type", string(recurrence.RecurrenceInterval), "Recurrence type (interval|anchored)")
	fs.IntVar(&f.interval, "interval", 1, "Period multiplier for anchored weekly and monthly chores")
	fs.Var(newWeekdaysValue(&f.days), "days", "Anchor weekdays for weekly chores, e.g. mon,thu")
	fs.StringVar(&f.anchorType, "anchor", "", "Monthly anchor (day_of_month|week_pattern)")
	fs.IntVar(&f.dayOfMonth, "day", 0, "Anchor day of month (1-31, clamped to short months)")
	fs.IntVar(&f.week, "week", 0, "Anchor week ordinal (1-4, or 5 for the last)")
	fs.Var(&weekdayValue{day: &f.weekday}, "weekday", "Anchor weekday for week_pattern")
	return f
}

func frequencyList() string {
	parts := make([]string, len(recurrence.Frequencies))
	for i, f := range recurrence.Frequencies {
		parts[i] = string(f)
	}
	return strings.Join(parts, "|")
}

// config builds a recurrence config from the flags. Anchor fields are only
// set when their flag was given.
func (f *recurrenceFlags) config() (recurrence.Config, error) {
	freq, err := recurrence.ParseFrequency(f.frequency)
	if err != nil {
		return recurrence.Config{}, err
	}
	c := recurrence.Config{
		Frequency:        freq,
		RecurrenceType:   recurrence.RecurrenceType(strings.ToLower(f.rtype)),
		Interval:         f.interval,
		AnchorDaysOfWeek: f.days,
		AnchorType:       recurrence.AnchorType(strings.ToLower(f.anchorType)),
	}
	if f.fs.Changed("day") {
		v := f.dayOfMonth
		c.AnchorDayOfMonth = &v
	}
	if f.fs.Changed("week") {
		v := f.week
		c.AnchorWeek = &v
	}
	if f.fs.Changed("weekday") {
		v := f.weekday
		c.AnchorWeekday = &v
	}
	return c, c.Validate()
}

// applyTo copies the changed flags onto a partial chore update.
func (f *recurrenceFlags) applyTo(up *chores.ChoreUpdate) error {
	if f.fs.Changed("frequency") {
		freq, err := recurrence.ParseFrequency(f.frequency)
		if err != nil {
			return err
		}
		up.Frequency = &freq
	}
	if f.fs.Changed("type") {
		t := recurrence.RecurrenceType(strings.ToLower(f.rtype))
		up.RecurrenceType = &t
	}
	if f.fs.Changed("interval") {
		v := f.interval
		up.Interval = &v
	}
	if f.fs.Changed("days") {
		up.AnchorDaysOfWeek = f.days
	}
	if f.fs.Changed("anchor") {
		t := recurrence.AnchorType(strings.ToLower(f.anchorType))
		up.AnchorType = &t
	}
	if f.fs.Changed("day") {
		v := f.dayOfMonth
		up.AnchorDayOfMonth = &v
	}
	if f.fs.Changed("week") {
		v := f.week
		up.AnchorWeek = &v
	}
	if f.fs.Changed("weekday") {
		v := f.weekday
		up.AnchorWeekday = &v
	}
	return nil
}
