package recurrence

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func intp(v int) *int { return &v }
func weekdayp(v time.Weekday) *time.Weekday { return &v }

func TestNextDueForChoreRouting(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		cfg  Config
		from string
		want string
	}{
		{
			name: "legacy record without recurrence type",
			cfg:  Config{Frequency: Weekly},
			from: "2024-06-15",
			want: "2024-06-22",
		},
		{
			name: "empty record defaults to weekly",
			cfg:  Config{},
			from: "2024-06-15",
			want: "2024-06-22",
		},
		{
			name: "interval ignores the interval multiplier",
			cfg:  Config{Frequency: Monthly, RecurrenceType: RecurrenceInterval, Interval: 3},
			from: "2024-06-15",
			want: "2024-07-15",
		},
		{
			name: "mixed-case frequency",
			cfg:  Config{Frequency: "Daily"},
			from: "2024-06-15",
			want: "2024-06-16",
		},
		{
			name: "anchored weekly",
			cfg:  Config{Frequency: Weekly, RecurrenceType: RecurrenceAnchored, AnchorDaysOfWeek: []time.Weekday{time.Monday, time.Thursday}},
			from: "2024-06-14",
			want: "2024-06-17",
		},
		{
			name: "anchored weekly with interval",
			cfg:  Config{Frequency: Weekly, RecurrenceType: RecurrenceAnchored, Interval: 2, AnchorDaysOfWeek: []time.Weekday{time.Monday}},
			from: "2024-06-14",
			want: "2024-06-24",
		},
		{
			name: "anchored biweekly forces two weeks",
			cfg:  Config{Frequency: Biweekly, RecurrenceType: RecurrenceAnchored, Interval: 5, AnchorDaysOfWeek: []time.Weekday{time.Monday}},
			from: "2024-06-14",
			want: "2024-06-24",
		},
		{
			name: "anchored weekly without days",
			cfg:  Config{Frequency: Weekly, RecurrenceType: RecurrenceAnchored},
			from: "2024-06-15",
			want: "2024-06-22",
		},
		{
			name: "anchored monthly day of month",
			cfg:  Config{Frequency: Monthly, RecurrenceType: RecurrenceAnchored, AnchorType: AnchorDayOfMonth, AnchorDayOfMonth: intp(15)},
			from: "2024-06-20",
			want: "2024-07-15",
		},
		{
			name: "anchored monthly without anchor type uses day of month",
			cfg:  Config{Frequency: Monthly, RecurrenceType: RecurrenceAnchored, AnchorDayOfMonth: intp(10)},
			from: "2024-06-20",
			want: "2024-07-10",
		},
		{
			name: "anchored quarterly on the 1st",
			cfg:  Config{Frequency: Quarterly, RecurrenceType: RecurrenceAnchored, AnchorType: AnchorDayOfMonth, AnchorDayOfMonth: intp(1)},
			from: "2024-06-05",
			want: "2024-09-01",
		},
		{
			name: "anchored monthly with interval",
			cfg:  Config{Frequency: Monthly, RecurrenceType: RecurrenceAnchored, Interval: 2, AnchorType: AnchorDayOfMonth, AnchorDayOfMonth: intp(1)},
			from: "2024-06-05",
			want: "2024-08-01",
		},
		{
			name: "anchored monthly week pattern",
			cfg:  Config{Frequency: Monthly, RecurrenceType: RecurrenceAnchored, AnchorType: AnchorWeekPattern, AnchorWeek: intp(WeekSecond), AnchorWeekday: weekdayp(time.Tuesday)},
			from: "2024-06-15",
			want: "2024-07-09",
		},
		{
			name: "week pattern missing weekday falls back",
			cfg:  Config{Frequency: Monthly, RecurrenceType: RecurrenceAnchored, AnchorType: AnchorWeekPattern, AnchorWeek: intp(WeekSecond)},
			from: "2024-06-15",
			want: "2024-07-15",
		},
		{
			name: "anchored yearly",
			cfg:  Config{Frequency: Yearly, RecurrenceType: RecurrenceAnchored, AnchorType: AnchorDayOfMonth, AnchorDayOfMonth: intp(1)},
			from: "2024-06-05",
			want: "2025-06-01",
		},
		{
			name: "anchored daily behaves like interval",
			cfg:  Config{Frequency: Daily, RecurrenceType: RecurrenceAnchored},
			from: "2024-06-15",
			want: "2024-06-16",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := NextDueForChore(tt.cfg, MustDate(tt.from))
			if !ok {
				t.Fatalf("NextDueForChore reported no next occurrence")
			}
			if got.String() != tt.want {
				t.Fatalf("NextDueForChore(%+v, %s) = %s, want %s", tt.cfg, tt.from, got, tt.want)
			}
		})
	}
}

func TestNextDueForChoreOnce(t *testing.T) {
	t.Parallel()
	for _, rt := range []RecurrenceType{"", RecurrenceInterval, RecurrenceAnchored} {
		if _, ok := NextDueForChore(Config{Frequency: Once, RecurrenceType: rt}, MustDate("2024-06-15")); ok {
			t.Fatalf("once chore with recurrence type %q should not recur", rt)
		}
	}
}

func TestNextDueForChoreDoesNotMutate(t *testing.T) {
	t.Parallel()
	days := []time.Weekday{time.Thursday, time.Monday}
	cfg := Config{Frequency: "WEEKLY", RecurrenceType: RecurrenceAnchored, AnchorDaysOfWeek: days}
	_, _ = NextDueForChore(cfg, MustDate("2024-06-11"))
	if cfg.Frequency != "WEEKLY" || cfg.Interval != 0 || days[0] != time.Thursday {
		t.Fatalf("config was mutated: %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"plain weekly", Config{Frequency: Weekly}, nil},
		{"anchored yearly without anchor", Config{Frequency: Yearly, RecurrenceType: RecurrenceAnchored}, nil},
		{"anchored daily needs nothing", Config{Frequency: Daily, RecurrenceType: RecurrenceAnchored}, nil},
		{"unknown frequency", Config{Frequency: "hourly"}, ErrInvalidFrequency},
		{"missing frequency", Config{}, ErrInvalidFrequency},
		{"unknown recurrence type", Config{Frequency: Weekly, RecurrenceType: "floating"}, ErrInvalidRecurrenceType},
		{"negative interval", Config{Frequency: Weekly, Interval: -1}, ErrInvalidInterval},
		{"weekly without days", Config{Frequency: Weekly, RecurrenceType: RecurrenceAnchored}, ErrMissingAnchorDays},
		{"weekday out of range", Config{Frequency: Biweekly, RecurrenceType: RecurrenceAnchored, AnchorDaysOfWeek: []time.Weekday{7}}, ErrInvalidWeekday},
		{"monthly without anchor type", Config{Frequency: Monthly, RecurrenceType: RecurrenceAnchored}, ErrMissingAnchorType},
		{"unknown anchor type", Config{Frequency: Monthly, RecurrenceType: RecurrenceAnchored, AnchorType: "lunar"}, ErrInvalidAnchorType},
		{"day of month missing", Config{Frequency: Quarterly, RecurrenceType: RecurrenceAnchored, AnchorType: AnchorDayOfMonth}, ErrInvalidDayOfMonth},
		{"day of month too large", Config{Frequency: Monthly, RecurrenceType: RecurrenceAnchored, AnchorType: AnchorDayOfMonth, AnchorDayOfMonth: intp(32)}, ErrInvalidDayOfMonth},
		{"anchor week out of range", Config{Frequency: Monthly, RecurrenceType: RecurrenceAnchored, AnchorType: AnchorWeekPattern, AnchorWeek: intp(6), AnchorWeekday: weekdayp(time.Monday)}, ErrInvalidAnchorWeek},
		{"anchor weekday missing", Config{Frequency: Monthly, RecurrenceType: RecurrenceAnchored, AnchorType: AnchorWeekPattern, AnchorWeek: intp(WeekLast)}, ErrInvalidWeekday},
		{"valid week pattern", Config{Frequency: Biannual, RecurrenceType: RecurrenceAnchored, AnchorType: AnchorWeekPattern, AnchorWeek: intp(WeekLast), AnchorWeekday: weekdayp(time.Saturday)}, nil},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("Validate() = %v, want %v", err, tt.want)
			}
			if !IsConfigError(err) {
				t.Fatalf("IsConfigError(%v) = false", err)
			}
		})
	}
}

func TestRuleMatchesLenientPath(t *testing.T) {
	t.Parallel()
	cfgs := []Config{
		{Frequency: Quarterly},
		{Frequency: Weekly, RecurrenceType: RecurrenceAnchored, Interval: 3, AnchorDaysOfWeek: []time.Weekday{time.Wednesday, time.Sunday}},
		{Frequency: Monthly, RecurrenceType: RecurrenceAnchored, AnchorType: AnchorWeekPattern, AnchorWeek: intp(WeekLast), AnchorWeekday: weekdayp(time.Friday)},
		{Frequency: Bimonthly, RecurrenceType: RecurrenceAnchored, AnchorType: AnchorDayOfMonth, AnchorDayOfMonth: intp(31)},
	}
	for _, cfg := range cfgs {
		r, err := cfg.Rule()
		if err != nil {
			t.Fatalf("Rule(%+v): %v", cfg, err)
		}
		d := MustDate("2024-01-01")
		for i := 0; i < 60; i++ {
			a, _ := r.Next(d)
			b, _ := NextDueForChore(cfg, d)
			if a != b {
				t.Fatalf("%s from %s: rule %s, lenient %s", r, d, a, b)
			}
			d = d.AddDays(5)
		}
	}
}

func TestRuleString(t *testing.T) {
	t.Parallel()
	tests := []struct {
		cfg  Config
		want string
	}{
		{Config{Frequency: Once}, "once"},
		{Config{Frequency: Monthly}, "monthly"},
		{Config{Frequency: Weekly, RecurrenceType: RecurrenceAnchored, Interval: 2, AnchorDaysOfWeek: []time.Weekday{time.Monday, time.Thursday}}, "every 2 weeks on Mon, Thu"},
		{Config{Frequency: Monthly, RecurrenceType: RecurrenceAnchored, AnchorType: AnchorWeekPattern, AnchorWeek: intp(WeekSecond), AnchorWeekday: weekdayp(time.Tuesday)}, "every month, 2nd Tuesday of the month"},
		{Config{Frequency: Yearly, RecurrenceType: RecurrenceAnchored}, "every year, day 1 of the month"},
	}
	for _, tt := range tests {
		r, err := tt.cfg.Rule()
		if err != nil {
			t.Fatalf("Rule(%+v): %v", tt.cfg, err)
		}
		if got := r.String(); got != tt.want {
			t.Fatalf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestConfigDecodesLegacyRecord(t *testing.T) {
	t.Parallel()
	var cfg Config
	if err := json.Unmarshal([]byte(`{"frequency":"biweekly"}`), &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got, ok := NextDueForChore(cfg, MustDate("2024-06-15"))
	if !ok || got != MustDate("2024-06-29") {
		t.Fatalf("got %s (ok=%v), want 2024-06-29", got, ok)
	}
}
