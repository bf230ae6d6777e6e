package root

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"chorebot/internal/recurrence"
	"chorebot/internal/storage"
)

func TestWeekdaysValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      []string
		want    []time.Weekday
		str     string
		wantErr bool
	}{
		{in: []string{"mon,thu"}, want: []time.Weekday{time.Monday, time.Thursday}, str: "mon,thu"},
		{in: []string{"Sunday", "6"}, want: []time.Weekday{time.Sunday, time.Saturday}, str: "sun,sat"},
		{in: []string{" tue , ,FRI"}, want: []time.Weekday{time.Tuesday, time.Friday}, str: "tue,fri"},
		{in: []string{"funday"}, wantErr: true},
		{in: []string{"7"}, wantErr: true},
	}
	for _, tt := range tests {
		var days []time.Weekday
		v := newWeekdaysValue(&days)
		var err error
		for _, s := range tt.in {
			if err = v.Set(s); err != nil {
				break
			}
		}
		if tt.wantErr {
			if err == nil {
				t.Fatalf("Set(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Set(%q): %v", tt.in, err)
		}
		if len(days) != len(tt.want) {
			t.Fatalf("Set(%q) = %v, want %v", tt.in, days, tt.want)
		}
		for i := range days {
			if days[i] != tt.want[i] {
				t.Fatalf("Set(%q) = %v, want %v", tt.in, days, tt.want)
			}
		}
		if v.String() != tt.str {
			t.Fatalf("String() = %q, want %q", v.String(), tt.str)
		}
	}
}

func TestRecurrenceFlagsConfig(t *testing.T) {
	t.Parallel()

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	rf := bindRecurrenceFlags(fs, "weekly")
	if err := fs.Parse([]string{"-f", "Monthly", "--type", "anchored", "--anchor", "week_pattern", "--week", "5", "--weekday", "fri"}); err != nil {
		t.Fatal(err)
	}
	c, err := rf.config()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if c.Frequency != recurrence.Monthly || c.RecurrenceType != recurrence.RecurrenceAnchored {
		t.Fatalf("unexpected config: %+v", c)
	}
	if c.AnchorWeek == nil || *c.AnchorWeek != recurrence.WeekLast {
		t.Fatalf("anchor week = %v", c.AnchorWeek)
	}
	if c.AnchorWeekday == nil || *c.AnchorWeekday != time.Friday {
		t.Fatalf("anchor weekday = %v", c.AnchorWeekday)
	}
	if c.AnchorDayOfMonth != nil {
		t.Fatalf("day of month set without --day")
	}
}

func TestRecurrenceFlagsRejectInvalid(t *testing.T) {
	t.Parallel()

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	rf := bindRecurrenceFlags(fs, "weekly")
	if err := fs.Parse([]string{"--type", "anchored"}); err != nil {
		t.Fatal(err)
	}
	if _, err := rf.config(); !errors.Is(err, recurrence.ErrMissingAnchorDays) {
		t.Fatalf("config error = %v, want ErrMissingAnchorDays", err)
	}
}

func TestNextDates(t *testing.T) {
	t.Parallel()

	rule := recurrence.AnchoredWeeklyRule{Days: []time.Weekday{time.Monday, time.Thursday}, Weeks: 1}
	got := nextDates(rule, recurrence.MustDate("2024-06-11"), 3)
	want := []string{"2024-06-13", "2024-06-17", "2024-06-20"}
	if len(got) != len(want) {
		t.Fatalf("nextDates = %v", got)
	}
	for i := range want {
		if got[i].String() != want[i] {
			t.Fatalf("nextDates[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	if got := nextDates(recurrence.OnceRule{}, recurrence.MustDate("2024-06-11"), 3); len(got) != 0 {
		t.Fatalf("once rule produced %v", got)
	}
}

func TestFilterChores(t *testing.T) {
	t.Parallel()

	cs := []storage.Chore{
		{ID: "a", Name: "Bins", RoomID: "r1", NextDue: recurrence.MustDate("2024-06-20")},
		{ID: "b", Name: "Attic", RoomID: "r2", NextDue: recurrence.MustDate("2024-06-10")},
		{ID: "c", Name: "Alarm", RoomID: "r1", NextDue: recurrence.MustDate("2024-06-20")},
		{ID: "d", Name: "Gutter", RoomID: "r1", NextDue: recurrence.MustDate("2024-06-01"), IsCompleted: true},
	}
	got := filterChores(append([]storage.Chore(nil), cs...), "r1", false)
	if len(got) != 2 || got[0].ID != "c" || got[1].ID != "a" {
		t.Fatalf("filter r1 = %+v", got)
	}
	got = filterChores(append([]storage.Chore(nil), cs...), "", true)
	if len(got) != 4 || got[0].ID != "d" || got[1].ID != "b" {
		t.Fatalf("filter all = %+v", got)
	}
}
