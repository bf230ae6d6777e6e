package calendar

import (
	"strings"
	"testing"
	"time"

	"chorebot/internal/chores"
	"chorebot/internal/recurrence"
	"chorebot/internal/storage"
)

var d = recurrence.MustDate

func mkChore(id string, f recurrence.Frequency, due string) storage.Chore {
	return storage.Chore{
		ID: id, Name: "Chore " + id, RoomID: "area_kitchen", NextDue: d(due),
		Config: recurrence.Config{Frequency: f, RecurrenceType: recurrence.RecurrenceInterval},
	}
}

var rooms = []storage.Room{{ID: "area_kitchen", Name: "Kitchen"}}

func starts(evs []Event, id string) []string {
	var out []string
	for _, e := range evs {
		if e.ChoreID == id {
			out = append(out, e.Start.String())
		}
	}
	return out
}

func TestEvents(t *testing.T) {
	t.Parallel()
	done := mkChore("done", recurrence.Once, "2024-06-05")
	done.IsCompleted = true
	orphan := mkChore("orphan", recurrence.Once, "2024-06-10")
	orphan.RoomID = "custom_gone"

	cs := []storage.Chore{
		mkChore("weekly", recurrence.Weekly, "2024-05-20"),
		mkChore("monthly", recurrence.Monthly, "2024-01-31"),
		mkChore("once", recurrence.Once, "2024-06-12"),
		mkChore("past-once", recurrence.Once, "2024-05-01"),
		mkChore("late", recurrence.Yearly, "2024-07-01"),
		done,
		orphan,
	}
	evs := Events(cs, rooms, d("2024-06-01"), d("2024-06-30"))

	tests := []struct {
		id   string
		want []string
	}{
		{"weekly", []string{"2024-06-03", "2024-06-10", "2024-06-17", "2024-06-24"}},
		{"monthly", []string{"2024-06-29"}},
		{"once", []string{"2024-06-12"}},
		{"past-once", nil},
		{"late", nil},
		{"done", nil},
		{"orphan", []string{"2024-06-10"}},
	}
	for _, tt := range tests {
		got := starts(evs, tt.id)
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Fatalf("%s: starts = %v, want %v", tt.id, got, tt.want)
		}
	}

	for i := 1; i < len(evs); i++ {
		if evs[i].Start.Before(evs[i-1].Start) {
			t.Fatalf("events not sorted at %d: %v after %v", i, evs[i].Start, evs[i-1].Start)
		}
	}

	for _, e := range evs {
		if e.End != e.Start.AddDays(1) {
			t.Fatalf("%s: End = %v", e.UID, e.End)
		}
		switch e.ChoreID {
		case "weekly":
			if e.Start == d("2024-06-10") && e.UID != "weekly_2024-06-10" {
				t.Fatalf("UID = %q", e.UID)
			}
			if e.Description != "Room: Kitchen\nFrequency: weekly" {
				t.Fatalf("Description = %q", e.Description)
			}
		case "orphan":
			if e.Description != "Room: Unknown Room\nFrequency: once" {
				t.Fatalf("Description = %q", e.Description)
			}
		}
	}
}

func TestEventsCapped(t *testing.T) {
	t.Parallel()
	evs := Events([]storage.Chore{mkChore("daily", recurrence.Daily, "2024-01-01")}, rooms, d("2024-01-01"), d("2024-12-31"))
	if len(evs) != maxEventsPerChore {
		t.Fatalf("len = %d, want %d", len(evs), maxEventsPerChore)
	}
	if last := evs[len(evs)-1].Start; last != d("2024-04-09") {
		t.Fatalf("last = %v", last)
	}
}

func TestEventsUnknownFrequencyTerminates(t *testing.T) {
	t.Parallel()
	c := mkChore("odd", recurrence.Frequency("fortnightly"), "2024-05-01")
	if evs := Events([]storage.Chore{c}, rooms, d("2024-06-01"), d("2024-06-30")); len(evs) != 0 {
		t.Fatalf("events = %v", evs)
	}
	c.NextDue = d("2024-06-05")
	if evs := Events([]storage.Chore{c}, rooms, d("2024-06-01"), d("2024-06-30")); len(evs) != 1 {
		t.Fatalf("events = %v", evs)
	}
}

func TestUpcoming(t *testing.T) {
	t.Parallel()
	today := d("2024-06-15")
	view := func(id, due string) chores.ChoreView {
		return chores.ChoreView{Chore: mkChore(id, recurrence.Weekly, due), RoomName: "Kitchen"}
	}

	if _, ok := Upcoming(chores.Snapshot{Today: today}); ok {
		t.Fatal("Upcoming on empty snapshot returned an event")
	}

	late := view("late", "2024-06-10")
	snap := chores.Snapshot{
		Today:    today,
		Active:   []chores.ChoreView{view("b", "2024-06-20"), late},
		DueToday: []chores.ChoreView{late},
	}
	ev, ok := Upcoming(snap)
	if !ok || ev.ChoreID != "late" || ev.Start != today {
		t.Fatalf("Upcoming = %+v, %v", ev, ok)
	}

	snap = chores.Snapshot{
		Today:  today,
		Active: []chores.ChoreView{view("b", "2024-06-20"), view("a", "2024-06-18")},
	}
	ev, ok = Upcoming(snap)
	if !ok || ev.ChoreID != "a" || ev.Start != d("2024-06-18") {
		t.Fatalf("Upcoming = %+v, %v", ev, ok)
	}
}

func TestICS(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)
	evs := []Event{{
		UID:         "c1_2024-06-15",
		Summary:     "Dishes, pots; pans",
		Description: "Room: Kitchen\nFrequency: daily",
		Start:       d("2024-06-15"),
		End:         d("2024-06-16"),
	}}
	got := ICS(evs, now)

	for _, want := range []string{
		"BEGIN:VCALENDAR\r\n",
		"UID:c1_2024-06-15@chorebot\r\n",
		"DTSTAMP:20240615T093000Z\r\n",
		"SUMMARY:Dishes\\, pots\\; pans\r\n",
		"DTSTART;VALUE=DATE:20240615\r\n",
		"DTEND;VALUE=DATE:20240616\r\n",
		"DESCRIPTION:Room: Kitchen\\nFrequency: daily\r\n",
		"END:VEVENT\r\nEND:VCALENDAR\r\n",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("ICS missing %q in:\n%s", want, got)
		}
	}
	if n := strings.Count(got, "BEGIN:VEVENT"); n != 1 {
		t.Fatalf("VEVENT count = %d", n)
	}
}

func TestICSFoldsLongLines(t *testing.T) {
	t.Parallel()
	name := "Clean the garage shelves and sort every box of old paint tins, tools and garden supplies"
	got := ICS([]Event{{
		UID:     "c1_2024-06-15",
		Summary: name,
		Start:   d("2024-06-15"),
		End:     d("2024-06-16"),
	}}, time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC))

	for _, line := range strings.Split(strings.TrimSuffix(got, "\r\n"), "\r\n") {
		if len(line) > 75 {
			t.Fatalf("line of %d octets: %q", len(line), line)
		}
	}
	unfolded := strings.ReplaceAll(got, "\r\n ", "")
	want := "SUMMARY:" + strings.ReplaceAll(name, ",", "\\,") + "\r\n"
	if !strings.Contains(unfolded, want) {
		t.Fatalf("unfolded output missing %q in:\n%s", want, unfolded)
	}
}
