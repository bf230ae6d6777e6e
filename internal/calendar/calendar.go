// Package calendar expands chores into all-day events over a date range and
// renders them as iCalendar.
package calendar

import (
	"fmt"
	"sort"

	"chorebot/internal/chores"
	"chorebot/internal/recurrence"
	"chorebot/internal/storage"
)

// maxEventsPerChore bounds the expansion of a single chore.
const maxEventsPerChore = 100

const unknownRoom = "Unknown Room"

// Event is one all-day occurrence of a chore. End is exclusive.
type Event struct {
	UID         string
	ChoreID     string
	Summary     string
	Room        string
	Description string
	Start       recurrence.Date
	End         recurrence.Date
}

// Events returns the occurrences of every active chore between start and
// end inclusive, sorted by start date.
//
// Occurrences are produced by stepping the fixed calendar interval of the
// chore's frequency from its next due date. Anchored patterns are not
// replayed past the first occurrence.
func Events(cs []storage.Chore, rooms []storage.Room, start, end recurrence.Date) []Event {
	names := make(map[string]string, len(rooms))
	for _, r := range rooms {
		names[r.ID] = r.Name
	}

	var out []Event
	for _, c := range cs {
		if c.IsCompleted || c.NextDue.IsZero() {
			continue
		}
		room, ok := names[c.RoomID]
		if !ok {
			room = unknownRoom
		}
		out = append(out, choreEvents(c, room, start, end)...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

func choreEvents(c storage.Chore, room string, start, end recurrence.Date) []Event {
	due := c.NextDue
	for due.Before(start) {
		next, ok := recurrence.NextDue(due, c.Frequency)
		if !ok || next == due {
			return nil
		}
		due = next
	}

	var out []Event
	for !due.After(end) && len(out) < maxEventsPerChore {
		out = append(out, newEvent(c, room, due))
		next, ok := recurrence.NextDue(due, c.Frequency)
		if !ok || next == due {
			break
		}
		due = next
	}
	return out
}

func newEvent(c storage.Chore, room string, due recurrence.Date) Event {
	return Event{
		UID:         c.ID + "_" + due.String(),
		ChoreID:     c.ID,
		Summary:     c.Name,
		Room:        room,
		Description: fmt.Sprintf("Room: %s\nFrequency: %s", room, c.Frequency),
		Start:       due,
		End:         due.AddDays(1),
	}
}

// Upcoming returns the first chore due today, or failing that the active
// chore with the earliest due date.
func Upcoming(snap chores.Snapshot) (Event, bool) {
	if len(snap.DueToday) > 0 {
		v := snap.DueToday[0]
		return newEvent(v.Chore, v.RoomName, snap.Today), true
	}
	if len(snap.Active) == 0 {
		return Event{}, false
	}
	first := snap.Active[0]
	for _, v := range snap.Active[1:] {
		if v.NextDue.Before(first.NextDue) {
			first = v
		}
	}
	return newEvent(first.Chore, first.RoomName, first.NextDue), true
}
