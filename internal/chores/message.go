package chores

import (
	"fmt"
	"sort"
	"strings"

	"chorebot/internal/transport"
)

// maxButtonRows bounds the inline keyboard under a due message.
const maxButtonRows = 10

// DueMessage renders the daily reminder for the given day offsets (0 is
// today, overdue included). ok is false when nothing is due on any offset.
//
//	You have 2 chore(s) due today:
//	• Dishes (Kitchen)
//	• Laundry (Unknown Room)
func DueMessage(snap Snapshot, daysBefore []int) (text string, ok bool) {
	offsets := append([]int(nil), daysBefore...)
	sort.Ints(offsets)

	var sections []string
	seen := map[int]bool{}
	for _, d := range offsets {
		if d < 0 || seen[d] {
			continue
		}
		seen[d] = true

		due := snap.DueToday
		if d > 0 {
			due = snap.DueOn(snap.Today.AddDays(d))
		}
		if len(due) == 0 {
			continue
		}
		var b strings.Builder
		fmt.Fprintf(&b, "You have %d chore(s) due %s:", len(due), dayPhrase(d))
		for _, c := range due {
			fmt.Fprintf(&b, "\n• %s (%s)", c.Name, c.RoomName)
		}
		sections = append(sections, b.String())
	}
	if len(sections) == 0 {
		return "", false
	}
	return strings.Join(sections, "\n\n"), true
}

func dayPhrase(d int) string {
	if d == 0 {
		return "today"
	}
	return fmt.Sprintf("in %d day(s)", d)
}

// DueButtons returns one row of Done/Snooze buttons per chore, at most
// maxButtonRows rows. Callback data is "done:<id>" or "snooze:<id>".
func DueButtons(views []ChoreView) [][]transport.Button {
	rows := make([][]transport.Button, 0, min(len(views), maxButtonRows))
	for _, v := range views {
		if len(rows) == maxButtonRows {
			break
		}
		rows = append(rows, []transport.Button{
			{Text: "✅ " + v.Name, Data: "done:" + v.ID},
			{Text: "💤", Data: "snooze:" + v.ID},
		})
	}
	return rows
}
