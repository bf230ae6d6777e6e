package calendar

import (
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
)

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// ICS renders events as a VCALENDAR document with CRLF line endings and
// lines folded at 75 octets.
func ICS(events []Event, now time.Time) string {
	cal := ics.NewCalendarFor("chorebot")
	cal.SetProductId("-//chorebot//Household Chores//EN")
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ics.MethodPublish)

	for _, e := range events {
		ev := cal.AddEvent(e.UID + "@chorebot")
		ev.SetDtStampTime(now)
		ev.SetSummary(lineBreaks.Replace(e.Summary))
		ev.SetAllDayStartAt(e.Start.In(time.UTC))
		ev.SetAllDayEndAt(e.End.In(time.UTC))
		if e.Description != "" {
			ev.SetDescription(lineBreaks.Replace(e.Description))
		}
	}
	return cal.Serialize(ics.WithNewLineWindows)
}
