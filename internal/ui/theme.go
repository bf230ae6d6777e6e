// Package ui holds the terminal styles shared by the chorebot CLI.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"chorebot/internal/recurrence"
)

const (
	IconHouse    = "🏠"
	IconBroom    = "🧹"
	IconDone     = "✅"
	IconSkip     = "⏭️"
	IconSnooze   = "💤"
	IconCalendar = "📅"
	IconTrophy   = "🏆"
	IconWarn     = "⚠️"
	IconError    = "🧨"
	IconUser     = "👤"
	IconLoop     = "🔁"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
)

func Heading(icon, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// DueState classifies due relative to today: "overdue", "today", "soon"
// (within window days), "later", or "none" for a zero date.
func DueState(today, due recurrence.Date, window int) string {
	switch {
	case due.IsZero():
		return "none"
	case due.Before(today):
		return "overdue"
	case due == today:
		return "today"
	case today.DaysUntil(due) <= window:
		return "soon"
	default:
		return "later"
	}
}

// DueText renders a due date colored by its DueState.
func DueText(today, due recurrence.Date, window int) string {
	switch DueState(today, due, window) {
	case "none":
		return Muted.Render("-")
	case "overdue":
		return Bad.Render(fmt.Sprintf("%s (%dd late)", due, due.DaysUntil(today)))
	case "today":
		return Warn.Render(due.String() + " (today)")
	case "soon":
		return Good.Render(due.String())
	default:
		return Muted.Render(due.String())
	}
}
