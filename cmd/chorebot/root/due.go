package root

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"chorebot/internal/app"
	"chorebot/internal/calendar"
	"chorebot/internal/chores"
	"chorebot/internal/ui"
)

func newDueCmd() *cobra.Command {
	var byRoom bool

	cmd := &cobra.Command{
		Use:   "due",
		Short: "Show overdue, today's and upcoming chores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, false, func(ctx context.Context, a *app.App) error {
				snap := a.Chores().Refresh(ctx)
				if byRoom {
					printByRoom(cmd.OutOrStdout(), snap)
					return nil
				}
				printSnapshot(cmd.OutOrStdout(), snap)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&byRoom, "by-room", false, "Group every active chore by room instead")
	return cmd
}

func printSnapshot(w io.Writer, snap chores.Snapshot) {
	window := snap.Today.DaysUntil(snap.WindowEnd)
	section := func(title string, list []chores.ChoreView) {
		fmt.Fprintln(w, ui.H2.Render(fmt.Sprintf("%s (%d)", title, len(list))))
		if len(list) == 0 {
			fmt.Fprintln(w, "  "+ui.Muted.Render("nothing"))
			return
		}
		for _, c := range list {
			fmt.Fprintf(w, "  • %s %s  %s\n", c.Name, ui.Muted.Render("("+c.RoomName+")"), ui.DueText(snap.Today, c.NextDue, window))
		}
	}

	fmt.Fprintln(w, ui.Heading(ui.IconCalendar, "Chores for "+snap.Today.String()))
	section("Due today", snap.DueToday)
	section("Due by "+snap.WindowEnd.String(), snap.DueSoon)
	if snap.HasOverdue() {
		fmt.Fprintln(w, ui.Bad.Render(fmt.Sprintf("%s %d overdue", ui.IconWarn, len(snap.Overdue))))
	}
	if ev, ok := calendar.Upcoming(snap); ok {
		fmt.Fprintln(w, ui.LabelValue("Next up", fmt.Sprintf("%s (%s) on %s", ev.Summary, ev.Room, ev.Start)))
	}
}

// printByRoom lists rooms in their stored order, then chores whose room no
// longer exists.
func printByRoom(w io.Writer, snap chores.Snapshot) {
	window := snap.Today.DaysUntil(snap.WindowEnd)
	known := map[string]bool{}
	group := func(name string, list []chores.ChoreView) {
		fmt.Fprintln(w, ui.H2.Render(fmt.Sprintf("%s %s (%d)", ui.IconHouse, name, len(list))))
		for _, c := range list {
			fmt.Fprintf(w, "  • %s  %s\n", c.Name, ui.DueText(snap.Today, c.NextDue, window))
		}
	}
	for _, r := range snap.Rooms {
		known[r.ID] = true
		group(r.Name, snap.ByRoom[r.ID])
	}
	var orphans []chores.ChoreView
	for _, c := range snap.Active {
		if !known[c.RoomID] {
			orphans = append(orphans, c)
		}
	}
	if len(orphans) > 0 {
		group(orphans[0].RoomName, orphans)
	}
}
