package root

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"chorebot/internal/app"
	"chorebot/internal/calendar"
	"chorebot/internal/clock"
	"chorebot/internal/recurrence"
)

func newCalendarCmd() *cobra.Command {
	var from, to recurrence.Date
	var days int
	var ics bool

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "List projected due dates, or export them as iCalendar",
		Example: `  chorebot calendar --days 14
  chorebot calendar --from 2024-06-01 --to 2024-06-30 --ics > chores.ics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, false, func(ctx context.Context, a *app.App) error {
				svc := a.Chores()
				start := from
				if start.IsZero() {
					start = clock.Today(a)
				}
				end := to
				if end.IsZero() {
					end = start.AddDays(days)
				}
				if end.Before(start) {
					return errors.New("--to is before --from")
				}

				events := calendar.Events(svc.Chores(), svc.Rooms(), start, end)
				out := cmd.OutOrStdout()
				if ics {
					_, err := fmt.Fprint(out, calendar.ICS(events, a.Now()))
					return err
				}
				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "DATE\tCHORE\tROOM")
				for _, e := range events {
					fmt.Fprintf(tw, "%s %s\t%s\t%s\n", e.Start, e.Start.Weekday().String()[:3], e.Summary, e.Room)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().Var(&dateValue{date: &from}, "from", "First day (YYYY-MM-DD, default today)")
	cmd.Flags().Var(&dateValue{date: &to}, "to", "Last day, inclusive (YYYY-MM-DD)")
	cmd.Flags().IntVar(&days, "days", 30, "Days after --from when --to is not given")
	cmd.Flags().BoolVar(&ics, "ics", false, "Write an iCalendar (.ics) document")
	return cmd
}
