package root

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"chorebot/internal/clock"
	"chorebot/internal/recurrence"
	"chorebot/internal/ui"
)

func newNextCmd() *cobra.Command {
	var from recurrence.Date
	var count int

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Preview the due dates a recurrence rule produces",
		Example: `  chorebot next -f weekly --type anchored --days mon,thu --from 2024-01-15
  chorebot next -f monthly --type anchored --anchor week_pattern --week 5 --weekday fri -n 6`,
		Args: cobra.NoArgs,
	}
	rf := bindRecurrenceFlags(cmd.Flags(), string(recurrence.Weekly))
	cmd.Flags().Var(&dateValue{date: &from}, "from", "Start date (YYYY-MM-DD, default today)")
	cmd.Flags().IntVarP(&count, "count", "n", 5, "How many due dates to list")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		c, err := rf.config()
		if err != nil {
			return err
		}
		rule, err := c.Rule()
		if err != nil {
			return err
		}
		start := from
		if start.IsZero() {
			start = clock.Today(clock.Real(time.Local))
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.Heading(ui.IconLoop, rule.String()))
		dates := nextDates(rule, start, count)
		if len(dates) == 0 {
			fmt.Fprintln(out, ui.Muted.Render("does not recur"))
			return nil
		}
		for _, d := range dates {
			fmt.Fprintf(out, "  %s  %s\n", d, ui.Muted.Render(d.Weekday().String()[:3]))
		}
		return nil
	}
	return cmd
}

// nextDates chains rule.Next from start, stopping early when the rule ends.
func nextDates(rule recurrence.Rule, start recurrence.Date, n int) []recurrence.Date {
	var out []recurrence.Date
	cur := start
	for range n {
		next, ok := rule.Next(cur)
		if !ok || next == cur {
			break
		}
		out = append(out, next)
		cur = next
	}
	return out
}
