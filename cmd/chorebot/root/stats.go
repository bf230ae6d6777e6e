package root

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"chorebot/internal/app"
	"chorebot/internal/ui"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Completions per person",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, false, func(ctx context.Context, a *app.App) error {
				stats := a.Chores().UserStats()
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, ui.Heading(ui.IconTrophy, "Completed chores"))
				if len(stats) == 0 {
					fmt.Fprintln(out, ui.Muted.Render("no completions yet"))
					return nil
				}
				loc := a.Now().Location()
				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "USER\tDONE\tLAST")
				for _, s := range stats {
					fmt.Fprintf(tw, "%s\t%d\t%s\n", orDash(s.UserName), s.TotalCompleted, s.LastCompleted.In(loc).Format("2006-01-02"))
				}
				return tw.Flush()
			})
		},
	}
}
