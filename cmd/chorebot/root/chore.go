package root

import (
	"context"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"chorebot/internal/app"
	"chorebot/internal/chores"
	"chorebot/internal/recurrence"
	"chorebot/internal/storage"
	"chorebot/internal/ui"
)

func newChoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "chore",
		Aliases: []string{"chores"},
		Short:   "Manage chores",
	}
	cmd.AddCommand(
		newChoreAddCmd(),
		newChoreUpdateCmd(),
		newChoreRemoveCmd(),
		newChoreActionCmd("complete", "Mark a chore done and schedule the next occurrence"),
		newChoreActionCmd("skip", "Move a chore to its next occurrence without completing it"),
		newChoreActionCmd("snooze", "Push a chore back by one day"),
		newChoreListCmd(),
		newChoreHistoryCmd(),
	)
	return cmd
}

func newChoreAddCmd() *cobra.Command {
	var room, assign string
	var start recurrence.Date

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a chore",
		Example: `  chorebot chore add "Water plants" --room Kitchen -f weekly --type anchored --days mon,thu
  chorebot chore add "Pay rent" --room Office -f monthly --type anchored --anchor day_of_month --day 31`,
		Args: exactArgs(1, "name"),
	}
	rf := bindRecurrenceFlags(cmd.Flags(), string(recurrence.Weekly))
	cmd.Flags().StringVarP(&room, "room", "r", "", "Room id or name")
	cmd.Flags().StringVarP(&assign, "assign", "a", "", "Assigned user id or name")
	cmd.Flags().Var(&dateValue{date: &start}, "start", "First due date (YYYY-MM-DD, default today)")
	_ = cmd.MarkFlagRequired("room")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := rf.config()
		if err != nil {
			return err
		}
		return withApp(cmd, false, func(ctx context.Context, a *app.App) error {
			svc := a.Chores()
			r, err := findRoom(svc, room)
			if err != nil {
				return err
			}
			uid, err := findUser(svc, assign)
			if err != nil {
				return err
			}
			c, err := svc.AddChore(ctx, chores.ChoreInput{
				Name:       args[0],
				RoomID:     r.ID,
				StartDate:  start,
				AssignedTo: uid,
				Config:     cfg,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s added %s (%s), due %s [%s]\n", ui.IconBroom, c.Name, describeRule(c), c.NextDue, c.ID)
			return nil
		})
	}
	return cmd
}

func newChoreUpdateCmd() *cobra.Command {
	var name, room, assign string
	var due recurrence.Date

	cmd := &cobra.Command{
		Use:   "update <chore>",
		Short: "Change a chore's name, room, due date, assignee or recurrence",
		Args:  exactArgs(1, "chore id or name"),
	}
	rf := bindRecurrenceFlags(cmd.Flags(), string(recurrence.Weekly))
	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVarP(&room, "room", "r", "", "Room id or name")
	cmd.Flags().StringVarP(&assign, "assign", "a", "", "Assigned user id or name (empty unassigns)")
	cmd.Flags().Var(&dateValue{date: &due}, "due", "Next due date (YYYY-MM-DD)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, false, func(ctx context.Context, a *app.App) error {
			svc := a.Chores()
			c, err := findChore(svc, args[0])
			if err != nil {
				return err
			}

			up := chores.ChoreUpdate{AssignedTo: c.AssignedTo}
			fs := cmd.Flags()
			if fs.Changed("name") {
				up.Name = &name
			}
			if fs.Changed("room") {
				r, err := findRoom(svc, room)
				if err != nil {
					return err
				}
				up.RoomID = &r.ID
			}
			if fs.Changed("assign") {
				if up.AssignedTo, err = findUser(svc, assign); err != nil {
					return err
				}
			}
			if fs.Changed("due") && !due.IsZero() {
				up.NextDue = &due
			}
			if err := rf.applyTo(&up); err != nil {
				return err
			}

			out, err := svc.UpdateChore(ctx, c.ID, up)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s (%s), due %s\n", out.Name, describeRule(out), out.NextDue)
			return nil
		})
	}
	return cmd
}

func newChoreRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <chore>",
		Aliases: []string{"rm"},
		Short:   "Delete a chore (its history is kept)",
		Args:    exactArgs(1, "chore id or name"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, false, func(ctx context.Context, a *app.App) error {
				c, err := findChore(a.Chores(), args[0])
				if err != nil {
					return err
				}
				if err := a.Chores().RemoveChore(ctx, c.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", c.Name)
				return nil
			})
		},
	}
}

// newChoreActionCmd builds complete, skip and snooze, which share their
// argument handling.
func newChoreActionCmd(action, short string) *cobra.Command {
	var by string

	cmd := &cobra.Command{
		Use:   action + " <chore>",
		Short: short,
		Args:  exactArgs(1, "chore id or name"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, false, func(ctx context.Context, a *app.App) error {
				svc := a.Chores()
				c, err := findChore(svc, args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				switch action {
				case "complete":
					uid, err := findUser(svc, by)
					if err != nil {
						return err
					}
					done, err := svc.CompleteChore(ctx, c.ID, uid)
					if err != nil {
						return err
					}
					if done.IsCompleted {
						fmt.Fprintf(out, "%s %s done\n", ui.IconDone, done.Name)
					} else {
						fmt.Fprintf(out, "%s %s done, next due %s\n", ui.IconDone, done.Name, done.NextDue)
					}
				case "skip":
					next, err := svc.SkipChore(ctx, c.ID)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "%s %s skipped, next due %s\n", ui.IconSkip, next.Name, next.NextDue)
				case "snooze":
					next, err := svc.SnoozeChore(ctx, c.ID)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "%s %s snoozed to %s\n", ui.IconSnooze, next.Name, next.NextDue)
				}
				return nil
			})
		},
	}
	if action == "complete" {
		cmd.Flags().StringVar(&by, "by", "", "User id or name who did it")
	}
	return cmd
}

func newChoreListCmd() *cobra.Command {
	var room string
	var all bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List chores ordered by due date",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, false, func(ctx context.Context, a *app.App) error {
				svc := a.Chores()
				roomID := ""
				if room != "" {
					r, err := findRoom(svc, room)
					if err != nil {
						return err
					}
					roomID = r.ID
				}
				snap := svc.Refresh(ctx)
				list := filterChores(svc.Chores(), roomID, all)
				if len(list) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("no chores"))
					return nil
				}

				rooms, users := roomNames(svc), userNames(svc)
				window := a.Config().DueWindowDays()
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tROOM\tRULE\tASSIGNED\tDUE")
				for _, c := range list {
					due := ui.DueText(snap.Today, c.NextDue, window)
					if c.IsCompleted {
						due = ui.Muted.Render("completed")
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, orDash(rooms[c.RoomID]), describeRule(c), orDash(users[c.AssignedTo]), due)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVarP(&room, "room", "r", "", "Only chores in this room")
	cmd.Flags().BoolVar(&all, "all", false, "Include completed one-off chores")
	return cmd
}

// filterChores keeps chores in roomID (any room when empty), drops completed
// ones unless all is set, and orders by due date then name.
func filterChores(cs []storage.Chore, roomID string, all bool) []storage.Chore {
	out := cs[:0]
	for _, c := range cs {
		if roomID != "" && c.RoomID != roomID {
			continue
		}
		if c.IsCompleted && !all {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if cmp := out[i].NextDue.Compare(out[j].NextDue); cmp != 0 {
			return cmp < 0
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func newChoreHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [chore]",
		Short: "Show completions, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, false, func(ctx context.Context, a *app.App) error {
				svc := a.Chores()
				id := ""
				if len(args) == 1 {
					c, err := findChore(svc, args[0])
					if err != nil {
						return err
					}
					id = c.ID
				}
				hist := svc.History(id)
				if len(hist) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("no completions yet"))
					return nil
				}
				loc := a.Now().Location()
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "WHEN\tCHORE\tBY")
				shown := 0
				for i := len(hist) - 1; i >= 0 && (limit <= 0 || shown < limit); i-- {
					h := hist[i]
					fmt.Fprintf(tw, "%s\t%s\t%s\n", h.CompletedAt.In(loc).Format("2006-01-02 15:04"), h.ChoreName, orDash(h.CompletedByName))
					shown++
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries (0 for all)")
	return cmd
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
