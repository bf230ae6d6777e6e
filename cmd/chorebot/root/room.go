package root

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"chorebot/internal/app"
	"chorebot/internal/ui"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "room",
		Aliases: []string{"rooms"},
		Short:   "Manage rooms",
	}
	cmd.AddCommand(newRoomAddCmd(), newRoomRenameCmd(), newRoomRemoveCmd(), newRoomListCmd())
	return cmd
}

func newRoomAddCmd() *cobra.Command {
	var icon, area string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a custom room, or register an area with --area",
		Args:  exactArgs(1, "name"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, false, func(ctx context.Context, a *app.App) error {
				svc := a.Chores()
				var err error
				var id string
				if area != "" {
					r, aerr := svc.AddArea(ctx, area, args[0], icon)
					id, err = r.ID, aerr
				} else {
					r, rerr := svc.AddRoom(ctx, args[0], icon)
					id, err = r.ID, rerr
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s added %s [%s]\n", ui.IconHouse, args[0], id)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&icon, "icon", "", "Icon name (default mdi:home)")
	cmd.Flags().StringVar(&area, "area", "", "Area slug; the room id becomes area_<slug>")
	return cmd
}

func newRoomRenameCmd() *cobra.Command {
	var icon string

	cmd := &cobra.Command{
		Use:   "rename <room> <new-name>",
		Short: "Rename a room or change its icon",
		Args:  exactArgs(2, "room and new name"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, false, func(ctx context.Context, a *app.App) error {
				r, err := findRoom(a.Chores(), args[0])
				if err != nil {
					return err
				}
				var iconp *string
				if cmd.Flags().Changed("icon") {
					iconp = &icon
				}
				out, err := a.Chores().UpdateRoom(ctx, r.ID, &args[1], iconp)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "renamed %s to %s\n", r.Name, out.Name)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&icon, "icon", "", "New icon name")
	return cmd
}

func newRoomRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <room>",
		Aliases: []string{"rm"},
		Short:   "Delete a room and every chore in it",
		Args:    exactArgs(1, "room id or name"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, false, func(ctx context.Context, a *app.App) error {
				r, err := findRoom(a.Chores(), args[0])
				if err != nil {
					return err
				}
				n, err := a.Chores().RemoveRoom(ctx, r.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s and %d chore(s)\n", r.Name, n)
				return nil
			})
		},
	}
}

func newRoomListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List rooms",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, false, func(ctx context.Context, a *app.App) error {
				svc := a.Chores()
				counts := map[string]int{}
				for _, c := range svc.Chores() {
					if !c.IsCompleted {
						counts[c.RoomID]++
					}
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tICON\tCHORES")
				for _, r := range svc.Rooms() {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", r.ID, r.Name, orDash(r.Icon), counts[r.ID])
				}
				return tw.Flush()
			})
		},
	}
}
