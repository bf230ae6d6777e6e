package root

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"chorebot/internal/app"
	"chorebot/internal/ui"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "user",
		Aliases: []string{"users"},
		Short:   "Manage household members",
	}
	cmd.AddCommand(newUserAddCmd(), newUserRenameCmd(), newUserRemoveCmd(), newUserListCmd())
	return cmd
}

func newUserAddCmd() *cobra.Command {
	var avatar string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a household member",
		Args:  exactArgs(1, "name"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, false, func(ctx context.Context, a *app.App) error {
				u, err := a.Chores().AddUser(ctx, args[0], avatar)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s added %s [%s]\n", ui.IconUser, u.Name, u.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&avatar, "avatar", "", "Avatar icon (default mdi:account)")
	return cmd
}

func newUserRenameCmd() *cobra.Command {
	var avatar string

	cmd := &cobra.Command{
		Use:   "rename <user> <new-name>",
		Short: "Rename a household member or change their avatar",
		Args:  exactArgs(2, "user and new name"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, false, func(ctx context.Context, a *app.App) error {
				id, err := findUser(a.Chores(), args[0])
				if err != nil {
					return err
				}
				var avatarp *string
				if cmd.Flags().Changed("avatar") {
					avatarp = &avatar
				}
				u, err := a.Chores().UpdateUser(ctx, id, &args[1], avatarp)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "renamed %s to %s\n", args[0], u.Name)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&avatar, "avatar", "", "New avatar icon")
	return cmd
}

func newUserRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <user>",
		Aliases: []string{"rm"},
		Short:   "Remove a household member",
		Args:    exactArgs(1, "user id or name"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, false, func(ctx context.Context, a *app.App) error {
				id, err := findUser(a.Chores(), args[0])
				if err != nil {
					return err
				}
				if err := a.Chores().RemoveUser(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
				return nil
			})
		},
	}
}

func newUserListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List household members",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, false, func(ctx context.Context, a *app.App) error {
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tAVATAR")
				for _, u := range a.Chores().Users() {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", u.ID, u.Name, orDash(u.Avatar))
				}
				return tw.Flush()
			})
		},
	}
}
