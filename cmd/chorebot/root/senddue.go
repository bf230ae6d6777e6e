package root

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"chorebot/internal/app"
)

func newSendDueCmd() *cobra.Command {
	var console bool

	cmd := &cobra.Command{
		Use:   "send-due",
		Short: "Send today's due reminder once through the configured transport",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, !console, func(ctx context.Context, a *app.App) error {
				a.Notifier().Start(ctx)
				n, err := a.SendDue(ctx)

				stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
				defer cancel()
				a.Notifier().Stop(stopCtx)
				if err != nil {
					return err
				}
				if n == 0 {
					fmt.Fprintln(cmd.ErrOrStderr(), "nothing sent")
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&console, "console", false, "Print the reminder instead of sending it")
	return cmd
}
