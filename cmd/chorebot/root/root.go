package root

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"chorebot/internal/app"
	"chorebot/internal/transport/console"
	"chorebot/pkg/logx"
)

const Version = "0.1.0"

var (
	cfgPath  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:           "chorebot",
	Short:         "Household chores tracker with recurring due dates",
	Long:          "chorebot tracks recurring household chores, works out when each is next due and sends a daily reminder.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "./config.yaml", "Path to the config file (.yaml, .yml or .json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Console log level for one-shot commands")

	rootCmd.AddCommand(
		newServeCmd(),
		newNextCmd(),
		newChoreCmd(),
		newRoomCmd(),
		newUserCmd(),
		newStatsCmd(),
		newDueCmd(),
		newCalendarCmd(),
		newSendDueCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error: "+err.Error())
		os.Exit(1)
	}
}

// withApp opens the configured store, loads it, runs fn and closes the store.
// Messages go to the command's stdout unless live is set, in which case the
// configured transport is used.
func withApp(cmd *cobra.Command, live bool, fn func(ctx context.Context, a *app.App) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	log := logx.NewConsole(logLevel)
	opts := app.Options{Stdout: cmd.OutOrStdout(), Logger: &log}
	if !live {
		opts.Adapter = console.New(cmd.OutOrStdout(), log)
	}

	a, err := app.NewApp(cfgPath, opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(context.WithoutCancel(ctx)); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()
	if err := a.Load(ctx); err != nil {
		return err
	}
	return fn(ctx, a)
}

func exactArgs(n int, what string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return errors.New(what + " is required")
		}
		return nil
	}
}
