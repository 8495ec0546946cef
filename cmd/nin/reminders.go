package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unowned-ai/nin/pkg/notify"
)

func newRemindersCmd(opts *rootOptions) *cobra.Command {
	remindersCmd := &cobra.Command{
		Use:     "reminders",
		Aliases: []string{"reminder"},
		Short:   "Inspect and deliver scheduled reminders",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List reminders that have not fired yet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				pending, err := a.notifier.Pending(ctx)
				if err != nil {
					return err
				}
				loc := a.svc.Location()
				rows := make([]row, len(pending))
				for i, n := range pending {
					rows[i] = row{title: n.Title, date: n.At.In(loc).Format(reminderLayout), detail: n.Body}
				}
				printList(cmd.OutOrStdout(), "Pending reminders", "No pending reminders.", rows)
				return nil
			})
		},
	}

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Print reminders as they become due",
		Long: `Polls the store every reminders.poll_interval (or --interval) and prints each
reminder once it is due. Runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			a, err := opts.open(cmd, func(ctx context.Context, n notify.Notification) error {
				fmt.Fprintln(out, titleStyle.Render("⏰ "+n.Title))
				if n.Body != "" {
					fmt.Fprintln(out, n.Body)
				}
				return nil
			})
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(baseContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			interval := a.cfg.Reminders.PollInterval
			a.log.Info("watching reminders", zap.Duration("interval", interval))
			fmt.Fprintln(cmd.ErrOrStderr(), dimStyle.Render("Watching for due reminders (Ctrl+C to quit)"))
			return a.notifier.Run(ctx, interval)
		},
	}
	watchCmd.Flags().Duration("interval", 0, "Override reminders.poll_interval")

	remindersCmd.AddCommand(listCmd, watchCmd)
	return remindersCmd
}

func baseContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
