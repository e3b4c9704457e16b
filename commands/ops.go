package commands

import (
	"fmt"
	"os"
	"time"

	"vetclinic/services/reminder"
	"vetclinic/utils"

	"github.com/spf13/cobra"
)

func newRemindersCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Revaccination reminders",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "worker",
		Short: "Process due revaccination reminders until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			w := reminder.NewWorker(reminder.RedisOpt(app.Cfg), app.Events, app.Logger)
			return w.Run(cmd.Context())
		},
	})
	return cmd
}

func newStatusCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check connectivity to the API and the session store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			status := utils.CheckHealth(cmd.Context(), app.Cfg.APITimeout, app.probes...)
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "SERVICE\tSTATUS\tLATENCY\tERROR")
			for _, r := range status.Results {
				state := "ok"
				if !r.Healthy {
					state = "down"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Name, state, r.Latency.Round(time.Millisecond), orDash(r.Error))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if !status.Healthy() {
				return errUnhealthy
			}
			return nil
		},
	}
}

func newLogoutCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget all saved workflow state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			if err := app.Store.ClearAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			if os.Getenv("API_TOKEN") != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), "API_TOKEN is still set in the environment.")
			}
			return nil
		},
	}
}
