// Package commands is the command-line front end. Each command mounts one screen of the
// appointment workflow; state that must outlive the command goes through the session store.
package commands

import (
	"context"
	"fmt"
	"io"

	"vetclinic/config"
	"vetclinic/utils"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// env is shared by every command of one invocation.
type env struct {
	app      *App
	shutdown func(context.Context) error
	// newApp is swapped in tests.
	newApp func(ctx context.Context, cfg config.Config, logger *zap.Logger, out io.Writer) (*App, error)
}

// App returns the invocation's App, building it on first use.
func (e *env) App(cmd *cobra.Command) (*App, error) {
	if e.app != nil {
		return e.app, nil
	}
	a, err := e.newApp(cmd.Context(), config.AppConfig, utils.GetLogger(), cmd.OutOrStdout())
	if err != nil {
		return nil, err
	}
	e.app = a
	return a, nil
}

func (e *env) close(ctx context.Context) {
	if e.app != nil {
		if err := e.app.Close(); err != nil {
			utils.GetLogger().Warn("shutdown", zap.Error(err))
		}
		e.app = nil
	}
	if e.shutdown != nil {
		if err := e.shutdown(ctx); err != nil {
			utils.GetLogger().Warn("failed to flush traces", zap.Error(err))
		}
		e.shutdown = nil
	}
}

func newRootCommand(e *env) *cobra.Command {
	var cfgFile string
	root := &cobra.Command{
		Use:           "vetclinic",
		Short:         "Book and manage veterinary appointments",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cfgFile != "" {
				viper.SetConfigFile(cfgFile)
			}
			config.LoadConfig()
			utils.InitializeLogger()

			shutdown, err := utils.SetupTelemetry(cmd.Context(), config.AppConfig)
			if err != nil {
				return err
			}
			e.shutdown = shutdown
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ./config.yaml)")
	pf.String("token", "", "bearer token for the clinic API")
	pf.String("api", "", "clinic API base URL")
	pf.String("namespace", "", "session namespace")
	viper.BindPFlag("API_TOKEN", pf.Lookup("token"))
	viper.BindPFlag("API_BASE_URL", pf.Lookup("api"))
	viper.BindPFlag("SESSION_NAMESPACE", pf.Lookup("namespace"))

	root.AddCommand(
		newAppointmentsCommand(e),
		newClinicsCommand(e),
		newProcedureCommand(e),
		newPetsCommand(e),
		newCatalogCommand(e),
		newMedicinesCommand(e),
		newServicesCommand(e),
		newVaccinationsCommand(e),
		newAnalysesCommand(e),
		newRemindersCommand(e),
		newStatusCommand(e),
		newLogoutCommand(e),
	)
	return root
}

// Execute runs the command line and releases everything the invoked command opened.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	e := &env{newApp: newApp}
	defer e.close(context.WithoutCancel(ctx))

	root := newRootCommand(e)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "Error:", userMessage(err))
		return err
	}
	return nil
}
