package commands

import (
	"fmt"

	"vetclinic/models"
	"vetclinic/services/booking"
	"vetclinic/services/enrichment"

	"github.com/spf13/cobra"
)

func newClinicsCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clinics",
		Short: "Browse clinics and choose one for an appointment",
	}
	cmd.AddCommand(newClinicListCommand(e), newClinicChooseCommand(e))
	return cmd
}

func newClinicListCommand(e *env) *cobra.Command {
	var (
		search string
		watch  bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clinics with their map location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			clinics, err := app.API.ListClinics(ctx)
			if err != nil {
				return err
			}
			clinics = models.FilterClinics(clinics, search)

			g := app.Geocoder(ctx)
			if g == nil {
				return printClinics(cmd.OutOrStdout(), clinics)
			}
			enricher := enrichment.NewClinicEnricher(g, enrichment.ClinicEnricherConfig{
				Concurrency: app.Cfg.GeocodeConcurrency,
				ReadyWait:   app.Cfg.GeocodeWait,
				Logger:      app.Logger,
			})
			if watch {
				enricher.Watch(ctx, clinics, func(list []models.Clinic, report enrichment.Report) {
					printClinics(cmd.OutOrStdout(), list)
					fmt.Fprintf(cmd.ErrOrStderr(), "%d address(es) located, %d failed.\n", report.Resolved, len(report.Failures))
				})
				return nil
			}
			enriched, report := enricher.Enrich(ctx, clinics)
			if err := printClinics(cmd.OutOrStdout(), enriched); err != nil {
				return err
			}
			if n := len(report.Failures); n > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "%d address(es) could not be located.\n", n)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "filter by clinic name")
	cmd.Flags().BoolVar(&watch, "watch", false, "print the list at once and again when locations arrive")
	return cmd
}

func newClinicChooseCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "choose <id>",
		Short: "Use a clinic for the appointment being booked",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			if err := booking.ChooseClinic(cmd.Context(), app.Store, newCLINavigator(cmd.OutOrStdout()), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Clinic %d selected.\n", id)
			return nil
		},
	}
}
