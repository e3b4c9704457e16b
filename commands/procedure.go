package commands

import (
	"fmt"
	"strings"

	"vetclinic/models"
	"vetclinic/services/batch"
	"vetclinic/services/booking"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newProcedureCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "procedure",
		Short: "Choose and record the procedure for the appointment just booked",
	}
	cmd.AddCommand(newProcedureSelectCommand(e), newVaccinateCommand(e), newAnalyseCommand(e))
	return cmd
}

func newProcedureSelectCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:       "select <check-up|vaccination|analysis>",
		Short:     "Pick the procedure type",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"check-up", "vaccination", "analysis"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := booking.ParseProcedureKind(args[0])
			if err != nil {
				return err
			}
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			c := booking.NewCoordinator(app.Deps())
			if err := c.OpenSelection(cmd.Context()); err != nil {
				return err
			}
			if err := c.SelectProcedure(cmd.Context(), kind); err != nil {
				return err
			}
			if kind == booking.CheckUp {
				fmt.Fprintf(cmd.OutOrStdout(), "Check-up booked for appointment %d.\n", c.AppointmentID())
			}
			return nil
		},
	}
}

func newVaccinateCommand(e *env) *cobra.Command {
	var (
		vaccineType string
		name        string
		quantity    int
		undoPartial bool
	)
	cmd := &cobra.Command{
		Use:   "vaccinate",
		Short: "Record vaccine doses for the appointment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			form, err := booking.OpenProcedureForm(ctx, app.Deps())
			if err != nil {
				return err
			}
			vaccines, err := app.API.ListVaccines(ctx)
			if err != nil {
				return err
			}
			vaccine, err := booking.ResolveVaccine(vaccines, vaccineType, name)
			if err != nil {
				printVaccineChoices(cmd, vaccines, vaccineType)
				return err
			}

			doses, err := form.CommitVaccination(ctx, vaccine, quantity)
			if pf, ok := batch.AsPartial(err); ok && undoPartial && app.Batch.Policy() == batch.Keep {
				if uerr := pf.Undo(ctx); uerr != nil {
					app.Logger.Warn("bulk undo incomplete", zap.Error(uerr))
				}
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %d dose(s) of %s for appointment %d.\n", len(doses), vaccine.Name, form.AppointmentID())
			return nil
		},
	}
	cmd.Flags().StringVar(&vaccineType, "type", "", "vaccine type")
	cmd.Flags().StringVar(&name, "name", "", "vaccine name")
	cmd.Flags().IntVar(&quantity, "quantity", 1, "number of doses")
	cmd.Flags().BoolVar(&undoPartial, "undo-partial", false, "delete the doses already created if some fail")
	return cmd
}

func printVaccineChoices(cmd *cobra.Command, vaccines []models.Vaccine, vaccineType string) {
	w := cmd.ErrOrStderr()
	if vaccineType == "" {
		fmt.Fprintf(w, "Vaccine types: %s\n", strings.Join(booking.VaccineTypes(vaccines), ", "))
		return
	}
	var names []string
	for _, v := range vaccines {
		if v.Type == vaccineType {
			names = append(names, v.Name)
		}
	}
	if len(names) > 0 {
		fmt.Fprintf(w, "%s vaccines: %s\n", vaccineType, strings.Join(names, ", "))
	}
}

func newAnalyseCommand(e *env) *cobra.Command {
	var typeName string
	cmd := &cobra.Command{
		Use:     "analyse",
		Aliases: []string{"analyze"},
		Short:   "Record an analysis for the appointment",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			form, err := booking.OpenProcedureForm(ctx, app.Deps())
			if err != nil {
				return err
			}
			types, err := app.API.ListAnalysisTypes(ctx)
			if err != nil {
				return err
			}
			var typeID int
			for _, t := range types {
				if strings.EqualFold(t.Name, typeName) {
					typeID = t.ID
					break
				}
			}
			if typeID == 0 && len(types) > 0 {
				names := make([]string, len(types))
				for i, t := range types {
					names[i] = t.Name
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Analysis types: %s\n", strings.Join(names, ", "))
			}
			analysis, err := form.CommitAnalysis(ctx, typeID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Analysis %d recorded for appointment %d.\n", analysis.ID, form.AppointmentID())
			return nil
		},
	}
	cmd.Flags().StringVar(&typeName, "type", "", "analysis type name")
	return cmd
}
