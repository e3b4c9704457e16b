package commands

import (
	"fmt"

	"vetclinic/models"
	"vetclinic/services/booking"
	"vetclinic/services/session"

	"github.com/spf13/cobra"
)

var servicesClinicSlot = session.IntSlot(session.SlotSelectedClinicID)

// The services panel is the staff view of one clinic's appointments.
func newServicesCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "services",
		Short: "Staff view of a clinic's appointments",
	}
	cmd.AddCommand(newServicesSelectCommand(e), newServicesListCommand(e), newServicesCompleteCommand(e))
	return cmd
}

func newServicesSelectCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "select-clinic <id>",
		Short: "Choose the clinic whose appointments are shown",
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
			if err := servicesClinicSlot.Put(cmd.Context(), app.Store, id); err != nil {
				return err
			}
			newCLINavigator(cmd.OutOrStdout()).Navigate(booking.RouteServices)
			return nil
		},
	}
}

func newServicesListCommand(e *env) *cobra.Command {
	var clinicID int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the selected clinic's appointments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if !cmd.Flags().Changed("clinic") {
				id, ok, err := servicesClinicSlot.Peek(ctx, app.Store)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no clinic selected; run: vetclinic services select-clinic <id>")
				}
				clinicID = id
			}

			appts, err := app.API.ListAppointments(ctx)
			if err != nil {
				return err
			}
			pets, err := app.API.ListPets(ctx, true)
			if err != nil {
				return err
			}
			clinics, err := app.API.ListClinics(ctx)
			if err != nil {
				return err
			}
			return printAppointments(cmd.OutOrStdout(), models.AppointmentsForClinic(appts, clinicID), pets, clinics)
		},
	}
	cmd.Flags().IntVar(&clinicID, "clinic", 0, "clinic id (defaults to the selected clinic)")
	return cmd
}

func newServicesCompleteCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark a clinic appointment as completed",
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
			ctx := cmd.Context()
			appts, err := app.API.ListAppointments(ctx)
			if err != nil {
				return err
			}
			pets, err := app.API.ListPets(ctx, true)
			if err != nil {
				return err
			}
			clinics, err := app.API.ListClinics(ctx)
			if err != nil {
				return err
			}
			list, outcome, err := completeAppointment(ctx, app, appts, id)
			return showReconciled(cmd, app, list, appointmentView{appts: appts, pets: pets, clinics: clinics}, id, outcome, err)
		},
	}
}
