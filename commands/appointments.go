package commands

import (
	"context"
	"fmt"
	"strconv"

	"vetclinic/models"
	"vetclinic/services/booking"
	"vetclinic/services/events"
	"vetclinic/services/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type draftFlags struct {
	petID    int
	at       string
	clinicID int
	status   string
}

func (f *draftFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.petID, "pet", 0, "pet id")
	cmd.Flags().StringVar(&f.at, "at", "", "date and time, e.g. 2025-03-01T10:00")
	cmd.Flags().IntVar(&f.clinicID, "clinic", 0, "clinic id")
	cmd.Flags().StringVar(&f.status, "status", "", "initial status (pending or completed)")
}

// apply copies the flags the user actually set onto the draft.
func (f *draftFlags) apply(cmd *cobra.Command, d *models.AppointmentDraft) {
	if cmd.Flags().Changed("pet") {
		d.PetID = f.petID
	}
	if cmd.Flags().Changed("at") {
		d.ScheduledAt = f.at
	}
	if cmd.Flags().Changed("clinic") {
		d.ClinicID = f.clinicID
	}
	if cmd.Flags().Changed("status") {
		d.Status = f.status
	}
}

func newAppointmentsCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "appointments",
		Aliases: []string{"appt"},
		Short:   "Create, list and edit appointments",
	}
	cmd.AddCommand(
		newAppointmentCreateCommand(e),
		newAppointmentResumeCommand(e),
		newAppointmentAbortCommand(e),
		newAppointmentListCommand(e),
		newAppointmentEditCommand(e),
		newAppointmentConcludeCommand(e),
		newAppointmentCompleteCommand(e),
		newAppointmentDeleteCommand(e),
	)
	return cmd
}

func newAppointmentCreateCommand(e *env) *cobra.Command {
	var (
		flags  draftFlags
		browse bool
	)
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a new appointment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			c := booking.NewCoordinator(app.Deps())
			if err := c.Start(ctx); err != nil {
				return err
			}
			if err := c.UpdateDraft(func(d *models.AppointmentDraft) { flags.apply(cmd, d) }); err != nil {
				return err
			}
			if browse {
				if err := c.BrowseClinics(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Appointment form saved.")
				return nil
			}
			return submitDraft(cmd, app, c)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&browse, "browse", false, "save the form and pick a clinic from the clinic list first")
	return cmd
}

func newAppointmentResumeCommand(e *env) *cobra.Command {
	var flags draftFlags
	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Continue the appointment form saved before browsing clinics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			c := booking.NewCoordinator(app.Deps())
			if err := c.Resume(ctx, 0); err != nil {
				return err
			}
			if err := c.UpdateDraft(func(d *models.AppointmentDraft) { flags.apply(cmd, d) }); err != nil {
				return err
			}
			return submitDraft(cmd, app, c)
		},
	}
	flags.register(cmd)
	return cmd
}

// submitDraft persists the draft. A rejected draft is saved again so the user can fix it
// and retry with "appointments resume".
func submitDraft(cmd *cobra.Command, app *App, c *booking.Coordinator) error {
	ctx := cmd.Context()
	appt, err := c.Submit(ctx)
	if err != nil {
		if c.State() == booking.Drafting {
			if serr := c.Suspend(ctx); serr != nil {
				app.Logger.Warn("appointment form not saved", zap.Error(serr))
			} else {
				fmt.Fprintln(cmd.ErrOrStderr(), "Appointment form saved. Retry with: vetclinic appointments resume")
			}
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Appointment %d created for %s.\n", appt.ID, appt.ScheduledAt)
	return nil
}

func newAppointmentAbortCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "abort",
		Short: "Abandon the appointment in progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			if err := booking.NewCoordinator(app.Deps()).Abort(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Appointment workflow cleared.")
			return nil
		},
	}
}

// appointmentView is the data behind the appointment table.
type appointmentView struct {
	appts   []models.Appointment
	pets    []models.Pet
	clinics []models.Clinic
}

func loadAppointments(ctx context.Context, app *App) (appointmentView, error) {
	var v appointmentView
	var err error
	if v.pets, err = app.API.ListPets(ctx, false); err != nil {
		return v, err
	}
	if v.clinics, err = app.API.ListClinics(ctx); err != nil {
		return v, err
	}
	all, err := app.API.ListAppointments(ctx)
	if err != nil {
		return v, err
	}
	v.appts = models.OwnedAppointments(all, v.pets)
	return v, nil
}

func appointmentReconciler(app *App) reconcile.Reconciler[models.Appointment] {
	return reconcile.Reconciler[models.Appointment]{
		Key:   func(a models.Appointment) int { return a.ID },
		Fetch: app.API.ListAppointments,
	}
}

func newAppointmentListCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your pets' appointments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			v, err := loadAppointments(cmd.Context(), app)
			if err != nil {
				return err
			}
			return printAppointments(cmd.OutOrStdout(), v.appts, v.pets, v.clinics)
		},
	}
}

func newAppointmentEditCommand(e *env) *cobra.Command {
	var flags draftFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an appointment's pet, date, clinic or status",
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
			v, err := loadAppointments(ctx, app)
			if err != nil {
				return err
			}
			ed, err := booking.Edit(app.Deps(), v.appts, id)
			if err != nil {
				return err
			}
			ed.Set(func(in *models.AppointmentInput) {
				d := models.AppointmentDraft{PetID: in.PetID, ScheduledAt: in.ScheduledAt, ClinicID: in.ClinicID, Status: in.Status}
				flags.apply(cmd, &d)
				in.PetID, in.ScheduledAt, in.ClinicID, in.Status = d.PetID, d.ScheduledAt, d.ClinicID, d.Status
			})
			updated, err := ed.Submit(ctx)
			if err != nil {
				return err
			}
			want := ed.Buffer()
			list, outcome, err := appointmentReconciler(app).Apply(ctx, v.appts, id, &updated, func(a models.Appointment) bool {
				return a.PetID == want.PetID && a.ClinicID == want.ClinicID && a.Status == want.Status
			})
			return showReconciled(cmd, app, list, v, id, outcome, err)
		},
	}
	flags.register(cmd)
	return cmd
}

func newAppointmentConcludeCommand(e *env) *cobra.Command {
	var text string
	cmd := &cobra.Command{
		Use:   "conclude <id>",
		Short: "Record the vet's conclusion for an appointment",
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
			v, err := loadAppointments(ctx, app)
			if err != nil {
				return err
			}
			ed, err := booking.Edit(app.Deps(), v.appts, id)
			if err != nil {
				return err
			}
			updated, err := ed.Conclude(ctx, text)
			if err != nil {
				return err
			}
			list, outcome, err := appointmentReconciler(app).Apply(ctx, v.appts, id, &updated, booking.ConcludedConfirmed)
			return showReconciled(cmd, app, list, v, id, outcome, err)
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "conclusion text")
	cmd.MarkFlagRequired("text")
	return cmd
}

func newAppointmentCompleteCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark an appointment as completed",
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
			v, err := loadAppointments(cmd.Context(), app)
			if err != nil {
				return err
			}
			list, outcome, err := completeAppointment(cmd.Context(), app, v.appts, id)
			return showReconciled(cmd, app, list, v, id, outcome, err)
		},
	}
}

// completeAppointment patches the status and reconciles list with the result.
func completeAppointment(ctx context.Context, app *App, list []models.Appointment, id int) ([]models.Appointment, reconcile.Outcome, error) {
	resp, err := app.API.UpdateAppointmentStatus(ctx, id, models.StatusCompleted)
	if err != nil {
		return list, 0, err
	}
	if err := app.Events.Publish(ctx, events.New(events.AppointmentCompleted, strconv.Itoa(id), resp)); err != nil {
		app.Logger.Warn("failed to publish event", zap.String("type", events.AppointmentCompleted), zap.Error(err))
	}
	return appointmentReconciler(app).Apply(ctx, list, id, resp, booking.CompletedConfirmed)
}

func showReconciled(cmd *cobra.Command, app *App, list []models.Appointment, v appointmentView, id int, outcome reconcile.Outcome, err error) error {
	if outcome == 0 && err != nil {
		return err
	}
	if err != nil {
		app.Logger.Warn("appointment saved but the list could not be refreshed", zap.Error(err))
		fmt.Fprintf(cmd.OutOrStdout(), "Appointment %d saved.\n", id)
		return nil
	}
	app.Logger.Debug("appointment list reconciled", zap.Int("appointment_id", id), zap.Stringer("outcome", outcome))
	for _, a := range list {
		if a.ID == id {
			return printAppointments(cmd.OutOrStdout(), []models.Appointment{a}, v.pets, v.clinics)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Appointment %d saved.\n", id)
	return nil
}

func newAppointmentDeleteCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an appointment",
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
			if err := app.API.DeleteAppointment(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Appointment %d deleted.\n", id)
			return nil
		},
	}
}
