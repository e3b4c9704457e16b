// Package booking drives an appointment from an unsaved draft through procedure capture.
// Every screen boundary discards in-memory state, so whatever a later screen needs is written
// to the session store first.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"vetclinic/models"
	"vetclinic/services/events"
	"vetclinic/services/session"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// Coordinator owns one booking workflow instance on the appointment screen.
type Coordinator struct {
	deps Deps
	log  *zap.Logger

	mu            sync.Mutex
	state         State
	workflowID    string
	draft         models.AppointmentDraft
	appointmentID int
}

func NewCoordinator(deps Deps) *Coordinator {
	deps = deps.withDefaults()
	return &Coordinator{deps: deps, log: deps.Logger.Named("booking")}
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Coordinator) WorkflowID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.workflowID
}

// AppointmentID is the id assigned by the server once the draft is persisted.
func (c *Coordinator) AppointmentID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.appointmentID
}

func (c *Coordinator) Draft() models.AppointmentDraft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// UpdateDraft edits the in-memory draft. It is only allowed while drafting.
func (c *Coordinator) UpdateDraft(fn func(*models.AppointmentDraft)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Drafting {
		return transitionError("update draft", c.state)
	}
	fn(&c.draft)
	return nil
}

func (c *Coordinator) enter(s State) {
	c.log.Debug("workflow transition",
		zap.String("workflow_id", c.workflowID),
		zap.Stringer("from", c.state),
		zap.Stringer("to", s))
	c.state = s
}

// Start begins a new workflow. Leftovers of an abandoned workflow are cleared; a clinic chosen
// beforehand on the clinic screen is consumed as a prefill.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	store := c.deps.Store
	for _, slot := range []string{session.SlotAppointmentID, session.SlotPetID, session.SlotAppointmentForm} {
		if err := store.Clear(ctx, slot); err != nil {
			return fmt.Errorf("failed to reset workflow: %w", err)
		}
	}

	var draft models.AppointmentDraft
	clinicID, err := clinicIDSlot.Take(ctx, store)
	switch {
	case err == nil:
		draft.ClinicID = clinicID
	case errors.Is(err, session.ErrSlotEmpty):
	default:
		c.log.Warn("ignoring unreadable clinic prefill", zap.Error(err))
		_ = clinicIDSlot.Clear(ctx, store)
	}

	c.workflowID = uuid.NewString()
	c.draft = draft
	c.appointmentID = 0
	c.enter(Drafting)
	return nil
}

// Abort abandons the workflow and clears every slot it may have written.
func (c *Coordinator) Abort(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := clearWorkflowSlots(ctx, c.deps.Store); err != nil {
		return err
	}
	c.draft = models.AppointmentDraft{}
	c.appointmentID = 0
	c.state = 0
	return nil
}

func clearWorkflowSlots(ctx context.Context, store session.Store) error {
	for _, slot := range []string{
		session.SlotAppointmentID,
		session.SlotPetID,
		session.SlotAppointmentForm,
		session.SlotSelectedClinicID,
	} {
		if err := store.Clear(ctx, slot); err != nil {
			return fmt.Errorf("failed to clear %s: %w", slot, err)
		}
	}
	return nil
}

// BrowseClinics saves the draft and hands over to the clinic screen.
func (c *Coordinator) BrowseClinics(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Drafting {
		return transitionError("browse clinics", c.state)
	}
	if err := draftSlot.Put(ctx, c.deps.Store, c.draft); err != nil {
		return fmt.Errorf("failed to save appointment form: %w", err)
	}
	c.enter(ClinicPending)
	c.deps.Navigator.Navigate(RouteClinics)
	return nil
}

// ChooseClinic is the clinic screen's selection. With a saved appointment form the clinic is
// merged into it and the form is reopened; otherwise it is remembered as the clinic for the
// next booking and a new form is started.
func ChooseClinic(ctx context.Context, store session.Store, nav Navigator, clinicID int) error {
	if clinicID <= 0 {
		return newValidationError("clinicId", "Please select a clinic.")
	}
	draft, ok, err := draftSlot.Peek(ctx, store)
	if err != nil {
		return err
	}
	route := RouteNewAppointment
	if ok {
		draft.ClinicID = clinicID
		err = draftSlot.Put(ctx, store, draft)
		route = RouteAppointmentForm
	} else {
		err = clinicIDSlot.Put(ctx, store, clinicID)
	}
	if err != nil {
		return err
	}
	if nav != nil {
		nav.Navigate(route)
	}
	return nil
}

// Resume restores the draft saved by BrowseClinics. The saved form is consumed. clinicID,
// when positive, overrides the clinic in the saved form.
func (c *Coordinator) Resume(ctx context.Context, clinicID int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != 0 && c.state != ClinicPending {
		return transitionError("resume", c.state)
	}

	draft, err := draftSlot.Take(ctx, c.deps.Store)
	if errors.Is(err, session.ErrSlotEmpty) {
		return ErrNoDraftSnapshot
	}
	if err != nil {
		return err
	}
	if clinicID > 0 {
		draft.ClinicID = clinicID
	}
	if c.workflowID == "" {
		c.workflowID = uuid.NewString()
	}
	c.draft = draft
	c.enter(Drafting)
	return nil
}

// Suspend saves the draft in progress so a later Resume can pick it up. The appointment screen
// calls it when it unmounts with the draft still unsubmitted.
func (c *Coordinator) Suspend(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Drafting {
		return transitionError("suspend", c.state)
	}
	if err := draftSlot.Put(ctx, c.deps.Store, c.draft); err != nil {
		return fmt.Errorf("failed to save appointment form: %w", err)
	}
	return nil
}

// Submit persists the draft. Validation failures make no network call. A rejection by the
// server leaves the workflow in Drafting so the same draft can be retried.
func (c *Coordinator) Submit(ctx context.Context) (models.Appointment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Drafting {
		return models.Appointment{}, transitionError("submit", c.state)
	}

	at, err := validateDraft(c.draft, c.deps.Location)
	if err != nil {
		return models.Appointment{}, err
	}

	ctx, span := tracer.Start(ctx, "booking.Submit")
	defer span.End()
	span.SetAttributes(attribute.String("workflow.id", c.workflowID))

	status := c.draft.Status
	if status == "" {
		status = models.StatusPending
	}
	appt, err := c.deps.API.CreateAppointment(ctx, models.AppointmentInput{
		PetID:            c.draft.PetID,
		ScheduledAt:      at.UTC().Format(time.RFC3339),
		ClinicID:         c.draft.ClinicID,
		Status:           status,
		ConclusionStatus: models.StatusPending,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create appointment")
		c.log.Warn("appointment rejected", zap.String("workflow_id", c.workflowID), zap.Error(err))
		return models.Appointment{}, err
	}
	c.enter(Persisted)

	if err := appointmentIDSlot.Put(ctx, c.deps.Store, appt.ID); err != nil {
		return appt, fmt.Errorf("appointment %d created but not saved to session: %w", appt.ID, err)
	}
	if err := petIDSlot.Put(ctx, c.deps.Store, c.draft.PetID); err != nil {
		return appt, fmt.Errorf("appointment %d created but not saved to session: %w", appt.ID, err)
	}
	c.appointmentID = appt.ID
	span.SetAttributes(attribute.Int("appointment.id", appt.ID))

	publish(ctx, c.deps, events.New(events.AppointmentCreated, strconv.Itoa(appt.ID), appt))
	c.log.Info("appointment created", zap.Int("appointment_id", appt.ID), zap.Int("pet_id", appt.PetID))

	c.enter(ProcedureSelection)
	c.deps.Navigator.Navigate(RouteProcedureType)
	return appt, nil
}

// OpenSelection attaches the coordinator to a workflow whose appointment was saved by an
// earlier screen.
func (c *Coordinator) OpenSelection(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	apptID, ok, err := appointmentIDSlot.Peek(ctx, c.deps.Store)
	if err != nil {
		return err
	}
	_, hasPet, err := petIDSlot.Peek(ctx, c.deps.Store)
	if err != nil {
		return err
	}
	if !ok || !hasPet {
		return ErrAppointmentNotFound
	}
	if c.workflowID == "" {
		c.workflowID = uuid.NewString()
	}
	c.appointmentID = apptID
	c.enter(ProcedureSelection)
	return nil
}

// SelectProcedure routes to the capture screen for kind. A check-up needs no capture: the
// appointment already exists, so the workflow is committed here.
func (c *Coordinator) SelectProcedure(ctx context.Context, kind ProcedureKind) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != ProcedureSelection {
		return transitionError("select procedure", c.state)
	}

	switch kind {
	case CheckUp:
		if err := appointmentIDSlot.Clear(ctx, c.deps.Store); err != nil {
			return err
		}
		if err := petIDSlot.Clear(ctx, c.deps.Store); err != nil {
			return err
		}
		publish(ctx, c.deps, events.New(events.ProcedureCommitted, strconv.Itoa(c.appointmentID),
			map[string]string{"procedure": kind.String()}))
		c.enter(Committed)
		c.deps.Navigator.Navigate(RouteAppointments)
	case Vaccination:
		c.enter(ProcedureForm)
		c.deps.Navigator.Navigate(RouteVaccinationForm)
	case Analysis:
		c.enter(ProcedureForm)
		c.deps.Navigator.Navigate(RouteAnalysisForm)
	default:
		return fmt.Errorf("unknown procedure %q", kind)
	}
	return nil
}
