package booking

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"vetclinic/models"
	"vetclinic/services/events"

	"go.uber.org/zap"
)

// Editor edits an existing appointment. Editing never crosses a screen boundary, so it does not
// touch the session store.
type Editor struct {
	deps Deps
	log  *zap.Logger

	id       int
	original models.AppointmentInput
	buffer   models.AppointmentInput
}

// Edit loads the appointment with id from the listed appointments into an edit buffer.
func Edit(deps Deps, appts []models.Appointment, id int) (*Editor, error) {
	deps = deps.withDefaults()
	for _, a := range appts {
		if a.ID == id {
			in := a.Input()
			return &Editor{deps: deps, log: deps.Logger.Named("editor"), id: id, original: in, buffer: in}, nil
		}
	}
	return nil, fmt.Errorf("appointment %d: %w", id, ErrAppointmentNotFound)
}

func (e *Editor) ID() int { return e.id }

func (e *Editor) Buffer() models.AppointmentInput { return e.buffer }

// Set edits the buffer.
func (e *Editor) Set(fn func(*models.AppointmentInput)) {
	fn(&e.buffer)
}

// Submit sends the full merged record with PUT.
func (e *Editor) Submit(ctx context.Context) (models.Appointment, error) {
	in := e.buffer
	if in.PetID <= 0 || in.ClinicID <= 0 || in.ScheduledAt == "" {
		return models.Appointment{}, newValidationError("appointment", "Please fill in all required fields: Pet, Date, and Clinic.")
	}
	if in.ScheduledAt != e.original.ScheduledAt {
		at, ok := ParseScheduledAt(in.ScheduledAt, e.deps.Location)
		if !ok {
			return models.Appointment{}, newValidationError("scheduledAt", "Invalid date selected.")
		}
		in.ScheduledAt = at.UTC().Format(time.RFC3339)
	}

	appt, err := e.deps.API.UpdateAppointment(ctx, e.id, in)
	if err != nil {
		return models.Appointment{}, err
	}
	e.original, e.buffer = in, in
	publish(ctx, e.deps, events.New(events.AppointmentUpdated, strconv.Itoa(e.id), appt))
	e.log.Info("appointment updated", zap.Int("appointment_id", e.id))
	return appt, nil
}

// Conclude records the conclusion text and marks the conclusion completed.
func (e *Editor) Conclude(ctx context.Context, text string) (models.Appointment, error) {
	if text == "" {
		return models.Appointment{}, newValidationError("conclusion", "Please enter a conclusion.")
	}
	e.Set(func(in *models.AppointmentInput) {
		in.Conclusion = text
		in.ConclusionStatus = models.StatusCompleted
	})
	return e.Submit(ctx)
}

// ConcludedConfirmed reports whether a server response reflects a conclusion.
func ConcludedConfirmed(a models.Appointment) bool {
	return a.ConclusionStatus == models.StatusCompleted
}

// CompletedConfirmed reports whether a server response reflects a completed status.
func CompletedConfirmed(a models.Appointment) bool {
	return a.Status == models.StatusCompleted
}
