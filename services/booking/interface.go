package booking

import (
	"context"
	"time"

	"vetclinic/models"
	"vetclinic/services/batch"
	"vetclinic/services/events"
	"vetclinic/services/reminder"
	"vetclinic/services/session"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("vetclinic/booking")

// Backend is the part of the remote data client the workflow writes through.
type Backend interface {
	CreateAppointment(ctx context.Context, in models.AppointmentInput) (models.Appointment, error)
	UpdateAppointment(ctx context.Context, id int, in models.AppointmentInput) (models.Appointment, error)
	CreateVaccination(ctx context.Context, in models.VaccinationInput) (models.Vaccination, error)
	DeleteVaccination(ctx context.Context, id int) error
	CreateAnalysis(ctx context.Context, in models.AnalysisInput) (models.Analysis, error)
}

// ReminderScheduler books a revaccination reminder.
type ReminderScheduler interface {
	ScheduleRevaccination(ctx context.Context, payload reminder.RevaccinationPayload) (string, error)
}

// Deps wires a workflow screen. Store, API and Batch are required.
type Deps struct {
	Store     session.Store
	API       Backend
	Batch     *batch.Engine
	Events    events.Publisher
	Reminders ReminderScheduler
	Navigator Navigator
	Logger    *zap.Logger
	// Location interprets scheduled times entered without a zone. Defaults to time.Local.
	Location *time.Location
	Now      func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Events == nil {
		d.Events = events.NopPublisher{}
	}
	if d.Navigator == nil {
		d.Navigator = nopNavigator{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Location == nil {
		d.Location = time.Local
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Batch == nil {
		d.Batch = batch.New(batch.Config{Logger: d.Logger})
	}
	return d
}

// Typed views of the workflow's session slots.
var (
	appointmentIDSlot = session.IntSlot(session.SlotAppointmentID)
	petIDSlot         = session.IntSlot(session.SlotPetID)
	clinicIDSlot      = session.IntSlot(session.SlotSelectedClinicID)
	draftSlot         = session.JSONSlot[models.AppointmentDraft](session.SlotAppointmentForm)
)

func publish(ctx context.Context, d Deps, e events.Event) {
	if err := d.Events.Publish(ctx, e); err != nil {
		d.Logger.Warn("failed to publish event", zap.String("type", e.Type), zap.Error(err))
	}
}
