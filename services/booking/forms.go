package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"vetclinic/models"
	"vetclinic/services/batch"
	"vetclinic/services/events"
	"vetclinic/services/reminder"
	"vetclinic/services/session"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// ProcedureFormScreen is a vaccination or analysis capture screen. It holds claims on the
// appointment context; the slots are cleared only after a successful commit.
type ProcedureFormScreen struct {
	deps Deps
	log  *zap.Logger

	appointment *session.Claim[int]
	pet         *session.Claim[int]

	mu        sync.Mutex
	committed bool
}

// OpenProcedureForm claims the appointment context written by Submit.
func OpenProcedureForm(ctx context.Context, deps Deps) (*ProcedureFormScreen, error) {
	deps = deps.withDefaults()
	appt, err := appointmentIDSlot.Claim(ctx, deps.Store)
	if err != nil {
		if errors.Is(err, session.ErrSlotEmpty) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}
	pet, err := petIDSlot.Claim(ctx, deps.Store)
	if err != nil {
		if errors.Is(err, session.ErrSlotEmpty) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}
	return &ProcedureFormScreen{
		deps:        deps,
		log:         deps.Logger.Named("procedure").With(zap.Int("appointment_id", appt.Value())),
		appointment: appt,
		pet:         pet,
	}, nil
}

func (f *ProcedureFormScreen) AppointmentID() int { return f.appointment.Value() }
func (f *ProcedureFormScreen) PetID() int         { return f.pet.Value() }

// VaccineTypes lists the distinct vaccine types, sorted.
func VaccineTypes(vaccines []models.Vaccine) []string {
	seen := map[string]bool{}
	var out []string
	for _, v := range vaccines {
		if !seen[v.Type] {
			seen[v.Type] = true
			out = append(out, v.Type)
		}
	}
	sort.Strings(out)
	return out
}

// ResolveVaccine finds the vaccine with the given type and name.
func ResolveVaccine(vaccines []models.Vaccine, vaccineType, name string) (models.Vaccine, error) {
	if vaccineType == "" || name == "" {
		return models.Vaccine{}, newValidationError("vaccine", "Please select a vaccine")
	}
	for _, v := range vaccines {
		if v.Type == vaccineType && v.Name == name {
			return v, nil
		}
	}
	return models.Vaccine{}, newValidationError("vaccine", "No matching vaccine found")
}

// CommitVaccination records quantity doses of vaccine. quantity must be at least one.
// On a partial failure the returned error is a *batch.PartialBatchFailure and the screen stays open.
func (f *ProcedureFormScreen) CommitVaccination(ctx context.Context, vaccine models.Vaccine, quantity int) ([]models.Vaccination, error) {
	if vaccine.ID <= 0 {
		return nil, newValidationError("vaccine", "Please select a vaccine")
	}
	if quantity < 1 {
		return nil, newValidationError("quantity", "Please enter a quantity of at least 1.")
	}
	res, err := f.commit(ctx, VaccinationProcedure{
		VaccineID:     vaccine.ID,
		PetID:         f.PetID(),
		AppointmentID: f.AppointmentID(),
		Quantity:      quantity,
	}, &vaccine)
	if err != nil {
		return nil, err
	}
	return res.([]models.Vaccination), nil
}

func (f *ProcedureFormScreen) CommitAnalysis(ctx context.Context, analysisTypeID int) (models.Analysis, error) {
	if analysisTypeID <= 0 {
		return models.Analysis{}, newValidationError("analysisTypeId", "Please select an analysis type.")
	}
	res, err := f.commit(ctx, AnalysisProcedure{
		AnalysisTypeID: analysisTypeID,
		AppointmentID:  f.AppointmentID(),
	}, nil)
	if err != nil {
		return models.Analysis{}, err
	}
	return res.(models.Analysis), nil
}

func (f *ProcedureFormScreen) commit(ctx context.Context, p Procedure, vaccine *models.Vaccine) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.committed {
		return nil, transitionError("commit "+p.Kind().String(), Committed)
	}

	ctx, span := tracer.Start(ctx, "booking.CommitProcedure")
	defer span.End()
	span.SetAttributes(
		attribute.String("procedure.kind", p.Kind().String()),
		attribute.Int("appointment.id", f.AppointmentID()))

	var (
		result any
		err    error
	)
	switch p := p.(type) {
	case VaccinationProcedure:
		result, err = f.createVaccinations(ctx, p)
	case AnalysisProcedure:
		result, err = f.deps.API.CreateAnalysis(ctx, models.AnalysisInput{
			AppointmentID:  p.AppointmentID,
			AnalysisTypeID: p.AnalysisTypeID,
		})
	case CheckUpProcedure:
		err = fmt.Errorf("check-up has no capture form: %w", ErrInvalidTransition)
	default:
		err = fmt.Errorf("unsupported procedure %T", p)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "commit procedure")
		return nil, err
	}

	if err := f.appointment.Consume(ctx); err != nil {
		return result, err
	}
	if err := f.pet.Consume(ctx); err != nil {
		return result, err
	}
	f.committed = true

	publish(ctx, f.deps, events.New(events.ProcedureCommitted, strconv.Itoa(f.AppointmentID()),
		map[string]any{"procedure": p.Kind().String(), "result": result}))
	if vaccine != nil {
		f.scheduleReminder(ctx, *vaccine, result.([]models.Vaccination))
	}
	f.log.Info("procedure committed", zap.Stringer("procedure", p.Kind()))
	f.deps.Navigator.Navigate(RouteAppointments)
	return result, nil
}

func (f *ProcedureFormScreen) createVaccinations(ctx context.Context, p VaccinationProcedure) ([]models.Vaccination, error) {
	in := models.VaccinationInput{VaccineID: p.VaccineID, PetID: p.PetID, AppointmentID: p.AppointmentID}
	res, err := batch.Run(ctx, f.deps.Batch, batch.Job[models.Vaccination]{
		N: p.Quantity,
		Create: func(ctx context.Context, _ int) (models.Vaccination, error) {
			return f.deps.API.CreateVaccination(ctx, in)
		},
		ID:   func(v models.Vaccination) int { return v.ID },
		Undo: f.deps.API.DeleteVaccination,
	})
	if pf, ok := batch.AsPartial(err); ok {
		f.log.Error("vaccination batch partially failed",
			zap.String("batch_id", pf.BatchID),
			zap.Ints("created", pf.Remaining()),
			zap.Error(err))
		publish(ctx, f.deps, events.New(events.BatchPartialFailure, strconv.Itoa(p.AppointmentID), map[string]any{
			"batch_id":    pf.BatchID,
			"requested":   pf.Requested,
			"succeeded":   pf.Succeeded,
			"compensated": pf.Compensated,
		}))
	}
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}

func (f *ProcedureFormScreen) scheduleReminder(ctx context.Context, vaccine models.Vaccine, doses []models.Vaccination) {
	if f.deps.Reminders == nil || len(doses) == 0 {
		return
	}
	due, ok := reminder.DueAfter(f.deps.Now(), vaccine.PeriodDays)
	if !ok {
		return
	}
	_, err := f.deps.Reminders.ScheduleRevaccination(ctx, reminder.RevaccinationPayload{
		PetID:         f.PetID(),
		VaccineID:     vaccine.ID,
		VaccineName:   vaccine.Name,
		AppointmentID: f.AppointmentID(),
		VaccinationID: doses[0].ID,
		DueAt:         due,
	})
	if err != nil {
		f.log.Warn("failed to schedule revaccination reminder", zap.Error(err))
	}
}
