package booking

import (
	"context"
	"net/http"
	"testing"

	"vetclinic/models"
	"vetclinic/services/batch"
	"vetclinic/services/events"
	"vetclinic/services/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAppointmentContext(t *testing.T, f *fixture, apptID, petID string) {
	t.Helper()
	ctx := context.Background()
	if apptID != "" {
		require.NoError(t, f.store.Set(ctx, session.SlotAppointmentID, apptID))
	}
	if petID != "" {
		require.NoError(t, f.store.Set(ctx, session.SlotPetID, petID))
	}
}

func TestOpenProcedureForm_MissingContext(t *testing.T) {
	tests := []struct {
		name          string
		apptID, petID string
	}{
		{"nothing", "", ""},
		{"no pet", "42", ""},
		{"no appointment", "", "7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			seedAppointmentContext(t, f, tt.apptID, tt.petID)
			_, err := OpenProcedureForm(context.Background(), f.deps)
			assert.ErrorIs(t, err, ErrAppointmentNotFound)
			assert.Equal(t, "appointment not found", err.Error())
		})
	}
}

func TestProcedureForm_VaccinationValidation(t *testing.T) {
	f := newFixture(t)
	seedAppointmentContext(t, f, "42", "7")
	form, err := OpenProcedureForm(context.Background(), f.deps)
	require.NoError(t, err)

	_, err = form.CommitVaccination(context.Background(), models.Vaccine{}, 2)
	require.True(t, IsValidation(err))
	assert.Equal(t, "Please select a vaccine", err.Error())
	assert.Empty(t, f.srv.Requests("", ""))
}

func TestProcedureForm_QuantityMustBePositive(t *testing.T) {
	f := newFixture(t)
	seedAppointmentContext(t, f, "42", "7")
	form, err := OpenProcedureForm(context.Background(), f.deps)
	require.NoError(t, err)

	for _, qty := range []int{0, -3} {
		_, err := form.CommitVaccination(context.Background(), models.Vaccine{ID: 5}, qty)
		require.True(t, IsValidation(err), "quantity %d", qty)
		assert.Equal(t, "Please enter a quantity of at least 1.", err.Error())
	}
	assert.Empty(t, f.srv.Requests("", ""))
	assert.Empty(t, f.reminders.payloads)

	// the form stays open for a corrected quantity
	doses, err := form.CommitVaccination(context.Background(), models.Vaccine{ID: 5}, 1)
	require.NoError(t, err)
	assert.Len(t, doses, 1)
}

func TestProcedureForm_PartialVaccinationFailure(t *testing.T) {
	f := newFixture(t)
	f.deps.Batch = batch.New(batch.Config{Workers: 1})
	f.srv.Fail(http.MethodPost, "/vaccinations/", http.StatusInternalServerError, "db down", 1)
	seedAppointmentContext(t, f, "42", "7")
	ctx := context.Background()

	form, err := OpenProcedureForm(ctx, f.deps)
	require.NoError(t, err)
	_, err = form.CommitVaccination(ctx, models.Vaccine{ID: 5}, 3)

	pf, ok := batch.AsPartial(err)
	require.True(t, ok)
	assert.Len(t, pf.Succeeded, 2)
	assert.Len(t, f.srv.Vaccinations(), 2)

	// screen stays usable: context not consumed, no navigation
	v, ok := f.slot(t, session.SlotAppointmentID)
	assert.True(t, ok)
	assert.Equal(t, "42", v)
	assert.Empty(t, f.nav.routes)
	assert.Equal(t, []string{events.BatchPartialFailure}, f.events.Types())

	require.NoError(t, pf.Undo(ctx))
	assert.Empty(t, f.srv.Vaccinations())
}

func TestProcedureForm_CompensatePolicy(t *testing.T) {
	f := newFixture(t)
	f.deps.Batch = batch.New(batch.Config{Workers: 1, Policy: batch.Compensate})
	f.srv.Fail(http.MethodPost, "/vaccinations/", http.StatusInternalServerError, "db down", 1)
	seedAppointmentContext(t, f, "42", "7")

	form, err := OpenProcedureForm(context.Background(), f.deps)
	require.NoError(t, err)
	_, err = form.CommitVaccination(context.Background(), models.Vaccine{ID: 5}, 3)

	pf, ok := batch.AsPartial(err)
	require.True(t, ok)
	assert.Len(t, pf.Compensated, 2)
	assert.Empty(t, f.srv.Vaccinations())
}

func TestProcedureForm_Analysis(t *testing.T) {
	f := newFixture(t)
	seedAppointmentContext(t, f, "42", "7")
	ctx := context.Background()
	form, err := OpenProcedureForm(ctx, f.deps)
	require.NoError(t, err)

	_, err = form.CommitAnalysis(ctx, 0)
	require.True(t, IsValidation(err))
	assert.Equal(t, "Please select an analysis type.", err.Error())

	a, err := form.CommitAnalysis(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 42, a.AppointmentID)
	assert.Equal(t, 4, a.AnalysisTypeID)
	assert.Equal(t, RouteAppointments, f.nav.Last())
	assert.Zero(t, f.store.Len())

	_, err = form.CommitAnalysis(ctx, 4)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestResolveVaccine(t *testing.T) {
	vaccines := []models.Vaccine{
		{ID: 1, Name: "Rabies", Type: "core"},
		{ID: 2, Name: "Lepto", Type: "non-core"},
		{ID: 3, Name: "Rabies", Type: "non-core"},
	}
	v, err := ResolveVaccine(vaccines, "non-core", "Rabies")
	require.NoError(t, err)
	assert.Equal(t, 3, v.ID)

	_, err = ResolveVaccine(vaccines, "core", "Lepto")
	assert.True(t, IsValidation(err))
	_, err = ResolveVaccine(vaccines, "", "")
	assert.EqualError(t, err, "Please select a vaccine")

	assert.Equal(t, []string{"core", "non-core"}, VaccineTypes(vaccines))
}

func TestParseProcedureKind(t *testing.T) {
	k, err := ParseProcedureKind("Vaccination")
	require.NoError(t, err)
	assert.Equal(t, Vaccination, k)
	_, err = ParseProcedureKind("surgery")
	assert.Error(t, err)
}
