package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"vetclinic/middleware"
	"vetclinic/models"
	"vetclinic/services/api/apitest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, srv *apitest.Server) *Client {
	t.Helper()
	c, err := NewClient(Config{BaseURL: srv.URL, Tokens: middleware.StaticToken(srv.Token)})
	require.NoError(t, err)
	return c
}

func TestNewClient_RejectsBadConfig(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "not a url", Tokens: middleware.StaticToken("x")})
	assert.Error(t, err)

	_, err = NewClient(Config{BaseURL: "http://localhost:8000"})
	assert.Error(t, err)
}

func TestClient_EveryCallCarriesBearerToken(t *testing.T) {
	srv := apitest.New(t)
	c := newTestClient(t, srv)
	ctx := context.Background()

	_, err := c.ListPets(ctx, false)
	require.NoError(t, err)
	_, err = c.ListClinics(ctx)
	require.NoError(t, err)
	_, err = c.CreateVaccination(ctx, models.VaccinationInput{VaccineID: 1, PetID: 2, AppointmentID: 3})
	require.NoError(t, err)

	reqs := srv.Requests("", "")
	require.Len(t, reqs, 3)
	for _, r := range reqs {
		assert.Equal(t, "Bearer test-token", r.Auth, "%s %s", r.Method, r.Path)
	}
}

func TestClient_CreateAppointment_Payload(t *testing.T) {
	srv := apitest.New(t)
	srv.SetNextID(42)
	c := newTestClient(t, srv)

	appt, err := c.CreateAppointment(context.Background(), models.AppointmentInput{
		PetID:            7,
		ScheduledAt:      "2025-03-01T10:00:00Z",
		ClinicID:         3,
		Status:           models.StatusPending,
		ConclusionStatus: models.StatusPending,
	})
	require.NoError(t, err)
	assert.Equal(t, 42, appt.ID)

	reqs := srv.Requests(http.MethodPost, "/appointments/")
	require.Len(t, reqs, 1)
	var body map[string]any
	require.NoError(t, json.Unmarshal(reqs[0].Body, &body))
	assert.Equal(t, float64(7), body["pet_id"])
	assert.Equal(t, float64(3), body["clinic_id"])
	assert.Equal(t, "pending", body["status"])
	assert.Equal(t, "pending", body["conclusion_status"])
}

func TestClient_RemoteErrorCarriesDetail(t *testing.T) {
	srv := apitest.New(t)
	c := newTestClient(t, srv)

	_, err := c.CreateAppointment(context.Background(), models.AppointmentInput{PetID: 7, ScheduledAt: "tomorrow", ClinicID: 3})
	require.Error(t, err)

	re, ok := AsRemote(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, re.Status)
	assert.Equal(t, "Invalid datetime format for scheduled_at", re.Detail)
}

func TestClient_NotFoundMatchesSentinel(t *testing.T) {
	srv := apitest.New(t)
	c := newTestClient(t, srv)

	_, err := c.UpdateAppointment(context.Background(), 99, models.AppointmentInput{ScheduledAt: "2025-03-01T10:00:00"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	re, _ := AsRemote(err)
	assert.Equal(t, "Appointment not found", re.Detail)
}

func TestClient_Unauthenticated(t *testing.T) {
	srv := apitest.New(t)
	c, err := NewClient(Config{BaseURL: srv.URL, Tokens: middleware.StaticToken("wrong")})
	require.NoError(t, err)

	_, err = c.ListPets(context.Background(), false)
	re, ok := AsRemote(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, re.Status)
	assert.Equal(t, "Not authenticated", re.Detail)
}

func TestClient_UpdateAppointmentStatus(t *testing.T) {
	srv := apitest.New(t)
	srv.AddAppointment(models.Appointment{ID: 5, PetID: 7, Status: models.StatusPending})
	c := newTestClient(t, srv)

	got, err := c.UpdateAppointmentStatus(context.Background(), 5, models.StatusCompleted)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.StatusCompleted, got.Status)

	srv.StatusDetailOnly = true
	got, err = c.UpdateAppointmentStatus(context.Background(), 5, models.StatusCompleted)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestClient_ListPetsAllQuery(t *testing.T) {
	var rawQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	c, err := NewClient(Config{BaseURL: ts.URL, Tokens: middleware.StaticToken("t")})
	require.NoError(t, err)
	_, err = c.ListPets(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, "all=true", rawQuery)
}

func TestClient_CatalogByName(t *testing.T) {
	srv := apitest.New(t)
	c := newTestClient(t, srv)
	ctx := context.Background()

	created, err := c.CreateEntry(ctx, models.VaccineEntry{Name: "Rabies", Type: "core", PeriodDays: 365})
	require.NoError(t, err)
	assert.Equal(t, "Rabies", created.Name)

	id, err := c.FindEntryID(ctx, models.KindVaccine, "rabies")
	require.NoError(t, err)
	assert.Equal(t, created.ID, id)

	_, err = c.UpdateEntry(ctx, id, models.VaccineEntry{Name: "Rabies v2", Type: "core", PeriodDays: 730})
	require.NoError(t, err)
	vaccines := srv.Vaccines()
	require.Len(t, vaccines, 1)
	assert.Equal(t, 730, vaccines[0].PeriodDays)

	_, err = c.DeleteEntryByName(ctx, models.KindVaccine, "Rabies v2")
	require.NoError(t, err)
	assert.Empty(t, srv.Vaccines())

	_, err = c.FindEntryID(ctx, models.KindBreed, "Beagle")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestClient_Medicines(t *testing.T) {
	srv := apitest.New(t)
	c := newTestClient(t, srv)
	ctx := context.Background()

	m, err := c.CreateMedicine(ctx, models.MedicineEntry{Name: "Amoxicillin", Usage: "twice daily"})
	require.NoError(t, err)
	assert.NotZero(t, m.ID)

	meds, err := c.ListMedicines(ctx)
	require.NoError(t, err)
	require.Len(t, meds, 1)
	assert.Equal(t, models.Medicine{ID: m.ID, Name: "Amoxicillin", Usage: "twice daily"}, meds[0])

	_, err = c.DeleteEntryByName(ctx, models.KindMedicine, "amoxicillin")
	require.NoError(t, err)
	assert.Empty(t, srv.Medicines())
}

func TestClient_GetRecommendation(t *testing.T) {
	srv := apitest.New(t)
	srv.Recommend = func(age, breedID int) (string, error) {
		if age == 3 && breedID == 2 {
			return "Annual check-up", nil
		}
		return "", errors.New("unknown")
	}
	c := newTestClient(t, srv)

	text, err := c.GetRecommendation(context.Background(), 3, 2)
	require.NoError(t, err)
	assert.Equal(t, "Annual check-up", text)
}

func TestDetailOf(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"string detail", 404, `{"detail":"Appointment not found"}`, "Appointment not found"},
		{"validation list", 422, `{"detail":[{"loc":["body","pet_id"],"msg":"field required"}]}`, "body.pet_id: field required"},
		{"empty body", 502, ``, "Bad Gateway"},
		{"plain text", 500, `boom`, "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detailOf(tt.status, []byte(tt.body)))
		})
	}
}
