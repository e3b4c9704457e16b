package reconcile

import (
	"context"
	"errors"
	"testing"

	"vetclinic/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appointmentReconciler(server []models.Appointment, fetches *int) Reconciler[models.Appointment] {
	return Reconciler[models.Appointment]{
		Key: func(a models.Appointment) int { return a.ID },
		Fetch: func(context.Context) ([]models.Appointment, error) {
			*fetches++
			return server, nil
		},
	}
}

func completed(a models.Appointment) bool { return a.Status == models.StatusCompleted }

func TestApply_PatchesConfirmedResponse(t *testing.T) {
	fetches := 0
	r := appointmentReconciler(nil, &fetches)
	list := []models.Appointment{{ID: 1, Status: models.StatusPending}, {ID: 2, Status: models.StatusPending}}

	resp := models.Appointment{ID: 2, Status: models.StatusCompleted}
	out, outcome, err := r.Apply(context.Background(), list, 2, &resp, completed)
	require.NoError(t, err)
	assert.Equal(t, Patched, outcome)
	assert.Equal(t, 0, fetches)
	assert.Equal(t, models.StatusCompleted, out[1].Status)
	assert.Equal(t, models.StatusPending, list[1].Status)
}

func TestApply_RefetchesWhenUnconfirmed(t *testing.T) {
	server := []models.Appointment{{ID: 1, Status: models.StatusCompleted}}
	list := []models.Appointment{{ID: 1, Status: models.StatusPending}}

	tests := []struct {
		name string
		id   int
		resp *models.Appointment
	}{
		{"no body", 1, nil},
		{"old state", 1, &models.Appointment{ID: 1, Status: models.StatusPending}},
		{"other id", 1, &models.Appointment{ID: 9, Status: models.StatusCompleted}},
		{"item not in list", 5, &models.Appointment{ID: 5, Status: models.StatusCompleted}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetches := 0
			r := appointmentReconciler(server, &fetches)
			out, outcome, err := r.Apply(context.Background(), list, tt.id, tt.resp, completed)
			require.NoError(t, err)
			assert.Equal(t, Refetched, outcome)
			assert.Equal(t, 1, fetches)
			assert.Equal(t, server, out)
		})
	}
}

func TestApply_RefetchFailureKeepsList(t *testing.T) {
	list := []models.Appointment{{ID: 1}}
	r := Reconciler[models.Appointment]{
		Key:   func(a models.Appointment) int { return a.ID },
		Fetch: func(context.Context) ([]models.Appointment, error) { return nil, errors.New("offline") },
	}
	out, outcome, err := r.Apply(context.Background(), list, 1, nil, nil)
	require.Error(t, err)
	assert.Equal(t, Refetched, outcome)
	assert.Equal(t, list, out)
}
