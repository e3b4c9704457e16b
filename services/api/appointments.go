package api

import (
	"context"
	"encoding/json"
	"net/http"

	"vetclinic/models"
)

func (c *Client) ListAppointments(ctx context.Context) ([]models.Appointment, error) {
	var out []models.Appointment
	err := c.do(ctx, http.MethodGet, "/appointments/", nil, nil, &out)
	return out, err
}

// CreateAppointment persists a new appointment. It is not retried: a retry could create a duplicate.
func (c *Client) CreateAppointment(ctx context.Context, in models.AppointmentInput) (models.Appointment, error) {
	var out models.Appointment
	err := c.do(ctx, http.MethodPost, "/appointments/", nil, in, &out)
	return out, err
}

// UpdateAppointment replaces the full record.
func (c *Client) UpdateAppointment(ctx context.Context, id int, in models.AppointmentInput) (models.Appointment, error) {
	var out models.Appointment
	err := c.do(ctx, http.MethodPut, itemPath("/appointments/", id), nil, in, &out)
	return out, err
}

// UpdateAppointmentStatus PATCHes the status. The returned appointment is nil when the backend
// answers with something other than the updated record.
func (c *Client) UpdateAppointmentStatus(ctx context.Context, id int, status string) (*models.Appointment, error) {
	var raw json.RawMessage
	path := itemPath("/appointments/", id) + "/status"
	if err := c.do(ctx, http.MethodPatch, path, nil, models.StatusUpdate{Status: status}, &raw); err != nil {
		return nil, err
	}
	var appt models.Appointment
	if len(raw) == 0 || json.Unmarshal(raw, &appt) != nil || appt.ID == 0 {
		return nil, nil
	}
	return &appt, nil
}

func (c *Client) DeleteAppointment(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, itemPath("/appointments/", id), nil, nil, nil)
}
