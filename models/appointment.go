package models

import "fmt"

// Appointment statuses used by both status and conclusion_status.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// ProcedureInfo is the procedure summary the backend attaches to listed appointments.
type ProcedureInfo struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// Appointment is a persisted appointment as returned by the backend.
type Appointment struct {
	ID               int            `json:"id"`
	PetID            int            `json:"pet_id"`
	ScheduledAt      string         `json:"scheduled_at"` // ISO-8601 as stored by the backend
	ClinicID         int            `json:"clinic_id"`
	Status           string         `json:"status"`            // pending | completed
	ConclusionStatus string         `json:"conclusion_status"` // pending | completed
	Conclusion       string         `json:"conclusion,omitempty"`
	Procedure        *ProcedureInfo `json:"procedure,omitempty"` // absent for check-ups
}

// AppointmentInput is the full record accepted by POST /appointments/ and PUT /appointments/{id}.
type AppointmentInput struct {
	PetID            int    `json:"pet_id"`
	ScheduledAt      string `json:"scheduled_at"`
	ClinicID         int    `json:"clinic_id"`
	Status           string `json:"status"`
	ConclusionStatus string `json:"conclusion_status"`
	Conclusion       string `json:"conclusion,omitempty"`
}

// StatusUpdate is the PATCH /appointments/{id}/status body.
type StatusUpdate struct {
	Status string `json:"status"`
}

// ProcedureLabel renders the procedure column of the appointment table.
func (a Appointment) ProcedureLabel() string {
	if a.Procedure == nil || a.Procedure.Type == "" {
		return "Check-Up"
	}
	return fmt.Sprintf("%s: %s", a.Procedure.Type, a.Procedure.Name)
}

// Input returns the writable part of the record.
func (a Appointment) Input() AppointmentInput {
	return AppointmentInput{
		PetID:            a.PetID,
		ScheduledAt:      a.ScheduledAt,
		ClinicID:         a.ClinicID,
		Status:           a.Status,
		ConclusionStatus: a.ConclusionStatus,
		Conclusion:       a.Conclusion,
	}
}

// AppointmentsForClinic filters appointments to a single clinic.
func AppointmentsForClinic(appts []Appointment, clinicID int) []Appointment {
	out := make([]Appointment, 0, len(appts))
	for _, a := range appts {
		if a.ClinicID == clinicID {
			out = append(out, a)
		}
	}
	return out
}
