package models

// AppointmentDraft is an appointment that has not been persisted yet.
// Its JSON form is the appointment_form session slot.
type AppointmentDraft struct {
	PetID            int    `json:"pet_id,omitempty"`
	ScheduledAt      string `json:"scheduled_at,omitempty"` // as entered; validated on submit
	ClinicID         int    `json:"clinic_id,omitempty"`
	Status           string `json:"status,omitempty"`
	ConclusionStatus string `json:"conclusion_status,omitempty"`
	Conclusion       string `json:"conclusion,omitempty"`
}
