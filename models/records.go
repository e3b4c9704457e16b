package models

// Vaccine is a catalog vaccine. PeriodDays is the revaccination interval.
type Vaccine struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	PeriodDays  int    `json:"period_days"`
}

// Vaccination is one administered vaccine dose.
type Vaccination struct {
	ID            int `json:"id"`
	VaccineID     int `json:"vaccine_id"`
	PetID         int `json:"pet_id"`
	AppointmentID int `json:"appointment_id"`
}

// VaccinationInput is the POST /vaccinations/ body.
type VaccinationInput struct {
	VaccineID     int `json:"vaccine_id"`
	PetID         int `json:"pet_id"`
	AppointmentID int `json:"appointment_id"`
}

// AnalysisType is a catalog analysis type.
type AnalysisType struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Analysis links an analysis type to an appointment.
type Analysis struct {
	ID             int `json:"id"`
	AppointmentID  int `json:"appointment_id"`
	AnalysisTypeID int `json:"analysis_type_id"`
}

// AnalysisInput is the POST /analyses/ body.
type AnalysisInput struct {
	AppointmentID  int `json:"appointment_id"`
	AnalysisTypeID int `json:"analysis_type_id"`
}

// OwnedAppointments keeps appointments that belong to one of pets.
func OwnedAppointments(appts []Appointment, pets []Pet) []Appointment {
	owned := make(map[int]bool, len(pets))
	for _, p := range pets {
		owned[p.ID] = true
	}
	out := make([]Appointment, 0, len(appts))
	for _, a := range appts {
		if owned[a.PetID] {
			out = append(out, a)
		}
	}
	return out
}
