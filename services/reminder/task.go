// Package reminder schedules and handles revaccination reminders on an asynq queue.
package reminder

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TypeRevaccination = "reminder:revaccination"

// RevaccinationPayload identifies the vaccination that needs renewing.
type RevaccinationPayload struct {
	PetID         int       `json:"pet_id"`
	VaccineID     int       `json:"vaccine_id"`
	VaccineName   string    `json:"vaccine_name"`
	AppointmentID int       `json:"appointment_id"`
	VaccinationID int       `json:"vaccination_id"`
	DueAt         time.Time `json:"due_at"`
}

// DueAfter returns when a vaccine given at administered must be renewed, or false when
// the vaccine has no renewal period.
func DueAfter(administered time.Time, periodDays int) (time.Time, bool) {
	if periodDays <= 0 {
		return time.Time{}, false
	}
	return administered.AddDate(0, 0, periodDays), true
}

func NewRevaccinationTask(payload RevaccinationPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeRevaccination, b)
	opts := []asynq.Option{
		asynq.ProcessAt(payload.DueAt),
		asynq.MaxRetry(5),
	}
	if payload.VaccinationID > 0 {
		// one reminder per vaccination record
		opts = append(opts, asynq.TaskID(taskID(payload)))
	}
	return task, opts, nil
}

func taskID(p RevaccinationPayload) string {
	b, _ := json.Marshal([]int{p.PetID, p.VaccinationID})
	return TypeRevaccination + ":" + string(b)
}
