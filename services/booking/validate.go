package booking

import (
	"strings"
	"time"

	"vetclinic/models"
)

var scheduledAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// ParseScheduledAt parses an entered date-time. Values without a zone are read in loc.
func ParseScheduledAt(v string, loc *time.Location) (time.Time, bool) {
	v = strings.TrimSpace(v)
	for _, layout := range scheduledAtLayouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// validateDraft checks the draft and returns the parsed schedule.
func validateDraft(d models.AppointmentDraft, loc *time.Location) (time.Time, error) {
	required := []struct {
		field, label string
		ok           bool
	}{
		{"petId", "Pet", d.PetID > 0},
		{"scheduledAt", "Date", strings.TrimSpace(d.ScheduledAt) != ""},
		{"clinicId", "Clinic", d.ClinicID > 0},
	}
	var field string
	var missing []string
	for _, r := range required {
		if r.ok {
			continue
		}
		if field == "" {
			field = r.field
		}
		missing = append(missing, r.label)
	}
	if len(missing) > 0 {
		return time.Time{}, newValidationError(field,
			"Please fill in all required fields: "+strings.Join(missing, ", ")+".")
	}

	at, ok := ParseScheduledAt(d.ScheduledAt, loc)
	if !ok {
		return time.Time{}, newValidationError("scheduledAt", "Invalid date selected.")
	}
	return at, nil
}
