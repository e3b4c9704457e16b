package models

import "strings"

// Coords is a resolved geographic position.
type Coords struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Clinic is a veterinary clinic. Coords is a client-side enrichment and never sent to the backend.
type Clinic struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Phone   string  `json:"phone"`
	Coords  *Coords `json:"-"`
}

// FilterClinics keeps clinics whose name contains query, case-insensitively.
func FilterClinics(clinics []Clinic, query string) []Clinic {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return clinics
	}
	out := make([]Clinic, 0, len(clinics))
	for _, c := range clinics {
		if strings.Contains(strings.ToLower(c.Name), q) {
			out = append(out, c)
		}
	}
	return out
}
