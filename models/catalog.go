package models

import "fmt"

// CatalogKind enumerates the reference-data collections managed from the catalog screen.
type CatalogKind int

const (
	KindVaccine CatalogKind = iota + 1
	KindBreed
	KindClinic
	KindAnalysisType
	KindMedicine
)

// CatalogKinds lists every kind in display order.
var CatalogKinds = []CatalogKind{KindVaccine, KindBreed, KindClinic, KindAnalysisType, KindMedicine}

func (k CatalogKind) String() string {
	switch k {
	case KindVaccine:
		return "vaccines"
	case KindBreed:
		return "breeds"
	case KindClinic:
		return "clinics"
	case KindAnalysisType:
		return "analysis-types"
	case KindMedicine:
		return "medicines"
	}
	return fmt.Sprintf("CatalogKind(%d)", int(k))
}

// Path is the collection path on the backend, with trailing slash.
func (k CatalogKind) Path() string {
	return "/" + k.String() + "/"
}

// ParseCatalogKind maps a collection name to its kind.
func ParseCatalogKind(s string) (CatalogKind, error) {
	for _, k := range CatalogKinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown catalog kind %q (want vaccines, breeds, clinics, analysis-types or medicines)", s)
}

// CatalogEntry is the request body for one catalog kind. The set of implementations is closed.
type CatalogEntry interface {
	Kind() CatalogKind
	EntryName() string
	catalogEntry()
}

type VaccineEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	PeriodDays  int    `json:"period_days"`
}

type BreedEntry struct {
	Name string `json:"name"`
}

type ClinicEntry struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

type AnalysisTypeEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type MedicineEntry struct {
	Name  string `json:"name"`
	Usage string `json:"usage"`
}

func (VaccineEntry) Kind() CatalogKind      { return KindVaccine }
func (BreedEntry) Kind() CatalogKind        { return KindBreed }
func (ClinicEntry) Kind() CatalogKind       { return KindClinic }
func (AnalysisTypeEntry) Kind() CatalogKind { return KindAnalysisType }
func (MedicineEntry) Kind() CatalogKind     { return KindMedicine }

func (e VaccineEntry) EntryName() string      { return e.Name }
func (e BreedEntry) EntryName() string        { return e.Name }
func (e ClinicEntry) EntryName() string       { return e.Name }
func (e AnalysisTypeEntry) EntryName() string { return e.Name }
func (e MedicineEntry) EntryName() string     { return e.Name }

func (VaccineEntry) catalogEntry()      {}
func (BreedEntry) catalogEntry()        {}
func (ClinicEntry) catalogEntry()       {}
func (AnalysisTypeEntry) catalogEntry() {}
func (MedicineEntry) catalogEntry()     {}

// CatalogItem is the id/name projection shared by every catalog kind's list response.
type CatalogItem struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Medicine is a medicine from the medicines catalog.
type Medicine struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Usage string `json:"usage"`
}
