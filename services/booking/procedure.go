package booking

import (
	"fmt"
	"strings"
)

// ProcedureKind is the choice made on the procedure-type screen.
type ProcedureKind int

const (
	CheckUp ProcedureKind = iota + 1
	Vaccination
	Analysis
)

func (k ProcedureKind) String() string {
	switch k {
	case CheckUp:
		return "check-up"
	case Vaccination:
		return "vaccination"
	case Analysis:
		return "analysis"
	}
	return fmt.Sprintf("procedure(%d)", int(k))
}

func ParseProcedureKind(s string) (ProcedureKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "check-up", "checkup", "check":
		return CheckUp, nil
	case "vaccination", "vaccine":
		return Vaccination, nil
	case "analysis", "analyses":
		return Analysis, nil
	}
	return 0, fmt.Errorf("unknown procedure %q (want check-up, vaccination or analysis)", s)
}

// Procedure is the captured procedure for a persisted appointment. Implementations are
// CheckUpProcedure, VaccinationProcedure and AnalysisProcedure.
type Procedure interface {
	Kind() ProcedureKind
	procedure()
}

type CheckUpProcedure struct {
	AppointmentID int
}

// VaccinationProcedure administers Quantity doses of one vaccine.
type VaccinationProcedure struct {
	VaccineID     int
	PetID         int
	AppointmentID int
	Quantity      int
}

type AnalysisProcedure struct {
	AnalysisTypeID int
	AppointmentID  int
}

func (CheckUpProcedure) Kind() ProcedureKind     { return CheckUp }
func (VaccinationProcedure) Kind() ProcedureKind { return Vaccination }
func (AnalysisProcedure) Kind() ProcedureKind    { return Analysis }

func (CheckUpProcedure) procedure()     {}
func (VaccinationProcedure) procedure() {}
func (AnalysisProcedure) procedure()    {}
