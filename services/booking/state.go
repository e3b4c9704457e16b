package booking

// State is a step of the booking workflow.
type State int

const (
	Drafting State = iota + 1
	ClinicPending
	Persisted
	ProcedureSelection
	ProcedureForm
	Committed
)

func (s State) String() string {
	switch s {
	case Drafting:
		return "drafting"
	case ClinicPending:
		return "clinic-pending"
	case Persisted:
		return "persisted"
	case ProcedureSelection:
		return "procedure-selection"
	case ProcedureForm:
		return "procedure-form"
	case Committed:
		return "committed"
	}
	return "idle"
}
