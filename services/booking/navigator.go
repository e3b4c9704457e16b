package booking

// Screens the workflow hands control to.
const (
	RouteAppointments    = "/appointments"
	RouteAppointmentForm = "/appointments/form"
	RouteNewAppointment  = "/appointments/new"
	RouteClinics         = "/clinics"
	RouteProcedureType   = "/procedure-type"
	RouteVaccinationForm = "/vaccination-form"
	RouteAnalysisForm    = "/analysis-form"
	RouteServices        = "/services"
)

// Navigator moves the user to another screen. Anything not written to the session store is lost.
type Navigator interface {
	Navigate(route string)
}

type NavigatorFunc func(route string)

func (f NavigatorFunc) Navigate(route string) { f(route) }

type nopNavigator struct{}

func (nopNavigator) Navigate(string) {}
