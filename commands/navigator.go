package commands

import (
	"fmt"
	"io"

	"vetclinic/services/booking"
)

var nextStep = map[string]string{
	booking.RouteAppointments:    "vetclinic appointments list",
	booking.RouteAppointmentForm: "vetclinic appointments resume",
	booking.RouteNewAppointment:  "vetclinic appointments new --pet <id> --at <time>",
	booking.RouteClinics:         "vetclinic clinics list, then vetclinic clinics choose <id>",
	booking.RouteProcedureType:   "vetclinic procedure select <check-up|vaccination|analysis>",
	booking.RouteVaccinationForm: "vetclinic procedure vaccinate --type <type> --name <vaccine> [--quantity n]",
	booking.RouteAnalysisForm:    "vetclinic procedure analyse --type <analysis type>",
	booking.RouteServices:        "vetclinic services list",
}

// cliNavigator turns a screen change into a hint for the command to run next.
type cliNavigator struct {
	out io.Writer
}

func newCLINavigator(out io.Writer) booking.Navigator {
	return cliNavigator{out: out}
}

func (n cliNavigator) Navigate(route string) {
	if step, ok := nextStep[route]; ok {
		fmt.Fprintf(n.out, "Next: %s\n", step)
	}
}
