package commands

import (
	"errors"
	"fmt"
	"strings"

	"vetclinic/middleware"
	"vetclinic/services/api"
	"vetclinic/services/batch"
	"vetclinic/services/booking"
)

// userMessage renders err the way it is shown to the user.
func userMessage(err error) string {
	var ve *booking.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	if pf, ok := batch.AsPartial(err); ok {
		return partialMessage(pf)
	}
	switch {
	case errors.Is(err, middleware.ErrMissingToken):
		return "Not signed in. Pass --token or set API_TOKEN."
	case errors.Is(err, middleware.ErrTokenExpired):
		return "Session expired. Sign in again and pass the new --token."
	case errors.Is(err, booking.ErrNoDraftSnapshot):
		return "No saved appointment form. Start one with: vetclinic appointments new"
	case errors.Is(err, booking.ErrAppointmentNotFound):
		return "Appointment not found."
	}
	if re, ok := api.AsRemote(err); ok {
		return re.Detail
	}
	return err.Error()
}

func partialMessage(pf *batch.PartialBatchFailure) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d of %d records created", len(pf.Succeeded), pf.Requested)
	if len(pf.Failures) > 0 {
		fmt.Fprintf(&b, ": %s", userMessage(pf.Failures[0].Err))
	}
	switch {
	case len(pf.Compensated) > 0 && pf.CompensationErr == nil:
		fmt.Fprintf(&b, "\nRolled back %s.", joinIDs(pf.Compensated, ", "))
	case pf.CompensationErr != nil:
		fmt.Fprintf(&b, "\nRollback incomplete: %v", pf.CompensationErr)
	}
	if rest := pf.Remaining(); len(rest) > 0 {
		fmt.Fprintf(&b, "\nCreated records kept: %s. Remove them with: vetclinic vaccinations delete %s",
			joinIDs(rest, ", "), joinIDs(rest, " "))
	}
	return b.String()
}

func joinIDs(ids []int, sep string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, sep)
}

var errUnhealthy = errors.New("one or more services are unavailable")
