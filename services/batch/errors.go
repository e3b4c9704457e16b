package batch

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// ItemError is the failure of one creation in a batch.
type ItemError struct {
	Index int
	Err   error
}

// PartialBatchFailure reports a batch in which at least one creation failed.
// Succeeded lists the ids that exist on the server unless they appear in Compensated.
type PartialBatchFailure struct {
	BatchID         string
	Requested       int
	Succeeded       []int
	Failures        []ItemError
	Compensated     []int
	CompensationErr error

	undo func(ctx context.Context, id int) error
}

func (e *PartialBatchFailure) Error() string {
	msg := fmt.Sprintf("%d of %d records created", len(e.Succeeded), e.Requested)
	if len(e.Failures) > 0 {
		msg += fmt.Sprintf(": %v", e.Failures[0].Err)
	}
	if len(e.Compensated) > 0 {
		msg += fmt.Sprintf(" (%d rolled back)", len(e.Compensated))
	}
	return msg
}

// Unwrap exposes the item errors to errors.Is and errors.As.
func (e *PartialBatchFailure) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures)+1)
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	if e.CompensationErr != nil {
		errs = append(errs, e.CompensationErr)
	}
	return errs
}

// Remaining returns created ids that were not rolled back.
func (e *PartialBatchFailure) Remaining() []int {
	var out []int
	for _, id := range e.Succeeded {
		if !slices.Contains(e.Compensated, id) {
			out = append(out, id)
		}
	}
	return out
}

// Undo deletes the remaining created records. It is the bulk-undo offered to the user
// after a batch ran under the Keep policy.
func (e *PartialBatchFailure) Undo(ctx context.Context) error {
	if e.undo == nil {
		return errors.New("batch has no undo operation")
	}
	remaining := e.Remaining()
	if len(remaining) == 0 {
		return nil
	}
	done, err := compensate(ctx, len(remaining), remaining, e.undo)
	e.Compensated = append(e.Compensated, done...)
	slices.Sort(e.Compensated)
	return err
}

// AsPartial unwraps a *PartialBatchFailure from err.
func AsPartial(err error) (*PartialBatchFailure, bool) {
	var pf *PartialBatchFailure
	ok := errors.As(err, &pf)
	return pf, ok
}
