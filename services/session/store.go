// Package session is the durable side channel that carries workflow state between
// independently started screens.
package session

import (
	"context"
	"errors"
)

// Slot names shared by the booking screens.
const (
	SlotAppointmentID    = "appointment_id"
	SlotPetID            = "pet_id"
	SlotSelectedClinicID = "selected_clinic_id"
	SlotAppointmentForm  = "appointment_form"
)

var (
	// ErrSlotEmpty is returned when claiming a slot that holds no value.
	ErrSlotEmpty = errors.New("session slot is empty")
	// ErrClaimConsumed is returned when a claim is consumed a second time.
	ErrClaimConsumed = errors.New("session claim already consumed")
)

// Store persists opaque string values by slot name.
// Implementations assume a single active user per namespace and do no locking across processes.
type Store interface {
	Get(ctx context.Context, slot string) (string, bool, error)
	Set(ctx context.Context, slot, value string) error
	Clear(ctx context.Context, slot string) error
	// ClearAll drops every slot in the namespace (logout).
	ClearAll(ctx context.Context) error
}
