package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type form struct {
	PetID    int    `json:"pet_id"`
	ClinicID int    `json:"clinic_id,omitempty"`
	At       string `json:"scheduled_at"`
}

func TestIntSlot_StoresDecimalString(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	slot := IntSlot(SlotAppointmentID)

	require.NoError(t, slot.Put(ctx, store, 42))

	raw, ok, err := store.Get(ctx, SlotAppointmentID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "42", raw)

	v, ok, err := slot.Peek(ctx, store)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestSlot_PeekAbsent(t *testing.T) {
	v, ok, err := IntSlot(SlotPetID).Peek(context.Background(), NewMemoryStore())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, v)
}

func TestSlot_PeekCorrupt(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, SlotPetID, "seven"))

	_, _, err := IntSlot(SlotPetID).Peek(ctx, store)
	assert.Error(t, err)
}

func TestJSONSlot_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	slot := JSONSlot[form](SlotAppointmentForm)

	in := form{PetID: 7, At: "2025-03-01T10:00:00"}
	require.NoError(t, slot.Put(ctx, store, in))

	out, ok, err := slot.Peek(ctx, store)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, in, out)
}

func TestClaim_ConsumeOnce(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	slot := IntSlot(SlotAppointmentID)
	require.NoError(t, slot.Put(ctx, store, 42))

	claim, err := slot.Claim(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 42, claim.Value())
	assert.False(t, claim.Consumed())

	require.NoError(t, claim.Consume(ctx))
	assert.True(t, claim.Consumed())
	_, ok, _ := store.Get(ctx, SlotAppointmentID)
	assert.False(t, ok)

	err = claim.Consume(ctx)
	assert.True(t, errors.Is(err, ErrClaimConsumed))
	assert.Equal(t, 42, claim.Value())
}

func TestClaim_EmptySlot(t *testing.T) {
	_, err := IntSlot(SlotPetID).Claim(context.Background(), NewMemoryStore())
	assert.True(t, errors.Is(err, ErrSlotEmpty))
}

func TestTake_IsSingleUse(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	slot := JSONSlot[form](SlotAppointmentForm)
	require.NoError(t, slot.Put(ctx, store, form{PetID: 7}))

	got, err := slot.Take(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 7, got.PetID)

	_, err = slot.Take(ctx, store)
	assert.True(t, errors.Is(err, ErrSlotEmpty))
}

func TestMemoryStore_ClearAll(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, SlotPetID, "7"))
	require.NoError(t, store.Set(ctx, SlotAppointmentID, "42"))
	assert.Equal(t, 2, store.Len())

	require.NoError(t, store.ClearAll(ctx))
	assert.Equal(t, 0, store.Len())
}
