package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T, namespace string) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, namespace, time.Hour), mr
}

func TestRedisStore_SetGetClear(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, "alice")

	require.NoError(t, store.Set(ctx, SlotAppointmentID, "42"))
	assert.True(t, mr.Exists("vetclinic:session:alice:appointment_id"))
	assert.Equal(t, time.Hour, mr.TTL("vetclinic:session:alice:appointment_id"))

	v, ok, err := store.Get(ctx, SlotAppointmentID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "42", v)

	require.NoError(t, store.Clear(ctx, SlotAppointmentID))
	_, ok, err = store.Get(ctx, SlotAppointmentID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_ExpiredSlotIsAbsent(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, "alice")
	require.NoError(t, store.Set(ctx, SlotPetID, "7"))

	mr.FastForward(2 * time.Hour)

	_, ok, err := store.Get(ctx, SlotPetID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_ClearAllKeepsOtherNamespaces(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, "alice")
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	other := NewRedisStore(client, "bob", time.Hour)

	require.NoError(t, store.Set(ctx, SlotPetID, "7"))
	require.NoError(t, store.Set(ctx, SlotAppointmentForm, `{"pet_id":7}`))
	require.NoError(t, other.Set(ctx, SlotPetID, "9"))

	require.NoError(t, store.ClearAll(ctx))

	_, ok, _ := store.Get(ctx, SlotPetID)
	assert.False(t, ok)
	v, ok, _ := other.Get(ctx, SlotPetID)
	assert.True(t, ok)
	assert.Equal(t, "9", v)
}
