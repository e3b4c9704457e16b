package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"vetclinic/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "state", "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLStore_SetGetOverwrite(t *testing.T) {
	ctx := context.Background()
	store := NewSQLStore(openTestDB(t), "default")

	_, ok, err := store.Get(ctx, "appointment_id")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "appointment_id", "41"))
	require.NoError(t, store.Set(ctx, "appointment_id", "42"))

	v, ok, err := store.Get(ctx, "appointment_id")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "42", v)
}

func TestSQLStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	db, err := database.Open(path)
	require.NoError(t, err)
	require.NoError(t, NewSQLStore(db, "default").Set(ctx, "pet_id", "7"))
	require.NoError(t, db.Close())

	db, err = database.Open(path)
	require.NoError(t, err)
	defer db.Close()

	v, ok, err := NewSQLStore(db, "default").Get(ctx, "pet_id")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "7", v)
}

func TestSQLStore_NamespacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	alice := NewSQLStore(db, "alice")
	bob := NewSQLStore(db, "bob")

	require.NoError(t, alice.Set(ctx, "pet_id", "7"))
	require.NoError(t, bob.Set(ctx, "pet_id", "9"))
	require.NoError(t, alice.ClearAll(ctx))

	_, ok, _ := alice.Get(ctx, "pet_id")
	assert.False(t, ok)
	v, ok, _ := bob.Get(ctx, "pet_id")
	assert.True(t, ok)
	assert.Equal(t, "9", v)
}

func TestSQLStore_PurgeOlderThan(t *testing.T) {
	ctx := context.Background()
	store := NewSQLStore(openTestDB(t), "default")
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	store.now = func() time.Time { return base }
	require.NoError(t, store.Set(ctx, "appointment_form", `{"pet_id":7}`))
	store.now = func() time.Time { return base.Add(48 * time.Hour) }
	require.NoError(t, store.Set(ctx, "pet_id", "7"))

	n, err := store.PurgeOlderThan(ctx, base.Add(24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, ok, _ := store.Get(ctx, "appointment_form")
	assert.False(t, ok)
	_, ok, _ = store.Get(ctx, "pet_id")
	assert.True(t, ok)
}
