package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend hands out ids and fails the creations whose index is listed in failAt.
type fakeBackend struct {
	mu      sync.Mutex
	nextID  int
	records map[int]bool
	failAt  map[int]bool
	undoErr map[int]bool

	inFlight atomic.Int32
	peak     atomic.Int32
}

func newFakeBackend(failAt ...int) *fakeBackend {
	b := &fakeBackend{nextID: 100, records: map[int]bool{}, failAt: map[int]bool{}, undoErr: map[int]bool{}}
	for _, i := range failAt {
		b.failAt[i] = true
	}
	return b
}

func (b *fakeBackend) create(ctx context.Context, i int) (int, error) {
	n := b.inFlight.Add(1)
	defer b.inFlight.Add(-1)
	for {
		p := b.peak.Load()
		if n <= p || b.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(2 * time.Millisecond)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failAt[i] {
		return 0, errors.New("backend rejected")
	}
	b.nextID++
	b.records[b.nextID] = true
	return b.nextID, nil
}

func (b *fakeBackend) undo(_ context.Context, id int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.undoErr[id] {
		return errors.New("delete failed")
	}
	delete(b.records, id)
	return nil
}

func (b *fakeBackend) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.records)
}

func job(b *fakeBackend, n int) Job[int] {
	return Job[int]{N: n, Create: b.create, ID: func(id int) int { return id }, Undo: b.undo}
}

func TestRun_AllSucceed(t *testing.T) {
	b := newFakeBackend()
	res, err := Run(context.Background(), New(Config{Workers: 2}), job(b, 5))
	require.NoError(t, err)
	assert.Len(t, res.IDs, 5)
	assert.NotEmpty(t, res.BatchID)
	assert.Equal(t, 5, b.count())
}

func TestRun_PartialFailureKeepsCreated(t *testing.T) {
	b := newFakeBackend(1, 3)
	res, err := Run(context.Background(), New(Config{Workers: 3}), job(b, 5))
	require.Error(t, err)

	pf, ok := AsPartial(err)
	require.True(t, ok)
	assert.Equal(t, 5, pf.Requested)
	assert.Len(t, pf.Succeeded, 3)
	assert.Len(t, pf.Failures, 2)
	assert.Empty(t, pf.Compensated)
	assert.Equal(t, 3, b.count())
	assert.ElementsMatch(t, pf.Succeeded, res.IDs)
	assert.Contains(t, err.Error(), "3 of 5 records created")
}

func TestRun_CompensateDeletesCreated(t *testing.T) {
	b := newFakeBackend(0)
	_, err := Run(context.Background(), New(Config{Workers: 2, Policy: Compensate}), job(b, 3))

	pf, ok := AsPartial(err)
	require.True(t, ok)
	assert.Len(t, pf.Compensated, 2)
	assert.NoError(t, pf.CompensationErr)
	assert.Empty(t, pf.Remaining())
	assert.Equal(t, 0, b.count())
}

func TestRun_CompensationFailureIsReported(t *testing.T) {
	b := newFakeBackend(2)
	b.undoErr[101] = true
	_, err := Run(context.Background(), New(Config{Workers: 1, Policy: Compensate}), job(b, 3))

	pf, ok := AsPartial(err)
	require.True(t, ok)
	require.Error(t, pf.CompensationErr)
	assert.Equal(t, []int{102}, pf.Compensated)
	assert.Equal(t, []int{101}, pf.Remaining())
	assert.Equal(t, 1, b.count())
}

func TestPartialBatchFailure_Undo(t *testing.T) {
	b := newFakeBackend(4)
	_, err := Run(context.Background(), New(Config{}), job(b, 5))
	pf, ok := AsPartial(err)
	require.True(t, ok)
	require.Equal(t, 4, b.count())

	require.NoError(t, pf.Undo(context.Background()))
	assert.Equal(t, 0, b.count())
	assert.Empty(t, pf.Remaining())
	assert.NoError(t, pf.Undo(context.Background()))
}

func TestRun_BoundsConcurrency(t *testing.T) {
	b := newFakeBackend()
	_, err := Run(context.Background(), New(Config{Workers: 2}), job(b, 10))
	require.NoError(t, err)
	assert.LessOrEqual(t, b.peak.Load(), int32(2))
}

func TestRun_RejectsEmptyBatch(t *testing.T) {
	_, err := Run(context.Background(), New(Config{}), job(newFakeBackend(), 0))
	assert.Error(t, err)
}

func TestRun_CancelledContext(t *testing.T) {
	b := newFakeBackend()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, New(Config{}), job(b, 3))
	pf, ok := AsPartial(err)
	require.True(t, ok)
	assert.Empty(t, pf.Succeeded)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("compensate")
	require.NoError(t, err)
	assert.Equal(t, Compensate, p)
	p, err = ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, Keep, p)
	_, err = ParsePolicy("retry")
	assert.Error(t, err)
}
