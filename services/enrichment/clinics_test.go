package enrichment

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"vetclinic/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapGeocoder struct {
	coords map[string]models.Coords
	calls  atomic.Int32
}

func (m *mapGeocoder) Geocode(_ context.Context, address string) (models.Coords, error) {
	m.calls.Add(1)
	if address == "" {
		return models.Coords{}, ErrEmptyInput
	}
	c, ok := m.coords[address]
	if !ok {
		return models.Coords{}, ErrNoResults
	}
	return c, nil
}

func testClinics() []models.Clinic {
	return []models.Clinic{
		{ID: 1, Name: "North Vet", Address: "1 North St"},
		{ID: 2, Name: "Nowhere Vet", Address: "Atlantis"},
		{ID: 3, Name: "South Vet", Address: "3 South St"},
	}
}

func TestClinicEnricher_UnresolvableAddressKeepsClinic(t *testing.T) {
	g := &mapGeocoder{coords: map[string]models.Coords{
		"1 North St": {Lat: 1, Lng: 2},
		"3 South St": {Lat: 3, Lng: 4},
	}}
	e := NewClinicEnricher(g, ClinicEnricherConfig{Concurrency: 2})

	out, report := e.Enrich(context.Background(), testClinics())

	require.Len(t, out, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{out[0].ID, out[1].ID, out[2].ID})
	require.NotNil(t, out[0].Coords)
	assert.Equal(t, models.Coords{Lat: 1, Lng: 2}, *out[0].Coords)
	assert.Nil(t, out[1].Coords)
	require.NotNil(t, out[2].Coords)

	assert.Equal(t, 2, report.Resolved)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "Atlantis", report.Failures[0].Key)
	assert.ErrorIs(t, report.Failures[0], ErrNoResults)

	// still selectable
	filtered := models.FilterClinics(out, "nowhere")
	require.Len(t, filtered, 1)
	assert.Equal(t, 2, filtered[0].ID)
}

func TestClinicEnricher_DoesNotMutateInput(t *testing.T) {
	in := testClinics()
	g := &mapGeocoder{coords: map[string]models.Coords{"1 North St": {Lat: 1, Lng: 2}}}
	NewClinicEnricher(g, ClinicEnricherConfig{}).Enrich(context.Background(), in)
	assert.Nil(t, in[0].Coords)
}

func TestClinicEnricher_ProviderNeverReady(t *testing.T) {
	d := NewDeferredGeocoder()
	e := NewClinicEnricher(d, ClinicEnricherConfig{ReadyWait: 20 * time.Millisecond})

	out, report := e.Enrich(context.Background(), testClinics())
	require.Len(t, out, 3)
	for _, c := range out {
		assert.Nil(t, c.Coords)
	}
	require.Len(t, report.Failures, 3)
	assert.ErrorIs(t, report.Failures[0], ErrProviderNotReady)
}

func TestClinicEnricher_LateReadinessIsNotLost(t *testing.T) {
	d := NewDeferredGeocoder()
	e := NewClinicEnricher(d, ClinicEnricherConfig{ReadyWait: time.Second})

	go func() {
		time.Sleep(20 * time.Millisecond)
		d.Provide(&mapGeocoder{coords: map[string]models.Coords{"1 North St": {Lat: 1, Lng: 2}}})
	}()

	out, report := e.Enrich(context.Background(), testClinics())
	require.NotNil(t, out[0].Coords)
	assert.Equal(t, 1, report.Resolved)
}

func TestClinicEnricher_WatchEmitsTwice(t *testing.T) {
	d := NewDeferredGeocoder()
	e := NewClinicEnricher(d, ClinicEnricherConfig{})

	var mu sync.Mutex
	var emitted [][]models.Clinic
	done := make(chan struct{})
	go func() {
		defer close(done)
		e.Watch(context.Background(), testClinics(), func(cs []models.Clinic, _ Report) {
			mu.Lock()
			emitted = append(emitted, cs)
			mu.Unlock()
		})
	}()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(emitted) == 1
	}, time.Second, 5*time.Millisecond)

	d.Provide(&mapGeocoder{coords: map[string]models.Coords{"3 South St": {Lat: 3, Lng: 4}}})
	<-done

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, emitted, 2)
	assert.Nil(t, emitted[0][2].Coords)
	require.NotNil(t, emitted[1][2].Coords)
}

func TestClinicEnricher_WatchStopsOnCancel(t *testing.T) {
	d := NewDeferredGeocoder()
	e := NewClinicEnricher(d, ClinicEnricherConfig{})
	ctx, cancel := context.WithCancel(context.Background())

	var count atomic.Int32
	done := make(chan struct{})
	go func() {
		defer close(done)
		e.Watch(ctx, testClinics(), func([]models.Clinic, Report) { count.Add(1) })
	}()
	cancel()
	<-done
	assert.Equal(t, int32(1), count.Load())
}

func TestDeferredGeocoder_BeforeProvide(t *testing.T) {
	d := NewDeferredGeocoder()
	_, err := d.Geocode(context.Background(), "1 North St")
	assert.True(t, errors.Is(err, ErrProviderNotReady))
}
