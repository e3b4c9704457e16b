package enrichment

import (
	"context"
	"sync"

	"vetclinic/models"
)

// DeferredGeocoder stands in for a provider that is initialized after the screen starts.
// Lookups made before Provide fail with ErrProviderNotReady; callers wait on Ready.
type DeferredGeocoder struct {
	once  sync.Once
	ready chan struct{}

	mu       sync.RWMutex
	provider Geocoder
}

func NewDeferredGeocoder() *DeferredGeocoder {
	return &DeferredGeocoder{ready: make(chan struct{})}
}

// Provide installs the provider and releases waiters. Later calls are ignored.
func (d *DeferredGeocoder) Provide(g Geocoder) {
	d.once.Do(func() {
		d.mu.Lock()
		d.provider = g
		d.mu.Unlock()
		close(d.ready)
	})
}

func (d *DeferredGeocoder) Ready() <-chan struct{} { return d.ready }

func (d *DeferredGeocoder) Geocode(ctx context.Context, address string) (models.Coords, error) {
	d.mu.RLock()
	g := d.provider
	d.mu.RUnlock()
	if g == nil {
		return models.Coords{}, ErrProviderNotReady
	}
	return g.Geocode(ctx, address)
}
