// Package enrichment runs best-effort background augmentation of records: clinic coordinates
// and pet care recommendations. Failures degrade the record, they never fail the caller.
package enrichment

import (
	"context"
	"errors"
	"fmt"

	"vetclinic/models"
)

var (
	// ErrNoResults means the provider could not resolve the input.
	ErrNoResults = errors.New("no results")
	// ErrProviderNotReady means the provider never became available in time.
	ErrProviderNotReady = errors.New("provider not ready")
	// ErrEmptyInput means there was nothing to look up.
	ErrEmptyInput = errors.New("empty input")
)

// Failure kinds.
const (
	KindGeocode        = "geocode"
	KindRecommendation = "recommendation"
)

// Failure is a non-fatal enrichment error for one key.
type Failure struct {
	Kind string
	Key  string
	Err  error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s enrichment for %q failed: %v", f.Kind, f.Key, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Geocoder resolves a postal address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (models.Coords, error)
}

// Readier is implemented by geocoders whose provider may become available after construction.
type Readier interface {
	Ready() <-chan struct{}
}
