package enrichment

import (
	"context"
	"time"

	"vetclinic/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Report summarizes one enrichment pass.
type Report struct {
	Resolved int
	Failures []*Failure
}

// ClinicEnricher adds coordinates to clinic records.
type ClinicEnricher struct {
	geocoder    Geocoder
	concurrency int
	wait        time.Duration
	logger      *zap.Logger
}

type ClinicEnricherConfig struct {
	// Concurrency bounds parallel lookups (default 4).
	Concurrency int
	// ReadyWait bounds how long Enrich waits for a late provider (default 5s).
	ReadyWait time.Duration
	Logger    *zap.Logger
}

func NewClinicEnricher(g Geocoder, cfg ClinicEnricherConfig) *ClinicEnricher {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.ReadyWait <= 0 {
		cfg.ReadyWait = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &ClinicEnricher{
		geocoder:    g,
		concurrency: cfg.Concurrency,
		wait:        cfg.ReadyWait,
		logger:      cfg.Logger.Named("geocode"),
	}
}

// Enrich returns a copy of clinics with Coords filled where the address resolved. Order is preserved
// and every input clinic is returned. If the provider is not ready within ReadyWait the list comes
// back unchanged.
func (e *ClinicEnricher) Enrich(ctx context.Context, clinics []models.Clinic) ([]models.Clinic, Report) {
	waitCtx, cancel := context.WithTimeout(ctx, e.wait)
	defer cancel()
	if !e.awaitReady(waitCtx) {
		return e.unresolved(clinics, ErrProviderNotReady)
	}
	return e.geocodeAll(ctx, clinics)
}

// Watch emits the clinics immediately, then again with coordinates once the provider is ready.
// A provider that becomes ready late is still used; only ctx ends the wait.
func (e *ClinicEnricher) Watch(ctx context.Context, clinics []models.Clinic, emit func([]models.Clinic, Report)) {
	initial := append([]models.Clinic(nil), clinics...)
	emit(initial, Report{})
	if !e.awaitReady(ctx) {
		return
	}
	out, report := e.geocodeAll(ctx, clinics)
	if ctx.Err() != nil {
		return
	}
	emit(out, report)
}

func (e *ClinicEnricher) awaitReady(ctx context.Context) bool {
	r, ok := e.geocoder.(Readier)
	if !ok {
		return true
	}
	select {
	case <-r.Ready():
		return true
	case <-ctx.Done():
		return false
	}
}

func (e *ClinicEnricher) unresolved(clinics []models.Clinic, cause error) ([]models.Clinic, Report) {
	out := append([]models.Clinic(nil), clinics...)
	var report Report
	for _, c := range out {
		if c.Coords != nil {
			continue
		}
		report.Failures = append(report.Failures, &Failure{Kind: KindGeocode, Key: c.Address, Err: cause})
	}
	e.logger.Warn("geocoding skipped", zap.Error(cause), zap.Int("clinics", len(out)))
	return out, report
}

func (e *ClinicEnricher) geocodeAll(ctx context.Context, clinics []models.Clinic) ([]models.Clinic, Report) {
	out := append([]models.Clinic(nil), clinics...)
	failures := make([]*Failure, len(out))

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i := range out {
		if out[i].Coords != nil {
			continue
		}
		g.Go(func() error {
			coords, err := e.geocoder.Geocode(ctx, out[i].Address)
			if err != nil {
				failures[i] = &Failure{Kind: KindGeocode, Key: out[i].Address, Err: err}
				return nil
			}
			out[i].Coords = &coords
			return nil
		})
	}
	g.Wait()

	var report Report
	for i, f := range failures {
		if f != nil {
			e.logger.Warn("address not resolved", zap.Int("clinic_id", out[i].ID), zap.Error(f))
			report.Failures = append(report.Failures, f)
			continue
		}
		if out[i].Coords != nil {
			report.Resolved++
		}
	}
	return out, report
}
