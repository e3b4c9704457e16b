package utils

import (
	"context"
	"sync"
	"time"
)

// Probe checks one external dependency.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// ProbeResult is the outcome of a single probe.
type ProbeResult struct {
	Name    string        `json:"name"`
	Healthy bool          `json:"healthy"`
	Error   string        `json:"error,omitempty"`
	Latency time.Duration `json:"latency"`
}

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Results   []ProbeResult `json:"results"`
	CheckedAt time.Time     `json:"checkedAt"`
}

// Healthy reports whether every probe passed.
func (h HealthStatus) Healthy() bool {
	for _, r := range h.Results {
		if !r.Healthy {
			return false
		}
	}
	return true
}

// CheckHealth runs all probes concurrently, each bounded by timeout.
func CheckHealth(ctx context.Context, timeout time.Duration, probes ...Probe) HealthStatus {
	results := make([]ProbeResult, len(probes))
	var wg sync.WaitGroup
	for i, p := range probes {
		wg.Add(1)
		go func(i int, p Probe) {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			start := time.Now()
			err := p.Check(pctx)
			results[i] = ProbeResult{Name: p.Name, Healthy: err == nil, Latency: time.Since(start)}
			if err != nil {
				results[i].Error = err.Error()
			}
		}(i, p)
	}
	wg.Wait()

	return HealthStatus{Results: results, CheckedAt: time.Now()}
}
