package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"vetclinic/models"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

const googleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// GeocodeResponse is the subset of the Google Geocoding API response we read.
type GeocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// GoogleGeocoder calls the Google Geocoding API.
type GoogleGeocoder struct {
	apiKey   string
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
}

type GoogleOption func(*GoogleGeocoder)

// WithEndpoint points the geocoder at another base URL (tests).
func WithEndpoint(u string) GoogleOption {
	return func(g *GoogleGeocoder) { g.endpoint = u }
}

// WithLimiter paces outgoing lookups.
func WithLimiter(l *rate.Limiter) GoogleOption {
	return func(g *GoogleGeocoder) { g.limiter = l }
}

func NewGoogleGeocoder(apiKey string, opts ...GoogleOption) *GoogleGeocoder {
	g := &GoogleGeocoder{
		apiKey:   apiKey,
		endpoint: googleGeocodeURL,
		client:   &http.Client{Timeout: 5 * time.Second, Transport: otelhttp.NewTransport(http.DefaultTransport)},
		limiter:  rate.NewLimiter(rate.Limit(10), 10),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, address string) (models.Coords, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return models.Coords{}, ErrEmptyInput
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return models.Coords{}, err
	}

	q := url.Values{"address": {address}, "key": {g.apiKey}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return models.Coords{}, fmt.Errorf("failed to build geocoding request: %w", err)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return models.Coords{}, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Coords{}, fmt.Errorf("geocoding request failed: %s", resp.Status)
	}
	var data GeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return models.Coords{}, fmt.Errorf("failed to decode geocoding response: %w", err)
	}

	switch data.Status {
	case "OK":
		if len(data.Results) == 0 {
			return models.Coords{}, ErrNoResults
		}
		loc := data.Results[0].Geometry.Location
		return models.Coords{Lat: loc.Lat, Lng: loc.Lng}, nil
	case "ZERO_RESULTS":
		return models.Coords{}, ErrNoResults
	default:
		return models.Coords{}, fmt.Errorf("geocoding status %s: %s", data.Status, data.ErrorMessage)
	}
}
