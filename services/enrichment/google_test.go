package enrichment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vetclinic/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newGoogleStub(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("address") {
		case "1 North St":
			w.Write([]byte(`{"status":"OK","results":[{"geometry":{"location":{"lat":51.5,"lng":-0.12}}}]}`))
		case "Atlantis":
			w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
		default:
			w.Write([]byte(`{"status":"REQUEST_DENIED","error_message":"bad key"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestGoogleGeocoder(t *testing.T) {
	srv, _ := newGoogleStub(t)
	g := NewGoogleGeocoder("key", WithEndpoint(srv.URL), WithLimiter(rate.NewLimiter(rate.Inf, 1)))
	ctx := context.Background()

	c, err := g.Geocode(ctx, "1 North St")
	require.NoError(t, err)
	assert.Equal(t, models.Coords{Lat: 51.5, Lng: -0.12}, c)

	_, err = g.Geocode(ctx, "Atlantis")
	assert.ErrorIs(t, err, ErrNoResults)

	_, err = g.Geocode(ctx, "elsewhere")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")

	_, err = g.Geocode(ctx, "  ")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestCachedGeocoder(t *testing.T) {
	srv, calls := newGoogleStub(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	g := NewCachedGeocoder(
		NewGoogleGeocoder("key", WithEndpoint(srv.URL), WithLimiter(rate.NewLimiter(rate.Inf, 1))),
		client, time.Hour, nil)
	ctx := context.Background()

	first, err := g.Geocode(ctx, "1 North St")
	require.NoError(t, err)
	second, err := g.Geocode(ctx, "1  north st")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, *calls)
	assert.True(t, mr.Exists("vetclinic:geo:1 north st"))

	_, err = g.Geocode(ctx, "Atlantis")
	assert.ErrorIs(t, err, ErrNoResults)
	assert.False(t, mr.Exists("vetclinic:geo:atlantis"))

	select {
	case <-g.Ready():
	default:
		t.Fatal("plain provider should be ready")
	}
}
