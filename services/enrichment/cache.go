package enrichment

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"vetclinic/models"
	"vetclinic/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// CachedGeocoder memoizes successful lookups in Redis. Failed lookups are not cached.
type CachedGeocoder struct {
	next   Geocoder
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedGeocoder(next Geocoder, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedGeocoder {
	if ttl <= 0 {
		ttl = utils.DefaultGeocodeCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedGeocoder{next: next, client: client, ttl: ttl, logger: logger}
}

func cacheKey(address string) string {
	return utils.GeocodeCachePrefix + strings.ToLower(strings.Join(strings.Fields(address), " "))
}

func (c *CachedGeocoder) Geocode(ctx context.Context, address string) (models.Coords, error) {
	key := cacheKey(address)
	if data, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var coords models.Coords
		if json.Unmarshal(data, &coords) == nil {
			return coords, nil
		}
	} else if err != redis.Nil {
		c.logger.Warn("geocode cache read failed", zap.Error(err))
	}

	coords, err := c.next.Geocode(ctx, address)
	if err != nil {
		return coords, err
	}
	if b, err := json.Marshal(coords); err == nil {
		if err := c.client.Set(ctx, key, b, c.ttl).Err(); err != nil {
			c.logger.Warn("geocode cache write failed", zap.Error(err))
		}
	}
	return coords, nil
}

// Ready forwards readiness of the wrapped geocoder.
func (c *CachedGeocoder) Ready() <-chan struct{} {
	if r, ok := c.next.(Readier); ok {
		return r.Ready()
	}
	return closedChan
}

var closedChan = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()
