// File: utils/cache.go
package utils

import (
	"context"
	"fmt"
	"time"

	"vetclinic/config"

	"github.com/go-redis/redis/v8"
)

// NewRedisClient opens a client on cfg's Redis server using the given logical DB
// and verifies the connection.
func NewRedisClient(ctx context.Context, cfg config.Config, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis (db %d): %w", db, err)
	}
	return client, nil
}

// SessionCacheClient returns a client for the session store DB.
func SessionCacheClient(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	return NewRedisClient(ctx, cfg, cfg.RedisSessionDB)
}

// GeocodeCacheClient returns a client for the geocode cache DB.
func GeocodeCacheClient(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	return NewRedisClient(ctx, cfg, cfg.RedisGeocodeDB)
}
