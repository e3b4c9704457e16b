package utils

import (
	"context"
	"testing"

	"vetclinic/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheClients_UseGivenConfig(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()
	cfg := config.Config{RedisAddr: mr.Addr(), RedisSessionDB: 1, RedisGeocodeDB: 2}

	geo, err := GeocodeCacheClient(ctx, cfg)
	require.NoError(t, err)
	defer geo.Close()
	require.NoError(t, geo.Set(ctx, "k", "geo", 0).Err())

	sess, err := SessionCacheClient(ctx, cfg)
	require.NoError(t, err)
	defer sess.Close()
	require.NoError(t, sess.Set(ctx, "k", "sess", 0).Err())

	got, err := mr.DB(2).Get("k")
	require.NoError(t, err)
	assert.Equal(t, "geo", got)
	got, err = mr.DB(1).Get("k")
	require.NoError(t, err)
	assert.Equal(t, "sess", got)
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	_, err := NewRedisClient(context.Background(), config.Config{RedisAddr: "127.0.0.1:1"}, 0)
	assert.ErrorContains(t, err, "failed to connect to Redis (db 0)")
}
