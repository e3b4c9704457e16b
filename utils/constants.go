// File: utils/constants.go
package utils

import "time"

// SessionKeyPrefix prefixes every Session Store key in Redis.
const SessionKeyPrefix = "vetclinic:session:"

// GeocodeCachePrefix is the prefix used for cached geocoding results.
const GeocodeCachePrefix = "vetclinic:geo:"

// DefaultGeocodeCacheTTL applies when GEOCODE_CACHE_TTL is unset.
const DefaultGeocodeCacheTTL = 30 * 24 * time.Hour

// ServiceName identifies this client in traces and events.
const ServiceName = "vetclinic"
