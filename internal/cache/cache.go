// Package cache provides the Redis-backed read cache and its key scheme.
//
// The cache is never authoritative: Get failures other than a plain miss
// degrade to miss semantics so requests can still be served from the store,
// and Set/Delete failures are logged by callers rather than propagated.
package cache

import (
	"context"
	"errors"
	"strconv"
	"time"
)

// Cache key scheme.
const (
	// ListKey holds the serialized full product listing.
	ListKey = "products:all"

	itemKeyPrefix    = "product:"
	sessionKeyPrefix = "session:"
)

// ItemKey returns the cache key for a single product.
func ItemKey(id int64) string {
	return itemKeyPrefix + strconv.FormatInt(id, 10)
}

// SessionKey returns the cache key for a user session token.
func SessionKey(userID int64) string {
	return sessionKeyPrefix + strconv.FormatInt(userID, 10)
}

var (
	// ErrMiss is returned by Get when the key is absent or expired.
	ErrMiss = errors.New("cache miss")

	// ErrUnavailable wraps transport failures on reads. Callers must treat it
	// as a miss so the request can still be served from the store.
	ErrUnavailable = errors.New("cache unavailable")

	// ErrInvalidationFailed wraps Delete failures. A failed invalidation
	// leaves stale entries behind until TTL expiry, so callers log it as a
	// distinct condition, but the write itself is still reported successful.
	ErrInvalidationFailed = errors.New("cache invalidation failed")
)

// Cache defines the key-value contract consumed by the service layer.
type Cache interface {
	// Get returns the value for key, ErrMiss when absent, or an error
	// wrapping ErrUnavailable when the cache cannot be reached.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key with the given TTL. Best effort.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes the given keys. Failures wrap ErrInvalidationFailed.
	Delete(ctx context.Context, keys ...string) error

	// Ping verifies connectivity, for readiness checks.
	Ping(ctx context.Context) error
}
