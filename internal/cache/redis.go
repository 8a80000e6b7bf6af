package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"
	"github.com/rs/zerolog"
)

// redisCache implements Cache on top of a rueidis client.
type redisCache struct {
	client rueidis.Client
	logger zerolog.Logger
}

// NewClient creates a rueidis client for the given address. The caller owns
// the client lifecycle and closes it on shutdown.
func NewClient(addr string) (rueidis.Client, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{addr},
		// Server-assisted client caching is disabled: invalidation is
		// explicit delete-on-write in the service layer.
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}

	return client, nil
}

// NewRedisCache wraps an existing rueidis client.
func NewRedisCache(client rueidis.Client, logger zerolog.Logger) Cache {
	return &redisCache{
		client: client,
		logger: logger.With().Str("component", "cache").Logger(),
	}
}

// Get returns the value for key or ErrMiss / ErrUnavailable.
func (c *redisCache) Get(ctx context.Context, key string) (string, error) {
	cmd := c.client.B().Get().Key(key).Build()
	value, err := c.client.Do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return "", ErrMiss
		}
		c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	return value, nil
}

// Set stores value under key with the given TTL.
func (c *redisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	cmd := c.client.B().Set().Key(key).Value(value).Ex(ttl).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	return nil
}

// Delete removes the given keys.
func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	cmd := c.client.B().Del().Key(keys...).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		c.logger.Error().Err(err).Strs("keys", keys).Msg("cache invalidation failed, stale entries remain until TTL expiry")
		return fmt.Errorf("%w: %w", ErrInvalidationFailed, err)
	}

	return nil
}

// Ping verifies connectivity.
func (c *redisCache) Ping(ctx context.Context) error {
	cmd := c.client.B().Ping().Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	return nil
}
