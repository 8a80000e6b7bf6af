package service

import (
	"context"
	"encoding/json"
	"fmt"

	"ecommerce-platform/internal/cache"
	"ecommerce-platform/internal/messaging"
	"ecommerce-platform/internal/model"

	"github.com/rs/zerolog"
)

// CacheInvalidator subscribes to product events and drops the affected cache
// keys, so replicas that did not serve the write converge before TTL expiry.
// The instance that served the write already invalidated synchronously;
// re-deleting an absent key is harmless.
type CacheInvalidator struct {
	cache  cache.Cache
	logger zerolog.Logger
}

// NewCacheInvalidator creates a cache invalidator.
func NewCacheInvalidator(cacheClient cache.Cache, logger zerolog.Logger) *CacheInvalidator {
	return &CacheInvalidator{
		cache:  cacheClient,
		logger: logger.With().Str("service", "cache-invalidator").Logger(),
	}
}

// Register subscribes the invalidator to all product events on the bus.
func (i *CacheInvalidator) Register(bus messaging.Bus) {
	bus.Subscribe("product.*", i.Handle)
}

// Handle invalidates the cache keys affected by a product event.
func (i *CacheInvalidator) Handle(ctx context.Context, routingKey string, body []byte) error {
	keys := []string{cache.ListKey}

	switch routingKey {
	case model.EventProductCreated:
		var product model.Product
		if err := json.Unmarshal(body, &product); err != nil {
			return fmt.Errorf("failed to decode %s payload: %w", routingKey, err)
		}
		keys = append(keys, cache.ItemKey(product.ID))
	case model.EventProductDeleted:
		var event model.ProductDeletedEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return fmt.Errorf("failed to decode %s payload: %w", routingKey, err)
		}
		keys = append(keys, cache.ItemKey(event.ID))
	default:
		i.logger.Debug().Str("routing_key", routingKey).Msg("ignoring unknown product event")
		return nil
	}

	if err := i.cache.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("failed to invalidate after %s: %w", routingKey, err)
	}

	i.logger.Debug().
		Str("routing_key", routingKey).
		Strs("keys", keys).
		Msg("cache invalidated from event")

	return nil
}
