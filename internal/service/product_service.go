package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"ecommerce-platform/internal/cache"
	"ecommerce-platform/internal/messaging"
	"ecommerce-platform/internal/model"
	"ecommerce-platform/internal/repository"

	"github.com/rs/zerolog"
)

// productService orchestrates the store, cache and bus for product CRUD.
//
// Reads are cache-aside: check the cache, fall back to the store on miss and
// repopulate. Writes commit to the store first and invalidate affected cache
// keys strictly afterwards, bounding the staleness window to the interval
// between commit and invalidation. Under concurrent writers to the same ID
// the last invalidation to run, not the last commit, decides what a
// subsequent read repopulates; this race is accepted and documented.
type productService struct {
	repo     repository.ProductRepository
	cache    cache.Cache
	bus      messaging.Bus
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(
	repo repository.ProductRepository,
	cacheClient cache.Cache,
	bus messaging.Bus,
	cacheTTL time.Duration,
	logger zerolog.Logger,
) ProductService {
	return &productService{
		repo:     repo,
		cache:    cacheClient,
		bus:      bus,
		cacheTTL: cacheTTL,
		logger:   logger.With().Str("service", "product").Logger(),
	}
}

// List retrieves the full product listing, cache-aside.
func (s *productService) List(ctx context.Context) ([]model.Product, error) {
	cached, err := s.cache.Get(ctx, cache.ListKey)
	if err == nil {
		var products []model.Product
		if unmarshalErr := json.Unmarshal([]byte(cached), &products); unmarshalErr == nil {
			s.logger.Debug().Int("count", len(products)).Msg("listing served from cache")
			return products, nil
		}
		s.logger.Warn().Str("key", cache.ListKey).Msg("discarding undecodable cache entry")
	} else if !errors.Is(err, cache.ErrMiss) {
		// Cache outages degrade to store-only reads.
		s.logger.Warn().Err(err).Msg("cache unavailable, falling back to store")
	}

	products, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list products")
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	s.populate(ctx, cache.ListKey, products)

	return products, nil
}

// Get retrieves a single product by ID, cache-aside.
func (s *productService) Get(ctx context.Context, id int64) (*model.Product, error) {
	key := cache.ItemKey(id)

	cached, err := s.cache.Get(ctx, key)
	if err == nil {
		var product model.Product
		if unmarshalErr := json.Unmarshal([]byte(cached), &product); unmarshalErr == nil {
			return &product, nil
		}
		s.logger.Warn().Str("key", key).Msg("discarding undecodable cache entry")
	} else if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn().Err(err).Msg("cache unavailable, falling back to store")
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to get product")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		return nil, model.ErrProductNotFound
	}

	s.populate(ctx, key, product)

	return product, nil
}

// Create validates and stores a new product, then invalidates the listing
// cache and publishes product.created.
func (s *productService) Create(ctx context.Context, params *model.CreateProductParams) (*model.Product, error) {
	if err := validateCreate(params); err != nil {
		return nil, err
	}

	product, err := s.repo.Create(ctx, params)
	if err != nil {
		s.logger.Error().Err(err).Str("name", params.Name).Msg("failed to create product")
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	// Invalidation runs strictly after the store commit.
	s.invalidate(ctx, cache.ListKey)

	if err := s.bus.Publish(ctx, model.EventProductCreated, product); err != nil {
		s.logger.Warn().Err(err).Int64("product_id", product.ID).Msg("failed to publish product.created")
	}

	s.logger.Info().Int64("product_id", product.ID).Str("name", product.Name).Msg("product created")

	return product, nil
}

// Update applies a partial update and invalidates the affected cache keys.
func (s *productService) Update(ctx context.Context, id int64, params *model.UpdateProductParams) (*model.Product, error) {
	if err := validateUpdate(params); err != nil {
		return nil, err
	}

	product, err := s.repo.Update(ctx, id, params)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to update product")
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	// No cache keys are touched when the product does not exist.
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	s.invalidate(ctx, cache.ListKey, cache.ItemKey(id))

	return product, nil
}

// Delete removes a product, invalidates the affected cache keys and
// publishes product.deleted.
func (s *productService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if !deleted {
		return model.ErrProductNotFound
	}

	s.invalidate(ctx, cache.ListKey, cache.ItemKey(id))

	if err := s.bus.Publish(ctx, model.EventProductDeleted, model.ProductDeletedEvent{ID: id}); err != nil {
		s.logger.Warn().Err(err).Int64("product_id", id).Msg("failed to publish product.deleted")
	}

	s.logger.Info().Int64("product_id", id).Msg("product deleted")

	return nil
}

// populate stores a value in the cache, best effort.
func (s *productService) populate(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to marshal cache value")
		return
	}

	if err := s.cache.Set(ctx, key, string(data), s.cacheTTL); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to populate cache")
	}
}

// invalidate deletes cache keys after a committed write. A failed delete
// leaves stale entries until TTL expiry; the write is still reported
// successful to the client.
func (s *productService) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Error().Err(err).Strs("keys", keys).Msg("cache invalidation failed")
	}
}

func validateCreate(params *model.CreateProductParams) error {
	if strings.TrimSpace(params.Name) == "" {
		return model.ErrNameRequired
	}
	if params.Price < 0 {
		return model.ErrNegativePrice
	}
	if params.Stock < 0 {
		return model.ErrNegativeStock
	}
	return nil
}

func validateUpdate(params *model.UpdateProductParams) error {
	if params.Name != nil && strings.TrimSpace(*params.Name) == "" {
		return model.ErrNameRequired
	}
	if params.Price != nil && *params.Price < 0 {
		return model.ErrNegativePrice
	}
	if params.Stock != nil && *params.Stock < 0 {
		return model.ErrNegativeStock
	}
	return nil
}
