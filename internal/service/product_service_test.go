package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ecommerce-platform/internal/cache"
	"ecommerce-platform/internal/messaging"
	"ecommerce-platform/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of repository.ProductRepository.
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) ListAll(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, params *model.CreateProductParams) (*model.Product, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, id int64, params *model.UpdateProductParams) (*model.Product, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockCache is a mock implementation of cache.Cache.
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, keys ...string) error {
	callArgs := make([]interface{}, 0, len(keys)+1)
	callArgs = append(callArgs, ctx)
	for _, k := range keys {
		callArgs = append(callArgs, k)
	}
	args := m.Called(callArgs...)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockBus is a mock implementation of messaging.Bus.
type MockBus struct {
	mock.Mock
}

func (m *MockBus) Publish(ctx context.Context, routingKey string, payload any) error {
	args := m.Called(ctx, routingKey, payload)
	return args.Error(0)
}

func (m *MockBus) Subscribe(pattern string, handler messaging.Handler) {
	m.Called(pattern, mock.Anything)
}

func (m *MockBus) State() messaging.State {
	args := m.Called()
	return args.Get(0).(messaging.State)
}

// fakeCache is an in-memory cache used for read-path sequencing tests.
type fakeCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string]string{}}
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.data[key]
	if !ok {
		return "", cache.ErrMiss
	}
	return value, nil
}

func (f *fakeCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

func (f *fakeCache) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *fakeCache) Ping(context.Context) error { return nil }

var testProduct = model.Product{
	ID:          1,
	Name:        "Laptop Pro 15",
	Description: "High-performance laptop with 16GB RAM",
	Price:       999.99,
	Stock:       50,
	Category:    "Electronics",
	CreatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	UpdatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
}

func newTestService(repo *MockProductRepository, c cache.Cache, bus *MockBus) ProductService {
	return NewProductService(repo, c, bus, 300*time.Second, zerolog.Nop())
}

func TestProductService_List_CacheMiss(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	bus := new(MockBus)
	fake := newFakeCache()

	repo.On("ListAll", ctx).Return([]model.Product{testProduct}, nil).Once()

	svc := newTestService(repo, fake, bus)

	products, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, testProduct.ID, products[0].ID)

	// Second call is served from the cache without hitting the store.
	products, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)

	repo.AssertNumberOfCalls(t, "ListAll", 1)
}

func TestProductService_List_CacheUnavailableDegradesToStore(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	mockCache := new(MockCache)
	bus := new(MockBus)

	mockCache.On("Get", ctx, cache.ListKey).
		Return("", cache.ErrUnavailable)
	repo.On("ListAll", ctx).Return([]model.Product{testProduct}, nil)
	mockCache.On("Set", ctx, cache.ListKey, mock.Anything, 300*time.Second).
		Return(cache.ErrUnavailable)

	svc := newTestService(repo, mockCache, bus)

	products, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)

	repo.AssertExpectations(t)
}

func TestProductService_List_StoreError(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	bus := new(MockBus)
	fake := newFakeCache()

	repo.On("ListAll", ctx).Return(nil, errors.New("connection refused"))

	svc := newTestService(repo, fake, bus)

	products, err := svc.List(ctx)
	require.Error(t, err)
	assert.Nil(t, products)
}

func TestProductService_Get_SecondReadFromCache(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	bus := new(MockBus)
	fake := newFakeCache()

	repo.On("GetByID", ctx, int64(1)).Return(&testProduct, nil).Once()

	svc := newTestService(repo, fake, bus)

	first, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, testProduct.Name, first.Name)
	assert.Equal(t, 999.99, first.Price)

	second, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	repo.AssertNumberOfCalls(t, "GetByID", 1)
}

func TestProductService_Get_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	bus := new(MockBus)
	fake := newFakeCache()

	repo.On("GetByID", ctx, int64(99)).Return(nil, nil)

	svc := newTestService(repo, fake, bus)

	product, err := svc.Get(ctx, 99)
	require.Error(t, err)
	assert.Equal(t, model.ErrProductNotFound, err)
	assert.Nil(t, product)

	// A miss must not populate the cache.
	_, err = fake.Get(ctx, cache.ItemKey(99))
	assert.ErrorIs(t, err, cache.ErrMiss)
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		params      *model.CreateProductParams
		expectError error
	}{
		{
			name:   "Success",
			params: &model.CreateProductParams{Name: "Laptop Pro 15", Price: 999.99, Stock: 50},
		},
		{
			name:        "Empty name rejected",
			params:      &model.CreateProductParams{Name: "   ", Price: 10},
			expectError: model.ErrNameRequired,
		},
		{
			name:        "Negative price rejected",
			params:      &model.CreateProductParams{Name: "Widget", Price: -0.01},
			expectError: model.ErrNegativePrice,
		},
		{
			name:        "Negative stock rejected",
			params:      &model.CreateProductParams{Name: "Widget", Price: 1, Stock: -1},
			expectError: model.ErrNegativeStock,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockProductRepository)
			mockCache := new(MockCache)
			bus := new(MockBus)

			if tt.expectError == nil {
				repo.On("Create", ctx, tt.params).Return(&testProduct, nil)
				mockCache.On("Delete", ctx, cache.ListKey).Return(nil)
				bus.On("Publish", ctx, model.EventProductCreated, &testProduct).Return(nil)
			}

			svc := newTestService(repo, mockCache, bus)

			product, err := svc.Create(ctx, tt.params)

			if tt.expectError != nil {
				require.Error(t, err)
				assert.Equal(t, tt.expectError, err)
				assert.Nil(t, product)
				repo.AssertNotCalled(t, "Create")
				mockCache.AssertNotCalled(t, "Delete")
			} else {
				require.NoError(t, err)
				assert.Equal(t, int64(1), product.ID)
				assert.Equal(t, 999.99, product.Price)
				repo.AssertExpectations(t)
				mockCache.AssertExpectations(t)
				bus.AssertExpectations(t)
			}
		})
	}
}

func TestProductService_Create_ListingInvalidated(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	bus := new(MockBus)
	fake := newFakeCache()

	// Warm the listing cache with a pre-mutation snapshot.
	repo.On("ListAll", ctx).Return([]model.Product{}, nil).Once()
	svc := newTestService(repo, fake, bus)
	_, err := svc.List(ctx)
	require.NoError(t, err)

	params := &model.CreateProductParams{Name: "Laptop Pro 15", Price: 999.99, Stock: 50}
	repo.On("Create", ctx, params).Return(&testProduct, nil)
	bus.On("Publish", ctx, model.EventProductCreated, &testProduct).Return(nil)

	_, err = svc.Create(ctx, params)
	require.NoError(t, err)

	// The next listing read must not see the stale snapshot.
	repo.On("ListAll", ctx).Return([]model.Product{testProduct}, nil).Once()
	products, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, testProduct.ID, products[0].ID)

	repo.AssertNumberOfCalls(t, "ListAll", 2)
}

func TestProductService_Update(t *testing.T) {
	ctx := context.Background()
	newStock := 10

	t.Run("Success invalidates both keys", func(t *testing.T) {
		repo := new(MockProductRepository)
		mockCache := new(MockCache)
		bus := new(MockBus)

		updated := testProduct
		updated.Stock = newStock
		params := &model.UpdateProductParams{Stock: &newStock}

		repo.On("Update", ctx, int64(1), params).Return(&updated, nil)
		mockCache.On("Delete", ctx, cache.ListKey, cache.ItemKey(1)).Return(nil)

		svc := newTestService(repo, mockCache, bus)

		product, err := svc.Update(ctx, 1, params)
		require.NoError(t, err)
		assert.Equal(t, newStock, product.Stock)

		repo.AssertExpectations(t)
		mockCache.AssertExpectations(t)
	})

	t.Run("Not found touches no cache keys", func(t *testing.T) {
		repo := new(MockProductRepository)
		mockCache := new(MockCache)
		bus := new(MockBus)

		params := &model.UpdateProductParams{Stock: &newStock}
		repo.On("Update", ctx, int64(99), params).Return(nil, nil)

		svc := newTestService(repo, mockCache, bus)

		product, err := svc.Update(ctx, 99, params)
		require.Error(t, err)
		assert.Equal(t, model.ErrProductNotFound, err)
		assert.Nil(t, product)

		mockCache.AssertNotCalled(t, "Delete")
	})

	t.Run("Invalid partial fields rejected", func(t *testing.T) {
		repo := new(MockProductRepository)
		mockCache := new(MockCache)
		bus := new(MockBus)

		badPrice := -5.0
		svc := newTestService(repo, mockCache, bus)

		_, err := svc.Update(ctx, 1, &model.UpdateProductParams{Price: &badPrice})
		require.Error(t, err)
		assert.Equal(t, model.ErrNegativePrice, err)
		repo.AssertNotCalled(t, "Update")
	})
}

func TestProductService_Update_ThenReadReturnsFreshValue(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	bus := new(MockBus)
	fake := newFakeCache()

	svc := newTestService(repo, fake, bus)

	// Warm the item cache.
	repo.On("GetByID", ctx, int64(1)).Return(&testProduct, nil).Once()
	_, err := svc.Get(ctx, 1)
	require.NoError(t, err)

	// Single-writer update followed by a read issued strictly after it.
	newStock := 10
	updated := testProduct
	updated.Stock = newStock
	params := &model.UpdateProductParams{Stock: &newStock}
	repo.On("Update", ctx, int64(1), params).Return(&updated, nil)

	_, err = svc.Update(ctx, 1, params)
	require.NoError(t, err)

	repo.On("GetByID", ctx, int64(1)).Return(&updated, nil).Once()
	product, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, newStock, product.Stock)
}

func TestProductService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("Success invalidates and publishes", func(t *testing.T) {
		repo := new(MockProductRepository)
		mockCache := new(MockCache)
		bus := new(MockBus)

		repo.On("Delete", ctx, int64(1)).Return(true, nil)
		mockCache.On("Delete", ctx, cache.ListKey, cache.ItemKey(1)).Return(nil)
		bus.On("Publish", ctx, model.EventProductDeleted, model.ProductDeletedEvent{ID: 1}).Return(nil)

		svc := newTestService(repo, mockCache, bus)

		require.NoError(t, svc.Delete(ctx, 1))

		repo.AssertExpectations(t)
		mockCache.AssertExpectations(t)
		bus.AssertExpectations(t)
	})

	t.Run("Repeated delete returns not found", func(t *testing.T) {
		repo := new(MockProductRepository)
		mockCache := new(MockCache)
		bus := new(MockBus)

		repo.On("Delete", ctx, int64(1)).Return(true, nil).Once()
		repo.On("Delete", ctx, int64(1)).Return(false, nil).Once()
		mockCache.On("Delete", ctx, cache.ListKey, cache.ItemKey(1)).Return(nil)
		bus.On("Publish", ctx, model.EventProductDeleted, model.ProductDeletedEvent{ID: 1}).Return(nil)

		svc := newTestService(repo, mockCache, bus)

		require.NoError(t, svc.Delete(ctx, 1))

		err := svc.Delete(ctx, 1)
		require.Error(t, err)
		assert.Equal(t, model.ErrProductNotFound, err)
	})

	t.Run("Invalidation failure does not fail the write", func(t *testing.T) {
		repo := new(MockProductRepository)
		mockCache := new(MockCache)
		bus := new(MockBus)

		repo.On("Delete", ctx, int64(1)).Return(true, nil)
		mockCache.On("Delete", ctx, cache.ListKey, cache.ItemKey(1)).
			Return(cache.ErrInvalidationFailed)
		bus.On("Publish", ctx, model.EventProductDeleted, model.ProductDeletedEvent{ID: 1}).Return(nil)

		svc := newTestService(repo, mockCache, bus)

		require.NoError(t, svc.Delete(ctx, 1))
	})
}

// countingRepo is an in-memory store that issues monotonically increasing
// IDs, for concurrency tests the mock cannot express.
type countingRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]model.Product
}

func newCountingRepo() *countingRepo {
	return &countingRepo{rows: map[int64]model.Product{}}
}

func (r *countingRepo) ListAll(context.Context) ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	products := make([]model.Product, 0, len(r.rows))
	for _, p := range r.rows {
		products = append(products, p)
	}
	return products, nil
}

func (r *countingRepo) GetByID(_ context.Context, id int64) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *countingRepo) Create(_ context.Context, params *model.CreateProductParams) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p := model.Product{
		ID:       r.nextID,
		Name:     params.Name,
		Price:    params.Price,
		Stock:    params.Stock,
		Category: params.Category,
	}
	r.rows[p.ID] = p
	return &p, nil
}

func (r *countingRepo) Update(context.Context, int64, *model.UpdateProductParams) (*model.Product, error) {
	return nil, nil
}

func (r *countingRepo) Delete(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rows[id]
	delete(r.rows, id)
	return ok, nil
}

func TestProductService_ConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	repo := newCountingRepo()
	bus := new(MockBus)
	fake := newFakeCache()

	bus.On("Publish", mock.Anything, model.EventProductCreated, mock.Anything).Return(nil)

	svc := NewProductService(repo, fake, bus, 300*time.Second, zerolog.Nop())

	var wg sync.WaitGroup
	ids := make(chan int64, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			product, err := svc.Create(ctx, &model.CreateProductParams{Name: "Widget", Price: 1})
			assert.NoError(t, err)
			ids <- product.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id issued")
		seen[id] = true
	}
	assert.Len(t, seen, 2)

	// Both creates invalidated the listing, so the next read reflects them.
	products, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 2)
}
