// Package integration exercises the HTTP APIs end to end against a real
// PostgreSQL instance. The cache and event bus are replaced with in-process
// fakes so the tests need no Redis or RabbitMQ broker.
package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"ecommerce-platform/internal/cache"
	"ecommerce-platform/internal/messaging"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// SetupTestDB creates a PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	})

	return pool
}

// memoryCache is an in-process cache.Cache used in place of Redis.
type memoryCache struct {
	mu   sync.RWMutex
	data map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string]string)}
}

func (c *memoryCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.data[key]
	if !ok {
		return "", cache.ErrMiss
	}
	return value, nil
}

func (c *memoryCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.data, key)
	}
	return nil
}

func (c *memoryCache) Ping(ctx context.Context) error { return nil }

// recordingBus is a messaging.Bus that records published routing keys.
type recordingBus struct {
	mu        sync.Mutex
	published []string
}

func (b *recordingBus) Publish(ctx context.Context, routingKey string, payload any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, routingKey)
	return nil
}

func (b *recordingBus) Subscribe(pattern string, handler messaging.Handler) {}

func (b *recordingBus) State() messaging.State { return messaging.StateConnected }

func (b *recordingBus) publishedKeys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	keys := make([]string, len(b.published))
	copy(keys, b.published)
	return keys
}

func testLogger() zerolog.Logger { return zerolog.Nop() }
