package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productsSchema = `
	CREATE TABLE IF NOT EXISTS products (
		id SERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price DECIMAL(10,2) NOT NULL CHECK (price >= 0),
		stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
		category VARCHAR(100) NOT NULL DEFAULT 'General',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC);
`

const usersSchema = `
	CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		password VARCHAR(255) NOT NULL,
		role VARCHAR(50) NOT NULL DEFAULT 'customer',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
`

const seedProducts = `
	INSERT INTO products (name, description, price, stock, category) VALUES
	('Laptop Pro 15', 'High-performance laptop with 16GB RAM', 999.99, 50, 'Electronics'),
	('Wireless Mouse', 'Ergonomic wireless mouse', 29.99, 200, 'Accessories'),
	('USB-C Hub', '7-in-1 USB-C hub adapter', 49.99, 150, 'Accessories'),
	('Mechanical Keyboard', 'RGB mechanical keyboard', 79.99, 100, 'Accessories'),
	('Monitor 27"', '4K IPS Monitor', 399.99, 30, 'Electronics');
`

// InitProductSchema creates the products table and seeds sample rows when the
// table is empty.
func InitProductSchema(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	if _, err := pool.Exec(ctx, productsSchema); err != nil {
		return fmt.Errorf("failed to create products table: %w", err)
	}

	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}

	if count == 0 {
		if _, err := pool.Exec(ctx, seedProducts); err != nil {
			return fmt.Errorf("failed to seed products: %w", err)
		}
		logger.Info().Msg("seeded sample products")
	}

	logger.Info().Msg("products table ready")
	return nil
}

// InitUserSchema creates the users table.
func InitUserSchema(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	if _, err := pool.Exec(ctx, usersSchema); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	logger.Info().Msg("users table ready")
	return nil
}
