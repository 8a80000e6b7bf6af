package repository

import (
	"context"

	"ecommerce-platform/internal/model"
)

// ProductRepository defines the interface for product data access operations.
// All operations are single-statement and atomic at the row level.
type ProductRepository interface {
	// ListAll retrieves all products ordered by creation time, descending.
	ListAll(ctx context.Context) ([]model.Product, error)

	// GetByID retrieves a single product by its ID. Returns (nil, nil) when
	// no product exists with that ID.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// Create inserts a new product. The store assigns the ID and timestamps.
	Create(ctx context.Context, params *model.CreateProductParams) (*model.Product, error)

	// Update applies a partial update; nil fields retain their stored
	// values. Returns (nil, nil) when no product exists with that ID.
	Update(ctx context.Context, id int64, params *model.UpdateProductParams) (*model.Product, error)

	// Delete removes a product. Returns false when no row was deleted.
	Delete(ctx context.Context, id int64) (bool, error)
}

// UserRepository defines the interface for user data access operations.
type UserRepository interface {
	// Create inserts a new user with a pre-hashed password.
	Create(ctx context.Context, name, email, passwordHash string) (*model.User, error)

	// GetByEmail retrieves a user with the password hash for login checks.
	// Returns (nil, nil) when no user exists with that email.
	GetByEmail(ctx context.Context, email string) (*model.UserWithPassword, error)

	// GetByID retrieves a single user. Returns (nil, nil) when absent.
	GetByID(ctx context.Context, id int64) (*model.User, error)

	// List retrieves all users ordered by ID.
	List(ctx context.Context) ([]model.User, error)

	// UpdateName updates the display name. Returns (nil, nil) when absent.
	UpdateName(ctx context.Context, id int64, name string) (*model.User, error)

	// Delete removes a user. Returns false when no row was deleted.
	Delete(ctx context.Context, id int64) (bool, error)
}
