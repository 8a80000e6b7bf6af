package service

import (
	"context"

	"ecommerce-platform/internal/model"
)

// ProductService defines operations for product management over the cached
// read path.
type ProductService interface {
	// List retrieves the full product listing, cache-aside.
	List(ctx context.Context) ([]model.Product, error)

	// Get retrieves a single product by ID, cache-aside.
	Get(ctx context.Context, id int64) (*model.Product, error)

	// Create validates and stores a new product, invalidates the listing
	// cache and publishes product.created.
	Create(ctx context.Context, params *model.CreateProductParams) (*model.Product, error)

	// Update applies a partial update and invalidates the affected keys.
	Update(ctx context.Context, id int64, params *model.UpdateProductParams) (*model.Product, error)

	// Delete removes a product, invalidates the affected keys and
	// publishes product.deleted.
	Delete(ctx context.Context, id int64) error
}

// AuthService defines registration and login.
type AuthService interface {
	// Register creates an account, issues a token and publishes user.created.
	Register(ctx context.Context, params *model.RegisterParams) (*model.AuthResponse, error)

	// Login verifies credentials, issues a token and caches the session.
	Login(ctx context.Context, params *model.LoginParams) (*model.AuthResponse, error)
}

// UserService defines operations for user management.
type UserService interface {
	// List retrieves all users.
	List(ctx context.Context) ([]model.User, error)

	// Get retrieves a single user by ID.
	Get(ctx context.Context, id int64) (*model.User, error)

	// UpdateName updates the display name of a user.
	UpdateName(ctx context.Context, id int64, name string) (*model.User, error)

	// Delete removes a user.
	Delete(ctx context.Context, id int64) error
}
