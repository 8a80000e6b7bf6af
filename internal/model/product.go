package model

import "time"

// Product represents a product in the catalogue. The store assigns the ID
// and both timestamps; the ID is never reused within a store lifetime.
type Product struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Price       float64   `json:"price" db:"price"`
	Stock       int       `json:"stock" db:"stock"`
	Category    string    `json:"category" db:"category"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// CreateProductParams holds the client-supplied fields for a new product.
// Description defaults to "", stock to 0 and category to "General".
type CreateProductParams struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Category    string  `json:"category"`
}

// UpdateProductParams holds a partial update. Nil fields retain the stored
// value (COALESCE semantics in the repository).
type UpdateProductParams struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
	Category    *string  `json:"category"`
}

// DefaultCategory is applied when a create request omits the category.
const DefaultCategory = "General"
