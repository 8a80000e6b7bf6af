package model

// Routing keys published to the ecommerce_events topic exchange.
const (
	EventProductCreated = "product.created"
	EventProductDeleted = "product.deleted"
	EventUserCreated    = "user.created"
)

// ProductDeletedEvent is the payload for product.deleted. Created events
// carry the full Product.
type ProductDeletedEvent struct {
	ID int64 `json:"id"`
}

// UserCreatedEvent is the payload for user.created.
type UserCreatedEvent struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
