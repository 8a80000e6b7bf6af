package model

import "time"

// User represents a registered account. The password hash never leaves the
// repository layer; API responses carry this struct only.
type User struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Role      string    `json:"role" db:"role"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// UserWithPassword is the repository-internal shape used for login checks.
type UserWithPassword struct {
	User
	PasswordHash string `db:"password"`
}

// RegisterParams holds the fields for a new account.
type RegisterParams struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginParams holds the credentials for a login attempt.
type LoginParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// User roles.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)
