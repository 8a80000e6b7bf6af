package repository

import (
	"context"
	"errors"
	"fmt"

	"ecommerce-platform/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// ErrDuplicateEmail is returned when the unique email constraint is violated.
var ErrDuplicateEmail = errors.New("email already exists")

// userRepository implements the UserRepository interface using PostgreSQL.
type userRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool *pgxpool.Pool, logger zerolog.Logger) UserRepository {
	return &userRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "user").Logger(),
	}
}

const userColumns = "id, name, email, role, created_at"

// Create inserts a new user with a pre-hashed password.
func (r *userRepository) Create(ctx context.Context, name, email, passwordHash string) (*model.User, error) {
	query := fmt.Sprintf(`
		INSERT INTO users (name, email, password)
		VALUES ($1, $2, $3)
		RETURNING %s
	`, userColumns)

	var u model.User
	err := r.pool.QueryRow(ctx, query, name, email, passwordHash).
		Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			r.logger.Debug().Str("email", email).Msg("email already registered")
			return nil, ErrDuplicateEmail
		}
		r.logger.Error().Err(err).Str("email", email).Msg("failed to insert user")
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return &u, nil
}

// GetByEmail retrieves a user with the password hash for login checks.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.UserWithPassword, error) {
	query := `
		SELECT id, name, email, password, role, created_at
		FROM users
		WHERE email = $1
	`

	var u model.UserWithPassword
	err := r.pool.QueryRow(ctx, query, email).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("email", email).Msg("failed to query user by email")
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &u, nil
}

// GetByID retrieves a single user by ID.
func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE id = $1
	`, userColumns)

	var u model.User
	err := r.pool.QueryRow(ctx, query, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Int64("user_id", id).Msg("user not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("user_id", id).Msg("failed to query user")
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &u, nil
}

// List retrieves all users ordered by ID.
func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		ORDER BY id
	`, userColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query users")
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan user row")
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating user rows")
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// UpdateName updates the display name.
func (r *userRepository) UpdateName(ctx context.Context, id int64, name string) (*model.User, error) {
	query := fmt.Sprintf(`
		UPDATE users SET
			name = COALESCE(NULLIF($1, ''), name),
			updated_at = NOW()
		WHERE id = $2
		RETURNING %s
	`, userColumns)

	var u model.User
	err := r.pool.QueryRow(ctx, query, name, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("user_id", id).Msg("failed to update user")
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return &u, nil
}

// Delete removes a user. Returns false when no row was deleted.
func (r *userRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", id).Msg("failed to delete user")
		return false, fmt.Errorf("failed to delete user: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
