package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ecommerce-platform/internal/auth"
	"ecommerce-platform/internal/cache"
	"ecommerce-platform/internal/messaging"
	"ecommerce-platform/internal/model"
	"ecommerce-platform/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost        = 12
	minPasswordLength = 6
)

// authService implements AuthService.
type authService struct {
	userRepo   repository.UserRepository
	cache      cache.Cache
	bus        messaging.Bus
	tokens     *auth.TokenManager
	sessionTTL time.Duration
	logger     zerolog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(
	userRepo repository.UserRepository,
	cacheClient cache.Cache,
	bus messaging.Bus,
	tokens *auth.TokenManager,
	sessionTTL time.Duration,
	logger zerolog.Logger,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		cache:      cacheClient,
		bus:        bus,
		tokens:     tokens,
		sessionTTL: sessionTTL,
		logger:     logger.With().Str("service", "auth").Logger(),
	}
}

// Register creates an account, issues a token and publishes user.created.
func (s *authService) Register(ctx context.Context, params *model.RegisterParams) (*model.AuthResponse, error) {
	if err := validateRegister(params); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcryptCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.Create(ctx, params.Name, params.Email, string(hash))
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, model.ErrEmailTaken
		}
		s.logger.Error().Err(err).Str("email", params.Email).Msg("failed to create user")
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to issue token")
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	if err := s.bus.Publish(ctx, model.EventUserCreated, model.UserCreatedEvent{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", user.ID).Msg("failed to publish user.created")
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user registered")

	return &model.AuthResponse{Token: token, User: *user}, nil
}

// Login verifies credentials, issues a token and caches the session.
func (s *authService) Login(ctx context.Context, params *model.LoginParams) (*model.AuthResponse, error) {
	if params.Email == "" || params.Password == "" {
		return nil, model.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, params.Email)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to look up user for login")
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	// Absent user and wrong password produce the same response.
	if user == nil {
		return nil, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(params.Password)); err != nil {
		s.logger.Debug().Int64("user_id", user.ID).Msg("password mismatch")
		return nil, model.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to issue token")
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	// Session caching is best effort, like every other cache write.
	if err := s.cache.Set(ctx, cache.SessionKey(user.ID), token, s.sessionTTL); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", user.ID).Msg("failed to cache session")
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user logged in")

	return &model.AuthResponse{Token: token, User: user.User}, nil
}

func validateRegister(params *model.RegisterParams) error {
	if strings.TrimSpace(params.Name) == "" {
		return model.ErrNameRequired
	}
	if !strings.Contains(params.Email, "@") {
		return model.NewValidationError("Valid email is required")
	}
	if len(params.Password) < minPasswordLength {
		return model.NewValidationError("Password must be at least 6 characters")
	}
	return nil
}
