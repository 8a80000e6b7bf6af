package handler

import (
	"net/http"

	"ecommerce-platform/internal/model"
	"ecommerce-platform/internal/service"

	"github.com/rs/zerolog"
)

// AuthHandler handles registration and login requests.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("handler", "auth").Logger(),
	}
}

// Register handles POST /api/auth/register requests.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var params model.RegisterParams
	if err := decodeJSON(r, &params); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	resp, err := h.service.Register(r.Context(), &params)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// Login handles POST /api/auth/login requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var params model.LoginParams
	if err := decodeJSON(r, &params); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	resp, err := h.service.Login(r.Context(), &params)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
