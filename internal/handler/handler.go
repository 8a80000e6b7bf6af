package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"ecommerce-platform/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes a standardised error body with the given status code.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Debug().Str("code", code).Str("message", message).Int("status", status).Msg("request failed")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// writeDomainError maps a service error onto the HTTP status taxonomy:
// validation failures are 400, missing entities 404, credential failures 401,
// duplicate registrations 409 and everything else 500.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if !errors.As(err, &domainErr) {
		logger.Error().Err(err).Msg("unhandled service error")
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "Internal server error", logger)
		return
	}

	status := http.StatusInternalServerError
	switch domainErr.Code {
	case model.ErrCodeValidation, model.ErrCodeInvalidJSON:
		status = http.StatusBadRequest
	case model.ErrCodeProductNotFound, model.ErrCodeUserNotFound:
		status = http.StatusNotFound
	case model.ErrCodeUnauthorised:
		status = http.StatusUnauthorized
	case model.ErrCodeForbidden:
		status = http.StatusForbidden
	case model.ErrCodeEmailTaken:
		status = http.StatusConflict
	}

	writeError(w, status, domainErr.Code, domainErr.Message, logger)
}

// decodeJSON decodes the request body into dst, rejecting malformed payloads.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return model.NewDomainError(model.ErrCodeInvalidJSON, "Request body must be valid JSON")
	}
	return nil
}
