package handler

import (
	"net/http"

	"ecommerce-platform/internal/cache"
	"ecommerce-platform/internal/messaging"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// HealthHandler reports liveness and readiness of the service and its
// collaborators.
type HealthHandler struct {
	serviceName string
	pool        *pgxpool.Pool
	cache       cache.Cache
	bus         messaging.Bus
	logger      zerolog.Logger
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(serviceName string, pool *pgxpool.Pool, cacheClient cache.Cache, bus messaging.Bus, logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		pool:        pool,
		cache:       cacheClient,
		bus:         bus,
		logger:      logger.With().Str("handler", "health").Logger(),
	}
}

// Health handles GET /health: the service is healthy when the store answers.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.pool.Ping(r.Context()); err != nil {
		h.logger.Warn().Err(err).Msg("health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "unhealthy",
			"service": h.serviceName,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": h.serviceName,
	})
}

// Ready handles GET /ready: readiness additionally requires the cache to
// answer, and reports the bus connection state without gating on it (event
// delivery is best effort).
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	busState := h.bus.State().String()

	if err := h.pool.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"store":  "unavailable",
			"bus":    busState,
		})
		return
	}

	if err := h.cache.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"cache":  "unavailable",
			"bus":    busState,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"bus":    busState,
	})
}
