package router

import (
	"net/http"

	"ecommerce-platform/internal/auth"
	"ecommerce-platform/internal/handler"
	"ecommerce-platform/internal/middleware"
	"ecommerce-platform/internal/model"

	"github.com/rs/zerolog"
)

// NewProductRouter wires the product API routes. Reads are public; mutations
// require a verified JWT.
func NewProductRouter(
	productHandler *handler.ProductHandler,
	healthHandler *handler.HealthHandler,
	tokens *auth.TokenManager,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()
	authn := middleware.JWTAuth(tokens, logger)

	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /ready", healthHandler.Ready)

	mux.HandleFunc("GET /api/products", productHandler.List)
	mux.HandleFunc("GET /api/products/{id}", productHandler.Get)
	mux.Handle("POST /api/products", authn(http.HandlerFunc(productHandler.Create)))
	mux.Handle("PUT /api/products/{id}", authn(http.HandlerFunc(productHandler.Update)))
	mux.Handle("DELETE /api/products/{id}", authn(http.HandlerFunc(productHandler.Delete)))

	return chain(mux, logger)
}

// NewUserRouter wires the user API routes.
func NewUserRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	healthHandler *handler.HealthHandler,
	tokens *auth.TokenManager,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()
	authn := middleware.JWTAuth(tokens, logger)
	admin := middleware.RequireRole(model.RoleAdmin, logger)

	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /ready", healthHandler.Ready)

	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	mux.Handle("GET /api/users", authn(admin(http.HandlerFunc(userHandler.List))))
	mux.Handle("GET /api/users/me", authn(http.HandlerFunc(userHandler.Me)))
	mux.Handle("PUT /api/users/me", authn(http.HandlerFunc(userHandler.UpdateMe)))
	mux.Handle("DELETE /api/users/{id}", authn(admin(http.HandlerFunc(userHandler.Delete))))

	return chain(mux, logger)
}

// chain applies the shared middleware stack: Recovery -> Logging -> RequestID -> CORS.
func chain(mux http.Handler, logger zerolog.Logger) http.Handler {
	var h http.Handler = mux
	h = middleware.CORS(h)
	h = middleware.RequestID(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)
	return h
}
