package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/session-gateway/internal/api/http/handlers"
	"github.com/spec-kit/session-gateway/internal/auth"
	"github.com/spec-kit/session-gateway/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health *handlers.HealthHandler
	Auth   *handlers.AuthHandler
	Users  *handlers.UsersHandler
	Proxy  *handlers.ProxyHandler
	// HeaderAuth guards the JSON API; CookieAuth guards proxied routes.
	HeaderAuth *auth.AuthMiddleware
	CookieAuth *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	api := app.Group("/api/v1")
	api.Post("/login", cfg.Auth.Login)
	api.Post("/users", cfg.HeaderAuth.Optional, cfg.Users.Create)

	// Guards are per route; /api/v1 also hosts the cookie-gated proxy.
	requireSession := []fiber.Handler{cfg.HeaderAuth.Handle, auth.RequireAuthenticated()}
	api.Post("/logout", append(requireSession, cfg.Auth.Logout)...)
	api.Post("/renew", append(requireSession, cfg.Auth.Renew)...)
	api.Get("/me", append(requireSession, cfg.Auth.Me)...)

	requireAdmin := []fiber.Handler{cfg.HeaderAuth.Handle, auth.RequireRole(domain.RoleAdmin)}
	api.Get("/users", append(requireAdmin, cfg.Users.List)...)
	api.Get("/users/:id", append(requireAdmin, cfg.Users.Get)...)

	if cfg.Proxy != nil && cfg.CookieAuth != nil {
		api.All("/customers", cfg.CookieAuth.Handle, cfg.Proxy.Forward)
		api.All("/customers/*", cfg.CookieAuth.Handle, cfg.Proxy.Forward)
	}
}
