package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grant-notifier/internal/api/http/handlers"
	"github.com/spec-kit/grant-notifier/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health      *handlers.HealthHandler
	Webhook     *handlers.WebhookHandler
	WebhookAuth *auth.WebhookAuth
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/webhook", cfg.WebhookAuth.Handle, cfg.Webhook.Receive)
}
