package auth

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/grant-notifier/pkg/util"
)

// WebhookAuth validates the shared secret the messaging provider is
// configured to attach to webhook calls. An empty configured token
// disables the check (local development).
type WebhookAuth struct {
	token string
}

// NewWebhookAuth constructs the middleware.
func NewWebhookAuth(token string) *WebhookAuth {
	return &WebhookAuth{token: token}
}

// Handle enforces the shared token on inbound webhook requests.
func (m *WebhookAuth) Handle(c *fiber.Ctx) error {
	if m.token == "" {
		return c.Next()
	}

	supplied := c.Get("X-Webhook-Token")
	if supplied == "" {
		supplied = c.Query("token")
	}
	if subtle.ConstantTimeCompare([]byte(supplied), []byte(m.token)) != 1 {
		return apperrors.NewUnauthorized("invalid webhook token")
	}
	return c.Next()
}
