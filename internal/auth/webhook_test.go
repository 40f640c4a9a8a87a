package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httpapi "github.com/spec-kit/grant-notifier/internal/api/http"
	"github.com/spec-kit/grant-notifier/internal/auth"
	"github.com/spec-kit/grant-notifier/internal/observability"
)

func newAuthApp(token string) *fiber.App {
	app := fiber.New()
	httpapi.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	app.Post("/webhook", auth.NewWebhookAuth(token).Handle, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	return app
}

func post(t *testing.T, app *fiber.App, target string, header map[string]string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestWebhookAuthAcceptsHeaderToken(t *testing.T) {
	app := newAuthApp("s3cret")
	status := post(t, app, "/webhook", map[string]string{"X-Webhook-Token": "s3cret"})
	assert.Equal(t, http.StatusOK, status)
}

func TestWebhookAuthAcceptsQueryToken(t *testing.T) {
	app := newAuthApp("s3cret")
	status := post(t, app, "/webhook?token=s3cret", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestWebhookAuthRejectsBadToken(t *testing.T) {
	app := newAuthApp("s3cret")

	assert.Equal(t, http.StatusUnauthorized, post(t, app, "/webhook", nil))
	assert.Equal(t, http.StatusUnauthorized,
		post(t, app, "/webhook", map[string]string{"X-Webhook-Token": "wrong"}))
}

func TestWebhookAuthDisabledWithoutToken(t *testing.T) {
	app := newAuthApp("")
	status := post(t, app, "/webhook", nil)
	assert.Equal(t, http.StatusOK, status)
}
