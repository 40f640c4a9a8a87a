package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/grant-notifier/internal/api/dto"
	apperrors "github.com/spec-kit/grant-notifier/pkg/util"
)

// MessageHandler processes one inbound message end to end.
type MessageHandler interface {
	Handle(ctx context.Context, userID, pushname, body string) error
}

// Deduper reports whether an inbound message ID is being seen for the
// first time.
type Deduper interface {
	FirstSeen(ctx context.Context, messageID string) bool
}

// WebhookHandler receives inbound WhatsApp messages from UltraMsg.
type WebhookHandler struct {
	registration MessageHandler
	dedup        Deduper
	logger       *zap.Logger
}

// NewWebhookHandler constructs the handler.
func NewWebhookHandler(registration MessageHandler, dedup Deduper, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{registration: registration, dedup: dedup, logger: logger}
}

// Receive handles POST /webhook. Malformed payloads are acknowledged
// and dropped; the transport retries on non-2xx, which would only
// replay the same malformed body.
func (h *WebhookHandler) Receive(c *fiber.Ctx) error {
	var req dto.WebhookRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warn("undecodable webhook payload", zap.Error(err))
		return c.JSON(fiber.Map{"status": "ignored"})
	}

	if missing := req.Validate(); len(missing) > 0 {
		h.logger.Warn("webhook payload rejected",
			zap.Error(apperrors.NewMalformedPayload("missing required fields",
				map[string]any{"missing": missing})))
		return c.JSON(fiber.Map{"status": "ignored"})
	}

	if h.dedup != nil && !h.dedup.FirstSeen(c.UserContext(), req.Data.ID) {
		h.logger.Debug("duplicate webhook message",
			zap.String("message_id", req.Data.ID))
		return c.JSON(fiber.Map{"status": "duplicate"})
	}

	if err := h.registration.Handle(c.UserContext(), req.Data.From, req.Data.Pushname, req.Data.Body); err != nil {
		// The provider is answered 200 regardless; failures are ours to
		// log, not the transport's to retry.
		h.logger.Error("webhook processing failed",
			zap.String("user_id", req.Data.From), zap.Error(err))
		return c.JSON(fiber.Map{"status": "error"})
	}

	return c.JSON(fiber.Map{"status": "ok"})
}
