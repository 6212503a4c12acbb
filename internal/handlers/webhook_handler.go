package handlers

import (
	"context"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/Omar1091991/whats-app-bulk-messages-sub000/internal/models"
	"github.com/Omar1091991/whats-app-bulk-messages-sub000/internal/services"
	"github.com/Omar1091991/whats-app-bulk-messages-sub000/pkg/utils"
)

type webhookIngestService interface {
	RecordInbound(ctx context.Context, incoming services.IncomingWebhookMessage) (*models.InboundMessage, error)
}

type refreshNotifier interface {
	NotifyConversationsUpdated(phone string)
}

type WebhookHandler struct {
	service webhookIngestService
	hub     refreshNotifier
}

func NewWebhookHandler(service webhookIngestService, hub refreshNotifier) *WebhookHandler {
	return &WebhookHandler{service: service, hub: hub}
}

type webhookMessagePayload struct {
	MessageID string `json:"message_id"`
	From      string `json:"from"`
	Name      string `json:"name"`
	Body      string `json:"body"`
	Type      string `json:"type"`
	MediaURL  string `json:"media_url"`
	Timestamp int64  `json:"timestamp"`
}

type webhookRequest struct {
	Messages []webhookMessagePayload `json:"messages"`
}

// HandleIncoming ingests a provider webhook delivery into the inbound log.
// Messages with no matchable phone are dropped rather than failing the whole
// batch; the provider has nothing useful to do with a partial-failure status.
func (h *WebhookHandler) HandleIncoming(c *fiber.Ctx) error {
	var req webhookRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if len(req.Messages) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No messages in payload"})
	}

	recorded := 0
	var lastPhone string
	for _, payload := range req.Messages {
		message, err := h.service.RecordInbound(c.Context(), services.IncomingWebhookMessage{
			MessageID: payload.MessageID,
			From:      payload.From,
			Name:      payload.Name,
			Body:      payload.Body,
			Type:      payload.Type,
			MediaURL:  payload.MediaURL,
			Timestamp: payload.Timestamp,
		})
		if err != nil {
			if errors.Is(err, services.ErrInvalidPhone) {
				log.Printf("webhook: dropping message with unmatchable phone %q", payload.From)
				continue
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record message"})
		}
		recorded++
		lastPhone = message.FromNumber
	}

	if recorded > 0 && h.hub != nil {
		h.hub.NotifyConversationsUpdated(utils.NormalizePhone(lastPhone))
	}

	return c.JSON(fiber.Map{"success": true, "received": recorded})
}
