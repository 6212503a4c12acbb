package handlers

import (
	"context"
	"errors"
	"log"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/Omar1091991/whats-app-bulk-messages-sub000/internal/models"
	"github.com/Omar1091991/whats-app-bulk-messages-sub000/internal/services"
	dashws "github.com/Omar1091991/whats-app-bulk-messages-sub000/internal/websocket"
	"github.com/Omar1091991/whats-app-bulk-messages-sub000/pkg/utils"
)

type conversationListService interface {
	List(ctx context.Context, limit *int, offset int) (*models.ConversationPage, error)
}

type conversationThreadService interface {
	GetThread(ctx context.Context, phone string, limit, offset int) (*models.ThreadPage, error)
	MarkRead(ctx context.Context, phone string) error
}

type ConversationHandler struct {
	listService   conversationListService
	threadService conversationThreadService
	hub           *dashws.Hub
}

func NewConversationHandler(
	listService conversationListService,
	threadService conversationThreadService,
	hub *dashws.Hub,
) *ConversationHandler {
	return &ConversationHandler{
		listService:   listService,
		threadService: threadService,
		hub:           hub,
	}
}

// ListConversations serves the cache-backed conversation index. It always
// answers 200: polling dashboards must keep working through store outages,
// so failures surface in the body instead of the status code.
func (h *ConversationHandler) ListConversations(c *fiber.Ctx) error {
	limit := parseOptionalLimit(c.Query("limit"))
	offset := parseNonNegativeInt(c.Query("offset"), 0)

	page, err := h.listService.List(c.Context(), limit, offset)
	response := fiber.Map{
		"conversations": page.Conversations,
		"total":         page.Total,
		"hasMore":       page.HasMore,
		"nextOffset":    page.NextOffset,
		"loaded":        page.Loaded,
	}
	if err != nil {
		log.Printf("conversation list degraded: %v", err)
		response["error"] = "Failed to refresh conversations"
	}

	return c.JSON(response)
}

func (h *ConversationHandler) GetThread(c *fiber.Ctx) error {
	phone := c.Params("phone")
	limit := parsePositiveInt(c.Query("limit"), defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	offset := parseNonNegativeInt(c.Query("offset"), 0)

	page, err := h.threadService.GetThread(c.Context(), phone, limit, offset)
	if err != nil {
		return mapConversationError(c, err)
	}

	return c.JSON(fiber.Map{
		"messages": page.Messages,
		"total":    page.Total,
		"hasMore":  page.HasMore,
	})
}

func (h *ConversationHandler) MarkRead(c *fiber.Ctx) error {
	phone := c.Params("phone")

	if err := h.threadService.MarkRead(c.Context(), phone); err != nil {
		return mapConversationError(c, err)
	}
	if h.hub != nil {
		h.hub.NotifyConversationsUpdated(utils.NormalizePhone(phone))
	}

	return c.JSON(fiber.Map{"success": true})
}

func (h *ConversationHandler) WebSocketAuth(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{"error": "WebSocket upgrade required"})
	}
	return c.Next()
}

func (h *ConversationHandler) HandleWebSocket(conn *websocket.Conn) {
	client := dashws.NewClient(h.hub, conn)
	h.hub.Register(client)
	go client.WritePump()
	client.ReadPump()
}

func mapConversationError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidPhone):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid phone number"})
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process conversation request"})
	}
}
