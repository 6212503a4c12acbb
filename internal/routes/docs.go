package routes

import "github.com/gofiber/fiber/v2"

// registerDocs serves a minimal endpoint catalogue for development use,
// gated behind ENABLE_API_DOCS.
func registerDocs(api fiber.Router) {
	api.Get("/docs", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"endpoints": []fiber.Map{
				{
					"method":      "POST",
					"path":        "/api/auth/login",
					"description": "Exchange operator credentials for a dashboard token",
				},
				{
					"method":      "POST",
					"path":        "/api/webhook/whatsapp",
					"description": "Ingest inbound messages delivered by the provider webhook",
				},
				{
					"method":      "GET",
					"path":        "/api/v1/conversations",
					"description": "Paginated conversation list, descending by incoming recency",
					"query":       []string{"limit", "offset"},
				},
				{
					"method":      "GET",
					"path":        "/api/v1/conversations/:phone",
					"description": "Merged inbound/outbound thread for one contact, ascending by time",
					"query":       []string{"limit", "offset"},
				},
				{
					"method":      "PATCH",
					"path":        "/api/v1/conversations/:phone",
					"description": "Mark every unread inbound message of the contact as read",
				},
				{
					"method":      "GET",
					"path":        "/api/v1/ws",
					"description": "Websocket feed of conversations_updated events",
				},
			},
		})
	})
}
