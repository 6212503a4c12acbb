package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Omar1091991/whats-app-bulk-messages-sub000/pkg/utils"
)

// AuthHandler issues dashboard tokens against the operator credentials from
// the environment. Operator account management lives outside this service.
type AuthHandler struct {
	jwtSecret            string
	operatorEmail        string
	operatorPasswordHash string
}

func NewAuthHandler(jwtSecret, operatorEmail, operatorPasswordHash string) *AuthHandler {
	return &AuthHandler{
		jwtSecret:            jwtSecret,
		operatorEmail:        strings.ToLower(strings.TrimSpace(operatorEmail)),
		operatorPasswordHash: operatorPasswordHash,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if h.operatorEmail == "" || email != h.operatorEmail ||
		!utils.CheckPassword(req.Password, h.operatorPasswordHash) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
	}

	token, err := utils.GenerateToken(email, "operator", h.jwtSecret)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate token"})
	}

	return c.JSON(fiber.Map{"token": token})
}
