package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/Omar1091991/whats-app-bulk-messages-sub000/pkg/utils"
)

func postLogin(t *testing.T, handler *AuthHandler, email, password string) *http.Response {
	t.Helper()

	app := fiber.New()
	app.Post("/api/auth/login", handler.Login)

	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func TestLoginIssuesToken(t *testing.T) {
	hash, err := utils.HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	handler := NewAuthHandler("test-secret", "Ops@Example.com", hash)

	resp := postLogin(t, handler, "ops@example.com", "s3cret")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body.Token == "" {
		t.Fatal("expected token in response")
	}

	claims, err := utils.ValidateToken(body.Token, "test-secret")
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != "ops@example.com" || claims.Role != "operator" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	hash, err := utils.HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	handler := NewAuthHandler("test-secret", "ops@example.com", hash)

	resp := postLogin(t, handler, "ops@example.com", "wrong")
	resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	hash, err := utils.HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	handler := NewAuthHandler("test-secret", "ops@example.com", hash)

	resp := postLogin(t, handler, "intruder@example.com", "s3cret")
	resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestLoginWithNoConfiguredOperatorAlwaysFails(t *testing.T) {
	handler := NewAuthHandler("test-secret", "", "")

	resp := postLogin(t, handler, "", "")
	resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}
