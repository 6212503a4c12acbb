package utils

import (
	"strings"
	"testing"
)

func TestHashPassword(t *testing.T) {
	password := "dashboard-s3cret"
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !CheckPassword(password, hash) {
		t.Errorf("Expected password check to pass")
	}

	if CheckPassword("wrongpassword", hash) {
		t.Errorf("Expected password check to fail")
	}

	if CheckPassword(password, "not-a-bcrypt-hash") {
		t.Errorf("Expected malformed hash to fail the check")
	}
}

func TestOperatorToken(t *testing.T) {
	secret := "supersecret"
	email := "ops@example.com"

	token, err := GenerateToken(email, "operator", secret)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	claims, err := ValidateToken(token, secret)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if claims.UserID != email {
		t.Errorf("Expected UserID %s, got %s", email, claims.UserID)
	}

	if claims.Role != "operator" {
		t.Errorf("Expected Role operator, got %s", claims.Role)
	}

	if _, err := ValidateToken(token, "wrongsecret"); err == nil {
		t.Errorf("Expected error with wrong secret")
	}
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	secret := "supersecret"

	token, err := GenerateToken("ops@example.com", "operator", secret)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("Expected three JWT segments, got %d", len(parts))
	}
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	if _, err := ValidateToken(tampered, secret); err == nil {
		t.Errorf("Expected error for tampered signature")
	}

	if _, err := ValidateToken("not-a-token", secret); err == nil {
		t.Errorf("Expected error for malformed token")
	}
}
