package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/Omar1091991/whats-app-bulk-messages-sub000/internal/models"
	"github.com/Omar1091991/whats-app-bulk-messages-sub000/internal/services"
)

type stubIngestService struct {
	received []services.IncomingWebhookMessage
	errFor   map[string]error
}

func (s *stubIngestService) RecordInbound(_ context.Context, incoming services.IncomingWebhookMessage) (*models.InboundMessage, error) {
	if err, ok := s.errFor[incoming.From]; ok && err != nil {
		return nil, err
	}
	s.received = append(s.received, incoming)
	return &models.InboundMessage{
		ID:         incoming.MessageID,
		FromNumber: incoming.From,
		FromName:   incoming.Name,
	}, nil
}

type stubNotifier struct {
	phones []string
}

func (s *stubNotifier) NotifyConversationsUpdated(phone string) {
	s.phones = append(s.phones, phone)
}

func postWebhook(t *testing.T, handler *WebhookHandler, payload any) *http.Response {
	t.Helper()

	app := fiber.New()
	app.Post("/api/webhook/whatsapp", handler.HandleIncoming)

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/webhook/whatsapp", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func TestWebhookRecordsMessagesAndNotifies(t *testing.T) {
	service := &stubIngestService{}
	notifier := &stubNotifier{}
	handler := NewWebhookHandler(service, notifier)

	resp := postWebhook(t, handler, map[string]any{
		"messages": []map[string]any{
			{"message_id": "wamid.1", "from": "0501234567", "name": "Ahmed", "body": "hello", "timestamp": 1700000000},
			{"message_id": "wamid.2", "from": "966509876543", "body": "hi", "type": "image", "media_url": "https://cdn/a.jpg"},
		},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Success  bool `json:"success"`
		Received int  `json:"received"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !body.Success || body.Received != 2 {
		t.Fatalf("unexpected response: %+v", body)
	}
	if len(service.received) != 2 || service.received[0].MessageID != "wamid.1" {
		t.Fatalf("unexpected recorded messages: %+v", service.received)
	}
	if len(notifier.phones) != 1 || notifier.phones[0] != "966509876543" {
		t.Fatalf("expected one refresh notification for the last phone, got %v", notifier.phones)
	}
}

func TestWebhookDropsUnmatchablePhones(t *testing.T) {
	service := &stubIngestService{
		errFor: map[string]error{"---": services.ErrInvalidPhone},
	}
	notifier := &stubNotifier{}
	handler := NewWebhookHandler(service, notifier)

	resp := postWebhook(t, handler, map[string]any{
		"messages": []map[string]any{
			{"message_id": "wamid.1", "from": "---", "body": "junk"},
			{"message_id": "wamid.2", "from": "0501234567", "body": "hello"},
		},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Received int `json:"received"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body.Received != 1 {
		t.Fatalf("expected 1 received, got %d", body.Received)
	}
}

func TestWebhookEmptyPayloadReturns400(t *testing.T) {
	handler := NewWebhookHandler(&stubIngestService{}, &stubNotifier{})

	resp := postWebhook(t, handler, map[string]any{"messages": []map[string]any{}})
	resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestWebhookStoreFailureReturns500(t *testing.T) {
	service := &stubIngestService{
		errFor: map[string]error{"0501234567": errors.New("insert failed")},
	}
	notifier := &stubNotifier{}
	handler := NewWebhookHandler(service, notifier)

	resp := postWebhook(t, handler, map[string]any{
		"messages": []map[string]any{
			{"message_id": "wamid.1", "from": "0501234567", "body": "hello"},
		},
	})
	resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	if len(notifier.phones) != 0 {
		t.Fatalf("no notification expected on failure, got %v", notifier.phones)
	}
}
