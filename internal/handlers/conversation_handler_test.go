package handlers

import (
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

type stubListService struct {
	page   *models.ConversationPage
	err    error
	limit  *int
	offset int
}

func (s *stubListService) List(_ context.Context, limit *int, offset int) (*models.ConversationPage, error) {
	s.limit = limit
	s.offset = offset
	return s.page, s.err
}

type stubThreadService struct {
	page          *models.ThreadPage
	err           error
	markErr       error
	phone         string
	limit         int
	offset        int
	markedPhone   string
	markReadCalls int
}

func (s *stubThreadService) GetThread(_ context.Context, phone string, limit, offset int) (*models.ThreadPage, error) {
	s.phone = phone
	s.limit = limit
	s.offset = offset
	if s.err != nil {
		return nil, s.err
	}
	return s.page, nil
}

func (s *stubThreadService) MarkRead(_ context.Context, phone string) error {
	s.markedPhone = phone
	s.markReadCalls++
	return s.markErr
}

type listResponse struct {
	Conversations []models.ConversationSummary `json:"conversations"`
	Total         int                          `json:"total"`
	HasMore       bool                         `json:"hasMore"`
	NextOffset    int                          `json:"nextOffset"`
	Loaded        bool                         `json:"loaded"`
	Error         string                       `json:"error"`
}

func TestListConversationsReturnsPage(t *testing.T) {
	listService := &stubListService{
		page: &models.ConversationPage{
			Conversations: []models.ConversationSummary{
				{Phone: "966501234567", Name: "Ahmed", UnreadCount: 2},
			},
			Total:      7,
			HasMore:    true,
			NextOffset: 1,
			Loaded:     true,
		},
	}
	handler := NewConversationHandler(listService, &stubThreadService{}, nil)

	app := fiber.New()
	app.Get("/api/v1/conversations", handler.ListConversations)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations?limit=1&offset=3", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if listService.limit == nil || *listService.limit != 1 || listService.offset != 3 {
		t.Fatalf("unexpected pagination passed to service: limit=%v offset=%d", listService.limit, listService.offset)
	}

	var body listResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(body.Conversations) != 1 || body.Conversations[0].Phone != "966501234567" {
		t.Fatalf("unexpected conversations: %+v", body.Conversations)
	}
	if body.Total != 7 || !body.HasMore || body.NextOffset != 1 || !body.Loaded {
		t.Fatalf("unexpected page meta: %+v", body)
	}
	if body.Error != "" {
		t.Fatalf("expected no error field, got %q", body.Error)
	}
}

func TestListConversationsOmitsLimitWhenAbsent(t *testing.T) {
	listService := &stubListService{page: &models.ConversationPage{Loaded: true}}
	handler := NewConversationHandler(listService, &stubThreadService{}, nil)

	app := fiber.New()
	app.Get("/api/v1/conversations", handler.ListConversations)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/conversations", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()

	if listService.limit != nil {
		t.Fatalf("expected nil limit, got %d", *listService.limit)
	}
	if listService.offset != 0 {
		t.Fatalf("expected offset 0, got %d", listService.offset)
	}
}

func TestListConversationsDegradedStillReturns200(t *testing.T) {
	listService := &stubListService{
		page: &models.ConversationPage{
			Conversations: []models.ConversationSummary{{Phone: "966501234567"}},
			Total:         1,
			NextOffset:    1,
			Loaded:        true,
		},
		err: errors.New("store unreachable"),
	}
	handler := NewConversationHandler(listService, &stubThreadService{}, nil)

	app := fiber.New()
	app.Get("/api/v1/conversations", handler.ListConversations)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/conversations", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("degraded list must stay 200, got %d", resp.StatusCode)
	}

	var body listResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body.Error == "" {
		t.Fatal("expected error field in degraded response")
	}
	if len(body.Conversations) != 1 {
		t.Fatalf("stale conversations should still be served, got %+v", body.Conversations)
	}
}

func TestGetThreadReturnsMessages(t *testing.T) {
	threadService := &stubThreadService{
		page: &models.ThreadPage{
			Messages: []models.ThreadMessage{
				{Type: models.ThreadMessageIncoming, ID: "i1", Body: "hello", Timestamp: 100},
				{Type: models.ThreadMessageOutgoing, ID: "o1", Body: "hi", Timestamp: 200},
			},
			Total:   2,
			HasMore: false,
		},
	}
	handler := NewConversationHandler(&stubListService{page: &models.ConversationPage{}}, threadService, nil)

	app := fiber.New()
	app.Get("/api/v1/conversations/:phone", handler.GetThread)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations/0501234567?limit=20&offset=10", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if threadService.phone != "0501234567" || threadService.limit != 20 || threadService.offset != 10 {
		t.Fatalf("unexpected thread call: phone=%q limit=%d offset=%d",
			threadService.phone, threadService.limit, threadService.offset)
	}

	var body struct {
		Messages []models.ThreadMessage `json:"messages"`
		Total    int                    `json:"total"`
		HasMore  bool                   `json:"hasMore"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(body.Messages) != 2 || body.Messages[0].ID != "i1" || body.Messages[1].ID != "o1" {
		t.Fatalf("unexpected messages: %+v", body.Messages)
	}
	if body.Total != 2 {
		t.Fatalf("expected total 2, got %d", body.Total)
	}
}

func TestGetThreadCapsLimit(t *testing.T) {
	threadService := &stubThreadService{page: &models.ThreadPage{}}
	handler := NewConversationHandler(&stubListService{page: &models.ConversationPage{}}, threadService, nil)

	app := fiber.New()
	app.Get("/api/v1/conversations/:phone", handler.GetThread)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/conversations/0501234567?limit=9999", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()

	if threadService.limit != maxPageLimit {
		t.Fatalf("expected limit capped at %d, got %d", maxPageLimit, threadService.limit)
	}
}

func TestGetThreadInvalidPhoneReturns400(t *testing.T) {
	threadService := &stubThreadService{err: services.ErrInvalidPhone}
	handler := NewConversationHandler(&stubListService{page: &models.ConversationPage{}}, threadService, nil)

	app := fiber.New()
	app.Get("/api/v1/conversations/:phone", handler.GetThread)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/conversations/abc", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestGetThreadStoreFailureReturns500(t *testing.T) {
	threadService := &stubThreadService{err: errors.New("store unreachable")}
	handler := NewConversationHandler(&stubListService{page: &models.ConversationPage{}}, threadService, nil)

	app := fiber.New()
	app.Get("/api/v1/conversations/:phone", handler.GetThread)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/conversations/0501234567", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
}

func TestMarkReadSucceeds(t *testing.T) {
	threadService := &stubThreadService{}
	handler := NewConversationHandler(&stubListService{page: &models.ConversationPage{}}, threadService, nil)

	app := fiber.New()
	app.Patch("/api/v1/conversations/:phone", handler.MarkRead)

	resp, err := app.Test(httptest.NewRequest(http.MethodPatch, "/api/v1/conversations/0501234567", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if threadService.markedPhone != "0501234567" || threadService.markReadCalls != 1 {
		t.Fatalf("unexpected markRead call: phone=%q calls=%d", threadService.markedPhone, threadService.markReadCalls)
	}

	var body struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !body.Success {
		t.Fatal("expected success true")
	}
}

func TestMarkReadInvalidPhoneReturns400(t *testing.T) {
	threadService := &stubThreadService{markErr: services.ErrInvalidPhone}
	handler := NewConversationHandler(&stubListService{page: &models.ConversationPage{}}, threadService, nil)

	app := fiber.New()
	app.Patch("/api/v1/conversations/:phone", handler.MarkRead)

	resp, err := app.Test(httptest.NewRequest(http.MethodPatch, "/api/v1/conversations/abc", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
