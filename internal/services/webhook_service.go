package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Omar1091991/whats-app-bulk-messages-sub000/internal/models"
	"github.com/Omar1091991/whats-app-bulk-messages-sub000/pkg/utils"
)

type inboundWriter interface {
	InsertInbound(ctx context.Context, message *models.InboundMessage) error
}

// IncomingWebhookMessage is one message as delivered by the provider
// webhook, before it becomes an inbound log row.
type IncomingWebhookMessage struct {
	MessageID string
	From      string
	Name      string
	Body      string
	Type      string
	MediaURL  string
	Timestamp int64
}

// WebhookService appends provider webhook deliveries to the inbound log.
type WebhookService struct {
	repo inboundWriter
}

func NewWebhookService(repo inboundWriter) *WebhookService {
	return &WebhookService{repo: repo}
}

// RecordInbound validates and stores one webhook message. Provider message
// ids are kept when present so redeliveries stay traceable; otherwise a
// fresh id is generated.
func (s *WebhookService) RecordInbound(ctx context.Context, incoming IncomingWebhookMessage) (*models.InboundMessage, error) {
	from := strings.TrimSpace(incoming.From)
	if utils.NormalizePhone(from) == "" {
		return nil, ErrInvalidPhone
	}

	id := strings.TrimSpace(incoming.MessageID)
	if id == "" {
		id = uuid.NewString()
	}
	timestamp := incoming.Timestamp
	if timestamp <= 0 {
		timestamp = time.Now().Unix()
	}
	messageType := incoming.Type
	if messageType == "" {
		messageType = "text"
	}

	message := &models.InboundMessage{
		ID:          id,
		FromNumber:  from,
		FromName:    strings.TrimSpace(incoming.Name),
		MessageType: messageType,
		Timestamp:   timestamp,
		Status:      models.InboundStatusUnread,
	}
	if incoming.Body != "" {
		body := incoming.Body
		message.Body = &body
	}
	if incoming.MediaURL != "" {
		mediaURL := incoming.MediaURL
		message.MediaURL = &mediaURL
	}

	if err := s.repo.InsertInbound(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}
