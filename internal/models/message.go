package models

import "time"

const (
	InboundStatusUnread = "unread"
	InboundStatusRead   = "read"
)

const (
	IncomingTable = "incoming_messages"
	OutgoingTable = "outgoing_messages"
)

// InboundMessage is one row of the webhook-ingested message log.
type InboundMessage struct {
	ID          string     `json:"id"`
	FromNumber  string     `json:"from_number"`
	FromName    string     `json:"from_name"`
	Body        *string    `json:"body"`
	MessageType string     `json:"message_type"`
	MediaURL    *string    `json:"media_url"`
	Timestamp   int64      `json:"timestamp"`
	Status      string     `json:"status"`
	Replied     bool       `json:"replied"`
	ReplyText   *string    `json:"reply_text"`
	ReplySentAt *time.Time `json:"reply_sent_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// OutboundMessage is one row of the send-pipeline message log.
type OutboundMessage struct {
	ID           string    `json:"id"`
	ToNumber     string    `json:"to_number"`
	TemplateName *string   `json:"template_name"`
	Body         string    `json:"body"`
	Status       string    `json:"status"`
	MediaURL     *string   `json:"media_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (m *InboundMessage) BodyText() string {
	if m.Body == nil {
		return ""
	}
	return *m.Body
}
