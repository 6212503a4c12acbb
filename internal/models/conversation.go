package models

import "time"

// ConversationSummary is the derived per-contact aggregate served by the
// conversation list. It is rebuilt from scratch on every cache refresh and
// never persisted.
type ConversationSummary struct {
	Phone                   string    `json:"phone"`
	Name                    string    `json:"name"`
	LastMessageText         string    `json:"last_message_text"`
	LastMessageTime         int64     `json:"last_message_time"`
	LastMessageIsOutgoing   bool      `json:"last_message_is_outgoing"`
	LastIncomingMessageText string    `json:"last_incoming_message_text,omitempty"`
	LastIncomingMessageTime *int64    `json:"last_incoming_message_time,omitempty"`
	UnreadCount             int       `json:"unread_count"`
	IsRead                  bool      `json:"is_read"`
	HasReplied              bool      `json:"has_replied"`
	HasIncomingMessages     bool      `json:"has_incoming_messages"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// PriorityTime is the sort key for the conversation list: incoming recency
// wins over overall recency so unanswered contacts surface first.
func (s *ConversationSummary) PriorityTime() int64 {
	if s.LastIncomingMessageTime != nil {
		return *s.LastIncomingMessageTime
	}
	return s.LastMessageTime
}

const (
	ThreadMessageIncoming = "incoming"
	ThreadMessageOutgoing = "outgoing"
)

// ThreadMessage is one entry of a merged per-contact thread. Type
// discriminates the direction; the remaining fields are the union of the
// two logs' display fields.
type ThreadMessage struct {
	Type         string  `json:"type"`
	ID           string  `json:"id"`
	Phone        string  `json:"phone"`
	Name         string  `json:"name,omitempty"`
	Body         string  `json:"body"`
	MessageType  string  `json:"message_type,omitempty"`
	MediaURL     *string `json:"media_url,omitempty"`
	Status       string  `json:"status"`
	TemplateName *string `json:"template_name,omitempty"`
	Replied      bool    `json:"replied,omitempty"`
	ReplyText    *string `json:"reply_text,omitempty"`
	Timestamp    int64   `json:"timestamp"`
}

type ConversationPage struct {
	Conversations []ConversationSummary
	Total         int
	HasMore       bool
	NextOffset    int
	Loaded        bool
}

type ThreadPage struct {
	Messages []ThreadMessage
	Total    int
	HasMore  bool
}
