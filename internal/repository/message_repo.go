package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Omar1091991/whats-app-bulk-messages-sub000/internal/models"
	"github.com/Omar1091991/whats-app-bulk-messages-sub000/internal/store"
)

var inboundColumns = []string{
	"id", "from_number", "from_name", "body", "message_type", "media_url",
	"timestamp", "status", "replied", "reply_text", "reply_sent_at", "created_at",
}

var outboundColumns = []string{
	"id", "to_number", "template_name", "body", "status", "media_url",
	"created_at", "updated_at",
}

// InboundColumns is the projection used for every incoming_messages read.
func InboundColumns() []string { return inboundColumns }

// OutboundColumns is the projection used for every outgoing_messages read.
func OutboundColumns() []string { return outboundColumns }

// MessageRepository is the typed boundary over the record store: loose rows
// go in, validated models come out.
type MessageRepository struct {
	store store.Client
}

func NewMessageRepository(client store.Client) *MessageRepository {
	return &MessageRepository{store: client}
}

// ListInboundByPhones returns one ascending-by-time page of inbound messages
// sent from any of the phone variants, plus the total count for that scope.
func (r *MessageRepository) ListInboundByPhones(
	ctx context.Context,
	phoneVariants []string,
	limit int,
	offset int,
) ([]models.InboundMessage, int, error) {
	query := store.NewQuery(models.IncomingTable).
		Select(inboundColumns...).
		In("from_number", phoneVariants).
		Order("timestamp", true).
		Range(offset, offset+limit-1).
		WithCount()

	rows, count, err := r.store.Execute(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	messages := make([]models.InboundMessage, 0, len(rows))
	for _, row := range rows {
		message, err := DecodeInbound(row)
		if err != nil {
			return nil, 0, err
		}
		messages = append(messages, message)
	}
	return messages, int(count), nil
}

// ListOutboundByPhones is the outbound counterpart of ListInboundByPhones,
// matching the variants as recipients.
func (r *MessageRepository) ListOutboundByPhones(
	ctx context.Context,
	phoneVariants []string,
	limit int,
	offset int,
) ([]models.OutboundMessage, int, error) {
	query := store.NewQuery(models.OutgoingTable).
		Select(outboundColumns...).
		In("to_number", phoneVariants).
		Order("created_at", true).
		Range(offset, offset+limit-1).
		WithCount()

	rows, count, err := r.store.Execute(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	messages := make([]models.OutboundMessage, 0, len(rows))
	for _, row := range rows {
		message, err := DecodeOutbound(row)
		if err != nil {
			return nil, 0, err
		}
		messages = append(messages, message)
	}
	return messages, int(count), nil
}

// MarkInboundRead transitions every unread inbound message from the phone
// variants to read. The status filter makes repeated calls no-ops; outbound
// rows are never touched.
func (r *MessageRepository) MarkInboundRead(ctx context.Context, phoneVariants []string) (int64, error) {
	query := store.NewQuery(models.IncomingTable).
		In("from_number", phoneVariants).
		Eq("status", models.InboundStatusUnread)

	return r.store.Update(ctx, query, store.Row{"status": models.InboundStatusRead})
}

// InsertInbound appends one webhook-ingested message to the inbound log.
func (r *MessageRepository) InsertInbound(ctx context.Context, message *models.InboundMessage) error {
	row := store.Row{
		"id":           message.ID,
		"from_number":  message.FromNumber,
		"from_name":    message.FromName,
		"body":         message.Body,
		"message_type": message.MessageType,
		"media_url":    message.MediaURL,
		"timestamp":    message.Timestamp,
		"status":       message.Status,
		"replied":      message.Replied,
	}
	return r.store.Insert(ctx, models.IncomingTable, []store.Row{row})
}

// DecodeInbound validates one incoming_messages row. Backends disagree on
// scalar representations (pgx returns int64 and time.Time, PostgREST returns
// float64 and RFC3339 strings), so every field goes through a coercer.
func DecodeInbound(row store.Row) (models.InboundMessage, error) {
	var message models.InboundMessage
	var err error

	if message.ID, err = stringField(row, "id"); err != nil {
		return message, fmt.Errorf("inbound row: %w", err)
	}
	if message.FromNumber, err = stringField(row, "from_number"); err != nil {
		return message, fmt.Errorf("inbound row %s: %w", message.ID, err)
	}
	message.FromName = optionalStringValue(row, "from_name")
	message.Body = optionalString(row, "body")
	message.MessageType = optionalStringValue(row, "message_type")
	message.MediaURL = optionalString(row, "media_url")
	if message.Timestamp, err = int64Field(row, "timestamp"); err != nil {
		return message, fmt.Errorf("inbound row %s: %w", message.ID, err)
	}
	message.Status = optionalStringValue(row, "status")
	message.Replied = boolField(row, "replied")
	message.ReplyText = optionalString(row, "reply_text")
	message.ReplySentAt = optionalTime(row, "reply_sent_at")
	message.CreatedAt = timeField(row, "created_at")

	return message, nil
}

// DecodeOutbound validates one outgoing_messages row.
func DecodeOutbound(row store.Row) (models.OutboundMessage, error) {
	var message models.OutboundMessage
	var err error

	if message.ID, err = stringField(row, "id"); err != nil {
		return message, fmt.Errorf("outbound row: %w", err)
	}
	if message.ToNumber, err = stringField(row, "to_number"); err != nil {
		return message, fmt.Errorf("outbound row %s: %w", message.ID, err)
	}
	message.TemplateName = optionalString(row, "template_name")
	message.Body = optionalStringValue(row, "body")
	message.Status = optionalStringValue(row, "status")
	message.MediaURL = optionalString(row, "media_url")
	message.CreatedAt = timeField(row, "created_at")
	message.UpdatedAt = timeField(row, "updated_at")
	if message.UpdatedAt.IsZero() {
		message.UpdatedAt = message.CreatedAt
	}

	return message, nil
}

func stringField(row store.Row, key string) (string, error) {
	value, ok := row[key]
	if !ok || value == nil {
		return "", fmt.Errorf("missing column %q", key)
	}
	switch v := value.(type) {
	case string:
		return v, nil
	case float64:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case int:
		return strconv.Itoa(v), nil
	default:
		return "", fmt.Errorf("column %q has unexpected type %T", key, value)
	}
}

func optionalString(row store.Row, key string) *string {
	value, err := stringField(row, key)
	if err != nil {
		return nil
	}
	return &value
}

func optionalStringValue(row store.Row, key string) string {
	value, err := stringField(row, key)
	if err != nil {
		return ""
	}
	return value
}

func int64Field(row store.Row, key string) (int64, error) {
	value, ok := row[key]
	if !ok || value == nil {
		return 0, fmt.Errorf("missing column %q", key)
	}
	switch v := value.(type) {
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case string:
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("column %q is not numeric: %q", key, v)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("column %q has unexpected type %T", key, value)
	}
}

func boolField(row store.Row, key string) bool {
	value, ok := row[key].(bool)
	return ok && value
}

func timeField(row store.Row, key string) time.Time {
	switch v := row[key].(type) {
	case time.Time:
		return v
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999"} {
			if parsed, err := time.Parse(layout, v); err == nil {
				return parsed
			}
		}
	}
	return time.Time{}
}

func optionalTime(row store.Row, key string) *time.Time {
	parsed := timeField(row, key)
	if parsed.IsZero() {
		return nil
	}
	return &parsed
}
