package services

import (
	"sort"

	"github.com/Omar1091991/whats-app-bulk-messages-sub000/internal/models"
	"github.com/Omar1091991/whats-app-bulk-messages-sub000/pkg/utils"
)

// MergeConversations folds the two message logs into one summary per
// normalized phone. Inbound rows are folded first: an inbound message that
// is the newest *inbound* seen for its contact also claims the "latest
// activity" slot, even when an outbound row carries a later literal
// timestamp. Outbound rows can take that slot back only by being strictly
// newer. This keeps contacts with unanswered messages on top and is the
// business rule, not an accident.
//
// The result is independent of the order rows arrive in: recency is
// re-derived from each row's own timestamp, the unread/replied/UpdatedAt
// fields accumulate monotonically, and equal-timestamp ties break on
// message id instead of feed position.
func MergeConversations(
	inbound []models.InboundMessage,
	outbound []models.OutboundMessage,
) map[string]*models.ConversationSummary {
	conversations := make(map[string]*models.ConversationSummary)
	newestInboundID := make(map[string]string)
	newestOutboundID := make(map[string]string)

	for i := range inbound {
		msg := &inbound[i]
		key := utils.NormalizePhone(msg.FromNumber)
		if key == "" {
			continue
		}

		entry, ok := conversations[key]
		if !ok {
			ts := msg.Timestamp
			unread := 0
			if msg.Status != models.InboundStatusRead {
				unread = 1
			}
			conversations[key] = &models.ConversationSummary{
				Phone:                   msg.FromNumber,
				Name:                    msg.FromName,
				LastMessageText:         msg.BodyText(),
				LastMessageTime:         msg.Timestamp,
				LastMessageIsOutgoing:   false,
				LastIncomingMessageText: msg.BodyText(),
				LastIncomingMessageTime: &ts,
				UnreadCount:             unread,
				IsRead:                  msg.Status == models.InboundStatusRead,
				HasReplied:              msg.Replied,
				HasIncomingMessages:     true,
				UpdatedAt:               msg.CreatedAt,
			}
			newestInboundID[key] = msg.ID
			continue
		}

		if entry.LastIncomingMessageTime == nil ||
			msg.Timestamp > *entry.LastIncomingMessageTime ||
			(msg.Timestamp == *entry.LastIncomingMessageTime && msg.ID > newestInboundID[key]) {
			ts := msg.Timestamp
			newestInboundID[key] = msg.ID
			entry.LastIncomingMessageText = msg.BodyText()
			entry.LastIncomingMessageTime = &ts
			entry.LastMessageText = msg.BodyText()
			entry.LastMessageTime = msg.Timestamp
			entry.LastMessageIsOutgoing = false
			entry.Phone = msg.FromNumber
			entry.Name = msg.FromName
			entry.IsRead = msg.Status == models.InboundStatusRead
		}

		if msg.CreatedAt.After(entry.UpdatedAt) {
			entry.UpdatedAt = msg.CreatedAt
		}
		entry.HasIncomingMessages = true
		if msg.Status != models.InboundStatusRead {
			entry.UnreadCount++
		}
		if msg.Replied {
			entry.HasReplied = true
		}
	}

	for i := range outbound {
		msg := &outbound[i]
		key := utils.NormalizePhone(msg.ToNumber)
		if key == "" {
			continue
		}

		ts := msg.CreatedAt.Unix()
		entry, ok := conversations[key]
		if !ok {
			// No contact directory exists outside the inbound stream, so
			// outbound-only conversations display the raw number as the name.
			conversations[key] = &models.ConversationSummary{
				Phone:                 msg.ToNumber,
				Name:                  msg.ToNumber,
				LastMessageText:       msg.Body,
				LastMessageTime:       ts,
				LastMessageIsOutgoing: true,
				IsRead:                true,
				HasIncomingMessages:   false,
				UpdatedAt:             msg.CreatedAt,
			}
			newestOutboundID[key] = msg.ID
			continue
		}

		if ts > entry.LastMessageTime ||
			(ts == entry.LastMessageTime && entry.LastMessageIsOutgoing && msg.ID > newestOutboundID[key]) {
			entry.LastMessageText = msg.Body
			entry.LastMessageTime = ts
			entry.LastMessageIsOutgoing = true
			newestOutboundID[key] = msg.ID
		}
		if msg.CreatedAt.After(entry.UpdatedAt) {
			entry.UpdatedAt = msg.CreatedAt
		}
	}

	return conversations
}

// SortConversations flattens the merged map into display order. Contacts
// with inbound activity always rank above outbound-only contacts, no matter
// how recent the outbound side is: a waiting customer outranks any
// broadcast. Within each tier the order is descending by priority time.
func SortConversations(conversations map[string]*models.ConversationSummary) []models.ConversationSummary {
	sorted := make([]models.ConversationSummary, 0, len(conversations))
	for _, entry := range conversations {
		sorted = append(sorted, *entry)
	}

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].HasIncomingMessages != sorted[j].HasIncomingMessages {
			return sorted[i].HasIncomingMessages
		}
		pi, pj := sorted[i].PriorityTime(), sorted[j].PriorityTime()
		if pi != pj {
			return pi > pj
		}
		return sorted[i].Phone < sorted[j].Phone
	})
	return sorted
}
