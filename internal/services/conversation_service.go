package services

import (
	"context"
	"log"

	"github.com/Omar1091991/whats-app-bulk-messages-sub000/internal/models"
	"github.com/Omar1091991/whats-app-bulk-messages-sub000/internal/repository"
	"github.com/Omar1091991/whats-app-bulk-messages-sub000/internal/store"
)

// maxBulkRows caps how many rows a single rebuild pulls per table. Contacts
// beyond the cap simply fall off the bottom of the list until their activity
// recurs.
const maxBulkRows = 10000

type bulkFetcher interface {
	FetchAll(ctx context.Context, table string, columns []string, orderColumn string, maxRows int) ([]store.Row, error)
}

// ConversationService is the read path for the conversation index: bulk
// reader feeding the merge engine behind the TTL cache.
type ConversationService struct {
	reader bulkFetcher
	cache  *ConversationCache
}

func NewConversationService(reader bulkFetcher, cache *ConversationCache) *ConversationService {
	return &ConversationService{reader: reader, cache: cache}
}

// List returns one page of the cached conversation list, descending by
// priority recency. A nil limit means everything from offset onward. The
// returned page may be accompanied by a non-nil error when it was served
// stale after a failed refresh; callers decide how to surface that.
func (s *ConversationService) List(ctx context.Context, limit *int, offset int) (*models.ConversationPage, error) {
	if offset < 0 {
		offset = 0
	}

	data, fromCache, err := s.cache.Get(ctx, s.rebuild)
	loaded := err == nil || fromCache

	total := len(data)
	start := offset
	if start > total {
		start = total
	}
	end := total
	if limit != nil {
		n := *limit
		if n < 0 {
			n = 0
		}
		if start+n < end {
			end = start + n
		}
	}

	page := data[start:end]
	hasMore := limit != nil && start+len(page) < total

	return &models.ConversationPage{
		Conversations: page,
		Total:         total,
		HasMore:       hasMore,
		NextOffset:    start + len(page),
		Loaded:        loaded,
	}, err
}

// rebuild pulls both logs through the resilient reader and folds them. The
// inbound log is fetched and merged before the outbound log; the merge
// precedence depends on that order.
func (s *ConversationService) rebuild(ctx context.Context) ([]models.ConversationSummary, error) {
	inboundRows, err := s.reader.FetchAll(
		ctx, models.IncomingTable, repository.InboundColumns(), "timestamp", maxBulkRows)
	if err != nil {
		return nil, err
	}
	outboundRows, err := s.reader.FetchAll(
		ctx, models.OutgoingTable, repository.OutboundColumns(), "created_at", maxBulkRows)
	if err != nil {
		return nil, err
	}

	inbound := make([]models.InboundMessage, 0, len(inboundRows))
	for _, row := range inboundRows {
		message, err := repository.DecodeInbound(row)
		if err != nil {
			log.Printf("conversation rebuild: skipping inbound row: %v", err)
			continue
		}
		inbound = append(inbound, message)
	}

	outbound := make([]models.OutboundMessage, 0, len(outboundRows))
	for _, row := range outboundRows {
		message, err := repository.DecodeOutbound(row)
		if err != nil {
			log.Printf("conversation rebuild: skipping outbound row: %v", err)
			continue
		}
		outbound = append(outbound, message)
	}

	return SortConversations(MergeConversations(inbound, outbound)), nil
}
