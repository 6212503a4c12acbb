package services

import (
	"context"
	"sort"

	"github.com/Omar1091991/whats-app-bulk-messages-sub000/internal/models"
	"github.com/Omar1091991/whats-app-bulk-messages-sub000/pkg/utils"
)

const defaultThreadLimit = 50

type threadMessageRepo interface {
	ListInboundByPhones(ctx context.Context, phoneVariants []string, limit, offset int) ([]models.InboundMessage, int, error)
	ListOutboundByPhones(ctx context.Context, phoneVariants []string, limit, offset int) ([]models.OutboundMessage, int, error)
	MarkInboundRead(ctx context.Context, phoneVariants []string) (int64, error)
}

// ThreadService reconstructs one contact's full history on demand. It reads
// the store directly rather than through the cache: per-thread reads are
// cheap and must reflect the latest state immediately, e.g. right after
// marking messages read.
type ThreadService struct {
	repo threadMessageRepo
}

func NewThreadService(repo threadMessageRepo) *ThreadService {
	return &ThreadService{repo: repo}
}

// GetThread merges both directions of a contact's history ascending by time.
// Each direction is counted and paginated independently before the merge, so
// a page may carry up to 2*limit messages when both directions contribute.
func (s *ThreadService) GetThread(ctx context.Context, phone string, limit, offset int) (*models.ThreadPage, error) {
	if utils.NormalizePhone(phone) == "" {
		return nil, ErrInvalidPhone
	}
	variants := utils.PhoneVariants(phone)
	if limit <= 0 {
		limit = defaultThreadLimit
	}
	if offset < 0 {
		offset = 0
	}

	// The two directions are independent queries; run them concurrently.
	type inboundResult struct {
		messages []models.InboundMessage
		total    int
		err      error
	}
	inboundCh := make(chan inboundResult, 1)
	go func() {
		messages, total, err := s.repo.ListInboundByPhones(ctx, variants, limit, offset)
		inboundCh <- inboundResult{messages, total, err}
	}()

	outbound, outboundTotal, outboundErr := s.repo.ListOutboundByPhones(ctx, variants, limit, offset)
	in := <-inboundCh

	if in.err != nil {
		return nil, in.err
	}
	if outboundErr != nil {
		return nil, outboundErr
	}

	merged := make([]models.ThreadMessage, 0, len(in.messages)+len(outbound))
	for i := range in.messages {
		msg := &in.messages[i]
		merged = append(merged, models.ThreadMessage{
			Type:        models.ThreadMessageIncoming,
			ID:          msg.ID,
			Phone:       msg.FromNumber,
			Name:        msg.FromName,
			Body:        msg.BodyText(),
			MessageType: msg.MessageType,
			MediaURL:    msg.MediaURL,
			Status:      msg.Status,
			Replied:     msg.Replied,
			ReplyText:   msg.ReplyText,
			Timestamp:   msg.Timestamp,
		})
	}
	for i := range outbound {
		msg := &outbound[i]
		merged = append(merged, models.ThreadMessage{
			Type:         models.ThreadMessageOutgoing,
			ID:           msg.ID,
			Phone:        msg.ToNumber,
			Body:         msg.Body,
			MediaURL:     msg.MediaURL,
			Status:       msg.Status,
			TemplateName: msg.TemplateName,
			Timestamp:    msg.CreatedAt.Unix(),
		})
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})

	total := in.total + outboundTotal
	return &models.ThreadPage{
		Messages: merged,
		Total:    total,
		HasMore:  offset+limit < total,
	}, nil
}

// MarkRead transitions every unread inbound message for the phone's variants
// to read. Idempotent; outbound rows are never touched.
func (s *ThreadService) MarkRead(ctx context.Context, phone string) error {
	if utils.NormalizePhone(phone) == "" {
		return ErrInvalidPhone
	}
	_, err := s.repo.MarkInboundRead(ctx, utils.PhoneVariants(phone))
	return err
}
