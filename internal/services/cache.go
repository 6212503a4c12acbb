package services

import (
	"context"
	"sync"
	"time"

	"github.com/Omar1091991/whats-app-bulk-messages-sub000/internal/models"
)

// DefaultCacheTTL balances conversation-list freshness against hammering the
// bulk reader on every dashboard poll.
const DefaultCacheTTL = 45 * time.Second

// ConversationCache holds the most recently merged conversation list. It is
// empty at process start, populated read-through on the first access, and
// replaced wholesale on rebuild. Once populated it never regresses to empty:
// a failed rebuild serves the previous entry instead.
type ConversationCache struct {
	mu         sync.Mutex
	ttl        time.Duration
	now        func() time.Time
	data       []models.ConversationSummary
	builtAt    time.Time
	populated  bool
	rebuilding bool
}

func NewConversationCache(ttl time.Duration) *ConversationCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &ConversationCache{ttl: ttl, now: time.Now}
}

// Get returns the cached list, rebuilding it via rebuild when the entry is
// missing or past its TTL. The second result reports whether the data came
// from the cache (fresh or stale) rather than from this call's rebuild.
//
// Failure handling: if rebuild errors and a previous entry exists, that
// entry is returned together with the error so callers can flag the
// response as degraded; with no previous entry the list is empty and only
// the error remains. While one caller rebuilds, concurrent callers are
// served the previous entry instead of racing a second rebuild.
func (c *ConversationCache) Get(
	ctx context.Context,
	rebuild func(ctx context.Context) ([]models.ConversationSummary, error),
) ([]models.ConversationSummary, bool, error) {
	c.mu.Lock()
	if c.populated && c.now().Sub(c.builtAt) < c.ttl {
		data := copySummaries(c.data)
		c.mu.Unlock()
		return data, true, nil
	}
	if c.rebuilding {
		if c.populated {
			data := copySummaries(c.data)
			c.mu.Unlock()
			return data, true, nil
		}
		c.mu.Unlock()
		return nil, false, ErrNotLoaded
	}
	c.rebuilding = true
	c.mu.Unlock()

	fresh, err := rebuild(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.rebuilding = false

	if err != nil {
		if c.populated {
			return copySummaries(c.data), true, err
		}
		return []models.ConversationSummary{}, false, err
	}

	c.data = fresh
	c.builtAt = c.now()
	c.populated = true
	return copySummaries(fresh), false, nil
}

func copySummaries(data []models.ConversationSummary) []models.ConversationSummary {
	out := make([]models.ConversationSummary, len(data))
	copy(out, data)
	for i := range out {
		if out[i].LastIncomingMessageTime != nil {
			ts := *out[i].LastIncomingMessageTime
			out[i].LastIncomingMessageTime = &ts
		}
	}
	return out
}
