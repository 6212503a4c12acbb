package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Omar1091991/whats-app-bulk-messages-sub000/internal/store"
)

const (
	defaultPageSize    = 1000
	defaultPageDelay   = 250 * time.Millisecond
	defaultBaseBackoff = time.Second
	defaultMaxRetries  = 3
)

// BulkReader exhaustively retrieves a table in fixed-size pages, tolerating
// rate limiting with bounded exponential backoff. It holds no mutable state
// and is safe to use concurrently for different tables.
type BulkReader struct {
	store       store.Client
	pageSize    int
	pageDelay   time.Duration
	baseBackoff time.Duration
	maxRetries  int
}

func NewBulkReader(client store.Client) *BulkReader {
	return &BulkReader{
		store:       client,
		pageSize:    defaultPageSize,
		pageDelay:   defaultPageDelay,
		baseBackoff: defaultBaseBackoff,
		maxRetries:  defaultMaxRetries,
	}
}

// FetchAll reads up to maxRows rows from table, descending by orderColumn.
// Rate-limited pages are retried with a doubling delay against a retry
// budget shared across the whole fetch; exhausting the budget, or hitting a
// permanent error after at least one page succeeded, returns the rows
// accumulated so far. A failure before anything was read is returned as an
// error so callers can tell an unreachable store from an empty table.
func (r *BulkReader) FetchAll(
	ctx context.Context,
	table string,
	columns []string,
	orderColumn string,
	maxRows int,
) ([]store.Row, error) {
	rows := make([]store.Row, 0, r.pageSize)
	offset := 0
	retries := 0

	for {
		if offset > 0 {
			if err := sleepCtx(ctx, r.pageDelay); err != nil {
				return rows, err
			}
		}

		pageEnd := offset + r.pageSize - 1
		if maxRows > 0 && pageEnd > maxRows-1 {
			pageEnd = maxRows - 1
		}
		if pageEnd < offset {
			break
		}
		requested := pageEnd - offset + 1

		query := store.NewQuery(table).
			Select(columns...).
			Order(orderColumn, false).
			Range(offset, pageEnd)

		page, _, err := r.store.Execute(ctx, query)
		if err != nil {
			if errors.Is(err, store.ErrRateLimited) {
				retries++
				if retries > r.maxRetries {
					if len(rows) == 0 {
						return nil, fmt.Errorf("bulk fetch %s: %w", table, err)
					}
					log.Printf("bulk fetch %s: retry budget exhausted at offset %d, keeping %d rows", table, offset, len(rows))
					return rows, nil
				}
				backoff := r.baseBackoff << (retries - 1)
				log.Printf("bulk fetch %s: rate limited at offset %d, retrying in %s", table, offset, backoff)
				if err := sleepCtx(ctx, backoff); err != nil {
					return rows, err
				}
				continue
			}
			if len(rows) == 0 {
				return nil, fmt.Errorf("bulk fetch %s: %w", table, err)
			}
			log.Printf("bulk fetch %s: aborting at offset %d, keeping %d rows: %v", table, offset, len(rows), err)
			return rows, nil
		}

		rows = append(rows, page...)
		offset += len(page)

		if len(page) < requested {
			break
		}
		if maxRows > 0 && len(rows) >= maxRows {
			rows = rows[:maxRows]
			break
		}
	}

	return rows, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
