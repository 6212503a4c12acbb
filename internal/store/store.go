package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrRateLimited marks a transient store failure where the caller should
// back off and retry rather than treat the operation as permanently failed.
var ErrRateLimited = errors.New("store rate limited")

// RequestError carries the HTTP status reported by a remote store backend.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("store request failed: status %d: %s", e.StatusCode, e.Message)
}

func (e *RequestError) Unwrap() error {
	if e.StatusCode == 429 {
		return ErrRateLimited
	}
	return nil
}

// Row is one record as returned by a store backend, keyed by column name.
// The repository layer is responsible for validating and decoding rows into
// typed models before they reach any business logic.
type Row map[string]any

type filterOp string

const (
	opEq  filterOp = "eq"
	opNeq filterOp = "neq"
	opIn  filterOp = "in"
	opGte filterOp = "gte"
	opLte filterOp = "lte"
	opIs  filterOp = "is"
)

type filter struct {
	column string
	op     filterOp
	value  any
}

// Query is a composable read/update scope against one table. Build it with
// NewQuery and the fluent methods, then pass it to a Client.
type Query struct {
	table     string
	columns   []string
	filters   []filter
	orderBy   string
	orderAsc  bool
	hasOrder  bool
	limit     int
	hasLimit  bool
	rangeFrom int
	rangeTo   int
	hasRange  bool
	withCount bool
}

func NewQuery(table string) *Query {
	return &Query{table: table}
}

func (q *Query) Select(columns ...string) *Query {
	q.columns = columns
	return q
}

func (q *Query) Eq(column string, value any) *Query {
	q.filters = append(q.filters, filter{column, opEq, value})
	return q
}

func (q *Query) Neq(column string, value any) *Query {
	q.filters = append(q.filters, filter{column, opNeq, value})
	return q
}

func (q *Query) In(column string, values []string) *Query {
	q.filters = append(q.filters, filter{column, opIn, values})
	return q
}

func (q *Query) Gte(column string, value any) *Query {
	q.filters = append(q.filters, filter{column, opGte, value})
	return q
}

func (q *Query) Lte(column string, value any) *Query {
	q.filters = append(q.filters, filter{column, opLte, value})
	return q
}

// Is matches SQL IS semantics; pass nil for a null check.
func (q *Query) Is(column string, value any) *Query {
	q.filters = append(q.filters, filter{column, opIs, value})
	return q
}

func (q *Query) Order(column string, ascending bool) *Query {
	q.orderBy = column
	q.orderAsc = ascending
	q.hasOrder = true
	return q
}

func (q *Query) Limit(n int) *Query {
	q.limit = n
	q.hasLimit = true
	return q
}

// Range selects rows [from, to] inclusive, PostgREST style.
func (q *Query) Range(from, to int) *Query {
	q.rangeFrom = from
	q.rangeTo = to
	q.hasRange = true
	return q
}

// WithCount asks the backend for the total row count of the filtered scope,
// ignoring limit and range.
func (q *Query) WithCount() *Query {
	q.withCount = true
	return q
}

// Client is the record-store capability the conversation engine consumes.
// Implementations must report transient throttling through ErrRateLimited
// (directly or wrapped) so callers can distinguish it from permanent
// failures.
type Client interface {
	// Execute runs a read. The returned count is only meaningful when the
	// query was built WithCount.
	Execute(ctx context.Context, q *Query) ([]Row, int64, error)
	// Insert appends rows to a table.
	Insert(ctx context.Context, table string, rows []Row) error
	// Update applies patch to every row matched by the query's filters and
	// returns the number of affected rows when the backend reports it.
	Update(ctx context.Context, q *Query, patch Row) (int64, error)
}
