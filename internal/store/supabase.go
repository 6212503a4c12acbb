package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// SupabaseClient talks to a Supabase project's PostgREST endpoint. It is the
// remote backend of the record store; HTTP 429 responses surface as
// ErrRateLimited so the bulk reader can back off.
type SupabaseClient struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

func NewSupabaseClient(baseURL, serviceKey string) *SupabaseClient {
	return &SupabaseClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		httpClient: http.DefaultClient,
	}
}

func (c *SupabaseClient) Execute(ctx context.Context, q *Query) ([]Row, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.queryURL(q), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build query request: %w", err)
	}
	c.setHeaders(req)
	if q.withCount {
		req.Header.Set("Prefer", "count=exact")
	}
	if q.hasRange {
		req.Header.Set("Range-Unit", "items")
		req.Header.Set("Range", fmt.Sprintf("%d-%d", q.rangeFrom, q.rangeTo))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("query %s: %w", q.table, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, 0, fmt.Errorf("query %s: %w", q.table, err)
	}

	var rows []Row
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, 0, fmt.Errorf("decode %s rows: %w", q.table, err)
	}

	var count int64
	if q.withCount {
		count, err = parseContentRangeTotal(resp.Header.Get("Content-Range"))
		if err != nil {
			return nil, 0, fmt.Errorf("query %s: %w", q.table, err)
		}
	}

	return rows, count, nil
}

func (c *SupabaseClient) Insert(ctx context.Context, table string, rows []Row) error {
	body, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("marshal %s rows: %w", table, err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		fmt.Sprintf("%s/rest/v1/%s", c.baseURL, table),
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("build insert request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

func (c *SupabaseClient) Update(ctx context.Context, q *Query, patch Row) (int64, error) {
	body, err := json.Marshal(patch)
	if err != nil {
		return 0, fmt.Errorf("marshal %s patch: %w", q.table, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.queryURL(q), bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build update request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", q.table, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return 0, fmt.Errorf("update %s: %w", q.table, err)
	}

	var updated []Row
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		return 0, fmt.Errorf("decode %s update result: %w", q.table, err)
	}
	return int64(len(updated)), nil
}

func (c *SupabaseClient) queryURL(q *Query) string {
	params := url.Values{}
	if len(q.columns) > 0 {
		params.Set("select", strings.Join(q.columns, ","))
	}
	for _, f := range q.filters {
		params.Add(f.column, encodeFilter(f))
	}
	if q.hasOrder {
		direction := "desc"
		if q.orderAsc {
			direction = "asc"
		}
		params.Set("order", q.orderBy+"."+direction)
	}
	if q.hasLimit {
		params.Set("limit", strconv.Itoa(q.limit))
	}
	return fmt.Sprintf("%s/rest/v1/%s?%s", c.baseURL, q.table, params.Encode())
}

func (c *SupabaseClient) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
}

func encodeFilter(f filter) string {
	switch f.op {
	case opIn:
		values, _ := f.value.([]string)
		quoted := make([]string, 0, len(values))
		for _, v := range values {
			quoted = append(quoted, `"`+v+`"`)
		}
		return fmt.Sprintf("in.(%s)", strings.Join(quoted, ","))
	case opIs:
		if f.value == nil {
			return "is.null"
		}
		return fmt.Sprintf("is.%v", f.value)
	default:
		return fmt.Sprintf("%s.%v", f.op, f.value)
	}
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return &RequestError{
		StatusCode: resp.StatusCode,
		Message:    strings.TrimSpace(string(body)),
	}
}

// parseContentRangeTotal extracts the total from a PostgREST Content-Range
// header such as "0-24/3573" or "*/0".
func parseContentRangeTotal(header string) (int64, error) {
	_, totalPart, found := strings.Cut(header, "/")
	if !found {
		return 0, fmt.Errorf("malformed content-range %q", header)
	}
	if totalPart == "*" {
		return 0, nil
	}
	total, err := strconv.ParseInt(totalPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed content-range %q", header)
	}
	return total, nil
}
