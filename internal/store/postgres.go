package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the slice of pgx used by the Postgres store backend; both
// *pgxpool.Pool and pgx.Tx satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresClient runs store queries directly against Postgres. Connection
// exhaustion (SQLSTATE 53300) is reported as a rate-limited error so the
// bulk reader backs off instead of giving up.
type PostgresClient struct {
	db DBTX
}

func NewPostgresClient(db DBTX) *PostgresClient {
	return &PostgresClient{db: db}
}

func (c *PostgresClient) Execute(ctx context.Context, q *Query) ([]Row, int64, error) {
	where, args := buildWhere(q.filters)

	var count int64
	if q.withCount {
		countSQL := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", q.table, where)
		if err := c.db.QueryRow(ctx, countSQL, args...).Scan(&count); err != nil {
			return nil, 0, mapPgError(fmt.Errorf("count %s: %w", q.table, err))
		}
	}

	columns := "*"
	if len(q.columns) > 0 {
		columns = strings.Join(q.columns, ", ")
	}
	sql := fmt.Sprintf("SELECT %s FROM %s%s", columns, q.table, where)
	if q.hasOrder {
		direction := "DESC"
		if q.orderAsc {
			direction = "ASC"
		}
		sql += fmt.Sprintf(" ORDER BY %s %s", q.orderBy, direction)
	}
	if q.hasRange {
		sql += fmt.Sprintf(" LIMIT %d OFFSET %d", q.rangeTo-q.rangeFrom+1, q.rangeFrom)
	} else if q.hasLimit {
		sql += fmt.Sprintf(" LIMIT %d", q.limit)
	}

	rows, err := c.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, mapPgError(fmt.Errorf("query %s: %w", q.table, err))
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	result := make([]Row, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, 0, fmt.Errorf("read %s row: %w", q.table, err)
		}
		row := make(Row, len(fields))
		for i, field := range fields {
			row[string(field.Name)] = values[i]
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapPgError(fmt.Errorf("query %s: %w", q.table, err))
	}

	return result, count, nil
}

func (c *PostgresClient) Insert(ctx context.Context, table string, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}

	columns := make([]string, 0, len(rows[0]))
	for column := range rows[0] {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	var args []any
	placeholders := make([]string, 0, len(rows))
	for _, row := range rows {
		slots := make([]string, 0, len(columns))
		for _, column := range columns {
			args = append(args, row[column])
			slots = append(slots, fmt.Sprintf("$%d", len(args)))
		}
		placeholders = append(placeholders, "("+strings.Join(slots, ", ")+")")
	}

	sql := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES %s",
		table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)
	if _, err := c.db.Exec(ctx, sql, args...); err != nil {
		return mapPgError(fmt.Errorf("insert into %s: %w", table, err))
	}
	return nil
}

func (c *PostgresClient) Update(ctx context.Context, q *Query, patch Row) (int64, error) {
	if len(patch) == 0 {
		return 0, nil
	}

	columns := make([]string, 0, len(patch))
	for column := range patch {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	var args []any
	assignments := make([]string, 0, len(columns))
	for _, column := range columns {
		args = append(args, patch[column])
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	where, whereArgs := buildWhereFrom(q.filters, len(args))
	args = append(args, whereArgs...)

	sql := fmt.Sprintf("UPDATE %s SET %s%s", q.table, strings.Join(assignments, ", "), where)
	tag, err := c.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, mapPgError(fmt.Errorf("update %s: %w", q.table, err))
	}
	return tag.RowsAffected(), nil
}

func buildWhere(filters []filter) (string, []any) {
	return buildWhereFrom(filters, 0)
}

func buildWhereFrom(filters []filter, argOffset int) (string, []any) {
	if len(filters) == 0 {
		return "", nil
	}

	var args []any
	clauses := make([]string, 0, len(filters))
	for _, f := range filters {
		switch f.op {
		case opEq:
			args = append(args, f.value)
			clauses = append(clauses, fmt.Sprintf("%s = $%d", f.column, argOffset+len(args)))
		case opNeq:
			args = append(args, f.value)
			clauses = append(clauses, fmt.Sprintf("%s <> $%d", f.column, argOffset+len(args)))
		case opGte:
			args = append(args, f.value)
			clauses = append(clauses, fmt.Sprintf("%s >= $%d", f.column, argOffset+len(args)))
		case opLte:
			args = append(args, f.value)
			clauses = append(clauses, fmt.Sprintf("%s <= $%d", f.column, argOffset+len(args)))
		case opIn:
			args = append(args, f.value)
			clauses = append(clauses, fmt.Sprintf("%s = ANY($%d)", f.column, argOffset+len(args)))
		case opIs:
			if f.value == nil {
				clauses = append(clauses, fmt.Sprintf("%s IS NULL", f.column))
			} else {
				args = append(args, f.value)
				clauses = append(clauses, fmt.Sprintf("%s IS NOT DISTINCT FROM $%d", f.column, argOffset+len(args)))
			}
		}
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "53300" {
		return fmt.Errorf("%w: %s", ErrRateLimited, pgErr.Message)
	}
	return err
}
