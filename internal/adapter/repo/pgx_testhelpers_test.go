package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type simpleRow struct {
	scan func(dest ...any) error
}

func (r simpleRow) Scan(dest ...any) error {
	if r.scan == nil {
		return pgx.ErrNoRows
	}
	return r.scan(dest...)
}

type rowsBase struct{}

func (rowsBase) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }

func (rowsBase) Conn() *pgx.Conn { return nil }

func (rowsBase) FieldDescriptions() []pgconn.FieldDescription { return nil }

func (rowsBase) Values() ([]any, error) {
	return nil, fmt.Errorf("values not supported in test rows")
}

func (rowsBase) RawValues() [][]byte { return nil }

type sliceRows struct {
	rowsBase
	scans []func(dest ...any) error
	idx   int
	err   error
}

func (r *sliceRows) Next() bool {
	if r.idx >= len(r.scans) {
		return false
	}
	r.idx++
	return true
}

func (r *sliceRows) Scan(dest ...any) error { return r.scans[r.idx-1](dest...) }

func (r *sliceRows) Close() {}

func (r *sliceRows) Err() error { return r.err }

type execCall struct {
	query string
	args  []any
}

// stubExecutor records statements and serves scripted rows.
type stubExecutor struct {
	execs    []execCall
	execErr  error
	row      simpleRow
	rows     pgx.Rows
	queryErr error
}

func (s *stubExecutor) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.execs = append(s.execs, execCall{query: query, args: args})
	return pgconn.CommandTag{}, s.execErr
}

func (s *stubExecutor) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	s.execs = append(s.execs, execCall{query: query, args: args})
	return s.row
}

func (s *stubExecutor) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	s.execs = append(s.execs, execCall{query: query, args: args})
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.rows, nil
}
