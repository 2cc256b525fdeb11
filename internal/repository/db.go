package repository

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrConflict     = errors.New("record conflicts with an existing one")
	ErrTimeout      = errors.New("storage call timed out")
	ErrUnknownField = errors.New("unknown filter field")
)

// DB is the subset of pgxpool.Pool the repositories use
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Filter maps a field name to the value it must equal; all entries are ANDed
type Filter map[string]any

// buildWhere turns a filter into a WHERE clause over whitelisted columns.
// Keys are emitted in sorted order so the generated SQL is stable.
func buildWhere(filter Filter, columns map[string]string, firstArg int) (string, []any, error) {
	if len(filter) == 0 {
		return "", nil, nil
	}

	var conditions []string
	var args []any
	argCount := firstArg
	for _, key := range slices.Sorted(maps.Keys(filter)) {
		column, ok := columns[key]
		if !ok {
			return "", nil, fmt.Errorf("%w: %s", ErrUnknownField, key)
		}
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, argCount))
		args = append(args, filter[key])
		argCount++
	}
	return " WHERE " + strings.Join(conditions, " AND "), args, nil
}

// setClause accumulates "column = $n" pairs for partial updates
type setClause struct {
	parts []string
	args  []any
}

func (s *setClause) add(column string, value any) {
	s.args = append(s.args, value)
	s.parts = append(s.parts, fmt.Sprintf("%s = $%d", column, len(s.args)))
}

func (s *setClause) empty() bool {
	return len(s.parts) == 0
}

func (s *setClause) String() string {
	return strings.Join(s.parts, ", ")
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// wrapErr maps driver failures onto the repository sentinels
func wrapErr(op string, err error) error {
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation:
		return fmt.Errorf("%s: %w: %w", op, ErrConflict, err)
	case errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation:
		return fmt.Errorf("%s: %w: %w", op, ErrNotFound, err)
	case errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err):
		return fmt.Errorf("%s: %w: %w", op, ErrTimeout, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ConstraintName returns the violated constraint carried by err, if any
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}
