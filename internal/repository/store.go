package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries binds every repository to one DBTX.
type Queries struct {
	users        *UserRepository
	categories   *CategoryRepository
	events       *EventRepository
	requests     *RequestRepository
	comments     *CommentRepository
	compilations *CompilationRepository
}

// NewQueries constructs repositories sharing db.
func NewQueries(db DBTX) *Queries {
	return &Queries{
		users:        NewUserRepository(db),
		categories:   NewCategoryRepository(db),
		events:       NewEventRepository(db),
		requests:     NewRequestRepository(db),
		comments:     NewCommentRepository(db),
		compilations: NewCompilationRepository(db),
	}
}

func (q *Queries) Users() Users               { return q.users }
func (q *Queries) Categories() Categories     { return q.categories }
func (q *Queries) Events() Events             { return q.events }
func (q *Queries) Requests() Requests         { return q.requests }
func (q *Queries) Comments() Comments         { return q.comments }
func (q *Queries) Compilations() Compilations { return q.compilations }

// PostgresStore is the pgx-backed Store.
type PostgresStore struct {
	*Queries
	pool *pgxpool.Pool
}

// NewPostgresStore wraps pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{Queries: NewQueries(pool), pool: pool}
}

// InTx runs fn inside a READ COMMITTED transaction. Row locks taken with
// GetForUpdate are held until commit or rollback.
func (s *PostgresStore) InTx(ctx context.Context, fn func(Repositories) error) (err error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(NewQueries(tx)); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Pool exposes the underlying pool for health checks and metrics.
func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

// translate maps driver errors onto the package sentinels.
func translate(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%s: %w", op, ErrDuplicate)
		case "23503":
			return fmt.Errorf("%s: %w", op, ErrReferenced)
		case "23514":
			return fmt.Errorf("%s: %w", op, ErrConstraint)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// where accumulates numbered predicates for dynamic queries.
type where struct {
	clauses []string
	args    []any
}

// add appends cond, formatted with the placeholder number of arg as %[1]d.
func (w *where) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, fmt.Sprintf(cond, len(w.args)))
}

func (w *where) raw(cond string) {
	w.clauses = append(w.clauses, cond)
}

// arg registers a positional argument and returns its placeholder.
func (w *where) arg(v any) string {
	w.args = append(w.args, v)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// page appends LIMIT/OFFSET. limit <= 0 means no limit.
func (w *where) page(offset, limit int) string {
	var b strings.Builder
	if limit > 0 {
		b.WriteString(" LIMIT " + w.arg(limit))
	}
	if offset > 0 {
		b.WriteString(" OFFSET " + w.arg(offset))
	}
	return b.String()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
