// Package postgres implements db.SQLStore on a pgx connection pool.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kailas-cloud/propsync/internal/db"
)

// Compile-time check: Store implements db.SQLStore.
var _ db.SQLStore = (*Store)(nil)

// defaultMaxConns applies when the config leaves MaxConns unset.
const defaultMaxConns = 4

// Config holds connection parameters for a Postgres store.
type Config struct {
	DSN      string
	MaxConns int
}

// Pool is the subset of *pgxpool.Pool the store uses.
type Pool interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// Store implements db.SQLStore via pgxpool.
type Store struct {
	pool Pool
}

// NewStore creates a pool. Connections are opened lazily.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("dsn is required")
	}
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if cfg.MaxConns <= 0 {
		cfg.MaxConns = defaultMaxConns
	}
	pcfg.MaxConns = int32(cfg.MaxConns) //nolint:gosec // validated by config

	p, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	return &Store{pool: p}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close shuts down the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// Exec runs one statement and returns rows affected.
func (s *Store) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, &db.Error{Op: db.OpExec, Err: err}
	}
	return tag.RowsAffected(), nil
}

// ExecBatch queues every statement into one pgx.Batch. The batch runs in an
// implicit transaction: a failing statement rolls back the whole batch, so
// the count is zero on error.
func (s *Store) ExecBatch(ctx context.Context, stmts []db.Statement) (int64, error) {
	if len(stmts) == 0 {
		return 0, nil
	}

	b := &pgx.Batch{}
	for _, st := range stmts {
		b.Queue(st.SQL, st.Args...)
	}

	br := s.pool.SendBatch(ctx, b)
	var total int64
	for i := range stmts {
		tag, err := br.Exec()
		if err != nil {
			_ = br.Close()
			return 0, &db.Error{Op: db.OpBatch, Err: fmt.Errorf("statement %d: %w", i, err)}
		}
		total += tag.RowsAffected()
	}
	if err := br.Close(); err != nil {
		return 0, &db.Error{Op: db.OpBatch, Err: err}
	}
	return total, nil
}

// Query calls scan once per result row.
func (s *Store) Query(ctx context.Context, sql string, args []any, scan func(db.Row) error) error {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return &db.Error{Op: db.OpQuery, Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("scan row: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return &db.Error{Op: db.OpQuery, Err: err}
	}
	return nil
}
