package db

import (
	"context"
	"time"
)

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Lifecycle is shared by every driver.
type Lifecycle interface {
	Pinger
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// DocumentStore is the facade of the Redis driver: JSON documents behind an FT index.
type DocumentStore interface {
	Lifecycle
	JSONStore
	IndexManager
	Searcher
}

// JSONSetItem holds a single key+path+data triple for pipelined JSON.SET.
type JSONSetItem struct {
	Key  string
	Path string
	Data []byte
}

// JSONStore writes record documents.
type JSONStore interface {
	// JSONSetMulti pipelines the writes and returns how many were acknowledged.
	JSONSetMulti(ctx context.Context, items []JSONSetItem) (int, error)
}

// IndexManager creates the record index.
type IndexManager interface {
	// CreateIndex returns ErrIndexExists when the index is already present.
	CreateIndex(ctx context.Context, idx *RecordIndex) error
}

// Searcher pages through record documents matching indexed predicates.
type Searcher interface {
	SearchList(ctx context.Context, q *ListQuery) (*SearchResult, error)
}

// Statement is one parameterized SQL command.
type Statement struct {
	SQL  string
	Args []any
}

// Row is a scannable result row.
type Row interface {
	Scan(dest ...any) error
}

// SQLStore is the facade of the Postgres driver.
type SQLStore interface {
	Lifecycle
	// Exec runs one statement and returns rows affected.
	Exec(ctx context.Context, sql string, args ...any) (int64, error)
	// ExecBatch sends statements in one round trip and returns the summed
	// rows affected. The batch is atomic: on error nothing is applied and
	// the count is zero.
	ExecBatch(ctx context.Context, stmts []Statement) (int64, error)
	// Query calls scan once per result row.
	Query(ctx context.Context, sql string, args []any, scan func(Row) error) error
}
