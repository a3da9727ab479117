package pgproperty

import (
	"context"
	"errors"

	"github.com/kailas-cloud/propsync/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	execFn      func(ctx context.Context, sql string, args ...any) (int64, error)
	execBatchFn func(ctx context.Context, stmts []db.Statement) (int64, error)
	queryFn     func(ctx context.Context, sql string, args []any, scan func(db.Row) error) error
}

func (m *mockStore) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	if m.execFn != nil {
		return m.execFn(ctx, sql, args...)
	}
	return 0, nil
}

func (m *mockStore) ExecBatch(ctx context.Context, stmts []db.Statement) (int64, error) {
	if m.execBatchFn != nil {
		return m.execBatchFn(ctx, stmts)
	}
	return int64(len(stmts)), nil
}

func (m *mockStore) Query(ctx context.Context, sql string, args []any, scan func(db.Row) error) error {
	if m.queryFn != nil {
		return m.queryFn(ctx, sql, args, scan)
	}
	return nil
}

// fakeRow scans a fixed tuple of column values.
type fakeRow []any

func (r fakeRow) Scan(dest ...any) error {
	if len(dest) != len(r) {
		return errors.New("column count mismatch")
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r[i].(string)
		case **string:
			if r[i] != nil {
				s := r[i].(string)
				*p = &s
			}
		case **bool:
			if r[i] != nil {
				b := r[i].(bool)
				*p = &b
			}
		case **float64:
			if r[i] != nil {
				f := r[i].(float64)
				*p = &f
			}
		default:
			return errors.New("unsupported destination")
		}
	}
	return nil
}
