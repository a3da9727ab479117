// Package pgproperty stores property records in a Postgres table with a
// JSONB column for extra fields.
package pgproperty

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/propsync/internal/db"
	"github.com/kailas-cloud/propsync/internal/domain/extra"
	"github.com/kailas-cloud/propsync/internal/domain/record"
	"github.com/kailas-cloud/propsync/internal/domain/search/request"
)

const table = "property_records"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS ` + table + ` (
		source          text NOT NULL,
		external_id     text NOT NULL,
		city            text,
		is_available    boolean,
		price_per_night double precision,
		extra           jsonb,
		created_at      timestamptz NOT NULL DEFAULT now(),
		updated_at      timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS property_records_source_external_id_key
		ON ` + table + ` (source, external_id)`,
	`CREATE INDEX IF NOT EXISTS property_records_city_idx ON ` + table + ` (city)`,
	`CREATE INDEX IF NOT EXISTS property_records_price_idx ON ` + table + ` (price_per_night)`,
	`CREATE INDEX IF NOT EXISTS property_records_available_idx ON ` + table + ` (is_available)`,
}

const upsertSQL = `INSERT INTO ` + table + `
	(source, external_id, city, is_available, price_per_night, extra)
	VALUES ($1, $2, $3, $4, $5, $6::jsonb)
	ON CONFLICT (source, external_id) DO UPDATE SET
		city = EXCLUDED.city,
		is_available = EXCLUDED.is_available,
		price_per_night = EXCLUDED.price_per_night,
		extra = EXCLUDED.extra,
		updated_at = now()`

// store is the consumer interface for the SQL driver (ISP).
type store interface {
	Exec(ctx context.Context, sql string, args ...any) (int64, error)
	ExecBatch(ctx context.Context, stmts []db.Statement) (int64, error)
	Query(ctx context.Context, sql string, args []any, scan func(db.Row) error) error
}

// Repo persists and queries property records.
type Repo struct {
	store store
}

// New creates a Postgres property repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// EnsureSchema creates the table and indexes if missing.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	for _, ddl := range schema {
		if _, err := r.store.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// UpsertMany writes records in one batch keyed by (source, external_id).
// The count is rows affected: one per inserted or updated record.
func (r *Repo) UpsertMany(ctx context.Context, recs []record.Record) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	stmts := make([]db.Statement, 0, len(recs))
	for i := range recs {
		rec := &recs[i]
		extraJSON, err := encodeExtra(rec.Extra)
		if err != nil {
			return 0, fmt.Errorf("record %s: %w", rec.Key(), err)
		}
		stmts = append(stmts, db.Statement{
			SQL:  upsertSQL,
			Args: []any{rec.Source, rec.ExternalID, rec.City, rec.IsAvailable, rec.PricePerNight, extraJSON},
		})
	}

	n, err := r.store.ExecBatch(ctx, stmts)
	if err != nil {
		return int(n), fmt.Errorf("upsert batch: %w", err)
	}
	return int(n), nil
}

// Find returns records matching the request's filters, ordered by natural key.
func (r *Repo) Find(ctx context.Context, req request.Request) ([]record.Record, error) {
	q, err := buildSelect(req.Filters(), req.Limit(), req.Offset())
	if err != nil {
		return nil, err
	}

	out := make([]record.Record, 0, req.Limit())
	err = r.store.Query(ctx, q.SQL, q.Args, func(row db.Row) error {
		rec, err := scanRecord(row)
		if err != nil {
			return err
		}
		out = append(out, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("find records: %w", err)
	}
	return out, nil
}

func encodeExtra(o *extra.Object) (*string, error) {
	if o.Len() == 0 {
		return nil, nil
	}
	b, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("marshal extra: %w", err)
	}
	s := string(b)
	return &s, nil
}

func scanRecord(row db.Row) (record.Record, error) {
	var (
		rec       record.Record
		extraJSON *string
	)
	if err := row.Scan(&rec.Source, &rec.ExternalID, &rec.City, &rec.IsAvailable, &rec.PricePerNight, &extraJSON); err != nil {
		return record.Record{}, fmt.Errorf("scan record: %w", err)
	}
	if extraJSON != nil {
		obj := extra.NewObject()
		if err := obj.UnmarshalJSON([]byte(*extraJSON)); err != nil {
			return record.Record{}, fmt.Errorf("record %s extra: %w", rec.Key(), err)
		}
		rec.Extra = obj
	}
	return rec, nil
}
