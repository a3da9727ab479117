// Package property stores property records as Redis JSON documents behind
// an FT index.
package property

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kailas-cloud/propsync/internal/db"
	"github.com/kailas-cloud/propsync/internal/domain/record"
	"github.com/kailas-cloud/propsync/internal/domain/search/filter"
	"github.com/kailas-cloud/propsync/internal/domain/search/request"
)

// pageSize is how many hits one FT.SEARCH round trip fetches while
// filtering in process.
const pageSize = 500

// store is the consumer interface for the Redis driver (ISP).
type store interface {
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) (int, error)
	CreateIndex(ctx context.Context, idx *db.RecordIndex) error
	SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)
}

// Repo persists and queries property records.
type Repo struct {
	store  store
	prefix string
}

// New creates a Redis property repository. prefix namespaces keys and the index.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// index describes the record index. City is not indexed: substring
// matches are evaluated in process, since RediSearch tokenization drops
// stopwords and caps infix expansion, so an indexed query could miss hits.
func (r *Repo) index() (*db.RecordIndex, error) {
	idx, err := db.NewIndex(r.indexName(), r.keyPrefix()).
		ExactTag("$.source", "source").
		ExactTag("$.externalId", "externalId").
		Tag("$.isAvailable", filter.FieldIsAvailable).
		Numeric("$.pricePerNight", filter.FieldPricePerNight).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	return idx, nil
}

// EnsureSchema creates the FT index if missing.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	idx, err := r.index()
	if err != nil {
		return err
	}
	if err := r.store.CreateIndex(ctx, idx); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", idx.Name, err)
	}
	return nil
}

// pushdown keeps the equality and range conditions on indexed attributes.
// They narrow FT.SEARCH without losing hits; everything else is re-checked
// in process.
func (r *Repo) pushdown(expr filter.Expression) (filter.Expression, error) {
	idx, err := r.index()
	if err != nil {
		return filter.Expression{}, err
	}
	var kept []filter.Condition
	for _, c := range expr.Conditions() {
		if c.Op() == filter.OpContains {
			continue
		}
		if _, ok := idx.Attr(c.Field()); ok {
			kept = append(kept, c)
		}
	}
	return filter.NewExpression(kept...), nil
}

// UpsertMany writes every record at its natural-key document. JSON.SET
// replaces the whole document, so the key alone enforces uniqueness.
// The count is acknowledged writes.
func (r *Repo) UpsertMany(ctx context.Context, recs []record.Record) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	items := make([]db.JSONSetItem, 0, len(recs))
	for i := range recs {
		data, err := json.Marshal(recs[i])
		if err != nil {
			return 0, fmt.Errorf("marshal record: %w", err)
		}
		items = append(items, db.JSONSetItem{Key: r.recordKey(recs[i].Key()), Path: "$", Data: data})
	}

	n, err := r.store.JSONSetMulti(ctx, items)
	if err != nil {
		return n, fmt.Errorf("upsert batch: %w", err)
	}
	return n, nil
}

// Find pushes indexed predicates into FT.SEARCH, re-checks every hit
// against the full expression, then applies offset and limit to the
// filtered sequence.
func (r *Repo) Find(ctx context.Context, req request.Request) ([]record.Record, error) {
	pushed, err := r.pushdown(req.Filters())
	if err != nil {
		return nil, fmt.Errorf("build pushdown: %w", err)
	}

	var (
		out     = make([]record.Record, 0, req.Limit())
		skipped int
		offset  int
	)
	for len(out) < req.Limit() {
		res, err := r.store.SearchList(ctx, &db.ListQuery{
			IndexName:    r.indexName(),
			Filters:      pushed,
			Offset:       offset,
			Limit:        pageSize,
			ReturnFields: []string{"$"},
		})
		if err != nil {
			return nil, fmt.Errorf("search records: %w", err)
		}
		if res == nil || len(res.Entries) == 0 {
			break
		}

		for _, entry := range res.Entries {
			rec, err := decodeEntry(entry)
			if err != nil {
				return nil, err
			}
			if !req.Filters().Matches(&rec) {
				continue
			}
			if skipped < req.Offset() {
				skipped++
				continue
			}
			out = append(out, rec)
			if len(out) == req.Limit() {
				break
			}
		}

		offset += len(res.Entries)
		if offset >= res.Total {
			break
		}
	}
	return out, nil
}

func decodeEntry(entry db.SearchEntry) (record.Record, error) {
	raw := entry.Fields["$"]
	var rec record.Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return record.Record{}, fmt.Errorf("decode %s: %w", entry.Key, err)
	}
	return rec, nil
}

func (r *Repo) keyPrefix() string { return r.prefix + "record:" }

func (r *Repo) recordKey(k record.Key) string {
	return r.keyPrefix() + k.Source + ":" + k.ExternalID
}

func (r *Repo) indexName() string { return r.prefix + "records:idx" }
