package property

import (
	"context"
	"encoding/json"

	"github.com/kailas-cloud/propsync/internal/db"
	"github.com/kailas-cloud/propsync/internal/domain/record"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	jsonSetMultiFn func(ctx context.Context, items []db.JSONSetItem) (int, error)
	createIndexFn  func(ctx context.Context, idx *db.RecordIndex) error
	searchListFn   func(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)
}

func (m *mockStore) JSONSetMulti(ctx context.Context, items []db.JSONSetItem) (int, error) {
	if m.jsonSetMultiFn != nil {
		return m.jsonSetMultiFn(ctx, items)
	}
	return len(items), nil
}

func (m *mockStore) CreateIndex(ctx context.Context, idx *db.RecordIndex) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, idx)
	}
	return nil
}

func (m *mockStore) SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error) {
	if m.searchListFn != nil {
		return m.searchListFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

// pagedStore serves documents from memory, honoring offset and limit.
func pagedStore(recs []record.Record) *mockStore {
	return &mockStore{
		searchListFn: func(_ context.Context, q *db.ListQuery) (*db.SearchResult, error) {
			res := &db.SearchResult{Total: len(recs)}
			for i := q.Offset; i < len(recs) && i < q.Offset+q.Limit; i++ {
				data, err := json.Marshal(recs[i])
				if err != nil {
					return nil, err
				}
				res.Entries = append(res.Entries, db.SearchEntry{
					Key:    "test:record:" + recs[i].Key().String(),
					Fields: map[string]string{"$": string(data)},
				})
			}
			return res, nil
		},
	}
}
