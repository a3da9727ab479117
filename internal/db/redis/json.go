package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/propsync/internal/db"
)

// JSONSetMulti stores multiple documents in a single DoMulti round-trip.
// Writes before the first failure stay applied; the count covers them.
func (s *Store) JSONSetMulti(ctx context.Context, items []db.JSONSetItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	cmds := make([]rueidis.Completed, len(items))
	for i, item := range items {
		cmds[i] = s.b().JsonSet().Key(item.Key).Path(item.Path).Value(string(item.Data)).Build()
	}

	acked := 0
	var firstErr error
	for i, res := range s.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			if firstErr == nil {
				firstErr = &db.Error{Op: db.OpJSONSet, Err: fmt.Errorf("key %s: %w", items[i].Key, err)}
			}
			continue
		}
		acked++
	}
	return acked, firstErr
}
