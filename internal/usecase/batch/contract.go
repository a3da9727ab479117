package batch

import (
	"context"

	"github.com/kailas-cloud/propsync/internal/domain/record"
)

// BulkUpserter persists a chunk of records keyed by (source, externalId) and
// returns the number of records the store acknowledged.
type BulkUpserter interface {
	UpsertMany(ctx context.Context, records []record.Record) (int, error)
}
