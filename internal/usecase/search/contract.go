package search

import (
	"context"

	"github.com/kailas-cloud/propsync/internal/domain/record"
	"github.com/kailas-cloud/propsync/internal/domain/search/request"
)

// Repository runs a validated search against storage.
type Repository interface {
	Find(ctx context.Context, req request.Request) ([]record.Record, error)
}
