// Package batch splits mapped records into chunks and persists them.
package batch

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/propsync/internal/domain"
	"github.com/kailas-cloud/propsync/internal/domain/record"
	"github.com/kailas-cloud/propsync/internal/logger"
)

// DefaultChunkSize is the number of records sent per upsert call.
const DefaultChunkSize = 1000

// Service persists records in fixed-size chunks.
type Service struct {
	store     BulkUpserter
	chunkSize int
}

// New creates a batch service.
func New(store BulkUpserter) *Service {
	return &Service{store: store, chunkSize: DefaultChunkSize}
}

// WithChunkSize configures the chunk size.
func (s *Service) WithChunkSize(size int) *Service {
	if size > 0 {
		s.chunkSize = size
	}
	return s
}

// ChunkSize returns the configured chunk size.
func (s *Service) ChunkSize() int { return s.chunkSize }

// Persist upserts records chunk by chunk and returns the sum of acknowledged
// counts. The first failing chunk aborts the call; earlier chunks stay applied.
func (s *Service) Persist(ctx context.Context, records []record.Record) (int, error) {
	log := logger.FromContext(ctx)
	total := 0
	for start := 0; start < len(records); start += s.chunkSize {
		end := min(start+s.chunkSize, len(records))
		n, err := s.store.UpsertMany(ctx, records[start:end])
		total += n
		if err != nil {
			return total, &domain.PersistenceError{
				Op:  fmt.Sprintf("upsert chunk %d-%d", start, end),
				Err: err,
			}
		}
		log.Debug("chunk persisted",
			zap.Int("from", start), zap.Int("to", end), zap.Int("acknowledged", n))
	}
	return total, nil
}
