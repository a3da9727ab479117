package ingestion

import (
	"context"
	"io"

	domingestion "github.com/kailas-cloud/propsync/internal/domain/ingestion"
	"github.com/kailas-cloud/propsync/internal/domain/record"
	"github.com/kailas-cloud/propsync/internal/domain/source"
	"github.com/kailas-cloud/propsync/internal/usecase/ingestion/mapper"
)

// Fetcher opens a feed body as a live stream.
type Fetcher interface {
	Open(ctx context.Context, url string) (io.ReadCloser, error)
}

// Prober reads a feed's validators without downloading the body.
type Prober interface {
	Probe(ctx context.Context, url string) (source.Fingerprint, error)
}

// FingerprintCache remembers the last validator seen per feed URL.
type FingerprintCache interface {
	Get(url string) (source.Fingerprint, bool)
	Record(url string, fp source.Fingerprint)
}

// MapperResolver returns the mapping variant for a source id.
type MapperResolver interface {
	Get(sourceID string) (mapper.Mapper, error)
}

// Persister stores mapped records and returns the processed count.
type Persister interface {
	Persist(ctx context.Context, records []record.Record) (int, error)
}

// Metrics observes per-source outcomes.
type Metrics interface {
	ObserveOutcome(o domingestion.Outcome)
}
