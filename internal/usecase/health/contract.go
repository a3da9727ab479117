package health

import (
	"context"

	domingestion "github.com/kailas-cloud/propsync/internal/domain/ingestion"
)

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// RunReporter exposes the most recent ingestion report.
type RunReporter interface {
	LastRun() (domingestion.Report, bool)
}
