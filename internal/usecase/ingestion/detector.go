package ingestion

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/propsync/internal/domain/source"
	"github.com/kailas-cloud/propsync/internal/logger"
)

// ChangeDetector gates full fetches on the feed's strong validator.
// Only the validator is compared; Last-Modified is carried for diagnostics.
type ChangeDetector struct {
	prober Prober
	cache  FingerprintCache
}

// NewChangeDetector creates a ChangeDetector.
func NewChangeDetector(prober Prober, cache FingerprintCache) *ChangeDetector {
	return &ChangeDetector{prober: prober, cache: cache}
}

// Check probes url and reports whether the fetch can be skipped. The
// returned fingerprint is what Record should store after a successful
// ingest. A failed probe never skips.
func (d *ChangeDetector) Check(ctx context.Context, url string) (source.Fingerprint, bool) {
	current, err := d.prober.Probe(ctx, url)
	if err != nil {
		logger.FromContext(ctx).Warn("failed to fetch feed metadata", zap.Error(err))
		return source.Fingerprint{}, false
	}
	if current.IsZero() {
		return current, false
	}
	prev, ok := d.cache.Get(url)
	return current, ok && prev.Validator == current.Validator
}

// Record stores fp for url, replacing any previous fingerprint.
func (d *ChangeDetector) Record(url string, fp source.Fingerprint) {
	d.cache.Record(url, fp)
}
