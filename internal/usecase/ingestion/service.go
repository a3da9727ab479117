// Package ingestion runs the feed pipeline: probe, fetch, parse, map and
// persist, one source at a time.
package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/propsync/internal/domain"
	"github.com/kailas-cloud/propsync/internal/domain/extra"
	domingestion "github.com/kailas-cloud/propsync/internal/domain/ingestion"
	"github.com/kailas-cloud/propsync/internal/domain/record"
	"github.com/kailas-cloud/propsync/internal/domain/source"
	"github.com/kailas-cloud/propsync/internal/logger"
	"github.com/kailas-cloud/propsync/internal/usecase/ingestion/mapper"
)

// DefaultInvalidLogLimit is how many rejected elements per source are logged.
const DefaultInvalidLogLimit = 5

// previewLen caps the logged preview of a rejected element.
const previewLen = 80

const runKey = "ingest"

// Service orchestrates ingestion runs. Overlapping Run calls share the
// in-flight run and its report.
type Service struct {
	sources   *source.Registry
	mappers   MapperResolver
	detector  *ChangeDetector
	fetcher   Fetcher
	persister Persister
	metrics   Metrics

	invalidLogLimit int
	now             func() time.Time

	group singleflight.Group

	mu   sync.RWMutex
	last *domingestion.Report
}

// New creates an ingestion service.
func New(
	sources *source.Registry, mappers MapperResolver, detector *ChangeDetector,
	fetcher Fetcher, persister Persister,
) *Service {
	return &Service{
		sources:         sources,
		mappers:         mappers,
		detector:        detector,
		fetcher:         fetcher,
		persister:       persister,
		invalidLogLimit: DefaultInvalidLogLimit,
		now:             time.Now,
	}
}

// WithMetrics attaches an outcome observer.
func (s *Service) WithMetrics(m Metrics) *Service {
	s.metrics = m
	return s
}

// WithInvalidLogLimit configures how many rejected elements are logged.
func (s *Service) WithInvalidLogLimit(n int) *Service {
	if n >= 0 {
		s.invalidLogLimit = n
	}
	return s
}

// Run ingests every enabled source in registry order and returns the report.
// The run ignores cancellation of ctx once started.
func (s *Service) Run(ctx context.Context) domingestion.Report {
	ctx = context.WithoutCancel(ctx)
	v, _, _ := s.group.Do(runKey, func() (any, error) {
		return s.run(ctx), nil
	})
	return v.(domingestion.Report) //nolint:forcetypeassert // only run() stores values
}

// LastRun returns the most recent completed report.
func (s *Service) LastRun() (domingestion.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return domingestion.Report{}, false
	}
	return *s.last, true
}

func (s *Service) run(ctx context.Context) domingestion.Report {
	runID := uuid.NewString()
	ctx, log := logger.With(ctx, zap.String("run_id", runID))

	report := domingestion.Report{RunID: runID, StartedAt: s.now()}
	enabled := s.sources.Enabled()
	log.Info("starting ingestion for all sources", zap.Int("sources", len(enabled)))

	report.Sources = make([]domingestion.Outcome, 0, len(enabled))
	for _, d := range enabled {
		o := s.ingestSource(ctx, d)
		if s.metrics != nil {
			s.metrics.ObserveOutcome(o)
		}
		report.Sources = append(report.Sources, o)
	}
	report.CompletedAt = s.now()

	log.Info("ingestion complete",
		zap.Int("records_processed", report.TotalRecords()),
		zap.Int("sources_processed", report.SourcesProcessed()),
		zap.Int("sources_failed", len(report.Failures())),
		zap.Duration("duration", report.TotalDuration()),
	)

	s.mu.Lock()
	s.last = &report
	s.mu.Unlock()
	return report
}

func (s *Service) ingestSource(ctx context.Context, d source.Descriptor) domingestion.Outcome {
	start := s.now()
	ctx, log := logger.With(ctx, zap.String("source", d.ID))
	log.Info("starting source ingestion", zap.String("name", d.Name))

	m, err := s.mappers.Get(d.ID)
	if err != nil {
		log.Error("ingestion failed", zap.Error(err))
		return domingestion.Failed(d, err, s.now().Sub(start))
	}

	fp, skip := s.detector.Check(ctx, d.URL)
	if skip {
		log.Info("no changes detected, skipping", zap.String("etag", fp.Validator))
		return domingestion.Unchanged(d, s.now().Sub(start))
	}

	processed, skipped, err := s.fetchAndStore(ctx, d, m)
	if err != nil {
		log.Error("ingestion failed", zap.Error(err))
		return domingestion.Failed(d, err, s.now().Sub(start))
	}

	s.detector.Record(d.URL, fp)
	log.Info("source ingestion complete",
		zap.Int("records_processed", processed),
		zap.Int("records_skipped", skipped),
	)
	return domingestion.Succeeded(d, processed, skipped, s.now().Sub(start))
}

func (s *Service) fetchAndStore(ctx context.Context, d source.Descriptor, m mapper.Mapper) (processed, skipped int, err error) {
	log := logger.FromContext(ctx)

	log.Info("fetching stream", zap.String("url", d.URL))
	body, err := s.fetcher.Open(ctx, d.URL)
	if err != nil {
		return 0, 0, err //nolint:wrapcheck // already a *domain.FetchError
	}
	defer func() { _ = body.Close() }()

	var valid []record.Record
	for raw, perr := range Elements(body) {
		if perr != nil {
			if !errors.Is(perr, domain.ErrParse) {
				perr = &domain.FetchError{URL: d.URL, Err: perr}
			}
			log.Error("stream parsing error", zap.Error(perr))
			return 0, skipped, perr
		}
		rec, ok := m.Map(raw)
		if ok && rec.Valid() {
			valid = append(valid, rec)
			continue
		}
		skipped++
		if skipped <= s.invalidLogLimit {
			log.Warn("invalid record skipped", zap.String("preview", preview(raw)))
		}
	}
	log.Info("parsed valid records", zap.Int("count", len(valid)))

	processed, err = s.persister.Persist(ctx, valid)
	if err != nil {
		return processed, skipped, err //nolint:wrapcheck // already a *domain.PersistenceError
	}
	return processed, skipped, nil
}

// preview renders a rejected element for logs, capped at previewLen runes.
func preview(v extra.Value) string {
	b, err := json.Marshal(v)
	if err != nil {
		return v.Kind().String()
	}
	r := []rune(string(b))
	if len(r) > previewLen {
		r = r[:previewLen]
	}
	return string(r)
}
