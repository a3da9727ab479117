// Package search builds property filters and executes paginated searches.
package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/propsync/internal/domain"
	"github.com/kailas-cloud/propsync/internal/domain/extra"
	"github.com/kailas-cloud/propsync/internal/domain/record"
	"github.com/kailas-cloud/propsync/internal/domain/search/request"
	"github.com/kailas-cloud/propsync/internal/logger"
)

// Service executes property searches.
type Service struct {
	repo   Repository
	bounds request.Bounds
}

// New creates a search service.
func New(repo Repository) *Service {
	return &Service{repo: repo, bounds: request.DefaultBounds}
}

// WithBounds configures the default and maximum page size.
func (s *Service) WithBounds(b request.Bounds) *Service {
	if b.DefaultLimit > 0 {
		s.bounds.DefaultLimit = b.DefaultLimit
	}
	if b.MaxLimit > 0 {
		s.bounds.MaxLimit = b.MaxLimit
	}
	return s
}

// Bounds returns the configured pagination bounds.
func (s *Service) Bounds() request.Bounds { return s.bounds }

// Search returns records matching every predicate, skipping Offset matches
// and returning at most Limit (capped at the configured maximum).
func (s *Service) Search(ctx context.Context, p Params, extras *extra.Object) ([]record.Record, error) {
	expr, err := BuildFilters(p, extras)
	if err != nil {
		return nil, err
	}
	req, err := request.New(expr, p.Limit, p.Offset, s.bounds)
	if err != nil {
		return nil, domain.NewInvalidQuery("%v", err)
	}

	logger.FromContext(ctx).Debug("searching properties",
		zap.Int("conditions", len(expr.Conditions())),
		zap.Int("limit", req.Limit()),
		zap.Int("offset", req.Offset()),
	)

	out, err := s.repo.Find(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("find records: %w", err)
	}
	if out == nil {
		out = []record.Record{}
	}
	return out, nil
}
