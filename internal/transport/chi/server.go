package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/propsync/internal/domain"
	"github.com/kailas-cloud/propsync/internal/domain/extra"
	domingestion "github.com/kailas-cloud/propsync/internal/domain/ingestion"
	"github.com/kailas-cloud/propsync/internal/domain/record"
	"github.com/kailas-cloud/propsync/internal/domain/search/request"
	healthuc "github.com/kailas-cloud/propsync/internal/usecase/health"
	searchuc "github.com/kailas-cloud/propsync/internal/usecase/search"
)

// IngestionRunner runs one ingestion pass over every enabled source.
type IngestionRunner interface {
	Run(ctx context.Context) domingestion.Report
}

// Searcher executes property searches.
type Searcher interface {
	Search(ctx context.Context, p searchuc.Params, extras *extra.Object) ([]record.Record, error)
	Bounds() request.Bounds
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the property API.
type Server struct {
	ingestion     IngestionRunner
	search        Searcher
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	ingestion IngestionRunner,
	search Searcher,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		ingestion: ingestion,
		search:    search,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		invalidQueryHandler,
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r gochi.Router) {
	r.Post("/ingest", s.Ingest)
	r.Get("/properties", s.SearchProperties)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Ingest handles POST /ingest. Per-source failures are reported inside the
// body; the status is always 200.
func (s *Server) Ingest(w http.ResponseWriter, r *http.Request) {
	report := s.ingestion.Run(r.Context())
	writeJSON(w, http.StatusOK, report)
}

// SearchProperties handles GET /properties.
func (s *Server) SearchProperties(w http.ResponseWriter, r *http.Request) {
	params, err := bindSearchParams(r, s.search.Bounds().MaxLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, err.Error())
		return
	}

	p := searchuc.Params{
		City:        params.City,
		IsAvailable: params.IsAvailable,
		PriceMin:    params.PriceMin,
		PriceMax:    params.PriceMax,
		Limit:       derefInt(params.Limit),
		Offset:      derefInt(params.Offset),
	}
	records, err := s.search.Search(r.Context(), p, ParseExtraFilters(r.URL.Query()))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, records)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: report.Status,
		Checks: report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// invalidQueryHandler maps rejected searches to 400 with the reason intact.
func invalidQueryHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, domain.ErrInvalidQuery) {
		return false
	}
	writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, err.Error())
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
