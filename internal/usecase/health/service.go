package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db   DBPinger
	runs RunReporter
}

// New creates a Service. runs can be nil.
func New(db DBPinger, runs RunReporter) *Service {
	return &Service{db: db, runs: runs}
}

// Check runs health checks against all components. The ingestion check
// fails only when the last run had sources and none of them succeeded.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
	} else {
		checks["database"] = CheckOK
	}

	if s.runs != nil {
		checks["ingestion"] = CheckOK
		if last, ok := s.runs.LastRun(); ok && len(last.Sources) > 0 && last.SourcesProcessed() == 0 {
			checks["ingestion"] = CheckError
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
