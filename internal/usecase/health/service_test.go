package health

import (
	"context"
	"errors"
	"testing"

	domingestion "github.com/kailas-cloud/propsync/internal/domain/ingestion"
	"github.com/kailas-cloud/propsync/internal/domain/source"
)

// --- Mocks ---

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) Ping(_ context.Context) error { return m.err }

type mockRunReporter struct {
	report domingestion.Report
	ok     bool
}

func (m *mockRunReporter) LastRun() (domingestion.Report, bool) { return m.report, m.ok }

var desc = source.Descriptor{ID: "source1", Name: "Source1"}

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	runs := &mockRunReporter{ok: true, report: domingestion.Report{
		Sources: []domingestion.Outcome{domingestion.Succeeded(desc, 1, 0, 0)},
	}}
	r := New(&mockDBPinger{}, runs).Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["database"] != CheckOK {
		t.Errorf("expected database %q, got %q", CheckOK, r.Checks["database"])
	}
	if r.Checks["ingestion"] != CheckOK {
		t.Errorf("expected ingestion %q, got %q", CheckOK, r.Checks["ingestion"])
	}
}

func TestCheck_DBError(t *testing.T) {
	r := New(&mockDBPinger{err: errors.New("conn refused")}, &mockRunReporter{}).Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["database"] != CheckError {
		t.Errorf("expected database %q, got %q", CheckError, r.Checks["database"])
	}
	if r.Checks["ingestion"] != CheckOK {
		t.Errorf("no run yet must report ok, got %q", r.Checks["ingestion"])
	}
}

func TestCheck_IngestionFailures(t *testing.T) {
	boom := errors.New("HTTP 503: Service Unavailable")
	tests := []struct {
		name     string
		outcomes []domingestion.Outcome
		want     CheckResult
	}{
		{"all failed", []domingestion.Outcome{domingestion.Failed(desc, boom, 0)}, CheckError},
		{"partial failure", []domingestion.Outcome{
			domingestion.Failed(desc, boom, 0),
			domingestion.Unchanged(desc, 0),
		}, CheckOK},
		{"no sources", nil, CheckOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs := &mockRunReporter{ok: true, report: domingestion.Report{Sources: tt.outcomes}}
			r := New(&mockDBPinger{}, runs).Check(context.Background())
			if r.Checks["ingestion"] != tt.want {
				t.Errorf("ingestion = %q, want %q", r.Checks["ingestion"], tt.want)
			}
		})
	}
}

func TestCheck_NoRunReporter(t *testing.T) {
	r := New(&mockDBPinger{}, nil).Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks["ingestion"]; ok {
		t.Error("ingestion check should be absent when runs is nil")
	}
}
