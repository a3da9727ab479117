package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	domingestion "github.com/kailas-cloud/propsync/internal/domain/ingestion"
)

// --- Mocks ---

type mockRunner struct {
	calls atomic.Int32
	done  chan struct{}
}

func (m *mockRunner) Run(_ context.Context) domingestion.Report {
	m.calls.Add(1)
	m.done <- struct{}{}
	return domingestion.Report{}
}

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s, err := New(zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Stop() })
	return s
}

// --- Tests ---

func TestAddJob_Errors(t *testing.T) {
	s := newTestScheduler(t)

	if err := s.AddJob("bad", "not a cron", func(context.Context) {}); err == nil {
		t.Error("expected error for invalid cron expression")
	}
	if err := s.AddJob("hourly", "0 * * * *", func(context.Context) {}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.AddJob("hourly", "0 * * * *", func(context.Context) {}); err == nil {
		t.Error("expected error for duplicate job name")
	}
}

func TestListJobs(t *testing.T) {
	s := newTestScheduler(t)
	if err := s.ScheduleIngestion("*/5 * * * *", &mockRunner{done: make(chan struct{}, 1)}); err != nil {
		t.Fatalf("ScheduleIngestion: %v", err)
	}
	s.Start()

	jobs := s.ListJobs()
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	if jobs[0].Name != IngestionJobName || jobs[0].Schedule != "*/5 * * * *" {
		t.Errorf("unexpected job: %+v", jobs[0])
	}
	if jobs[0].NextRun.IsZero() {
		t.Error("started job must have a next run")
	}
}

func TestRunNow_InvokesRunner(t *testing.T) {
	s := newTestScheduler(t)
	r := &mockRunner{done: make(chan struct{}, 1)}
	// Far-off schedule so only RunNow fires.
	if err := s.ScheduleIngestion("0 0 1 1 *", r); err != nil {
		t.Fatalf("ScheduleIngestion: %v", err)
	}
	s.Start()

	if err := s.RunNow(IngestionJobName); err != nil {
		t.Fatalf("RunNow: %v", err)
	}
	select {
	case <-r.done:
	case <-time.After(5 * time.Second):
		t.Fatal("runner was not invoked")
	}
	if r.calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", r.calls.Load())
	}
}

func TestRunNow_UnknownJob(t *testing.T) {
	s := newTestScheduler(t)
	if err := s.RunNow("missing"); err == nil {
		t.Fatal("expected error for unknown job")
	}
}

func TestStop_CancelsJobContext(t *testing.T) {
	s := newTestScheduler(t)
	started := make(chan struct{})
	finished := make(chan error, 1)
	err := s.AddJob("long", "0 0 1 1 *", func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		finished <- ctx.Err()
	})
	if err != nil {
		t.Fatalf("AddJob: %v", err)
	}
	s.Start()
	if err := s.RunNow("long"); err != nil {
		t.Fatalf("RunNow: %v", err)
	}
	<-started

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	select {
	case err := <-finished:
		if err == nil {
			t.Error("expected cancelled context")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("job did not observe cancellation")
	}
}
