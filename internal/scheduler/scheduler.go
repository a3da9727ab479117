// Package scheduler runs periodic jobs, such as scheduled ingestion, on cron expressions.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	domingestion "github.com/kailas-cloud/propsync/internal/domain/ingestion"
	"github.com/kailas-cloud/propsync/internal/logger"
)

// IngestionJobName is the job registered by ScheduleIngestion.
const IngestionJobName = "ingest"

// IngestionRunner runs one ingestion pass.
type IngestionRunner interface {
	Run(ctx context.Context) domingestion.Report
}

// JobInfo describes a registered job.
type JobInfo struct {
	Name     string
	Schedule string
	LastRun  time.Time // zero if never run
	NextRun  time.Time // zero if not scheduled
}

// Scheduler wraps a gocron scheduler. Jobs never overlap with themselves:
// a tick that fires while the previous one is still running is skipped.
type Scheduler struct {
	mu        sync.Mutex
	scheduler gocron.Scheduler
	jobs      map[string]gocron.Job
	schedules map[string]string
	logger    *zap.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
	stopErr  error
}

// New creates a stopped scheduler. Job contexts carry logger.
func New(log *zap.Logger, opts ...gocron.SchedulerOption) (*Scheduler, error) {
	s, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, fmt.Errorf("create cron scheduler: %w", err)
	}
	ctx, cancel := context.WithCancel(logger.ContextWithLogger(context.Background(), log))
	return &Scheduler{
		scheduler: s,
		jobs:      make(map[string]gocron.Job),
		schedules: make(map[string]string),
		logger:    log,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// AddJob registers task under a unique name on a five-field cron expression.
func (s *Scheduler) AddJob(name, cronExpr string, task func(ctx context.Context)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("scheduled job already exists: %s", name)
	}

	j, err := s.scheduler.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(func() {
			ctx, log := logger.With(s.ctx, zap.String("job", name))
			log.Debug("scheduled job fired")
			task(ctx)
		}),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("create scheduled job %s: %w", name, err)
	}

	s.jobs[name] = j
	s.schedules[name] = cronExpr
	s.logger.Info("scheduled job added", zap.String("name", name), zap.String("cron", cronExpr))
	return nil
}

// ScheduleIngestion runs r on cronExpr. Outcomes are logged by the runner itself.
func (s *Scheduler) ScheduleIngestion(cronExpr string, r IngestionRunner) error {
	return s.AddJob(IngestionJobName, cronExpr, func(ctx context.Context) {
		report := r.Run(ctx)
		if failed := report.Failures(); len(failed) > 0 {
			logger.FromContext(ctx).Warn("scheduled ingestion finished with failures",
				zap.Int("sources_failed", len(failed)))
		}
	})
}

// RunNow triggers a named job immediately, outside its schedule.
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("scheduled job not found: %s", name)
	}
	if err := j.RunNow(); err != nil {
		return fmt.Errorf("run job %s: %w", name, err)
	}
	return nil
}

// ListJobs returns info about all registered jobs.
func (s *Scheduler) ListJobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]JobInfo, 0, len(s.jobs))
	for name, j := range s.jobs {
		info := JobInfo{Name: name, Schedule: s.schedules[name]}
		if lr, err := j.LastRun(); err == nil {
			info.LastRun = lr
		}
		if nr, err := j.NextRun(); err == nil {
			info.NextRun = nr
		}
		infos = append(infos, info)
	}
	return infos
}

// Start begins executing registered jobs.
func (s *Scheduler) Start() {
	s.scheduler.Start()
	s.logger.Info("scheduler started", zap.Int("jobs", len(s.jobs)))
}

// Stop cancels job contexts and waits for running jobs to return.
// Calls after the first return the first result.
func (s *Scheduler) Stop() error {
	s.stopOnce.Do(func() {
		s.cancel()
		if err := s.scheduler.Shutdown(); err != nil {
			s.stopErr = fmt.Errorf("shutdown scheduler: %w", err)
		}
	})
	return s.stopErr
}
