package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/propsync/internal/scheduler"
	chiTransport "github.com/kailas-cloud/propsync/internal/transport/chi"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the optional ingestion schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := newApp(ctx, resolveEnv(cmd))
			if err != nil {
				return err
			}
			defer a.Close()

			if port, _ := cmd.Flags().GetInt("port"); port > 0 {
				a.cfg.HTTP.Port = port
			}
			ingestOnStart, _ := cmd.Flags().GetBool("ingest-on-start")
			return serve(ctx, a, ingestOnStart)
		},
	}
	cmd.Flags().Int("port", 0, "listen port (overrides http.port)")
	cmd.Flags().Bool("ingest-on-start", false, "run the scheduled ingestion once right after startup (needs ingestion.schedule)")
	return cmd
}

func serve(ctx context.Context, a *app, ingestOnStart bool) error {
	logger := a.logger

	sched, err := startScheduler(a, ingestOnStart)
	if err != nil {
		return err
	}
	if sched != nil {
		defer func() {
			if err := sched.Stop(); err != nil {
				logger.Error("Error stopping scheduler", zap.Error(err))
			}
		}()
	}

	server := chiTransport.NewServer(a.ingestion, a.search, a.health, logger)

	addr := fmt.Sprintf(":%d", a.cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      chiTransport.NewRouter(server, logger),
		ReadTimeout:  time.Duration(a.cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(a.cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(a.cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// startScheduler starts the cron ingestion job when ingestion.schedule is
// set, and returns nil otherwise. With runNow the job also fires once
// immediately; its singleton mode keeps it from overlapping the first tick.
func startScheduler(a *app, runNow bool) (*scheduler.Scheduler, error) {
	expr := a.cfg.Ingestion.Schedule
	if expr == "" {
		if runNow {
			a.logger.Warn("--ingest-on-start ignored: ingestion.schedule is not set")
		}
		return nil, nil
	}

	sched, err := scheduler.New(a.logger)
	if err != nil {
		return nil, err //nolint:wrapcheck // already wrapped
	}
	if err := sched.ScheduleIngestion(expr, a.ingestion); err != nil {
		return nil, err //nolint:wrapcheck // already wrapped
	}
	sched.Start()

	for _, j := range sched.ListJobs() {
		a.logger.Info("Job scheduled",
			zap.String("job", j.Name),
			zap.String("cron", j.Schedule),
			zap.Time("next_run", j.NextRun))
	}
	if runNow {
		if err := sched.RunNow(scheduler.IngestionJobName); err != nil {
			_ = sched.Stop()
			return nil, err //nolint:wrapcheck // already wrapped
		}
	}
	return sched, nil
}
