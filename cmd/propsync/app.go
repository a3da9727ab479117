package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/propsync/internal/config"
	"github.com/kailas-cloud/propsync/internal/db"
	dbPostgres "github.com/kailas-cloud/propsync/internal/db/postgres"
	dbRedis "github.com/kailas-cloud/propsync/internal/db/redis"
	"github.com/kailas-cloud/propsync/internal/domain/record"
	"github.com/kailas-cloud/propsync/internal/domain/search/request"
	"github.com/kailas-cloud/propsync/internal/domain/source"
	logpkg "github.com/kailas-cloud/propsync/internal/logger"
	"github.com/kailas-cloud/propsync/internal/metrics"
	"github.com/kailas-cloud/propsync/internal/repository/fingerprint"
	"github.com/kailas-cloud/propsync/internal/repository/pgproperty"
	propertyrepo "github.com/kailas-cloud/propsync/internal/repository/property"
	"github.com/kailas-cloud/propsync/internal/transport/feed"
	"github.com/kailas-cloud/propsync/internal/usecase/batch"
	healthuc "github.com/kailas-cloud/propsync/internal/usecase/health"
	ingestionuc "github.com/kailas-cloud/propsync/internal/usecase/ingestion"
	"github.com/kailas-cloud/propsync/internal/usecase/ingestion/mapper"
	searchuc "github.com/kailas-cloud/propsync/internal/usecase/search"
	"github.com/kailas-cloud/propsync/internal/version"
)

// propertyRepository is what both storage backends provide.
type propertyRepository interface {
	EnsureSchema(ctx context.Context) error
	UpsertMany(ctx context.Context, recs []record.Record) (int, error)
	Find(ctx context.Context, req request.Request) ([]record.Record, error)
}

// app is the composition root shared by serve and ingest.
type app struct {
	env    string
	cfg    config.Config
	logger *zap.Logger
	store  db.Lifecycle

	ingestion *ingestionuc.Service
	search    *searchuc.Service
	health    *healthuc.Service
}

func newApp(ctx context.Context, env string) (*app, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	logger.Info("Starting propsync",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Int("sources", len(cfg.Sources)),
	)

	store, repo, err := openStore(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, readiness); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	logger.Info("Connected to database")

	registry, err := sourceRegistry(cfg.Sources)
	if err != nil {
		store.Close()
		return nil, err
	}

	cache, err := fingerprint.New(cfg.Ingestion.FingerprintCacheSize)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("create fingerprint cache: %w", err)
	}

	feedClient := feed.New(
		feed.WithProbeTimeout(time.Duration(cfg.Ingestion.ProbeTimeoutSec)*time.Second),
		feed.WithFetchTimeout(time.Duration(cfg.Ingestion.FetchTimeoutSec)*time.Second),
		feed.WithUserAgent("propsync/"+version.Version),
	)

	// Register ingestion metrics explicitly (no init())
	metrics.RegisterIngestionMetrics()

	persister := batch.New(repo).WithChunkSize(cfg.Ingestion.BatchSize)
	ingestSvc := ingestionuc.New(
		registry,
		mapper.Default(),
		ingestionuc.NewChangeDetector(feedClient, cache),
		feedClient,
		persister,
	).
		WithMetrics(metrics.Ingestion{}).
		WithInvalidLogLimit(*cfg.Ingestion.InvalidLogLimit)

	searchSvc := searchuc.New(repo).WithBounds(request.Bounds{
		DefaultLimit: cfg.Search.DefaultLimit,
		MaxLimit:     cfg.Search.MaxLimit,
	})

	return &app{
		env:       env,
		cfg:       cfg,
		logger:    logger,
		store:     store,
		ingestion: ingestSvc,
		search:    searchSvc,
		health:    healthuc.New(store, ingestSvc),
	}, nil
}

// Close releases the store and flushes the logger.
func (a *app) Close() {
	a.store.Close()
	_ = a.logger.Sync()
}

// openStore creates the driver selected by config and its property repository.
func openStore(ctx context.Context, cfg config.DatabaseConfig) (db.Lifecycle, propertyRepository, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		store, err := dbPostgres.NewStore(ctx, dbPostgres.Config{
			DSN:      cfg.DSN,
			MaxConns: cfg.MaxConns,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create postgres store: %w", err)
		}
		return store, pgproperty.New(store), nil
	case config.DriverRedis:
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create redis store: %w", err)
		}
		return store, propertyrepo.New(store, cfg.KeyPrefix), nil
	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func sourceRegistry(sources []config.SourceConfig) (*source.Registry, error) {
	descriptors := make([]source.Descriptor, 0, len(sources))
	for _, s := range sources {
		descriptors = append(descriptors, source.Descriptor{
			ID:      s.ID,
			Name:    s.Name,
			URL:     s.URL,
			Enabled: s.Enabled,
		})
	}
	reg, err := source.NewRegistry(descriptors...)
	if err != nil {
		return nil, fmt.Errorf("build source registry: %w", err)
	}
	return reg, nil
}
