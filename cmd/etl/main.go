package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/couchcryptid/wildlife-sightings-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/wildlife-sightings-etl/internal/adapter/kafka"
	"github.com/couchcryptid/wildlife-sightings-etl/internal/adapter/postgres"
	"github.com/couchcryptid/wildlife-sightings-etl/internal/config"
	"github.com/couchcryptid/wildlife-sightings-etl/internal/observability"
	"github.com/couchcryptid/wildlife-sightings-etl/internal/pipeline"
	"github.com/couchcryptid/wildlife-sightings-etl/internal/view"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	store, err := postgres.NewStore(cfg.PostgresDSN, logger, metrics)
	if err != nil {
		logger.Error("failed to open postgres", "error", err)
		os.Exit(1)
	}

	schemaCtx, schemaCancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = store.EnsureSchema(schemaCtx)
	schemaCancel()
	if err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	transformer := pipeline.NewTransformer(logger, metrics)

	p := pipeline.New(reader, transformer, store, logger, metrics, cfg.BatchSize)

	querier := postgres.NewCachedQuerier(store, cfg.QueryCacheTTL, metrics)

	// Warm view state for the service-default filters, served directly for
	// requests that match them. Each loaded batch invalidates the query cache
	// and kicks off a refresh; the guard discards results that finish after
	// the filter state has moved on, so a stale refresh is never served.
	warmFilters := view.NewFilterConfig()
	warmFilters.MaxLocationAccuracy = cfg.MaxLocationAccuracy
	warmFilters.EnableAccuracyFilter = cfg.EnableAccuracyFilter
	latest := view.NewLatest(warmFilters.Tag())

	p.SetBatchHook(func(ctx context.Context, count int) {
		querier.Invalidate()
		tag, generation := latest.Begin()
		records, err := querier.Query(ctx, warmFilters)
		if err != nil {
			metrics.SnapshotRefreshes.WithLabelValues("failed").Inc()
			logger.Warn("snapshot refresh failed", "error", err, "batch_count", count)
			return
		}
		if latest.Apply(tag, generation, records) {
			metrics.SnapshotRefreshes.WithLabelValues("applied").Inc()
		} else {
			metrics.SnapshotRefreshes.WithLabelValues("discarded").Inc()
		}
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, querier, latest, httpadapter.FilterDefaults{
		MaxLocationAccuracy:  cfg.MaxLocationAccuracy,
		EnableAccuracyFilter: cfg.EnableAccuracyFilter,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ETL pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := store.Close(); err != nil {
		logger.Error("postgres close error", "error", err)
	}

	logger.Info("shutdown complete")
}
