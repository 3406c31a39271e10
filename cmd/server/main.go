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

	httpadapter "github.com/couchcryptid/breathing-rivers/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/breathing-rivers/internal/adapter/kafka"
	"github.com/couchcryptid/breathing-rivers/internal/adapter/memory"
	"github.com/couchcryptid/breathing-rivers/internal/adapter/nasa"
	"github.com/couchcryptid/breathing-rivers/internal/adapter/sqlite"
	"github.com/couchcryptid/breathing-rivers/internal/config"
	"github.com/couchcryptid/breathing-rivers/internal/domain"
	"github.com/couchcryptid/breathing-rivers/internal/observability"
	"github.com/couchcryptid/breathing-rivers/internal/pipeline"
	"github.com/couchcryptid/breathing-rivers/internal/scheduler"
	"github.com/couchcryptid/breathing-rivers/internal/service"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/jonboulle/clockwork"
)

const refreshTimeout = 2 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	repo, err := openRepository(cfg, logger)
	if err != nil {
		logger.Error("failed to open repository", "error", err)
		os.Exit(1)
	}

	clock := clockwork.NewRealClock()
	generator := nasa.NewGenerator(domain.NewRand(cfg.NASASeed), clock, logger, metrics)
	source := nasa.NewCachedSource(generator, cfg.NASACacheTTL, cfg.NASACacheSize, clock, metrics)
	svc := service.New(repo, source, domain.NewRandStream(cfg.NASASeed, domain.StreamSimulation), logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.SeedSampleData {
		seeded, err := svc.SeedSampleData(ctx)
		if err != nil {
			logger.Error("failed to seed sample data", "error", err)
			os.Exit(1)
		}
		if !seeded {
			logger.Info("existing data found, skipping sample seed")
		}
	}

	ready := readiness{svc}

	// Activity publisher (feature-flagged via KAFKA_ENABLED).
	var writer *kafkaadapter.Writer
	var publisher *pipeline.Pipeline
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		outbox := pipeline.NewOutboxExtractor(repo, cfg.BatchFlushInterval)
		publisher = pipeline.New(outbox, outbox, pipeline.NewTransformer(), writer, logger, metrics, cfg.BatchSize)
		ready = append(ready, publisher)
		logger.Info("activity publishing enabled", "topic", cfg.KafkaActivityTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("activity publishing disabled")
	}

	var sched *scheduler.Scheduler
	if cfg.RefreshSchedule != "" {
		sched, err = scheduler.New(cfg.RefreshSchedule, svc, refreshTimeout, logger)
		if err != nil {
			logger.Error("invalid refresh schedule", "error", err)
			os.Exit(1)
		}
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, ready, logger)

	done := make(chan struct{}, 2)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start background workers.
	workers := 0
	if publisher != nil {
		workers++
		go func() {
			defer func() { done <- struct{}{} }()
			if err := publisher.Run(ctx); err != nil {
				logger.Error("activity publisher error", "error", err)
			}
		}()
	}
	if sched != nil {
		workers++
		go func() {
			defer func() { done <- struct{}{} }()
			if err := sched.Run(ctx); err != nil {
				logger.Error("refresh scheduler error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
wait:
	for range workers {
		select {
		case <-done:
		case <-shutdownCtx.Done():
			logger.Warn("background workers did not stop in time")
			break wait
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if err := repo.Close(); err != nil {
		logger.Error("repository close error", "error", err)
	}

	logger.Info("shutdown complete")
}

func openRepository(cfg *config.Config, logger *slog.Logger) (domain.Repository, error) {
	switch cfg.Datastore {
	case "memory":
		logger.Info("using in-memory datastore")
		return memory.NewStore(), nil
	default:
		logger.Info("using sqlite datastore", "path", cfg.DBPath)
		store, err := sqlite.Open(cfg.DBPath, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}

// readiness is ready when every checker is.
type readiness []sharedobs.ReadinessChecker

func (r readiness) CheckReadiness(ctx context.Context) error {
	for _, c := range r {
		if err := c.CheckReadiness(ctx); err != nil {
			return err
		}
	}
	return nil
}
