package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/grant-notifier/internal/bdns"
	"github.com/spec-kit/grant-notifier/internal/config"
	"github.com/spec-kit/grant-notifier/internal/events"
	"github.com/spec-kit/grant-notifier/internal/llm"
	"github.com/spec-kit/grant-notifier/internal/observability"
	"github.com/spec-kit/grant-notifier/internal/persistence"
	"github.com/spec-kit/grant-notifier/internal/repository"
	"github.com/spec-kit/grant-notifier/internal/service"
	"github.com/spec-kit/grant-notifier/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	model, err := llm.NewClient(cfg.OpenAI)
	if err != nil {
		logger.Fatal("failed to init model client", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger, metrics))

	ingest := service.NewIngestService(service.IngestDependencies{
		Source:     bdns.NewClient(cfg.BDNS.BaseURL, 30*time.Second),
		Embedder:   model,
		Grants:     repository.NewGrantRepository(pg.PoolHandle()),
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	summary, err := ingest.Run(ctx, cfg.BDNS.Keyword, cfg.BDNS.PageSize)
	if err != nil {
		logger.Fatal("ingest run failed", zap.Error(err))
	}
	logger.Info("ingest complete",
		zap.Int("found", summary.Found),
		zap.Int("stored", summary.Stored),
		zap.Int("failed", summary.Failed))
}
