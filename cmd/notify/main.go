package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/spec-kit/grant-notifier/internal/config"
	"github.com/spec-kit/grant-notifier/internal/events"
	"github.com/spec-kit/grant-notifier/internal/index"
	"github.com/spec-kit/grant-notifier/internal/llm"
	"github.com/spec-kit/grant-notifier/internal/messaging"
	"github.com/spec-kit/grant-notifier/internal/observability"
	"github.com/spec-kit/grant-notifier/internal/persistence"
	"github.com/spec-kit/grant-notifier/internal/repository"
	"github.com/spec-kit/grant-notifier/internal/service"
	"github.com/spec-kit/grant-notifier/internal/userstore"
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

	model, err := llm.NewClient(cfg.OpenAI)
	if err != nil {
		logger.Fatal("failed to init model client", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger, metrics))

	grantRepo := repository.NewGrantRepository(pg.PoolHandle())
	assistant := service.NewAssistantService(service.AssistantDependencies{
		Retriever:  index.NewSearcher(grantRepo, model),
		Model:      model,
		ChatTopK:   cfg.OpenAI.ChatTopK,
		NotifyTopK: cfg.OpenAI.NotifyTopK,
	})

	notifier := service.NewNotifierService(service.NotifierDependencies{
		Store:      userstore.New(cfg.Store.Path),
		Assistant:  assistant,
		Sender:     messaging.NewUltraMsgClient(cfg.UltraMsg),
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	err = worker.RunNotifier(ctx, notifier, cfg.Notify.Interval(), logger)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("notification run failed", zap.Error(err))
	}
}
