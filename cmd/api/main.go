package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/grant-notifier/internal/api/http"
	"github.com/spec-kit/grant-notifier/internal/api/http/handlers"
	"github.com/spec-kit/grant-notifier/internal/auth"
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

	ctx, cancel := context.WithCancel(context.Background())
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

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger, metrics))

	model, err := llm.NewClient(cfg.OpenAI)
	if err != nil {
		logger.Fatal("failed to init model client", zap.Error(err))
	}

	grantRepo := repository.NewGrantRepository(pg.PoolHandle())
	assistant := service.NewAssistantService(service.AssistantDependencies{
		Retriever:  index.NewSearcher(grantRepo, model),
		Model:      model,
		ChatTopK:   cfg.OpenAI.ChatTopK,
		NotifyTopK: cfg.OpenAI.NotifyTopK,
	})

	store := userstore.New(cfg.Store.Path)
	sender := messaging.NewUltraMsgClient(cfg.UltraMsg)
	registration := service.NewRegistrationService(service.RegistrationDependencies{
		Store:      store,
		Assistant:  assistant,
		Sender:     sender,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	dedup := persistence.NewMessageDedup(redis, cfg.Webhook.DedupTTL())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:      handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Webhook:     handlers.NewWebhookHandler(registration, dedup, logger),
		WebhookAuth: auth.NewWebhookAuth(cfg.Webhook.Token),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
