package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/grant-notifier/internal/service"
)

// StartAuditWorker registers audit event handlers.
func StartAuditWorker(auditService *service.AuditService) {
	if auditService == nil {
		return
	}
	auditService.RegisterHandlers()
}

// RunNotifier executes the notification batch. With a zero interval it
// runs once and returns; otherwise it runs immediately and then on
// every tick until the context is cancelled.
func RunNotifier(ctx context.Context, notifier *service.NotifierService, interval time.Duration, logger *zap.Logger) error {
	if _, err := notifier.RunBatch(ctx); err != nil {
		return err
	}
	if interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := notifier.RunBatch(ctx); err != nil {
				logger.Error("notification batch failed", zap.Error(err))
			}
		}
	}
}
