package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/grant-notifier/internal/events"
	"github.com/spec-kit/grant-notifier/internal/observability"
)

// AuditService records domain events to the log and metrics so batch
// runs and webhook traffic leave an inspectable trail.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
	}
}

// RegisterHandlers subscribes to every domain event type.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventUserRegistered,
		events.EventRegistrationConfirmed,
		events.EventAnswerDelivered,
		events.EventGrantsNotified,
		events.EventGrantsIngested,
	} {
		a.dispatcher.Subscribe(eventType, a.record)
	}
}

func (a *AuditService) record(ctx context.Context, event events.Event) error {
	a.logger.Info("domain event",
		zap.String("event_id", event.ID),
		zap.String("type", string(event.Type)),
		zap.String("user_id", event.UserID),
		zap.Any("payload", event.Payload))
	if a.metrics != nil {
		a.metrics.RecordEvent(string(event.Type))
	}
	return nil
}
