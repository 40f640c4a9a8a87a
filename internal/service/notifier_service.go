package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/grant-notifier/internal/domain"
	"github.com/spec-kit/grant-notifier/internal/events"
	"github.com/spec-kit/grant-notifier/internal/extract"
	"github.com/spec-kit/grant-notifier/internal/messaging"
)

// defaultUserTimeout bounds one user's upstream call so a hung query
// fails that user only, not the whole batch.
const defaultUserTimeout = 2 * time.Minute

// NotifierStore is the profile state the batch run needs.
type NotifierStore interface {
	UserIDs() ([]string, error)
	Get(userID string) (*domain.Profile, error)
	RecordNotified(userID string, newCodes []string) error
}

// ScanAnswerer answers a notification query against the corpus.
type ScanAnswerer interface {
	AnswerNotificationScan(ctx context.Context, query string) (string, error)
}

// RunSummary reports what one batch run did.
type RunSummary struct {
	RunID     string
	Evaluated int
	Skipped   int
	Notified  int
	Failed    int
}

type userOutcome int

const (
	outcomeSkipped userOutcome = iota
	outcomeNoNews
	outcomeNotified
)

// NotifierService evaluates every confirmed subscriber against the
// corpus and delivers only announcements they have not seen before.
type NotifierService struct {
	store       NotifierStore
	assistant   ScanAnswerer
	sender      messaging.Sender
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	userTimeout time.Duration
}

// NotifierDependencies bundles collaborators for the batch engine.
type NotifierDependencies struct {
	Store       NotifierStore
	Assistant   ScanAnswerer
	Sender      messaging.Sender
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	UserTimeout time.Duration
}

// NewNotifierService constructs the service.
func NewNotifierService(deps NotifierDependencies) *NotifierService {
	timeout := deps.UserTimeout
	if timeout <= 0 {
		timeout = defaultUserTimeout
	}
	return &NotifierService{
		store:       deps.Store,
		assistant:   deps.Assistant,
		sender:      deps.Sender,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
		userTimeout: timeout,
	}
}

// RunBatch processes every stored user sequentially. Per-user failures
// are logged and counted; they never abort the remaining users.
func (n *NotifierService) RunBatch(ctx context.Context) (*RunSummary, error) {
	summary := &RunSummary{RunID: uuid.NewString()}
	log := n.logger.With(zap.String("run_id", summary.RunID))

	userIDs, err := n.store.UserIDs()
	if err != nil {
		return summary, err
	}
	log.Info("notification batch started", zap.Int("users", len(userIDs)))

	for _, userID := range userIDs {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		outcome, err := n.evaluateUser(ctx, log, summary.RunID, userID)
		if err != nil {
			summary.Failed++
			log.Warn("user evaluation failed", zap.String("user_id", userID), zap.Error(err))
			continue
		}
		switch outcome {
		case outcomeSkipped:
			summary.Skipped++
		case outcomeNotified:
			summary.Evaluated++
			summary.Notified++
		default:
			summary.Evaluated++
		}
	}

	log.Info("notification batch finished",
		zap.Int("evaluated", summary.Evaluated),
		zap.Int("skipped", summary.Skipped),
		zap.Int("notified", summary.Notified),
		zap.Int("failed", summary.Failed))
	return summary, nil
}

func (n *NotifierService) evaluateUser(ctx context.Context, log *zap.Logger, runID, userID string) (userOutcome, error) {
	profile, err := n.store.Get(userID)
	if err != nil {
		return outcomeSkipped, err
	}
	if profile == nil || !profile.RegistrationConfirmed {
		log.Debug("skipping unconfirmed user", zap.String("user_id", userID))
		return outcomeSkipped, nil
	}
	if !profile.HasSearchCriteria() {
		log.Debug("skipping user without city or interest", zap.String("user_id", userID))
		return outcomeSkipped, nil
	}

	query := fmt.Sprintf("Subvenciones para %s en %s", profile.InterestValue(), profile.CityValue())

	userCtx, cancel := context.WithTimeout(ctx, n.userTimeout)
	defer cancel()

	answer, err := n.assistant.AnswerNotificationScan(userCtx, query)
	if err != nil {
		return outcomeNoNews, err
	}

	newCodes := diffCodes(profile, extract.Codes(answer))
	if len(newCodes) == 0 {
		log.Debug("no new announcements", zap.String("user_id", userID))
		return outcomeNoNews, nil
	}

	message := fmt.Sprintf("📢 ¡Hola %s! Hemos encontrado nuevas subvenciones que podrían interesarte:\n\n%s",
		profile.Name, answer)
	if err := n.sender.Send(ctx, userID, message); err != nil {
		// The notified set must only advance after a confirmed send,
		// otherwise a delivery failure would suppress future retries
		// for these codes.
		return outcomeNoNews, err
	}
	if err := n.store.RecordNotified(userID, newCodes); err != nil {
		return outcomeNotified, err
	}

	log.Info("notified user",
		zap.String("user_id", userID),
		zap.Strings("new_codes", newCodes))
	if n.dispatcher != nil {
		_ = n.dispatcher.Publish(ctx, events.New(events.EventGrantsNotified, userID,
			events.GrantsNotifiedPayload{RunID: runID, NewCodes: newCodes}))
	}
	return outcomeNotified, nil
}

func diffCodes(profile *domain.Profile, codes []string) []string {
	newCodes := make([]string, 0, len(codes))
	for _, code := range codes {
		if !profile.HasNotified(code) {
			newCodes = append(newCodes, code)
		}
	}
	return newCodes
}
