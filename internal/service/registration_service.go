package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/grant-notifier/internal/domain"
	"github.com/spec-kit/grant-notifier/internal/events"
	"github.com/spec-kit/grant-notifier/internal/messaging"
	"github.com/spec-kit/grant-notifier/internal/userstore"
)

// historyWindow is how many interaction lines ground a conversational answer.
const historyWindow = 10

// RegistrationStore is the profile state the webhook flow needs.
type RegistrationStore interface {
	Get(userID string) (*domain.Profile, error)
	Register(userID, displayName string) (*domain.Profile, error)
	AppendInteraction(userID, text string) error
	UpdateProfileFromFreeText(userID, text string) (*userstore.ProfileDetails, error)
	ConfirmRegistration(userID string) error
	IsRegistrationConfirmed(userID string) (bool, error)
	RecentInteractions(userID string, n int) ([]string, error)
}

// QuestionAnswerer answers a free-form question for a confirmed user.
type QuestionAnswerer interface {
	AnswerQuestion(ctx context.Context, question string) (string, error)
}

// RegistrationService drives inbound messages through the opt-in flow
// and, once a user is confirmed, the conversational Q&A path.
type RegistrationService struct {
	store      RegistrationStore
	assistant  QuestionAnswerer
	sender     messaging.Sender
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// RegistrationDependencies bundles collaborators for the webhook flow.
type RegistrationDependencies struct {
	Store      RegistrationStore
	Assistant  QuestionAnswerer
	Sender     messaging.Sender
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewRegistrationService constructs the service.
func NewRegistrationService(deps RegistrationDependencies) *RegistrationService {
	return &RegistrationService{
		store:      deps.Store,
		assistant:  deps.Assistant,
		sender:     deps.Sender,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// Handle processes one inbound WhatsApp message end to end.
func (s *RegistrationService) Handle(ctx context.Context, userID, pushname, body string) error {
	message := strings.TrimSpace(body)

	existing, err := s.store.Get(userID)
	if err != nil {
		return err
	}
	profile, err := s.store.Register(userID, pushname)
	if err != nil {
		return err
	}
	if existing == nil {
		s.publish(ctx, events.New(events.EventUserRegistered, userID,
			events.UserRegisteredPayload{Name: profile.Name}))
	}

	confirmed, err := s.store.IsRegistrationConfirmed(userID)
	if err != nil {
		return err
	}
	if !confirmed {
		return s.handleConsentFlow(ctx, userID, pushname, message)
	}
	return s.handleQuestion(ctx, userID, message)
}

func (s *RegistrationService) handleConsentFlow(ctx context.Context, userID, pushname, message string) error {
	switch normalized := strings.ToLower(message); {
	case isOptOut(normalized):
		if err := s.store.ConfirmRegistration(userID); err != nil {
			return err
		}
		s.publish(ctx, events.New(events.EventRegistrationConfirmed, userID,
			events.RegistrationConfirmedPayload{OptedOut: true}))
		return s.sender.Send(ctx, userID, "✅ Perfecto, no se guardarán tus datos. ¿En qué te puedo ayudar?")

	case isOptIn(normalized):
		return s.sender.Send(ctx, userID, "✍️ Por favor, dime tu ciudad y sector o interés, separados por coma. Ejemplo: Madrid, tecnología")

	case strings.Contains(message, ","):
		details, err := s.store.UpdateProfileFromFreeText(userID, message)
		if err != nil {
			return err
		}
		if err := s.store.ConfirmRegistration(userID); err != nil {
			return err
		}
		city, interest := detailValues(details)
		s.publish(ctx, events.New(events.EventRegistrationConfirmed, userID,
			events.RegistrationConfirmedPayload{City: city, Interest: interest}))
		reply := fmt.Sprintf("✅ ¡Gracias %s! Tus datos fueron registrados: Ciudad: %s, Interés: %s.", pushname, city, interest)
		return s.sender.Send(ctx, userID, reply)

	default:
		prompt := fmt.Sprintf("👋 ¡Hola %s! ¿Deseas registrar tus datos para recibir notificaciones? Responde con 'sí' o 'no'.", pushname)
		return s.sender.Send(ctx, userID, prompt)
	}
}

func (s *RegistrationService) handleQuestion(ctx context.Context, userID, message string) error {
	if err := s.store.AppendInteraction(userID, "Usuario: "+message); err != nil {
		return err
	}

	history, err := s.store.RecentInteractions(userID, historyWindow)
	if err != nil {
		return err
	}

	answer, err := s.assistant.AnswerQuestion(ctx, strings.Join(history, "\n"))
	if err != nil {
		// Upstream failures are recovered per request: the user gets a
		// generic apology, never raw error text.
		s.logger.Warn("assistant answer failed",
			zap.String("user_id", userID), zap.Error(err))
		return s.sender.Send(ctx, userID, apologyReply)
	}

	if err := s.store.AppendInteraction(userID, "Asistente: "+answer); err != nil {
		return err
	}
	if err := s.sender.Send(ctx, userID, answer); err != nil {
		return err
	}

	s.publish(ctx, events.New(events.EventAnswerDelivered, userID,
		events.AnswerDeliveredPayload{QuestionPreview: preview(message, 80)}))
	return nil
}

func (s *RegistrationService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func isOptOut(m string) bool {
	return m == "no" || m == "no gracias" || m == "no thanks"
}

func isOptIn(m string) bool {
	return m == "si" || m == "sí" || m == "yes"
}

func detailValues(details *userstore.ProfileDetails) (string, string) {
	if details == nil {
		return "", ""
	}
	city, interest := "", ""
	if details.City != nil {
		city = *details.City
	}
	if details.Interest != nil {
		interest = *details.Interest
	}
	return city, interest
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
