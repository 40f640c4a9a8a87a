package service

import (
	"context"
	"strings"

	"github.com/spec-kit/grant-notifier/internal/index"
	apperrors "github.com/spec-kit/grant-notifier/pkg/util"
)

// Retriever returns the most relevant grant passages for a query.
type Retriever interface {
	Search(ctx context.Context, query string, topK int) ([]index.Passage, error)
}

// Completer synthesizes text from a system prompt and a user message.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// AssistantService answers natural-language questions grounded in the
// grant corpus. Conversation mode retrieves a wide context window;
// notification mode retrieves a narrow one tuned for precision.
type AssistantService struct {
	retriever  Retriever
	model      Completer
	chatTopK   int
	notifyTopK int
}

// AssistantDependencies bundles collaborators for the assistant.
type AssistantDependencies struct {
	Retriever  Retriever
	Model      Completer
	ChatTopK   int
	NotifyTopK int
}

// NewAssistantService constructs the service.
func NewAssistantService(deps AssistantDependencies) *AssistantService {
	chatTopK := deps.ChatTopK
	if chatTopK <= 0 {
		chatTopK = 50
	}
	notifyTopK := deps.NotifyTopK
	if notifyTopK <= 0 {
		notifyTopK = 5
	}
	return &AssistantService{
		retriever:  deps.Retriever,
		model:      deps.Model,
		chatTopK:   chatTopK,
		notifyTopK: notifyTopK,
	}
}

// AnswerQuestion answers a conversational question (or interaction
// history) with the wide context window.
func (s *AssistantService) AnswerQuestion(ctx context.Context, question string) (string, error) {
	return s.answer(ctx, conversationPrompt, question, s.chatTopK)
}

// AnswerNotificationScan answers a notification query with the narrow
// context window.
func (s *AssistantService) AnswerNotificationScan(ctx context.Context, query string) (string, error) {
	return s.answer(ctx, notificationPrompt, query, s.notifyTopK)
}

func (s *AssistantService) answer(ctx context.Context, template, query string, topK int) (string, error) {
	passages, err := s.retriever.Search(ctx, query, topK)
	if err != nil {
		return "", apperrors.NewUpstreamQueryFailure(err)
	}

	texts := make([]string, 0, len(passages))
	for _, p := range passages {
		texts = append(texts, p.Text)
	}
	systemPrompt := renderPrompt(template, strings.Join(texts, "\n\n"), query)

	answer, err := s.model.Complete(ctx, systemPrompt, query)
	if err != nil {
		return "", apperrors.NewUpstreamQueryFailure(err)
	}
	return answer, nil
}
