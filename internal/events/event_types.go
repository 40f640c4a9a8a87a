package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered        EventType = "user_registered"
	EventRegistrationConfirmed EventType = "registration_confirmed"
	EventAnswerDelivered       EventType = "answer_delivered"
	EventGrantsNotified        EventType = "grants_notified"
	EventGrantsIngested        EventType = "grants_ingested"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New builds an event with a fresh id and timestamp.
func New(eventType EventType, userID string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Name string `json:"name"`
}

// RegistrationConfirmedPayload payload.
type RegistrationConfirmedPayload struct {
	City     string `json:"city,omitempty"`
	Interest string `json:"interest,omitempty"`
	OptedOut bool   `json:"opted_out,omitempty"`
}

// AnswerDeliveredPayload payload.
type AnswerDeliveredPayload struct {
	QuestionPreview string `json:"question_preview"`
}

// GrantsNotifiedPayload payload.
type GrantsNotifiedPayload struct {
	RunID    string   `json:"run_id"`
	NewCodes []string `json:"new_codes"`
}

// GrantsIngestedPayload payload.
type GrantsIngestedPayload struct {
	Keyword string `json:"keyword"`
	Stored  int    `json:"stored"`
	Failed  int    `json:"failed"`
}
