package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/grant-notifier/internal/events"
	"github.com/spec-kit/grant-notifier/internal/userstore"
)

type stubQuestionAnswerer struct {
	answer    string
	err       error
	questions []string
}

func (s *stubQuestionAnswerer) AnswerQuestion(_ context.Context, question string) (string, error) {
	s.questions = append(s.questions, question)
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

type registrationFixture struct {
	store     *userstore.Store
	assistant *stubQuestionAnswerer
	sender    *fakeSender
	svc       *RegistrationService
}

func newRegistrationFixture(t *testing.T) *registrationFixture {
	t.Helper()
	f := &registrationFixture{
		store:     userstore.New(filepath.Join(t.TempDir(), "usuarios.json")),
		assistant: &stubQuestionAnswerer{answer: "ℹ️ Hay 3 convocatorias abiertas."},
		sender:    &fakeSender{},
	}
	f.svc = NewRegistrationService(RegistrationDependencies{
		Store:      f.store,
		Assistant:  f.assistant,
		Sender:     f.sender,
		Dispatcher: events.NewInMemoryDispatcher(),
		Logger:     zap.NewNop(),
	})
	return f
}

func (f *registrationFixture) lastReply(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.sender.sent)
	return f.sender.sent[len(f.sender.sent)-1].Body
}

func TestFirstContactGetsConsentPrompt(t *testing.T) {
	f := newRegistrationFixture(t)

	require.NoError(t, f.svc.Handle(context.Background(), "5551234", "Ana", "Hola"))

	profile, err := f.store.Get("5551234")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "Ana", profile.Name)
	assert.False(t, profile.RegistrationConfirmed)

	reply := f.lastReply(t)
	assert.Contains(t, reply, "Hola")
	assert.Contains(t, reply, "registrar tus datos")
}

func TestOptOutConfirmsWithoutDetails(t *testing.T) {
	f := newRegistrationFixture(t)
	require.NoError(t, f.svc.Handle(context.Background(), "5551234", "Ana", "Hola"))

	require.NoError(t, f.svc.Handle(context.Background(), "5551234", "Ana", "No"))

	profile, err := f.store.Get("5551234")
	require.NoError(t, err)
	assert.True(t, profile.RegistrationConfirmed)
	assert.Nil(t, profile.City)
	assert.Nil(t, profile.Interest)
	assert.Contains(t, f.lastReply(t), "no se guardarán tus datos")
}

func TestOptInAsksForDetails(t *testing.T) {
	f := newRegistrationFixture(t)
	require.NoError(t, f.svc.Handle(context.Background(), "5551234", "Ana", "Hola"))

	require.NoError(t, f.svc.Handle(context.Background(), "5551234", "Ana", "Sí"))

	confirmed, err := f.store.IsRegistrationConfirmed("5551234")
	require.NoError(t, err)
	assert.False(t, confirmed)
	assert.Contains(t, f.lastReply(t), "ciudad y sector")
}

func TestDetailsReplyConfirmsRegistration(t *testing.T) {
	f := newRegistrationFixture(t)
	require.NoError(t, f.svc.Handle(context.Background(), "5551234", "Ana", "Hola"))

	require.NoError(t, f.svc.Handle(context.Background(), "5551234", "Ana", "Madrid, tecnología"))

	profile, err := f.store.Get("5551234")
	require.NoError(t, err)
	assert.True(t, profile.RegistrationConfirmed)
	assert.Equal(t, "Madrid", profile.CityValue())
	assert.Equal(t, "tecnología", profile.InterestValue())

	reply := f.lastReply(t)
	assert.Contains(t, reply, "Madrid")
	assert.Contains(t, reply, "tecnología")
}

func TestUnrecognizedConsentReplyRepeatsPrompt(t *testing.T) {
	f := newRegistrationFixture(t)
	require.NoError(t, f.svc.Handle(context.Background(), "5551234", "Ana", "Hola"))
	require.NoError(t, f.svc.Handle(context.Background(), "5551234", "Ana", "qué es esto"))

	require.Len(t, f.sender.sent, 2)
	assert.Equal(t, f.sender.sent[0].Body, f.sender.sent[1].Body)
}

func TestConfirmedUserGetsGroundedAnswer(t *testing.T) {
	f := newRegistrationFixture(t)
	require.NoError(t, f.svc.Handle(context.Background(), "5551234", "Ana", "Hola"))
	require.NoError(t, f.svc.Handle(context.Background(), "5551234", "Ana", "Madrid, tecnología"))

	require.NoError(t, f.svc.Handle(context.Background(), "5551234", "Ana", "¿Qué ayudas hay para mi sector?"))

	assert.Equal(t, f.assistant.answer, f.lastReply(t))

	// The question reaches the model with the interaction history.
	require.Len(t, f.assistant.questions, 1)
	assert.Contains(t, f.assistant.questions[0], "Usuario: ¿Qué ayudas hay para mi sector?")

	// Both sides of the exchange land in the log.
	recent, err := f.store.RecentInteractions("5551234", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Usuario: ¿Qué ayudas hay para mi sector?",
		"Asistente: " + f.assistant.answer,
	}, recent)
}

func TestUpstreamFailureYieldsApology(t *testing.T) {
	f := newRegistrationFixture(t)
	require.NoError(t, f.svc.Handle(context.Background(), "5551234", "Ana", "Hola"))
	require.NoError(t, f.svc.Handle(context.Background(), "5551234", "Ana", "no"))

	f.assistant.err = errors.New("rate limited")
	require.NoError(t, f.svc.Handle(context.Background(), "5551234", "Ana", "¿Hay ayudas nuevas?"))

	reply := f.lastReply(t)
	assert.Equal(t, apologyReply, reply)
	assert.NotContains(t, reply, "rate limited")

	// No assistant line is logged for a failed answer.
	recent, err := f.store.RecentInteractions("5551234", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Usuario: ¿Hay ayudas nuevas?"}, recent)
}

func TestConsentTokensAreCaseInsensitive(t *testing.T) {
	for _, token := range []string{"NO", "No Gracias", "no thanks"} {
		t.Run(token, func(t *testing.T) {
			f := newRegistrationFixture(t)
			require.NoError(t, f.svc.Handle(context.Background(), "5551234", "Ana", "Hola"))
			require.NoError(t, f.svc.Handle(context.Background(), "5551234", "Ana", token))

			confirmed, err := f.store.IsRegistrationConfirmed("5551234")
			require.NoError(t, err)
			assert.True(t, confirmed)
		})
	}
}
