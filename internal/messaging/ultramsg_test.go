package messaging

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/grant-notifier/internal/config"
)

func newTestClient(serverURL string) *UltraMsgClient {
	return NewUltraMsgClient(config.UltraMsgConfig{
		BaseURL:    serverURL,
		InstanceID: "instance123",
		Token:      "secret-token",
	})
}

func TestSendPostsChatMessage(t *testing.T) {
	var gotPath string
	var gotPayload map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := newTestClient(server.URL).Send(context.Background(), "5551234", "📢 hola")
	require.NoError(t, err)

	assert.Equal(t, "/instance123/messages/chat", gotPath)
	assert.Equal(t, map[string]string{
		"token": "secret-token",
		"to":    "5551234",
		"body":  "📢 hola",
	}, gotPayload)
}

func TestSendSurfacesUpstreamRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid token"}`))
	}))
	defer server.Close()

	err := newTestClient(server.URL).Send(context.Background(), "5551234", "hola")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Contains(t, err.Error(), "invalid token")
}
