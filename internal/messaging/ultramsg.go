// Package messaging delivers outbound WhatsApp messages through UltraMsg.
package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spec-kit/grant-notifier/internal/config"
)

// Sender is the outbound message contract consumed by the services.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

// UltraMsgClient posts chat messages to the UltraMsg instance endpoint.
type UltraMsgClient struct {
	baseURL    string
	instanceID string
	token      string
	http       *http.Client
}

// NewUltraMsgClient builds the client from configuration.
func NewUltraMsgClient(cfg config.UltraMsgConfig) *UltraMsgClient {
	return &UltraMsgClient{
		baseURL:    cfg.BaseURL,
		instanceID: cfg.InstanceID,
		token:      cfg.Token,
		http:       &http.Client{Timeout: 15 * time.Second},
	}
}

// Send delivers body to the recipient's WhatsApp number.
func (c *UltraMsgClient) Send(ctx context.Context, to, body string) error {
	payload, err := json.Marshal(map[string]string{
		"token": c.token,
		"to":    to,
		"body":  body,
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s/messages/chat", c.baseURL, c.instanceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("ultramsg send to %s: status %d: %s", to, resp.StatusCode, snippet)
	}
	return nil
}
