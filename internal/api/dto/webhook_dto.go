package dto

import "strings"

// WebhookRequest is the inbound UltraMsg webhook envelope.
type WebhookRequest struct {
	Data WebhookData `json:"data"`
}

// WebhookData carries the message fields the service consumes.
type WebhookData struct {
	ID       string `json:"id"`
	From     string `json:"from"`
	Body     string `json:"body"`
	Pushname string `json:"pushname"`
}

// Validate reports the required fields missing from the payload. The
// handler fails closed on any of them instead of passing empty values
// into the registration flow.
func (r *WebhookRequest) Validate() []string {
	var missing []string
	if strings.TrimSpace(r.Data.From) == "" {
		missing = append(missing, "data.from")
	}
	if strings.TrimSpace(r.Data.Body) == "" {
		missing = append(missing, "data.body")
	}
	return missing
}
