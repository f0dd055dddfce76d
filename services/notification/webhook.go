package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// WebhookChannel posts reminder payloads to an external integration endpoint
// (Zapier, n8n, a custom receiver).
type WebhookChannel struct {
	url    string
	client *http.Client
}

func NewWebhookChannel(url string) *WebhookChannel {
	return &WebhookChannel{
		url: strings.TrimSpace(url),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *WebhookChannel) Name() string { return "webhook" }

func (c *WebhookChannel) Send(ctx context.Context, recipient, subject, body string) error {
	if c.url == "" {
		return &ExternalServiceError{Service: "webhook", Err: errors.New("url not configured")}
	}

	raw, err := json.Marshal(map[string]string{
		"type":      "appointment_reminder",
		"recipient": recipient,
		"subject":   subject,
		"message":   body,
		"timestamp": time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &ExternalServiceError{Service: "webhook", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &ExternalServiceError{Service: "webhook", Err: fmt.Errorf("endpoint returned %d", resp.StatusCode)}
	}
	return nil
}
