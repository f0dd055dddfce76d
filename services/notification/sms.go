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

// SMSChannel delivers texts through an SMS provider webhook (Twilio-style
// relay). The subject is ignored; SMS has no subject line.
type SMSChannel struct {
	url    string
	token  string
	client *http.Client
}

func NewSMSChannel(url, token string) *SMSChannel {
	return &SMSChannel{
		url:   strings.TrimSpace(url),
		token: strings.TrimSpace(token),
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (c *SMSChannel) Name() string { return "sms" }

func (c *SMSChannel) Send(ctx context.Context, recipient, _, body string) error {
	if c.url == "" {
		return &ExternalServiceError{Service: "sms", Err: errors.New("webhook url not configured")}
	}

	raw, err := json.Marshal(map[string]string{
		"to":   recipient,
		"body": body,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &ExternalServiceError{Service: "sms", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ExternalServiceError{Service: "sms", Err: fmt.Errorf("provider returned %d", resp.StatusCode)}
	}
	return nil
}
