package notify

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

// SMSSender sends a short text message.
type SMSSender interface {
	Send(ctx context.Context, to, body string) error
}

// WebhookSMS posts messages to an HTTP SMS gateway.
type WebhookSMS struct {
	url   string
	token string
	http  *http.Client
}

// NewWebhookSMS returns nil when url is empty.
func NewWebhookSMS(url, token string) *WebhookSMS {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil
	}
	return &WebhookSMS{
		url:   url,
		token: strings.TrimSpace(token),
		http:  &http.Client{Timeout: 5 * time.Second},
	}
}

// Send posts {"to","body"} as JSON.
func (s *WebhookSMS) Send(ctx context.Context, to, body string) error {
	raw, err := json.Marshal(map[string]string{"to": to, "body": body})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("sms webhook: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.New("sms webhook returned non-2xx")
	}
	return nil
}
