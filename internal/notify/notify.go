// Package notify sends the outbound ring notification over Twilio's REST
// API. It follows the same shape the pack's webhook-style messaging nodes
// use (plain *http.Client, form or JSON body, no SDK): there is no Twilio
// client library in the ecosystem this pack pulls from, so the REST call
// is made directly, matching DiscordExecutor/TelegramExecutor's pattern
// rather than reaching for an unrelated dependency.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const messagesEndpoint = "https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json"

// Config holds the Twilio credentials and sender number, sourced from
// config/env per SPEC_FULL.md §2.1.
type Config struct {
	AccountSID   string
	APIKey       string
	APIKeySecret string
	FromNumber   string
}

func (c Config) valid() bool {
	return c.AccountSID != "" && c.APIKey != "" && c.APIKeySecret != "" && c.FromNumber != ""
}

// Client sends SMS notifications over Twilio's Messages REST resource.
type Client struct {
	cfg    Config
	client *http.Client
}

// NewClient builds a Client with a bounded request timeout; the ring path
// must never let a slow or hung upstream call stall the keypad actor's
// tick loop, so callers invoke Send on a detached goroutine, not inline.
func NewClient(cfg Config) *Client {
	return &Client{cfg: cfg, client: &http.Client{Timeout: 10 * time.Second}}
}

// Send posts one SMS to toNumber. It is synchronous; the keypad actor's
// ring path wraps it in "go" so the call never blocks the actor's tick.
func (c *Client) Send(ctx context.Context, toNumber, body string) error {
	if !c.cfg.valid() {
		return fmt.Errorf("notify: twilio credentials not configured")
	}

	form := url.Values{}
	form.Set("To", toNumber)
	form.Set("From", c.cfg.FromNumber)
	form.Set("Body", body)

	endpoint := fmt.Sprintf(messagesEndpoint, c.cfg.AccountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("notify: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.cfg.APIKey, c.cfg.APIKeySecret)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: send sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notify: twilio returned status %d", resp.StatusCode)
	}
	return nil
}

// SendAsync fires Send on a detached goroutine and logs the outcome. Per
// §7's propagation policy, a notification failure is logged at warn level
// and otherwise dropped - it is never retried and never surfaced to any
// request/response.
func (c *Client) SendAsync(toNumber, body string, log *zap.Logger) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.Send(ctx, toNumber, body); err != nil {
			log.Warn("ring notification failed", zap.Error(err))
		}
	}()
}
