// Package notify delivers report text to a chat incoming webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"

	boterrors "github.com/athlogic/salesbot/internal/errors"
)

// Sink is the delivery contract the report runner depends on.
type Sink interface {
	Send(ctx context.Context, text string) error
}

// Notifier posts messages to a Slack-compatible incoming webhook.
type Notifier struct {
	webhookURL string
	username   string
	iconEmoji  string
	httpClient *http.Client
}

var _ Sink = (*Notifier)(nil)

// NotifierOption defines a function type to modify the Notifier instance.
type NotifierOption func(*Notifier)

// WithHTTPClient overrides the HTTP client (primarily for testing).
func WithHTTPClient(client *http.Client) NotifierOption {
	return func(n *Notifier) {
		n.httpClient = client
	}
}

func New(webhookURL, username, iconEmoji string, options ...NotifierOption) (*Notifier, error) {
	if webhookURL == "" {
		return nil, errors.New("[New] webhook URL is required")
	}

	n := &Notifier{
		webhookURL: webhookURL,
		username:   username,
		iconEmoji:  iconEmoji,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range options {
		opt(n)
	}

	return n, nil
}

type webhookPayload struct {
	Text      string `json:"text"`
	Username  string `json:"username"`
	IconEmoji string `json:"icon_emoji"`
}

// Send posts the text to the webhook. Delivery is fire-and-forget: a
// non-200 status is reported as a failure but never retried.
func (n *Notifier) Send(ctx context.Context, text string) error {
	raw, err := json.Marshal(webhookPayload{
		Text:      text,
		Username:  n.username,
		IconEmoji: n.iconEmoji,
	})
	if err != nil {
		return errors.Wrap(err, "[Send] json.Marshal")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(raw))
	if err != nil {
		return errors.Wrap(err, "[Send] http.NewRequestWithContext")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(boterrors.ErrNotifyFailed, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return errors.Wrapf(boterrors.ErrNotifyFailed, "status %d", resp.StatusCode)
	}
	return nil
}
