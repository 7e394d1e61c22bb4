package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/promptbay/internal/domain"
)

// ErrWebhookUnavailable is returned when the submission webhook cannot be
// reached at all. HTTP error statuses do not produce it.
var ErrWebhookUnavailable = errors.New("submission webhook unavailable")

// WebhookConfig holds configuration for the submission webhook.
type WebhookConfig struct {
	URL     string
	Timeout time.Duration
	Retries int
}

// WebhookForwarder posts submission forms to the spreadsheet webhook.
type WebhookForwarder struct {
	client *resty.Client
	url    string
}

// NewWebhookForwarder creates a forwarder. An empty URL yields a disabled
// forwarder.
func NewWebhookForwarder(cfg *WebhookConfig) *WebhookForwarder {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := resty.New()
	client.SetHeader("Content-Type", "application/json")
	client.SetTimeout(timeout)
	if cfg.Retries > 0 {
		client.SetRetryCount(cfg.Retries)
		client.SetRetryWaitTime(200 * time.Millisecond)
	}

	return &WebhookForwarder{
		client: client,
		url:    cfg.URL,
	}
}

// Enabled reports whether a webhook URL is configured.
func (w *WebhookForwarder) Enabled() bool {
	return w.url != ""
}

// Forward sends the form as JSON and returns the response status code. The
// response body is ignored.
func (w *WebhookForwarder) Forward(ctx context.Context, form *domain.SubmissionForm) (int, error) {
	if !w.Enabled() {
		return 0, fmt.Errorf("%w: no url configured", ErrWebhookUnavailable)
	}

	resp, err := w.client.R().
		SetContext(ctx).
		SetBody(form).
		Post(w.url)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrWebhookUnavailable, err)
	}
	return resp.StatusCode(), nil
}
