package sinks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/viniciusvds1/rubro-news-pipeline/pkg/httpclient"
)

// webhookSink POSTs content events to an HTTP endpoint, typically the site's
// revalidation hook so freshly saved articles render without a redeploy.
type webhookSink struct {
	id      string
	typ     string
	method  string
	url     string
	headers map[string]string
	client  *resty.Client
}

func newWebhookSink(_ context.Context, cfg SinkConfig, _ Logger) (Sink, error) {
	if cfg.Webhook == nil {
		return nil, fmt.Errorf("sink %q missing webhook configuration", cfg.ID)
	}

	client := httpclient.NewRestyHTTPClient(time.Duration(cfg.Webhook.TimeoutSeconds) * time.Second)

	return &webhookSink{
		id:      cfg.ID,
		typ:     TypeWebhook,
		method:  cfg.Webhook.Method,
		url:     cfg.Webhook.URL,
		headers: cfg.Webhook.Headers,
		client:  client,
	}, nil
}

func (h *webhookSink) ID() string   { return h.id }
func (h *webhookSink) Type() string { return h.typ }

func (h *webhookSink) Send(ctx context.Context, evt ContentEvent) error {
	req := h.client.R().
		SetContext(ctx).
		SetBody(evt)

	if len(h.headers) > 0 {
		req.SetHeaders(h.headers)
	}

	req.SetHeader("Content-Type", "application/json")

	resp, err := req.Execute(h.method, h.url)
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	if resp.IsError() {
		snippet := readBodySnippet(resp.Body())
		return fmt.Errorf("webhook response status %d: %s", resp.StatusCode(), snippet)
	}
	return nil
}

func readBodySnippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > 512 {
		body = body[:512]
	}
	return strings.TrimSpace(string(body))
}
