package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"ranked-progress/internal/config"
	"ranked-progress/internal/constants"
	"ranked-progress/internal/domain"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

type webhookPayload struct {
	Content string `json:"content"`
}

// WebhookReporter posts the summary to a chat webhook. Delivery is attempted
// once; failures are logged and never returned to the caller.
type WebhookReporter struct {
	url    string
	client *fasthttp.Client
	logger zerolog.Logger
}

func NewWebhookReporter(cfg *config.Config, logger zerolog.Logger) *WebhookReporter {
	return NewWebhookReporterWithClient(cfg.WebhookURL, &fasthttp.Client{
		ReadTimeout:  constants.WebhookTimeout,
		WriteTimeout: constants.WebhookTimeout,
	}, logger)
}

func NewWebhookReporterWithClient(url string, client *fasthttp.Client, logger zerolog.Logger) *WebhookReporter {
	return &WebhookReporter{url: url, client: client, logger: logger}
}

// Publish reports whether the webhook accepted the summary.
func (r *WebhookReporter) Publish(ctx context.Context, results []domain.AggregateResult) bool {
	summary := Format(results)

	if r.url == "" {
		r.logger.Warn().Str("summary", summary).Msg("no webhook configured, summary not sent")
		return false
	}
	if n := utf8.RuneCountInString(summary); n > constants.WebhookContentLimit {
		r.logger.Warn().Int("length", n).Int("limit", constants.WebhookContentLimit).Msg("summary exceeds webhook content limit")
	}

	if err := r.send(ctx, summary); err != nil {
		r.logger.Error().Err(err).Str("summary", summary).Msg("webhook delivery failed")
		return false
	}

	r.logger.Info().Int("players", len(results)).Msg("summary delivered")
	return true
}

func (r *WebhookReporter) send(ctx context.Context, content string) error {
	payload, err := json.Marshal(webhookPayload{Content: content})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(r.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(payload)

	deadline := time.Now().Add(constants.WebhookTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	if err := r.client.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	if code := resp.StatusCode(); code < 200 || code >= 300 {
		return fmt.Errorf("webhook error: status=%d body=%s", code, truncate(string(resp.Body()), 256))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
