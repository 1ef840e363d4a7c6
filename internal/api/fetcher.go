package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ranked-progress/internal/backoff"
	"ranked-progress/internal/constants"
	"ranked-progress/internal/runctx"

	"github.com/valyala/fasthttp"
)

// Fetcher performs a GET and returns the body of a 2xx response.
// Non-2xx responses come back as *StatusError.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

type HTTPFetcher struct {
	client  *fasthttp.Client
	timeout time.Duration
}

func NewHTTPFetcher(client *fasthttp.Client) *HTTPFetcher {
	if client == nil {
		client = &fasthttp.Client{
			MaxConnsPerHost:     16,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		}
	}
	return &HTTPFetcher{client: client, timeout: constants.ExternalAPITimeout}
}

func (f *HTTPFetcher) Get(ctx context.Context, url string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline := time.Now().Add(f.timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	if err := f.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if code := resp.StatusCode(); code < 200 || code >= 300 {
		return nil, &StatusError{Code: code, URL: redactKey(url), Body: truncate(string(resp.Body()), 256)}
	}

	// resp is returned to the pool on exit
	body := append([]byte(nil), resp.Body()...)
	return body, nil
}

// RetryingFetcher retries transient statuses according to a backoff policy.
type RetryingFetcher struct {
	next   Fetcher
	policy backoff.Policy
}

func NewRetryingFetcher(next Fetcher, policy backoff.Policy) *RetryingFetcher {
	if policy.Retryable == nil {
		policy.Retryable = IsTransient
	}
	return &RetryingFetcher{next: next, policy: policy}
}

func (f *RetryingFetcher) Get(ctx context.Context, url string) ([]byte, error) {
	policy := f.policy
	policy.Logger = runctx.Logger(ctx, policy.Logger).With().Str("url", redactKey(url)).Logger()

	var body []byte
	err := policy.Do(ctx, func(ctx context.Context) error {
		var err error
		body, err = f.next.Get(ctx, url)
		return err
	})
	if errors.Is(err, backoff.ErrExhausted) {
		return nil, fmt.Errorf("%w: %w", ErrRateLimitExceeded, err)
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
