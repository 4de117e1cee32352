package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pawminder/pawminder/internal/config"
)

// Client posts webhook payloads with a short immediate retry pass.
// Longer-lived retries belong to the RetryQueue.
type Client struct {
	http       *http.Client
	maxRetries int
}

// NewClient builds a client from the runtime HTTP configuration.
func NewClient() *Client {
	return &Client{
		http:       &http.Client{Timeout: config.Global.HTTP.Timeout},
		maxRetries: config.Global.HTTP.MaxRetries,
	}
}

// SendResult reports a completed post, successful or not.
type SendResult struct {
	StatusCode int
	Duration   time.Duration
	Attempts   int
	Error      error
}

// immediate pauses between in-call retry attempts. Attempt 0 goes out
// right away.
var immediateRetryDelays = []time.Duration{0, 5 * time.Second, 30 * time.Second}

// Post delivers body to url, retrying on network errors, HTTP 429 and
// 5xx. Other client errors fail immediately.
func (c *Client) Post(ctx context.Context, url, contentType string, body []byte) *SendResult {
	result := &SendResult{}
	start := time.Now()
	defer func() { result.Duration = time.Since(start) }()

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		result.Attempts = attempt + 1

		if attempt > 0 {
			delay := immediateRetryDelays[len(immediateRetryDelays)-1]
			if attempt < len(immediateRetryDelays) {
				delay = immediateRetryDelays[attempt]
			}
			select {
			case <-ctx.Done():
				result.Error = ctx.Err()
				return result
			case <-time.After(delay):
			}
		}

		status, retryable, err := c.attempt(ctx, url, contentType, body)
		result.StatusCode = status
		result.Error = err
		if err == nil || !retryable {
			return result
		}
	}

	if result.Error == nil {
		result.Error = fmt.Errorf("webhook delivery gave up after %d attempts", result.Attempts)
	}
	return result
}

// attempt runs one POST. retryable reports whether a failure is worth
// another attempt.
func (c *Client) attempt(ctx context.Context, url, contentType string, body []byte) (status int, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, false, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", "Pawminder/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, true, fmt.Errorf("posting webhook: %w", err)
	}
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return resp.StatusCode, false, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return resp.StatusCode, true, fmt.Errorf("rate limited (HTTP 429)")
	case resp.StatusCode >= 500:
		return resp.StatusCode, true, fmt.Errorf("server error (HTTP %d): %s", resp.StatusCode, respBody)
	default:
		return resp.StatusCode, false, fmt.Errorf("client error (HTTP %d): %s", resp.StatusCode, respBody)
	}
}
