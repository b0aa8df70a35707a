package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultMaxRetries = 4
	DefaultBaseDelay  = time.Second

	maxErrorBody = 512
)

// UpstreamError is returned once every attempt has failed. Err is the last failure seen.
type UpstreamError struct {
	Attempts int
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("model request failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// StatusError is a response that arrived with a non-2xx status.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API %d: %s", e.StatusCode, e.Status)
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RetryClient posts JSON and retries transport errors and non-2xx statuses with
// exponential backoff: the wait before retry k is baseDelay * 2^k.
type RetryClient struct {
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
	sleep      Sleeper
	logger     *zap.Logger
}

type Option func(*RetryClient)

func WithHTTPClient(client *http.Client) Option {
	return func(c *RetryClient) { c.httpClient = client }
}

func WithMaxRetries(n int) Option {
	return func(c *RetryClient) { c.maxRetries = n }
}

func WithBaseDelay(d time.Duration) Option {
	return func(c *RetryClient) { c.baseDelay = d }
}

func WithSleeper(s Sleeper) Option {
	return func(c *RetryClient) { c.sleep = s }
}

func NewRetryClient(logger *zap.Logger, opts ...Option) *RetryClient {
	c := &RetryClient{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		maxRetries: DefaultMaxRetries,
		baseDelay:  DefaultBaseDelay,
		sleep:      sleepContext,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send marshals body, posts it to url and returns the raw reply of the first
// successful attempt. Attempts run one after another. An attempt already in flight
// is not interrupted by ctx; a cancelled ctx only stops further retries.
func (c *RetryClient) Send(ctx context.Context, url string, body any) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	attempts := c.maxRetries + 1

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := c.backoff(attempt - 1)
			c.logger.Warn("Model request failed, retrying",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", delay),
				zap.Error(lastErr))

			if err := c.sleep(ctx, delay); err != nil {
				return nil, &UpstreamError{Attempts: attempt, Err: errors.Join(lastErr, err)}
			}
		}

		raw, err := c.do(context.WithoutCancel(ctx), url, payload)
		if err == nil {
			return raw, nil
		}
		lastErr = err
	}

	c.logger.Error("Model request retries exhausted",
		zap.Int("attempts", attempts),
		zap.Error(lastErr))

	return nil, &UpstreamError{Attempts: attempts, Err: lastErr}
}

func (c *RetryClient) backoff(retry int) time.Duration {
	return c.baseDelay << uint(retry)
}

func (c *RetryClient) do(ctx context.Context, url string, payload []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// the endpoint URL carries the access key, keep it out of errors and logs
		var urlErr *neturl.Error
		if errors.As(err, &urlErr) {
			return nil, fmt.Errorf("%s request: %w", urlErr.Op, urlErr.Err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			Body:       string(snippet),
		}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return raw, nil
}
