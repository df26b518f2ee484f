package anythingllm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kvist-dev/guestpass/internal/domain"
)

const (
	defaultMaxAttempts    = 3
	defaultRetryBaseDelay = time.Second
)

// statusError is a non-2xx platform response. 4xx responses are treated as
// permanent (re-sending the same request cannot fix them); everything else is
// presumed transient.
type statusError struct {
	Op     string
	Code   int
	Detail string
}

func (e *statusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: status %d", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Code, e.Detail)
}

func retryable(err error) bool {
	if domain.Permanent(err) {
		return false
	}

	var status *statusError
	if errors.As(err, &status) {
		if status.Code == http.StatusTooManyRequests {
			return true
		}
		return status.Code < http.StatusBadRequest || status.Code >= http.StatusInternalServerError
	}

	return true
}

// withRetry runs op up to maxAttempts times with linear backoff
// (baseDelay * attemptNumber between attempts), returning the last error once
// attempts are exhausted. Deletions never go through here; they are single
// best-effort calls.
func (c *Client) withRetry(ctx context.Context, op func(context.Context) error) error {
	maxAttempts := c.cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	baseDelay := c.cfg.RetryBaseDelay
	if baseDelay <= 0 {
		baseDelay = defaultRetryBaseDelay
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) || attempt == maxAttempts {
			return lastErr
		}

		if err := c.clock.Sleep(ctx, baseDelay*time.Duration(attempt)); err != nil {
			return lastErr
		}
	}

	return lastErr
}
