// # internal/ai/retry.go
package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// RetryPolicy governs transient-failure retries for assistant calls: up to
// MaxRetries additional attempts, base delay doubling each time.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 2, BaseDelay: time.Second}
}

// AskWithRetry calls the assistant, retrying transient failures with
// exponential backoff. Authentication and not-installed errors are never
// retried and propagate immediately.
func AskWithRetry(ctx context.Context, assistant Assistant, prompt string, policy RetryPolicy) (*Response, error) {
	var lastErr error
	delay := policy.BaseDelay

	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		resp, err := assistant.Ask(ctx, prompt)
		if err == nil {
			if attempt > 0 {
				slog.Debug("assistant call succeeded after retry", "attempts", attempt+1)
			}
			return resp, nil
		}
		lastErr = err

		if !isRetriable(err) {
			return nil, err
		}
		if attempt == policy.MaxRetries {
			break
		}

		slog.Debug("assistant call failed, retrying",
			"attempt", attempt+1, "delay", delay, "error", err)
		select {
		case <-time.After(delay):
			delay *= 2
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("assistant call failed after %d attempts: %w", policy.MaxRetries+1, lastErr)
}

// isRetriable treats timeouts and generic failures as transient. Errors whose
// message indicates an authentication or installation problem will not
// succeed on retry.
func isRetriable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())

	for _, fatal := range []string{
		"auth", "api key", "unauthorized", "401", "403",
		"not installed", "executable file not found",
	} {
		if strings.Contains(msg, fatal) {
			return false
		}
	}
	return true
}
