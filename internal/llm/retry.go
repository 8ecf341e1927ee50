package llm

import (
	"context"
	"errors"
	"log"
	"time"

	"clinex/internal/domain"
	"clinex/internal/port"
)

// maxRateLimitWait caps how long a single Retry-After is honored.
const maxRateLimitWait = 2 * time.Minute

// RetryClient re-attempts transient model failures. Rate limits wait for the
// server's Retry-After; unavailable backends use exponential backoff starting
// at one second. Timeouts are not retried: a model that cannot answer within
// its deadline once will not answer a second identical prompt either, and the
// batch moves on.
type RetryClient struct {
	provider   string
	inner      port.ModelClient
	maxRetries int
	sleep      func(ctx context.Context, d time.Duration) error
}

// WithRetry wraps a client with the provider's retry policy.
func WithRetry(provider string, inner port.ModelClient, maxRetries int) *RetryClient {
	return &RetryClient{
		provider:   provider,
		inner:      inner,
		maxRetries: maxRetries,
		sleep:      sleepCtx,
	}
}

func (r *RetryClient) Complete(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		reply, err := r.inner.Complete(ctx, prompt)
		if err == nil {
			return reply, nil
		}
		lastErr = err

		if errors.Is(err, domain.ErrModelTimeout) || ctx.Err() != nil {
			return "", err
		}
		if attempt == r.maxRetries {
			break
		}

		wait := time.Duration(1<<attempt) * time.Second
		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			wait = rlErr.RetryAfter
			if wait > maxRateLimitWait {
				wait = maxRateLimitWait
			}
		} else if !errors.Is(err, domain.ErrModelUnavailable) {
			// Malformed responses and the like are not transient.
			return "", err
		}

		log.Printf("llm.RetryClient: %s attempt %d failed, retrying in %s: %v",
			r.provider, attempt+1, wait, err)
		if serr := r.sleep(ctx, wait); serr != nil {
			return "", serr
		}
	}
	return "", lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
