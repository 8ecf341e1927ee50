// Package llm holds what is shared between the model backends: the provider
// registry, the error taxonomy, and the retry wrapper.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"clinex/internal/domain"
)

// RateLimitError indicates a model backend returned HTTP 429.
type RateLimitError struct {
	Err        error
	RetryAfter time.Duration
	Provider   string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError creates a RateLimitError. If retryAfterSecs is 0, defaults to 60s.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *RateLimitError {
	if retryAfterSecs <= 0 {
		retryAfterSecs = 60
	}
	return &RateLimitError{
		Err:        err,
		RetryAfter: time.Duration(retryAfterSecs) * time.Second,
		Provider:   provider,
	}
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}

// ClassifyTransportError folds an http.Client error into the batch error
// taxonomy: deadline overruns become ErrModelTimeout, everything else
// ErrModelUnavailable.
func ClassifyTransportError(provider string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("calling %s API: %w: %v", provider, domain.ErrModelTimeout, err)
	}
	return fmt.Errorf("calling %s API: %w: %v", provider, domain.ErrModelUnavailable, err)
}

// StatusError folds a non-200 response into the taxonomy, preserving the body
// for the log.
func StatusError(provider string, status int, body []byte) error {
	return fmt.Errorf("%s API error (status %d): %w: %s", provider, status, domain.ErrModelUnavailable, string(body))
}
