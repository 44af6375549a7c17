// Package netutil provides the HTTP plumbing shared by registry clients:
// a retrying transport, size-capped readers, URL helpers and TLS defaults.
package netutil

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"
)

// RetryTransport wraps an http.RoundTripper with bounded retries for
// transient failures: 429, 502, 503, 504 and transport errors.
// Backoff is exponential and honours Retry-After. Waiting stops as soon as
// the request context is done.
type RetryTransport struct {
	// Base is the underlying transport.
	// Default: http.DefaultTransport if nil.
	Base http.RoundTripper

	// OnRetry is called before each retry with the 1-based attempt number,
	// the wait and the status code (0 for transport errors).
	OnRetry func(attempt int, wait time.Duration, statusCode int)

	// MaxRetries is the maximum number of retry attempts.
	// Default: 3 if zero. Negative disables retries.
	MaxRetries int

	// InitialBackoff is the initial backoff duration.
	// Default: 1s if zero.
	InitialBackoff time.Duration

	// MaxBackoff caps any single wait.
	// Default: 30s if zero.
	MaxBackoff time.Duration
}

// NewRetryTransport wraps base with default retry settings.
func NewRetryTransport(base http.RoundTripper, maxRetries int) *RetryTransport {
	return &RetryTransport{Base: base, MaxRetries: maxRetries}
}

// RoundTrip implements http.RoundTripper.
func (t *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	maxRetries := t.MaxRetries
	switch {
	case maxRetries == 0:
		maxRetries = 3
	case maxRetries < 0:
		maxRetries = 0
	}
	initial := durationOr(t.InitialBackoff, time.Second)
	ceiling := durationOr(t.MaxBackoff, 30*time.Second)

	ctx := req.Context()
	for attempt := 0; ; attempt++ {
		attemptReq, err := rewind(req)
		if err != nil {
			return nil, err
		}

		resp, err := base.RoundTrip(attemptReq)
		if err == nil && !isRetryableStatus(resp.StatusCode) {
			return resp, nil
		}
		if err != nil && !isRetryableError(ctx, err) {
			return nil, err
		}
		if attempt >= maxRetries {
			return resp, err
		}

		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		wait := backoff(attempt, initial, ceiling, resp)
		if t.OnRetry != nil {
			t.OnRetry(attempt+1, wait, status)
		}
		if resp != nil {
			_ = resp.Body.Close()
		}

		if err := sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

// rewind clones req with a fresh body for another attempt.
func rewind(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		clone.Body = body
	}
	return clone, nil
}

func isRetryableError(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// backoff returns the wait before the next attempt. Retry-After, in seconds
// or as an HTTP date, takes precedence over initial*2^attempt.
func backoff(attempt int, initial, ceiling time.Duration, resp *http.Response) time.Duration {
	if resp != nil {
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if seconds, err := strconv.Atoi(ra); err == nil {
				return min(time.Duration(seconds)*time.Second, ceiling)
			}
			if at, err := http.ParseTime(ra); err == nil {
				d := time.Until(at)
				if d < 0 {
					return initial
				}
				return min(d, ceiling)
			}
		}
	}

	d := initial << attempt
	if d <= 0 || d > ceiling {
		return ceiling
	}
	return d
}

func durationOr(d, def time.Duration) time.Duration {
	if d == 0 {
		return def
	}
	return d
}

func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests, // 429
		http.StatusBadGateway,         // 502
		http.StatusServiceUnavailable, // 503
		http.StatusGatewayTimeout:     // 504
		return true
	default:
		return false
	}
}

// IsRetryableStatus reports whether statusCode is retried by RetryTransport.
func IsRetryableStatus(statusCode int) bool {
	return isRetryableStatus(statusCode)
}
