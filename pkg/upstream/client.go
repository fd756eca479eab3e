// Package upstream provides the shared HTTP client used for all third-party
// provider calls. Both the airport inference provider and the flight-price
// provider are rate-limited HTTP APIs, so they share one retry/backoff policy.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// ErrUnavailable is returned when a provider cannot be reached after the
// retry budget is exhausted, including per-call timeouts.
var ErrUnavailable = errors.New("upstream unavailable")

// Config controls the retry behavior of a provider client.
type Config struct {
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Timeout      time.Duration
}

// DefaultConfig returns the retry policy applied to all providers.
func DefaultConfig() Config {
	return Config{
		RetryMax:     3,
		RetryWaitMin: 500 * time.Millisecond,
		RetryWaitMax: 8 * time.Second,
		Timeout:      30 * time.Second,
	}
}

// NewClient builds a retryablehttp client with exponential backoff.
func NewClient(cfg Config) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	client.RetryWaitMin = cfg.RetryWaitMin
	client.RetryWaitMax = cfg.RetryWaitMax
	client.HTTPClient.Timeout = cfg.Timeout
	client.Logger = nil
	client.CheckRetry = retryPolicy()
	return client
}

// retryPolicy retries transport errors, rate limiting, and 5xx responses.
// Context cancellation and deadlines stop retrying immediately: a timed-out
// branch must surface to the caller, not block the batch.
func retryPolicy() retryablehttp.CheckRetry {
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				return false, ctx.Err()
			}
		}

		if resp != nil {
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
				return true, fmt.Errorf("wrong status code: %d", resp.StatusCode)
			}
		}
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
}

// WrapTransportErr converts a transport-level failure into ErrUnavailable,
// preserving the cause for logs.
func WrapTransportErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
