// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package oracle

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/time/rate"
)

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

type retrying struct {
	inner      Generator
	maxRetries int
}

// WithRetry retries failed calls with exponential backoff (1s, 2s, 4s, ...).
// When maxRetries is 0 or less, 3 is used. Calls against an unavailable
// backend are not retried.
func WithRetry(gen Generator, maxRetries int) Generator {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &retrying{inner: gen, maxRetries: maxRetries}
}

func (r *retrying) Complete(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", asProviderError("retry", ctx.Err())
			case <-time.After(backoff):
			}
		}

		out, err := r.inner.Complete(ctx, prompt)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if errors.Is(err, ErrUnavailable) || ctx.Err() != nil {
			break
		}
	}
	if IsProviderError(lastErr) {
		return "", lastErr
	}
	return "", &ProviderError{Provider: "retry", Err: fmt.Errorf("after %d retries: %w", r.maxRetries, lastErr)}
}

func (r *retrying) Available() bool { return Available(r.inner) }

type limited struct {
	inner   Generator
	limiter *rate.Limiter
}

// WithRateLimit spaces calls to at most rps per second with the given burst.
// A non-positive rps returns gen unchanged.
func WithRateLimit(gen Generator, rps float64, burst int) Generator {
	if rps <= 0 {
		return gen
	}
	if burst <= 0 {
		burst = 1
	}
	return &limited{inner: gen, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (l *limited) Complete(ctx context.Context, prompt string) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", &ProviderError{Provider: "ratelimit", Err: err}
	}
	return l.inner.Complete(ctx, prompt)
}

func (l *limited) Available() bool { return Available(l.inner) }
