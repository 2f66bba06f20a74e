// Package resilient decorates a driven.Index with upsert retries and an
// outbound rate limit.
package resilient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
	"github.com/custodia-labs/filings-cli/internal/core/ports/driven"
	"github.com/custodia-labs/filings-cli/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.Index = (*Index)(nil)

// Defaults.
const (
	DefaultAttempts = 3
	DefaultDelay    = 200 * time.Millisecond
)

// Index retries failed upserts with exponential backoff and rate-limits
// every call. Queries are never retried; their deadline belongs to the caller.
type Index struct {
	next     driven.Index
	limiter  *rate.Limiter
	attempts uint
	delay    time.Duration
}

// Option configures the decorator.
type Option func(*Index)

// WithRetryAttempts sets the total number of upsert attempts. Values below 1 mean 1.
func WithRetryAttempts(n uint) Option {
	return func(x *Index) {
		if n < 1 {
			n = 1
		}
		x.attempts = n
	}
}

// WithRetryDelay sets the initial backoff delay.
func WithRetryDelay(d time.Duration) Option {
	return func(x *Index) {
		x.delay = d
	}
}

// WithRateLimit allows perSecond calls with the given burst. Zero disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(x *Index) {
		if perSecond <= 0 {
			x.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		x.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// New wraps next.
func New(next driven.Index, opts ...Option) *Index {
	x := &Index{
		next:     next,
		attempts: DefaultAttempts,
		delay:    DefaultDelay,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

func (x *Index) wait(ctx context.Context) error {
	if x.limiter == nil {
		return nil
	}
	if err := x.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
	}
	return nil
}

// retryable reports whether an upsert error may succeed on a later attempt.
func retryable(err error) bool {
	return !errors.Is(err, domain.ErrInvalidInput) &&
		!errors.Is(err, domain.ErrEmbeddingUnavailable) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

// Upsert writes the chunk, retrying transient failures.
func (x *Index) Upsert(ctx context.Context, chunkID, text string, metadata map[string]string) error {
	return retry.Do(
		func() error {
			if err := x.wait(ctx); err != nil {
				return retry.Unrecoverable(err)
			}
			return x.next.Upsert(ctx, chunkID, text, metadata)
		},
		retry.Context(ctx),
		retry.Attempts(x.attempts),
		retry.Delay(x.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			logger.Debug("Upsert %s attempt %d failed: %v", chunkID, n+1, err)
		}),
	)
}

// Query waits for the rate limiter, then queries once.
func (x *Index) Query(ctx context.Context, text string, topK int, filter map[string]string) ([]driven.IndexMatch, error) {
	if err := x.wait(ctx); err != nil {
		return nil, err
	}
	return x.next.Query(ctx, text, topK, filter)
}

// Close closes the wrapped index.
func (x *Index) Close() error {
	return x.next.Close()
}
