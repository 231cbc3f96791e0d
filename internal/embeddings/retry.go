package embeddings

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Retry defaults. Backoff doubles per attempt: 1s, 2s, 4s.
const (
	defaultAttempts  = 3
	defaultBaseDelay = time.Second
)

// RetryingEmbedder wraps an Embedder with request rate limiting and
// exponential-backoff retries for transient failures. Fatal errors
// (auth, bad config) are returned immediately.
type RetryingEmbedder struct {
	inner     Embedder
	limiter   *rate.Limiter
	attempts  int
	baseDelay time.Duration
}

// WithRetry wraps an embedder. requestsPerSecond <= 0 disables rate
// limiting; attempts <= 0 uses the default of three.
func WithRetry(inner Embedder, requestsPerSecond float64, attempts int) *RetryingEmbedder {
	var limiter *rate.Limiter
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	return &RetryingEmbedder{
		inner:     inner,
		limiter:   limiter,
		attempts:  attempts,
		baseDelay: defaultBaseDelay,
	}
}

func (r *RetryingEmbedder) Name() string    { return r.inner.Name() }
func (r *RetryingEmbedder) Dimensions() int { return r.inner.Dimensions() }

func (r *RetryingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error

	for attempt := 0; attempt < r.attempts; attempt++ {
		if attempt > 0 {
			delay := r.baseDelay << (attempt - 1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		vectors, err := r.inner.Embed(ctx, texts)
		if err == nil {
			return vectors, nil
		}
		if !IsRetryable(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}
