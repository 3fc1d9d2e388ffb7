package cart

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"litverse-be/internal/logger"

	"go.uber.org/zap"
)

const (
	defaultMaxAttempts  = 4
	defaultBaseDelay    = 10 * time.Millisecond
	defaultJitterFactor = 0.3
)

type retryConfig struct {
	maxAttempts  int
	baseDelay    time.Duration
	jitterFactor float64
}

// retryOnConflict re-runs fn while it fails with ErrCartConflict, backing off
// exponentially (baseDelay, 2×, 4×, ...) with jitter. Other errors fail fast.
func retryOnConflict(ctx context.Context, cfg retryConfig, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt < cfg.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := cfg.baseDelay * time.Duration(1<<(attempt-1))
			jitter := rand.Float64() * float64(delay) * cfg.jitterFactor //nolint:gosec
			backoff := delay + time.Duration(jitter)

			logger.FromCtx(ctx).Debug("retrying cart write after conflict",
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
			)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !errors.Is(lastErr, ErrCartConflict) {
			return lastErr
		}
	}

	return lastErr
}
