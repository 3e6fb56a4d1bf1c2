package util

import (
	"context"
	"math/rand/v2"
	"time"

	"screen_balance_backend/pkg/logger"

	"go.uber.org/zap"
)

type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	Jitter        bool
}

func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      2 * time.Second,
		BackoffFactor: 2.0,
		Jitter:        true,
	}
}

// WithRetry runs op until it succeeds, returns a non-transient error, runs out of
// attempts, or ctx is done. Only TransientStoreError is retried.
func WithRetry(ctx context.Context, cfg *RetryConfig, name string, op func() error) error {
	if cfg == nil {
		cfg = DefaultRetryConfig()
	}

	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		err := op()
		if err == nil {
			if attempt > 0 {
				logger.Log.Info("operation succeeded after retry",
					zap.String("op", name), zap.Int("attempts", attempt+1))
			}
			return nil
		}
		lastErr = err

		if !IsTransient(err) || attempt == cfg.MaxAttempts-1 {
			break
		}

		delay := backoff(attempt, cfg)
		logger.Log.Warn("transient store error, retrying",
			zap.String("op", name),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}

func backoff(attempt int, cfg *RetryConfig) time.Duration {
	delay := float64(cfg.InitialDelay)
	for i := 0; i < attempt; i++ {
		delay *= cfg.BackoffFactor
	}
	if ceiling := float64(cfg.MaxDelay); cfg.MaxDelay > 0 && delay > ceiling {
		delay = ceiling
	}
	if cfg.Jitter && delay > 0 {
		// ±25%
		delay += delay * (rand.Float64()*0.5 - 0.25)
	}
	return time.Duration(delay)
}
