package database

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ssbops/ssb-build-server/pkg/config"
)

// RetryConfig controls the connection retry loop used at startup, when the
// database may still be coming up.
type RetryConfig struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffMultiple float64
}

// DefaultRetryConfig returns sensible defaults for database connection retries.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:     30,
		InitialDelay:    2 * time.Second,
		MaxDelay:        30 * time.Second,
		BackoffMultiple: 1.5,
	}
}

// NewConnectionWithRetry attempts to connect with exponential backoff. It
// blocks until a connection is established, attempts run out, or the context
// is cancelled.
func NewConnectionWithRetry(ctx context.Context, cfg *config.Config, retryConfig RetryConfig, logger *zap.Logger) (*DB, error) {
	var lastErr error
	delay := retryConfig.InitialDelay

	for attempt := 1; attempt <= retryConfig.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("database connection cancelled: %w", ctx.Err())
		default:
		}

		db, err := NewConnection(cfg)
		if err == nil {
			logger.Info("database connection established", zap.Int("attempt", attempt))
			return db, nil
		}

		lastErr = err
		logger.Warn("database connection attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", retryConfig.MaxAttempts),
			zap.Error(err))

		if attempt == retryConfig.MaxAttempts {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("database connection cancelled during retry delay: %w", ctx.Err())
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * retryConfig.BackoffMultiple)
		if delay > retryConfig.MaxDelay {
			delay = retryConfig.MaxDelay
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts, last error: %w",
		retryConfig.MaxAttempts, lastErr)
}
