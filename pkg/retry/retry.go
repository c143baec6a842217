package retry

import (
	"context"
	"fmt"
	"time"
)

// WithBackoff runs fn up to attempts times, sleeping base * 2^(attempt-1)
// between attempts. Applied to primary persistence writes only; best-effort
// side effects are never retried. Returns the last error wrapped in a
// retry-exhausted error when all attempts fail.
func WithBackoff(ctx context.Context, attempts int, base time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			delay := base * time.Duration(1<<(attempt-2))
			select {
			case <-ctx.Done():
				return fmt.Errorf("retry cancelled: %w", ctx.Err())
			case <-time.After(delay):
			}
		}

		if err := fn(); err != nil {
			lastErr = err
			continue
		}
		return nil
	}

	return fmt.Errorf("operation failed after %d attempts: %w", attempts, lastErr)
}
