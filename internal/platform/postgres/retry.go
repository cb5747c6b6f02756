package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/task-tracker-api/internal/platform/logger"
	"github.com/phrazzld/task-tracker-api/internal/store"
	"github.com/sethvargo/go-retry"
)

// retryBaseDelay is the first backoff step; later steps double it.
const retryBaseDelay = 10 * time.Millisecond

// WithRetry runs fn, re-running it up to maxRetries more times while it fails
// with a retryable PostgreSQL error. fn must be safe to run more than once:
// each attempt should open its own transaction. When retries run out the last
// error is returned wrapped in store.ErrConflict.
func WithRetry(ctx context.Context, maxRetries int, fn func(ctx context.Context) error) error {
	log := logger.FromContext(ctx)

	if maxRetries < 0 {
		maxRetries = 0
	}
	backoff := retry.WithJitterPercent(20,
		retry.WithMaxRetries(uint64(maxRetries), retry.NewExponential(retryBaseDelay)))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if err != nil && IsRetryable(err) {
			log.Debug("retrying transaction after conflict",
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()))
			return retry.RetryableError(err)
		}
		return err
	})

	if err != nil && IsRetryable(err) {
		log.Warn("transaction conflict persisted after retries",
			slog.Int("attempts", attempt))
		return fmt.Errorf("%w: %v", store.ErrConflict, err)
	}
	return err
}
