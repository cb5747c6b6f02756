package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/task-tracker-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestWithRetry(t *testing.T) {
	t.Parallel()

	conflict := &pgconn.PgError{Code: serializationFailureCode}

	t.Run("succeeds after transient conflicts", func(t *testing.T) {
		t.Parallel()
		calls := 0
		err := WithRetry(context.Background(), 3, func(ctx context.Context) error {
			calls++
			if calls < 3 {
				return conflict
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up with ErrConflict", func(t *testing.T) {
		t.Parallel()
		calls := 0
		err := WithRetry(context.Background(), 2, func(ctx context.Context) error {
			calls++
			return conflict
		})
		assert.ErrorIs(t, err, store.ErrConflict)
		assert.Equal(t, 3, calls)
	})

	t.Run("does not retry other errors", func(t *testing.T) {
		t.Parallel()
		denied := errors.New("permission denied")
		calls := 0
		err := WithRetry(context.Background(), 5, func(ctx context.Context) error {
			calls++
			return denied
		})
		assert.ErrorIs(t, err, denied)
		assert.Equal(t, 1, calls)
	})

	t.Run("zero retries runs once", func(t *testing.T) {
		t.Parallel()
		calls := 0
		err := WithRetry(context.Background(), 0, func(ctx context.Context) error {
			calls++
			return conflict
		})
		assert.ErrorIs(t, err, store.ErrConflict)
		assert.Equal(t, 1, calls)
	})
}
