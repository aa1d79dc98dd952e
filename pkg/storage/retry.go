package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultAttempts bounds how many times an operation is replayed after losing
// an optimistic-lock race.
const DefaultAttempts = 5

// RetryOnConflict runs fn until it returns something other than ErrConflict or
// the attempts are used up. fn must re-read everything it writes.
func RetryOnConflict(ctx context.Context, attempts int, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if !errors.Is(err, ErrConflict) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(i+1) * 5 * time.Millisecond):
		}
	}
	return fmt.Errorf("gave up after %d attempts: %w", attempts, err)
}
