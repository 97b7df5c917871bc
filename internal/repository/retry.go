package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xiajason/jobfirst-future/internal/domain"
)

const (
	defaultRetryAttempts = 3
	defaultRetryBackoff  = 100 * time.Millisecond
)

// withRetry runs op up to defaultRetryAttempts times with linear backoff.
// Domain sentinels and sql.ErrNoRows are returned immediately; anything still
// failing after the last attempt surfaces as ErrStoreUnavailable so callers
// know a retry with backoff is safe.
func withRetry(ctx context.Context, op func() error) error {
	var err error
	for attempt := 0; attempt < defaultRetryAttempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err = op(); err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(defaultRetryBackoff * time.Duration(attempt+1)):
		}
	}
	return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
}

func retryable(err error) bool {
	switch {
	case errors.Is(err, sql.ErrNoRows),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrDataIntegrity),
		errors.Is(err, domain.ErrPermissionDenied),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}
