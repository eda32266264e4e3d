// Package context holds small helpers for the cooperative-cancellation
// protocol shared by every taskflow loop.
package context

import (
	"context"
	"errors"
)

// IsCanceled returns true if the context has been canceled
func IsCanceled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// IgnoreIfCanceled returns nil when ctx is done or err is ctx's own error,
// and err otherwise. Loops use it so a requested shutdown is not reported
// as a failure.
func IgnoreIfCanceled(ctx context.Context, err error) error {
	if err == nil || IsCanceled(ctx) {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
