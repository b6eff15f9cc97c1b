// Package util provides shared utility functions for mtimefs.
package util

import (
	"context"
	"errors"
	"strings"
	"syscall"
	"time"

	"github.com/avast/retry-go/v4"
)

// UnmountRetryOptions returns retry options for unmounting a busy filesystem.
// Uses exponential backoff (200ms doubling up to 2s) while processes release
// their open files and working directories.
func UnmountRetryOptions() []retry.Option {
	return []retry.Option{
		retry.Attempts(6),
		retry.Delay(200 * time.Millisecond),
		retry.MaxDelay(2 * time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(IsBusy),
		retry.LastErrorOnly(true),
	}
}

// Retry executes fn with the given options, giving up when ctx is done.
// Returns the last error if all attempts fail.
func Retry(ctx context.Context, fn func() error, opts ...retry.Option) error {
	return retry.Do(fn, append(opts, retry.Context(ctx))...)
}

// Common retry predicates

// IsBusy returns true if the error indicates the mount is still in use.
// fusermount reports this only as text, so the message is checked as well.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.EBUSY) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "device or resource busy") || strings.Contains(msg, "resource busy")
}
