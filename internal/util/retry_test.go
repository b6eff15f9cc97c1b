package util

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsBusy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"ebusy", syscall.EBUSY, true},
		{"wrapped_ebusy", fmt.Errorf("unmount: %w", syscall.EBUSY), true},
		{"fusermount_text", errors.New("fusermount: failed to unmount /mnt: Device or resource busy"), true},
		{"other_errno", syscall.EPERM, false},
		{"other_text", errors.New("no such file"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsBusy(tt.err))
		})
	}
}

func TestRetryUntilNotBusy(t *testing.T) {
	t.Parallel()

	calls := 0
	opts := append(UnmountRetryOptions(), retry.Delay(time.Millisecond))
	err := Retry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return syscall.EBUSY
		}
		return nil
	}, opts...)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryStopsOnOtherErrors(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Retry(context.Background(), func() error {
		calls++
		return syscall.EPERM
	}, UnmountRetryOptions()...)
	assert.ErrorIs(t, err, syscall.EPERM)
	assert.Equal(t, 1, calls)
}

func TestRetryHonoursContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Retry(ctx, func() error {
		calls++
		return syscall.EBUSY
	}, UnmountRetryOptions()...)
	assert.Error(t, err)
	assert.LessOrEqual(t, calls, 1)
}
