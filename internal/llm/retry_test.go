package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os/exec"
	"testing"
	"time"

	"github.com/huimingz/commitpanel/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{name: "nil", err: nil, want: ErrorTypeNonRetryable},
		{name: "canceled", err: context.Canceled, want: ErrorTypeNonRetryable},
		{name: "deadline", err: fmt.Errorf("wrapped: %w", context.DeadlineExceeded), want: ErrorTypeRetryable},
		{name: "unreachable", err: errors.Join(ErrUnreachable, errors.New("dial tcp")), want: ErrorTypeRetryable},
		{name: "net op error", err: &net.OpError{Op: "dial", Err: errors.New("connection refused")}, want: ErrorTypeRetryable},
		{name: "missing binary", err: fmt.Errorf("run: %w", exec.ErrNotFound), want: ErrorTypeNonRetryable},
		{name: "rate limited", err: &StatusError{Code: 429}, want: ErrorTypeRetryable},
		{name: "server error", err: &StatusError{Code: 503}, want: ErrorTypeRetryable},
		{name: "model not found", err: &StatusError{Code: 404}, want: ErrorTypeNonRetryable},
		{name: "timeout text", err: errors.New("i/o timeout"), want: ErrorTypeRetryable},
		{name: "other", err: errors.New("something odd"), want: ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}

func TestErrorType_String(t *testing.T) {
	assert.Equal(t, "Retryable", ErrorTypeRetryable.String())
	assert.Equal(t, "NonRetryable", ErrorTypeNonRetryable.String())
	assert.Equal(t, "Unknown", ErrorTypeUnknown.String())
}

func TestCalculateBackoff(t *testing.T) {
	assert.Equal(t, time.Second, CalculateBackoff(1, 1, 4))
	assert.Equal(t, 2*time.Second, CalculateBackoff(2, 1, 4))
	assert.Equal(t, 4*time.Second, CalculateBackoff(3, 1, 4))
	assert.Equal(t, 4*time.Second, CalculateBackoff(10, 1, 4))
	assert.Equal(t, time.Second, CalculateBackoff(0, 1, 4))
}

func fastRetry(attempts int) *config.RetryConfig {
	return &config.RetryConfig{Enabled: true, MaxAttempts: attempts, BackoffBase: 0.001, BackoffMax: 0.001}
}

func TestWithRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("success first try", func(t *testing.T) {
		calls := 0
		err := WithRetry(ctx, fastRetry(2), func() error {
			calls++
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retryable then success", func(t *testing.T) {
		calls := 0
		err := WithRetry(ctx, fastRetry(2), func() error {
			calls++
			if calls < 2 {
				return ErrUnreachable
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("non-retryable stops", func(t *testing.T) {
		calls := 0
		err := WithRetry(ctx, fastRetry(3), func() error {
			calls++
			return &StatusError{Code: 400}
		})
		assert.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("max attempts", func(t *testing.T) {
		calls := 0
		err := WithRetry(ctx, fastRetry(2), func() error {
			calls++
			return ErrUnreachable
		})
		assert.ErrorIs(t, err, ErrUnreachable)
		assert.Equal(t, 3, calls)
	})

	t.Run("disabled runs once", func(t *testing.T) {
		calls := 0
		cfg := fastRetry(5)
		cfg.Enabled = false
		_ = WithRetry(ctx, cfg, func() error {
			calls++
			return ErrUnreachable
		})
		assert.Equal(t, 1, calls)
	})

	t.Run("nil config runs once", func(t *testing.T) {
		calls := 0
		_ = WithRetry(ctx, nil, func() error {
			calls++
			return ErrUnreachable
		})
		assert.Equal(t, 1, calls)
	})

	t.Run("context canceled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		calls := 0
		err := WithRetry(cctx, fastRetry(2), func() error {
			calls++
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, calls)
	})
}
