package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestDo(t *testing.T) {
	t.Run("SucceedsFirstTry", func(t *testing.T) {
		attempts := 0
		err := Do(context.Background(), fastConfig(), func() error {
			attempts++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("RetriesUntilSuccess", func(t *testing.T) {
		attempts := 0
		err := Do(context.Background(), fastConfig(), func() error {
			attempts++
			if attempts < 3 {
				return errors.New("transient")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("ExhaustsAttempts", func(t *testing.T) {
		attempts := 0
		err := Do(context.Background(), fastConfig(), func() error {
			attempts++
			return errors.New("always failing")
		})
		require.Error(t, err)
		assert.Equal(t, 3, attempts)
		assert.Contains(t, err.Error(), "all 3 attempts failed")
	})

	t.Run("StopsOnNonRetryable", func(t *testing.T) {
		attempts := 0
		cause := errors.New("bad request")
		err := Do(context.Background(), fastConfig(), func() error {
			attempts++
			return NonRetryable(cause)
		})
		require.Error(t, err)
		assert.Equal(t, 1, attempts)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("StopsOnContextCancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		attempts := 0
		err := Do(ctx, fastConfig(), func() error {
			attempts++
			cancel()
			return errors.New("transient")
		})
		require.Error(t, err)
		assert.Equal(t, 1, attempts)
		assert.Contains(t, err.Error(), "retry cancelled")
	})

	t.Run("ZeroConfigRunsOnce", func(t *testing.T) {
		attempts := 0
		err := Do(context.Background(), Config{}, func() error {
			attempts++
			return errors.New("nope")
		})
		require.Error(t, err)
		assert.Equal(t, 1, attempts)
	})
}

func TestNonRetryable(t *testing.T) {
	t.Run("NilStaysNil", func(t *testing.T) {
		assert.NoError(t, NonRetryable(nil))
	})

	t.Run("MarksAndUnwraps", func(t *testing.T) {
		cause := errors.New("boom")
		wrapped := NonRetryable(cause)
		assert.True(t, IsNonRetryable(wrapped))
		assert.ErrorIs(t, wrapped, cause)
	})

	t.Run("DetectedThroughWrapping", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", NonRetryable(errors.New("inner")))
		assert.True(t, IsNonRetryable(err))
	})

	t.Run("PlainErrorIsRetryable", func(t *testing.T) {
		assert.False(t, IsNonRetryable(errors.New("plain")))
	})
}
