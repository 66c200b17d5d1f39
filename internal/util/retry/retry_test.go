package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_FirstAttemptSucceeds(t *testing.T) {
	t.Parallel()

	attempts := 0
	err := Do(context.Background(), func() error {
		attempts++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDo_SucceedsAfterRetries(t *testing.T) {
	t.Parallel()

	attempts := 0
	err := Do(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	}, WithInitialDelay(time.Millisecond))

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDo_ExhaustsBudget(t *testing.T) {
	t.Parallel()

	attempts := 0
	sentinel := errors.New("still broken")
	err := Do(context.Background(), func() error {
		attempts++
		return sentinel
	}, WithMaxRetries(3), WithInitialDelay(time.Millisecond))

	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 4, attempts, "1 attempt + 3 retries")
}

func TestDo_FatalStopsImmediately(t *testing.T) {
	t.Parallel()

	attempts := 0
	err := Do(context.Background(), func() error {
		attempts++
		return Fatal(errors.New("bad request"))
	}, WithInitialDelay(time.Millisecond))

	require.Error(t, err)
	assert.True(t, IsFatal(err))
	assert.Equal(t, 1, attempts)
}

func TestDo_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := Do(ctx, func() error {
		attempts++
		return errors.New("transient")
	}, WithInitialDelay(10*time.Millisecond))

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestDo_DelayGrowthIsCapped(t *testing.T) {
	t.Parallel()

	start := time.Now()
	_ = Do(context.Background(), func() error {
		return errors.New("transient")
	},
		WithMaxRetries(4),
		WithInitialDelay(time.Millisecond),
		WithMaxDelay(2*time.Millisecond),
		WithMultiplier(10))

	// 4 capped delays of at most 2ms each; generous bound for slow runners.
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestWithJitter_ZeroFraction(t *testing.T) {
	t.Parallel()

	assert.Equal(t, time.Second, withJitter(time.Second, 0))
}

func TestWithJitter_StaysWithinSpread(t *testing.T) {
	t.Parallel()

	for range 100 {
		d := withJitter(time.Second, 0.5)
		assert.GreaterOrEqual(t, d, 500*time.Millisecond)
		assert.LessOrEqual(t, d, 1500*time.Millisecond)
	}
}

func TestFatal_NilStaysNil(t *testing.T) {
	t.Parallel()

	require.NoError(t, Fatal(nil))
	assert.False(t, IsFatal(nil))
}

func TestIsFatal_WrappedDeep(t *testing.T) {
	t.Parallel()

	err := Fatal(errors.New("root"))
	wrapped := errors.Join(errors.New("outer"), err)
	assert.True(t, IsFatal(wrapped))
}
