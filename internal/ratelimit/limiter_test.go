package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestAcquireFirstRequestIsImmediate(t *testing.T) {
	clock := NewManualClock(epoch)
	limiter := New(500*time.Millisecond, clock)

	require.NoError(t, limiter.Acquire(context.Background()))
	assert.Equal(t, 500*time.Millisecond, limiter.Interval())
}

func TestAcquireWaitsForInterval(t *testing.T) {
	clock := NewManualClock(epoch)
	limiter := New(time.Second, clock)

	require.NoError(t, limiter.Acquire(context.Background()))

	done := make(chan error, 1)
	go func() {
		done <- limiter.Acquire(context.Background())
	}()

	clock.BlockUntil(1)

	clock.Advance(999 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("acquire returned before the interval elapsed")
	case <-time.After(20 * time.Millisecond):
	}

	clock.Advance(time.Millisecond)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("acquire did not return after the interval elapsed")
	}
}

func TestAcquireIsCancellable(t *testing.T) {
	clock := NewManualClock(epoch)
	limiter := New(2*time.Second, clock)
	require.NoError(t, limiter.Acquire(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- limiter.Acquire(ctx)
	}()

	clock.BlockUntil(1)
	cancel()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		t.Fatal("acquire ignored cancellation")
	}
}

func TestAcquireRejectsDoneContext(t *testing.T) {
	limiter := New(time.Second, NewManualClock(epoch))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, limiter.Acquire(ctx), context.Canceled)
}

func TestAcquireWithoutIntervalNeverWaits(t *testing.T) {
	limiter := New(0, NewManualClock(epoch))

	for i := 0; i < 10; i++ {
		require.NoError(t, limiter.Acquire(context.Background()))
	}
}
