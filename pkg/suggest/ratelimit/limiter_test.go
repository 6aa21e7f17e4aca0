package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFirstCallDoesNotWait(t *testing.T) {
	l := New(100 * time.Millisecond)

	start := time.Now()
	err := l.Wait(context.Background())
	assert.NoError(t, err)
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestSpacingEnforced(t *testing.T) {
	l := New(80 * time.Millisecond)

	start := time.Now()
	assert.NoError(t, l.Wait(context.Background()))
	assert.NoError(t, l.Wait(context.Background()))
	assert.NoError(t, l.Wait(context.Background()))

	// Three calls: the second waits ~80ms, the third ~160ms from start.
	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 160*time.Millisecond)
}

func TestWaitHonorsCancellation(t *testing.T) {
	l := New(5 * time.Second)
	assert.NoError(t, l.Wait(context.Background())) // consume the free slot

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := l.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestZeroSpacingNeverWaits(t *testing.T) {
	l := New(0)
	start := time.Now()
	for i := 0; i < 10; i++ {
		assert.NoError(t, l.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}
