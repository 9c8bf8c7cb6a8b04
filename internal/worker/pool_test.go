package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestPool(workers, queueSize int) *Pool {
	return NewPool(workers, queueSize, zap.NewNop().Sugar())
}

func TestPool_RunsJobs(t *testing.T) {
	pool := newTestPool(2, 8)
	pool.Start()

	var count atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		err := pool.Enqueue(func(ctx context.Context) {
			defer wg.Done()
			count.Add(1)
		})
		require.NoError(t, err)
	}

	wg.Wait()
	assert.Equal(t, int32(5), count.Load())
	pool.Stop()
}

func TestPool_StopDrainsQueuedJobs(t *testing.T) {
	pool := newTestPool(1, 8)
	pool.Start()

	var count atomic.Int32
	gate := make(chan struct{})

	// The first job blocks the single worker so the rest stay queued.
	require.NoError(t, pool.Enqueue(func(ctx context.Context) {
		<-gate
		count.Add(1)
	}))
	for i := 0; i < 4; i++ {
		require.NoError(t, pool.Enqueue(func(ctx context.Context) {
			count.Add(1)
		}))
	}

	close(gate)
	pool.Stop()

	assert.Equal(t, int32(5), count.Load(), "queued jobs must run before Stop returns")
}

func TestPool_EnqueueAfterStop(t *testing.T) {
	pool := newTestPool(1, 1)
	pool.Start()
	pool.Stop()

	err := pool.Enqueue(func(ctx context.Context) {})
	assert.ErrorIs(t, err, ErrStopped)
}

func TestPool_QueueFull(t *testing.T) {
	pool := newTestPool(1, 1)
	// Not started: nothing consumes, so the second enqueue finds a full queue.

	require.NoError(t, pool.Enqueue(func(ctx context.Context) {}))
	err := pool.Enqueue(func(ctx context.Context) {})
	assert.ErrorIs(t, err, ErrQueueFull)

	pool.Start()
	pool.Stop()
}

func TestPool_RecoversFromPanic(t *testing.T) {
	pool := newTestPool(1, 4)
	pool.Start()

	done := make(chan struct{})
	require.NoError(t, pool.Enqueue(func(ctx context.Context) {
		panic("boom")
	}))
	require.NoError(t, pool.Enqueue(func(ctx context.Context) {
		close(done)
	}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive a panicking job")
	}
	pool.Stop()
}
