package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doceo/internal/common"
)

func TestPoolRunsAllJobs(t *testing.T) {
	pool := NewPool(context.Background(), 3, arbor.NewLogger())
	pool.Start()

	// Each job fills its own slot, so result order is independent of
	// completion order.
	results := make([]int, 5)
	for i := 0; i < 5; i++ {
		i := i
		require.NoError(t, pool.Submit(func(ctx context.Context) error {
			results[i] = i * 10
			return nil
		}))
	}
	pool.Wait()

	assert.Equal(t, []int{0, 10, 20, 30, 40}, results)
	assert.Empty(t, pool.Errors())
}

func TestPoolCollectsErrors(t *testing.T) {
	pool := NewPool(context.Background(), 2, arbor.NewLogger())
	pool.Start()

	var succeeded atomic.Int32
	for i := 0; i < 4; i++ {
		i := i
		require.NoError(t, pool.Submit(func(ctx context.Context) error {
			if i%2 == 0 {
				return errors.New("boom")
			}
			succeeded.Add(1)
			return nil
		}))
	}
	pool.Wait()

	assert.Len(t, pool.Errors(), 2)
	assert.Equal(t, int32(2), succeeded.Load())
}

func TestPoolSurvivesPanickingJob(t *testing.T) {
	// Keep the crash report out of the working directory
	common.CrashLogDir = t.TempDir()

	pool := NewPool(context.Background(), 2, arbor.NewLogger())
	pool.Start()

	var completed atomic.Int32
	require.NoError(t, pool.Submit(func(ctx context.Context) error {
		panic("corrupt embedding")
	}))
	for i := 0; i < 3; i++ {
		require.NoError(t, pool.Submit(func(ctx context.Context) error {
			completed.Add(1)
			return nil
		}))
	}
	pool.Wait()

	assert.Equal(t, int32(3), completed.Load())
	require.Len(t, pool.Errors(), 1)
	assert.Contains(t, pool.Errors()[0].Error(), "corrupt embedding")
}

func TestPoolStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := NewPool(ctx, 2, arbor.NewLogger())
	pool.Start()

	// Submits may be rejected outright; any job that does start must see
	// the cancelled context and bail before doing work.
	var completed atomic.Int32
	for i := 0; i < 4; i++ {
		err := pool.Submit(func(ctx context.Context) error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			completed.Add(1)
			return nil
		})
		if err != nil {
			break
		}
	}
	pool.Wait()

	assert.Zero(t, completed.Load())
}

func TestPoolJobSeesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	pool := NewPool(ctx, 1, arbor.NewLogger())
	pool.Start()

	started := make(chan struct{})
	require.NoError(t, pool.Submit(func(ctx context.Context) error {
		close(started)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
			return errors.New("job was not cancelled")
		}
	}))

	<-started
	cancel()
	pool.Wait()

	require.Len(t, pool.Errors(), 1)
	assert.ErrorIs(t, pool.Errors()[0], context.Canceled)
}
