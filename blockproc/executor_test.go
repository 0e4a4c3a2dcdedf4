package blockproc

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestExecutorOrdering verifies that tasks run one at a time in submission
// order, from any number of submitters.
func TestExecutorOrdering(t *testing.T) {
	require := require.New(t)

	e := NewExecutor(4)
	var order []int
	for i := 0; i < 100; i++ {
		i := i
		require.NoError(e.Submit(func() {
			order = append(order, i)
		}))
	}
	e.Close()

	require.Len(order, 100)
	for i, got := range order {
		require.Equal(i, got)
	}
}

// TestExecutorCloseDrains verifies that Close runs every queued task
// before returning and that later submissions fail fast.
func TestExecutorCloseDrains(t *testing.T) {
	require := require.New(t)

	e := NewExecutor(16)
	ran := 0
	var mu sync.Mutex
	for i := 0; i < 10; i++ {
		require.NoError(e.Submit(func() {
			mu.Lock()
			ran++
			mu.Unlock()
		}))
	}
	e.Close()
	require.Equal(10, ran)

	require.ErrorIs(e.Submit(func() {}), ErrExecutorClosed)

	// closing twice is a no-op
	e.Close()
}

// TestExecutorConcurrentSubmitters verifies that concurrent submissions
// never run concurrently on the worker.
func TestExecutorConcurrentSubmitters(t *testing.T) {
	require := require.New(t)

	e := NewExecutor(4)
	var wg sync.WaitGroup
	running := 0
	maxRunning := 0
	var mu sync.Mutex

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = e.Submit(func() {
				mu.Lock()
				running++
				if running > maxRunning {
					maxRunning = running
				}
				mu.Unlock()

				mu.Lock()
				running--
				mu.Unlock()
			})
		}()
	}
	wg.Wait()
	e.Close()
	require.Equal(1, maxRunning)
}
