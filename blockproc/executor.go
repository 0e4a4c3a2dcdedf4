// executor.go provides the serialized execution queue that every append
// goes through. One task runs at a time, in submission order, on a single
// worker goroutine; that single funnel is the entire concurrency story of
// the append pipeline, which is why neither the appender nor the chain
// apply needs internal locking.
package blockproc

import (
	"errors"
	"sync"
)

// ErrExecutorClosed is returned by Submit after Close.
var ErrExecutorClosed = errors.New("executor is closed")

// Executor runs submitted tasks sequentially on one goroutine.
type Executor struct {
	queue chan func()

	mu     sync.Mutex
	closed bool
	done   sync.WaitGroup
}

// NewExecutor starts the worker. queueSize bounds how many tasks may wait;
// Submit blocks once the queue is full, providing natural backpressure to
// network readers.
func NewExecutor(queueSize int) *Executor {
	e := &Executor{
		queue: make(chan func(), queueSize),
	}
	e.done.Add(1)
	go e.loop()
	return e
}

func (e *Executor) loop() {
	defer e.done.Done()
	for task := range e.queue {
		task()
	}
}

// Submit enqueues a task. Tasks complete in submission order. Blocks while
// the queue is full; returns ErrExecutorClosed after Close.
func (e *Executor) Submit(task func()) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrExecutorClosed
	}
	// the channel send stays under the lock so Close cannot close the
	// queue between the check and the send
	defer e.mu.Unlock()
	e.queue <- task
	return nil
}

// Close stops accepting tasks, runs the already-queued ones to completion,
// and waits for the worker to exit. Tasks in flight are never cancelled:
// an append that reached the chain apply always finishes.
func (e *Executor) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	close(e.queue)
	e.mu.Unlock()
	e.done.Wait()
}
