package services

import (
	"context"
	"sync"
	"time"
)

// taskQueue is an unbounded FIFO of task ids. Push never blocks; Pop waits a
// bounded time so the consumer can check its stop signal.
type taskQueue struct {
	mu     sync.Mutex
	items  []string
	notify chan struct{}
}

func newTaskQueue() *taskQueue {
	return &taskQueue{notify: make(chan struct{}, 1)}
}

func (q *taskQueue) Push(taskID string) {
	q.mu.Lock()
	q.items = append(q.items, taskID)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Pop returns the oldest id, waiting up to wait for one to arrive.
func (q *taskQueue) Pop(ctx context.Context, wait time.Duration) (string, bool) {
	timer := time.NewTimer(wait)
	defer timer.Stop()

	for {
		if id, ok := q.tryPop(); ok {
			return id, true
		}
		select {
		case <-q.notify:
		case <-timer.C:
			return q.tryPop()
		case <-ctx.Done():
			return "", false
		}
	}
}

func (q *taskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *taskQueue) tryPop() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return "", false
	}
	id := q.items[0]
	q.items[0] = ""
	q.items = q.items[1:]
	return id, true
}
