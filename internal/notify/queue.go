package notify

import (
	"errors"
	"sync"

	"alertrelay/internal/metrics"
)

// ErrQueueClosed is returned to producers that enqueue after Close.
var ErrQueueClosed = errors.New("delivery queue is closed")

// Queue is an unbounded multi-producer FIFO of notifications. Producers
// never block; the single consumer blocks in Dequeue.
type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []Notification
	closed bool
}

func NewQueue() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *Queue) Enqueue(n Notification) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	q.items = append(q.items, n)
	metrics.NotificationsEnqueued.Inc()
	q.cond.Signal()
	return nil
}

// Dequeue blocks until an item is available or the queue is closed and
// drained.
func (q *Queue) Dequeue() (Notification, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	return q.pop()
}

// TryDequeue pops the head without blocking.
func (q *Queue) TryDequeue() (Notification, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pop()
}

func (q *Queue) pop() (Notification, bool) {
	if len(q.items) == 0 {
		return Notification{}, false
	}
	head := q.items[0]
	q.items = q.items[1:]
	return head, true
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close rejects further producers. Items already queued can still be
// drained.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}
