package input

import (
	"context"
	"errors"
	"sync"

	"github.com/lixenwraith/term-snake/core"
)

// ErrQueueClosed is returned by Next once the queue is closed and drained
var ErrQueueClosed = errors.New("input queue closed")

// Queue is an unbounded FIFO of logical keys
// Thread-Safety:
//   - Push, Close: any goroutine (capture loop)
//   - TryNext, Next, Flush: single consumer (game loop)
//
// Push never blocks and never drops
type Queue struct {
	mu     sync.Mutex
	keys   []core.Key
	closed bool
	signal chan struct{} // Capacity 1, poked on every push and on close
}

// NewQueue creates an empty open queue
func NewQueue() *Queue {
	return &Queue{
		keys:   make([]core.Key, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// Push appends key, returns false once the queue is closed
func (q *Queue) Push(key core.Key) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.keys = append(q.keys, key)
	q.mu.Unlock()

	q.poke()
	return true
}

func (q *Queue) poke() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// TryNext pops the oldest key without blocking
func (q *Queue) TryNext() (core.Key, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.popLocked()
}

func (q *Queue) popLocked() (core.Key, bool) {
	if len(q.keys) == 0 {
		return core.KeyNone, false
	}
	key := q.keys[0]
	q.keys = q.keys[1:]
	if len(q.keys) == 0 {
		// Reuse backing array once drained
		q.keys = q.keys[:0:cap(q.keys)]
	}
	return key, true
}

// Next blocks until a key is available, the queue is closed and drained, or ctx is done
func (q *Queue) Next(ctx context.Context) (core.Key, error) {
	for {
		q.mu.Lock()
		key, ok := q.popLocked()
		closed := q.closed
		q.mu.Unlock()

		if ok {
			return key, nil
		}
		if closed {
			return core.KeyNone, ErrQueueClosed
		}

		select {
		case <-q.signal:
		case <-ctx.Done():
			return core.KeyNone, ctx.Err()
		}
	}
}

// Flush discards all pending keys and returns how many were dropped
func (q *Queue) Flush() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.keys)
	q.keys = q.keys[:0]
	return n
}

// Len returns the number of pending keys
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.keys)
}

// Close stops accepting keys; pending keys can still be read
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	q.poke()
}
