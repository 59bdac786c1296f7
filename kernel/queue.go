package kernel

import (
	"context"
	"sync"
)

// compactAt bounds how far the read index may run ahead before the backing
// slice is shifted down.
const compactAt = 256

// Queue is an unbounded multi-producer, single-consumer FIFO of events.
//
// Submit never blocks. Events are never reordered or coalesced.
type Queue struct {
	_     [0]func() // prevent accidental copying.
	mu    sync.Mutex
	items []Event
	head  int
	ready chan struct{}
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{ready: make(chan struct{}, 1)}
}

// Submit appends ev to the queue.
func (q *Queue) Submit(ev Event) {
	q.mu.Lock()
	q.items = append(q.items, ev)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// TryTake dequeues one event, returning false if the queue is empty.
func (q *Queue) TryTake() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head >= len(q.items) {
		return Event{}, false
	}
	ev := q.items[q.head]
	q.items[q.head] = Event{}
	q.head++

	switch {
	case q.head == len(q.items):
		q.items = q.items[:0]
		q.head = 0
	case q.head >= compactAt && q.head*2 >= len(q.items):
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	return ev, true
}

// Take blocks until an event is available or ctx is done.
func (q *Queue) Take(ctx context.Context) (Event, error) {
	for {
		if ev, ok := q.TryTake(); ok {
			return ev, nil
		}
		select {
		case <-ctx.Done():
			return Event{}, ctx.Err()
		case <-q.ready:
		}
	}
}

// Drop discards every pending event without running it and returns how many
// were discarded.
func (q *Queue) Drop() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.items) - q.head
	clear(q.items)
	q.items = q.items[:0]
	q.head = 0
	return n
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}
