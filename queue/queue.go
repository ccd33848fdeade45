// Package queue implements the bounded per-client event queue.
//
// The queue is a fixed-capacity FIFO of opaque serialized entries. Enqueue
// never blocks the producer: when the queue is full the oldest entry is
// evicted first (drop-oldest). Poll never blocks the consumer: it returns the
// oldest entry or reports that the queue is empty. Entries are stored as
// given and are never re-parsed.
package queue

import (
	"errors"
	"sync"

	"github.com/opd-ai/wmbridge/limits"
	"github.com/sirupsen/logrus"
)

var (
	// ErrEmpty is returned when no entry is queued.
	ErrEmpty = errors.New("queue empty")

	// ErrTooLarge is returned by PollFit when the head entry exceeds the
	// caller's capacity. The entry stays queued.
	ErrTooLarge = errors.New("entry larger than capacity")
)

// Stats holds queue counters since creation.
type Stats struct {
	Enqueued uint64
	Dropped  uint64
	Polled   uint64
}

// Queue is a drop-oldest ring buffer of byte slices. It is safe for
// concurrent use by any number of producers and consumers.
type Queue struct {
	mu      sync.Mutex
	entries [][]byte
	head    int
	size    int
	stats   Stats
}

// New creates a queue holding at most capacity entries. A capacity of zero or
// less selects limits.DefaultQueueCapacity.
func New(capacity int) *Queue {
	if capacity <= 0 {
		capacity = limits.DefaultQueueCapacity
	}
	return &Queue{
		entries: make([][]byte, capacity),
	}
}

// Enqueue appends entry, evicting the oldest entry when full. It reports
// whether an eviction happened.
func (q *Queue) Enqueue(entry []byte) (evicted bool) {
	q.mu.Lock()
	capacity := len(q.entries)
	if q.size == capacity {
		q.entries[q.head] = nil
		q.head = (q.head + 1) % capacity
		q.size--
		q.stats.Dropped++
		evicted = true
	}
	q.entries[(q.head+q.size)%capacity] = entry
	q.size++
	q.stats.Enqueued++
	dropped := q.stats.Dropped
	q.mu.Unlock()

	if evicted {
		logrus.WithFields(logrus.Fields{
			"function":      "Queue.Enqueue",
			"capacity":      capacity,
			"total_dropped": dropped,
		}).Debug("Queue full, evicted oldest entry")
	}
	return evicted
}

// Poll removes and returns the oldest entry. The second result is false when
// the queue is empty.
func (q *Queue) Poll() ([]byte, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == 0 {
		return nil, false
	}
	return q.popLocked(), true
}

// PollFit removes and returns the oldest entry only if its length is at most
// max. When the head is larger, it stays queued and ErrTooLarge is returned
// together with the head size. ErrEmpty is returned when nothing is queued.
func (q *Queue) PollFit(max int) ([]byte, int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == 0 {
		return nil, 0, ErrEmpty
	}
	n := len(q.entries[q.head])
	if n > max {
		return nil, n, ErrTooLarge
	}
	return q.popLocked(), n, nil
}

// PeekSize returns the length of the oldest entry without removing it.
func (q *Queue) PeekSize() (int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == 0 {
		return 0, false
	}
	return len(q.entries[q.head]), true
}

// Len returns the number of queued entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Cap returns the fixed capacity.
func (q *Queue) Cap() int {
	return len(q.entries)
}

// Stats returns a snapshot of the queue counters.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stats
}

func (q *Queue) popLocked() []byte {
	entry := q.entries[q.head]
	q.entries[q.head] = nil
	q.head = (q.head + 1) % len(q.entries)
	q.size--
	q.stats.Polled++
	return entry
}
