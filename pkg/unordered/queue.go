// Package unordered provides the plain collaborators of the temporal
// container family: FIFO queue, LIFO stack, fixed-capacity ring, and the
// hash-backed set, map, and multimap.
//
// None of these maintain a time ordering in their storage. They stamp
// insertions with the same monotonic allocator as the ordered indexes and
// satisfy the shared query contract by brute-force filtering over their
// own storage while holding their own lock.
package unordered

import (
	"sync"
	"time"

	"github.com/engineering87/TemporalCollections-sub001/pkg/clock"
	"github.com/engineering87/TemporalCollections-sub001/pkg/timed"
)

// Queue is a FIFO container of timed values.
type Queue[T any] struct {
	mtx     sync.Mutex
	src     *clock.Source
	entries []timed.Value[T]
}

var _ timed.Index[int] = (*Queue[int])(nil)

// NewQueue creates a queue drawing timestamps from the process-wide shared
// source for T.
func NewQueue[T any]() *Queue[T] {
	return NewQueueWithSource[T](clock.For[T]())
}

// NewQueueWithSource creates a queue with an explicit timestamp source.
func NewQueueWithSource[T any](src *clock.Source) *Queue[T] {
	return &Queue[T]{src: src, entries: []timed.Value[T]{}}
}

// Enqueue stamps item and appends it to the tail.
func (q *Queue[T]) Enqueue(item T) timed.Timestamp {
	ts := q.src.Next()

	q.mtx.Lock()
	defer q.mtx.Unlock()

	q.entries = append(q.entries, timed.Value[T]{Item: item, TS: ts})

	return ts
}

// Dequeue removes and returns the head entry, or false when empty.
func (q *Queue[T]) Dequeue() (timed.Value[T], bool) {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	if len(q.entries) == 0 {
		return timed.Value[T]{}, false
	}

	head := q.entries[0]
	q.entries = append(q.entries[:0], q.entries[1:]...)

	return head, true
}

// Peek returns the head entry without removing it, or false when empty.
func (q *Queue[T]) Peek() (timed.Value[T], bool) {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	if len(q.entries) == 0 {
		return timed.Value[T]{}, false
	}

	return q.entries[0], true
}

// RangeQuery returns a snapshot of the entries within [from, to].
func (q *Queue[T]) RangeQuery(from, to timed.Timestamp) ([]timed.Value[T], error) {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	return timed.Range(q.entries, from, to)
}

// PruneOlderThan removes entries with timestamps strictly less than cutoff.
func (q *Queue[T]) PruneOlderThan(cutoff timed.Timestamp) int {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	kept := q.entries[:0]
	removed := 0

	for _, entry := range q.entries {
		if entry.TS < cutoff {
			removed++

			continue
		}

		kept = append(kept, entry)
	}

	q.entries = kept

	return removed
}

// PruneRange removes entries with timestamps within [from, to].
func (q *Queue[T]) PruneRange(from, to timed.Timestamp) (int, error) {
	if to < from {
		return 0, timed.ErrInvalidRange
	}

	q.mtx.Lock()
	defer q.mtx.Unlock()

	kept := q.entries[:0]
	removed := 0

	for _, entry := range q.entries {
		if entry.TS >= from && entry.TS <= to {
			removed++

			continue
		}

		kept = append(kept, entry)
	}

	q.entries = kept

	return removed, nil
}

// CountInRange counts entries within [from, to].
func (q *Queue[T]) CountInRange(from, to timed.Timestamp) (int, error) {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	return timed.CountRange(q.entries, from, to)
}

// CountSince counts entries with timestamps >= from.
func (q *Queue[T]) CountSince(from timed.Timestamp) int {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	return timed.CountSince(q.entries, from)
}

// Earliest returns the entry with the minimum timestamp.
func (q *Queue[T]) Earliest() (timed.Value[T], bool) {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	return timed.EarliestOf(q.entries)
}

// Latest returns the entry with the maximum timestamp.
func (q *Queue[T]) Latest() (timed.Value[T], bool) {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	return timed.LatestOf(q.entries)
}

// StrictlyBefore returns the entries with timestamps strictly less than t.
func (q *Queue[T]) StrictlyBefore(t timed.Timestamp) []timed.Value[T] {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	return timed.Before(q.entries, t)
}

// StrictlyAfter returns the entries with timestamps strictly greater than t.
func (q *Queue[T]) StrictlyAfter(t timed.Timestamp) []timed.Value[T] {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	return timed.After(q.entries, t)
}

// Nearest returns the entry closest to t; exact ties prefer the later one.
func (q *Queue[T]) Nearest(t timed.Timestamp) (timed.Value[T], bool) {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	return timed.NearestOf(q.entries, t)
}

// Span is the duration between the latest and earliest entries.
func (q *Queue[T]) Span() time.Duration {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	return timed.SpanOf(q.entries)
}

// Len reports the number of entries.
func (q *Queue[T]) Len() int {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	return len(q.entries)
}

// Clear discards all entries.
func (q *Queue[T]) Clear() {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	q.entries = q.entries[:0]
}
