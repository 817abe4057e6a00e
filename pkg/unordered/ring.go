package unordered

import (
	"sync"
	"time"

	"github.com/engineering87/TemporalCollections-sub001/pkg/clock"
	"github.com/engineering87/TemporalCollections-sub001/pkg/timed"
)

// Ring is a fixed-capacity circular buffer of timed values. When full, a
// new insertion overwrites the oldest entry.
type Ring[T any] struct {
	mtx     sync.Mutex
	src     *clock.Source
	entries []timed.Value[T]
	head    int
	size    int
}

var _ timed.Index[int] = (*Ring[int])(nil)

// NewRing creates a ring with the given capacity, drawing timestamps from
// the process-wide shared source for T. Fails with ErrInvalidCapacity when
// capacity is not positive.
func NewRing[T any](capacity int) (*Ring[T], error) {
	return NewRingWithSource[T](capacity, clock.For[T]())
}

// NewRingWithSource creates a ring with an explicit timestamp source.
func NewRingWithSource[T any](capacity int, src *clock.Source) (*Ring[T], error) {
	if capacity <= 0 {
		return nil, timed.ErrInvalidCapacity
	}

	return &Ring[T]{src: src, entries: make([]timed.Value[T], capacity)}, nil
}

// Capacity reports the fixed capacity of the ring.
func (r *Ring[T]) Capacity() int {
	return len(r.entries)
}

// Add stamps item and appends it, overwriting the oldest entry when the
// ring is full. Returns the evicted entry, if any.
func (r *Ring[T]) Add(item T) (timed.Timestamp, *timed.Value[T]) {
	ts := r.src.Next()

	r.mtx.Lock()
	defer r.mtx.Unlock()

	slot := (r.head + r.size) % len(r.entries)

	var evicted *timed.Value[T]

	if r.size == len(r.entries) {
		old := r.entries[r.head]
		evicted = &old
		r.head = (r.head + 1) % len(r.entries)
	} else {
		r.size++
	}

	r.entries[slot] = timed.Value[T]{Item: item, TS: ts}

	return ts, evicted
}

// Oldest returns the oldest retained entry, or false when empty.
func (r *Ring[T]) Oldest() (timed.Value[T], bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if r.size == 0 {
		return timed.Value[T]{}, false
	}

	return r.entries[r.head], true
}

// RangeQuery returns a snapshot of the retained entries within [from, to].
func (r *Ring[T]) RangeQuery(from, to timed.Timestamp) ([]timed.Value[T], error) {
	r.mtx.Lock()
	snapshot := r.snapshot()
	r.mtx.Unlock()

	return timed.Range(snapshot, from, to)
}

// PruneOlderThan removes retained entries with timestamps strictly less
// than cutoff. Capacity is unchanged.
func (r *Ring[T]) PruneOlderThan(cutoff timed.Timestamp) int {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return r.pruneFunc(func(entry timed.Value[T]) bool { return entry.TS < cutoff })
}

// PruneRange removes retained entries with timestamps within [from, to].
func (r *Ring[T]) PruneRange(from, to timed.Timestamp) (int, error) {
	if to < from {
		return 0, timed.ErrInvalidRange
	}

	r.mtx.Lock()
	defer r.mtx.Unlock()

	return r.pruneFunc(func(entry timed.Value[T]) bool {
		return entry.TS >= from && entry.TS <= to
	}), nil
}

// CountInRange counts retained entries within [from, to].
func (r *Ring[T]) CountInRange(from, to timed.Timestamp) (int, error) {
	r.mtx.Lock()
	snapshot := r.snapshot()
	r.mtx.Unlock()

	return timed.CountRange(snapshot, from, to)
}

// CountSince counts retained entries with timestamps >= from.
func (r *Ring[T]) CountSince(from timed.Timestamp) int {
	r.mtx.Lock()
	snapshot := r.snapshot()
	r.mtx.Unlock()

	return timed.CountSince(snapshot, from)
}

// Earliest returns the entry with the minimum timestamp.
func (r *Ring[T]) Earliest() (timed.Value[T], bool) {
	r.mtx.Lock()
	snapshot := r.snapshot()
	r.mtx.Unlock()

	return timed.EarliestOf(snapshot)
}

// Latest returns the entry with the maximum timestamp.
func (r *Ring[T]) Latest() (timed.Value[T], bool) {
	r.mtx.Lock()
	snapshot := r.snapshot()
	r.mtx.Unlock()

	return timed.LatestOf(snapshot)
}

// StrictlyBefore returns the entries with timestamps strictly less than t.
func (r *Ring[T]) StrictlyBefore(t timed.Timestamp) []timed.Value[T] {
	r.mtx.Lock()
	snapshot := r.snapshot()
	r.mtx.Unlock()

	return timed.Before(snapshot, t)
}

// StrictlyAfter returns the entries with timestamps strictly greater than t.
func (r *Ring[T]) StrictlyAfter(t timed.Timestamp) []timed.Value[T] {
	r.mtx.Lock()
	snapshot := r.snapshot()
	r.mtx.Unlock()

	return timed.After(snapshot, t)
}

// Nearest returns the entry closest to t; exact ties prefer the later one.
func (r *Ring[T]) Nearest(t timed.Timestamp) (timed.Value[T], bool) {
	r.mtx.Lock()
	snapshot := r.snapshot()
	r.mtx.Unlock()

	return timed.NearestOf(snapshot, t)
}

// Span is the duration between the latest and earliest retained entries.
func (r *Ring[T]) Span() time.Duration {
	r.mtx.Lock()
	snapshot := r.snapshot()
	r.mtx.Unlock()

	return timed.SpanOf(snapshot)
}

// Len reports the number of retained entries.
func (r *Ring[T]) Len() int {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return r.size
}

// Clear discards all retained entries. Capacity is unchanged.
func (r *Ring[T]) Clear() {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	clear(r.entries)
	r.head = 0
	r.size = 0
}

// snapshot flattens the ring in insertion order. Callers hold the mutex.
func (r *Ring[T]) snapshot() []timed.Value[T] {
	result := make([]timed.Value[T], 0, r.size)

	for i := range r.size {
		result = append(result, r.entries[(r.head+i)%len(r.entries)])
	}

	return result
}

// pruneFunc compacts the ring, dropping entries satisfying doomed.
// Callers hold the mutex.
func (r *Ring[T]) pruneFunc(doomed func(timed.Value[T]) bool) int {
	kept := make([]timed.Value[T], 0, r.size)

	for i := range r.size {
		entry := r.entries[(r.head+i)%len(r.entries)]
		if !doomed(entry) {
			kept = append(kept, entry)
		}
	}

	removed := r.size - len(kept)

	clear(r.entries)
	copy(r.entries, kept)
	r.head = 0
	r.size = len(kept)

	return removed
}
