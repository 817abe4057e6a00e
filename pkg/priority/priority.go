// Package priority provides the priority-ordered index: a B-tree-backed
// ordered set whose total order is (priority ascending, timestamp ascending,
// insertion sequence ascending).
//
// The explicit insertion sequence is the final tie-break, so two entries
// with colliding (priority, timestamp) pairs never compare equal and the
// set never merges or drops them. Priority order is primary; time-range
// queries are a secondary, linear-cost facility.
package priority

import (
	"cmp"
	"math"
	"sync"
	"time"

	gbt "github.com/google/btree"

	"github.com/engineering87/TemporalCollections-sub001/pkg/clock"
	"github.com/engineering87/TemporalCollections-sub001/pkg/timed"
)

// btreeDegree is the branching factor of the backing B-tree.
const btreeDegree = 32

// Entry is a queued item with its priority, insertion timestamp, and the
// sequence number that breaks (priority, timestamp) ties.
type Entry[P cmp.Ordered, V any] struct {
	Item     V
	Priority P
	TS       timed.Timestamp
	seq      uint64
}

func entryLess[P cmp.Ordered, V any](a, b Entry[P, V]) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}

	if a.TS != b.TS {
		return a.TS < b.TS
	}

	return a.seq < b.seq
}

// Queue is the priority index. Every operation is atomic with respect to
// concurrent callers via a single mutex per queue instance.
type Queue[P cmp.Ordered, V any] struct {
	mtx  sync.Mutex
	src  *clock.Source
	tree *gbt.BTreeG[Entry[P, V]]
	seq  uint64
}

var _ timed.Index[int] = (*Queue[int, int])(nil)

// New creates a queue drawing timestamps from the process-wide shared
// source for V.
func New[P cmp.Ordered, V any]() *Queue[P, V] {
	return NewWithSource[P, V](clock.For[V]())
}

// NewWithSource creates a queue with an explicit timestamp source.
func NewWithSource[P cmp.Ordered, V any](src *clock.Source) *Queue[P, V] {
	return &Queue[P, V]{
		src:  src,
		tree: gbt.NewG(btreeDegree, entryLess[P, V]),
	}
}

// Enqueue allocates a timestamp for item and inserts it with the given
// priority. O(log n).
func (q *Queue[P, V]) Enqueue(item V, pri P) timed.Timestamp {
	ts := q.src.Next()

	q.mtx.Lock()
	defer q.mtx.Unlock()

	q.seq++
	q.tree.ReplaceOrInsert(Entry[P, V]{Item: item, Priority: pri, TS: ts, seq: q.seq})

	return ts
}

// TryPeekMin returns the minimum entry by the composite order without
// removing it, or false when the queue is empty.
func (q *Queue[P, V]) TryPeekMin() (Entry[P, V], bool) {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	return q.tree.Min()
}

// TryDequeueMin removes and returns the minimum entry by the composite
// order, or false when the queue is empty.
func (q *Queue[P, V]) TryDequeueMin() (Entry[P, V], bool) {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	return q.tree.DeleteMin()
}

// RangeQuery returns a snapshot of the entries within [from, to]. The set's
// primary order is priority, not time, so this filters by a linear scan of
// the whole set rather than a binary search.
func (q *Queue[P, V]) RangeQuery(from, to timed.Timestamp) ([]timed.Value[V], error) {
	q.mtx.Lock()
	snapshot := q.snapshot()
	q.mtx.Unlock()

	return timed.Range(snapshot, from, to)
}

// PruneOlderThan removes entries with timestamps strictly less than cutoff.
//
// The tree cannot binary-search by time, but within one priority bucket
// entries are time-ordered, so the walk short-circuits to the next bucket at
// the first surviving timestamp. O(n) worst case; much less when priorities
// are few and cutoffs trail the bucket heads.
func (q *Queue[P, V]) PruneOlderThan(cutoff timed.Timestamp) int {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	pivot, ok := q.tree.Min()
	if !ok {
		return 0
	}

	doomed := make([]Entry[P, V], 0)

	for {
		var survivor Entry[P, V]

		found := false

		q.tree.AscendGreaterOrEqual(pivot, func(entry Entry[P, V]) bool {
			if entry.TS < cutoff {
				doomed = append(doomed, entry)

				return true
			}

			survivor = entry
			found = true

			return false
		})

		if !found {
			break
		}

		// The rest of the survivor's bucket is at least as new; jump
		// straight past it.
		pivot = Entry[P, V]{Priority: survivor.Priority, TS: timed.MaxTimestamp, seq: math.MaxUint64}
	}

	for _, entry := range doomed {
		q.tree.Delete(entry)
	}

	return len(doomed)
}

// PruneRange removes entries with timestamps within [from, to].
func (q *Queue[P, V]) PruneRange(from, to timed.Timestamp) (int, error) {
	if to < from {
		return 0, timed.ErrInvalidRange
	}

	q.mtx.Lock()
	defer q.mtx.Unlock()

	doomed := make([]Entry[P, V], 0)

	q.tree.Ascend(func(entry Entry[P, V]) bool {
		if entry.TS >= from && entry.TS <= to {
			doomed = append(doomed, entry)
		}

		return true
	})

	for _, entry := range doomed {
		q.tree.Delete(entry)
	}

	return len(doomed), nil
}

// CountInRange counts entries within [from, to].
func (q *Queue[P, V]) CountInRange(from, to timed.Timestamp) (int, error) {
	q.mtx.Lock()
	snapshot := q.snapshot()
	q.mtx.Unlock()

	return timed.CountRange(snapshot, from, to)
}

// CountSince counts entries with timestamps >= from.
func (q *Queue[P, V]) CountSince(from timed.Timestamp) int {
	q.mtx.Lock()
	snapshot := q.snapshot()
	q.mtx.Unlock()

	return timed.CountSince(snapshot, from)
}

// Earliest returns the entry with the minimum timestamp.
func (q *Queue[P, V]) Earliest() (timed.Value[V], bool) {
	q.mtx.Lock()
	snapshot := q.snapshot()
	q.mtx.Unlock()

	return timed.EarliestOf(snapshot)
}

// Latest returns the entry with the maximum timestamp.
func (q *Queue[P, V]) Latest() (timed.Value[V], bool) {
	q.mtx.Lock()
	snapshot := q.snapshot()
	q.mtx.Unlock()

	return timed.LatestOf(snapshot)
}

// StrictlyBefore returns the entries with timestamps strictly less than t.
func (q *Queue[P, V]) StrictlyBefore(t timed.Timestamp) []timed.Value[V] {
	q.mtx.Lock()
	snapshot := q.snapshot()
	q.mtx.Unlock()

	return timed.Before(snapshot, t)
}

// StrictlyAfter returns the entries with timestamps strictly greater than t.
func (q *Queue[P, V]) StrictlyAfter(t timed.Timestamp) []timed.Value[V] {
	q.mtx.Lock()
	snapshot := q.snapshot()
	q.mtx.Unlock()

	return timed.After(snapshot, t)
}

// Nearest returns the entry whose timestamp is closest to t; exact ties
// prefer the later entry.
func (q *Queue[P, V]) Nearest(t timed.Timestamp) (timed.Value[V], bool) {
	q.mtx.Lock()
	snapshot := q.snapshot()
	q.mtx.Unlock()

	return timed.NearestOf(snapshot, t)
}

// Span is the duration between the latest and earliest entries.
func (q *Queue[P, V]) Span() time.Duration {
	q.mtx.Lock()
	snapshot := q.snapshot()
	q.mtx.Unlock()

	return timed.SpanOf(snapshot)
}

// Len reports the number of entries.
func (q *Queue[P, V]) Len() int {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	return q.tree.Len()
}

// Clear discards all entries.
func (q *Queue[P, V]) Clear() {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	q.tree.Clear(false)
}

// snapshot flattens the tree into timed values. Callers must hold the mutex.
func (q *Queue[P, V]) snapshot() []timed.Value[V] {
	result := make([]timed.Value[V], 0, q.tree.Len())

	q.tree.Ascend(func(entry Entry[P, V]) bool {
		result = append(result, timed.Value[V]{Item: entry.Item, TS: entry.TS})

		return true
	})

	return result
}
