// Package ordered provides the sorted-by-time index: an ascending sequence
// of timed values maintained purely through binary-search insertion, so the
// sort invariant holds at all times and no re-sort is ever required.
package ordered

import (
	"sort"
	"sync"
	"time"

	"github.com/engineering87/TemporalCollections-sub001/pkg/clock"
	"github.com/engineering87/TemporalCollections-sub001/pkg/timed"
)

// Index is a slice-backed, time-ordered container. Every mutating and
// snapshotting operation executes under one mutex per index instance, so
// operations on a single index are totally ordered by lock acquisition.
type Index[T any] struct {
	mtx     sync.Mutex
	src     *clock.Source
	entries []timed.Value[T]
}

var _ timed.Index[int] = (*Index[int])(nil)

// New creates an index drawing timestamps from the process-wide shared
// source for T.
func New[T any]() *Index[T] {
	return NewWithSource[T](clock.For[T]())
}

// NewWithSource creates an index with an explicit timestamp source.
func NewWithSource[T any](src *clock.Source) *Index[T] {
	return &Index[T]{src: src, entries: []timed.Value[T]{}}
}

// Insert allocates a timestamp for item and places it at its binary-search
// position. The search is O(log n) but the slice shift is O(n), unlike the
// tree-backed indexes; the pay-off is O(1) earliest/latest and cache-dense
// range scans.
func (ix *Index[T]) Insert(item T) timed.Timestamp {
	ts := ix.src.Next()

	ix.mtx.Lock()
	defer ix.mtx.Unlock()

	pos := ix.searchGE(ts)
	ix.entries = append(ix.entries, timed.Value[T]{})
	copy(ix.entries[pos+1:], ix.entries[pos:])
	ix.entries[pos] = timed.Value[T]{Item: item, TS: ts}

	return ts
}

// RangeQuery returns a snapshot of the entries within [from, to], both ends
// inclusive. Later mutations never affect an already-returned result.
func (ix *Index[T]) RangeQuery(from, to timed.Timestamp) ([]timed.Value[T], error) {
	if to < from {
		return nil, timed.ErrInvalidRange
	}

	ix.mtx.Lock()
	defer ix.mtx.Unlock()

	lo := ix.searchGE(from)
	hi := ix.searchGT(to)

	result := make([]timed.Value[T], hi-lo)
	copy(result, ix.entries[lo:hi])

	return result, nil
}

// PruneOlderThan removes the prefix of entries with timestamps strictly
// less than cutoff. Entries exactly at the cutoff are retained.
func (ix *Index[T]) PruneOlderThan(cutoff timed.Timestamp) int {
	ix.mtx.Lock()
	defer ix.mtx.Unlock()

	lo := ix.searchGE(cutoff)
	if lo == 0 {
		return 0
	}

	ix.entries = append(ix.entries[:0], ix.entries[lo:]...)

	return lo
}

// PruneRange removes the entries within [from, to], both ends inclusive.
func (ix *Index[T]) PruneRange(from, to timed.Timestamp) (int, error) {
	if to < from {
		return 0, timed.ErrInvalidRange
	}

	ix.mtx.Lock()
	defer ix.mtx.Unlock()

	lo := ix.searchGE(from)
	hi := ix.searchGT(to)

	removed := hi - lo
	if removed > 0 {
		ix.entries = append(ix.entries[:lo], ix.entries[hi:]...)
	}

	return removed, nil
}

// CountInRange counts entries within [from, to].
func (ix *Index[T]) CountInRange(from, to timed.Timestamp) (int, error) {
	if to < from {
		return 0, timed.ErrInvalidRange
	}

	ix.mtx.Lock()
	defer ix.mtx.Unlock()

	return ix.searchGT(to) - ix.searchGE(from), nil
}

// CountSince counts entries with timestamps >= from.
func (ix *Index[T]) CountSince(from timed.Timestamp) int {
	ix.mtx.Lock()
	defer ix.mtx.Unlock()

	return len(ix.entries) - ix.searchGE(from)
}

// Earliest returns the first entry, or false when the index is empty. O(1).
func (ix *Index[T]) Earliest() (timed.Value[T], bool) {
	ix.mtx.Lock()
	defer ix.mtx.Unlock()

	if len(ix.entries) == 0 {
		return timed.Value[T]{}, false
	}

	return ix.entries[0], true
}

// Latest returns the last entry, or false when the index is empty. O(1).
func (ix *Index[T]) Latest() (timed.Value[T], bool) {
	ix.mtx.Lock()
	defer ix.mtx.Unlock()

	if len(ix.entries) == 0 {
		return timed.Value[T]{}, false
	}

	return ix.entries[len(ix.entries)-1], true
}

// StrictlyBefore returns the entries with timestamps strictly less than t.
func (ix *Index[T]) StrictlyBefore(t timed.Timestamp) []timed.Value[T] {
	ix.mtx.Lock()
	defer ix.mtx.Unlock()

	hi := ix.searchGE(t)

	result := make([]timed.Value[T], hi)
	copy(result, ix.entries[:hi])

	return result
}

// StrictlyAfter returns the entries with timestamps strictly greater than t.
func (ix *Index[T]) StrictlyAfter(t timed.Timestamp) []timed.Value[T] {
	ix.mtx.Lock()
	defer ix.mtx.Unlock()

	lo := ix.searchGT(t)

	result := make([]timed.Value[T], len(ix.entries)-lo)
	copy(result, ix.entries[lo:])

	return result
}

// Nearest returns the entry whose timestamp is closest to t. An exact
// distance tie is resolved in favor of the later entry.
func (ix *Index[T]) Nearest(t timed.Timestamp) (timed.Value[T], bool) {
	ix.mtx.Lock()
	defer ix.mtx.Unlock()

	if len(ix.entries) == 0 {
		return timed.Value[T]{}, false
	}

	pos := ix.searchGE(t)

	switch pos {
	case 0:
		return ix.entries[0], true
	case len(ix.entries):
		return ix.entries[len(ix.entries)-1], true
	}

	succ := ix.entries[pos]
	pred := ix.entries[pos-1]

	// On an exact tie the successor wins: it is the later entry.
	if t.Sub(pred.TS) < succ.TS.Sub(t) {
		return pred, true
	}

	return succ, true
}

// Span is the duration between the last and first entries.
func (ix *Index[T]) Span() time.Duration {
	ix.mtx.Lock()
	defer ix.mtx.Unlock()

	if len(ix.entries) < 2 {
		return 0
	}

	return ix.entries[len(ix.entries)-1].TS.Sub(ix.entries[0].TS)
}

// Len reports the number of entries.
func (ix *Index[T]) Len() int {
	ix.mtx.Lock()
	defer ix.mtx.Unlock()

	return len(ix.entries)
}

// Clear discards all entries.
func (ix *Index[T]) Clear() {
	ix.mtx.Lock()
	defer ix.mtx.Unlock()

	ix.entries = ix.entries[:0]
}

// searchGE returns the first position whose timestamp is >= t.
// Callers must hold the mutex.
func (ix *Index[T]) searchGE(t timed.Timestamp) int {
	return sort.Search(len(ix.entries), func(i int) bool {
		return ix.entries[i].TS >= t
	})
}

// searchGT returns the first position whose timestamp is > t.
// Callers must hold the mutex.
func (ix *Index[T]) searchGT(t timed.Timestamp) int {
	return sort.Search(len(ix.entries), func(i int) bool {
		return ix.entries[i].TS > t
	})
}
