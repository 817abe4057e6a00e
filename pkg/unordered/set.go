package unordered

import (
	"sync"
	"time"

	"github.com/engineering87/TemporalCollections-sub001/pkg/clock"
	"github.com/engineering87/TemporalCollections-sub001/pkg/timed"
)

// Set is a hash-backed set of unique items, each remembering when it was
// added. Re-adding a present item keeps the original timestamp.
type Set[K comparable] struct {
	mtx   sync.Mutex
	src   *clock.Source
	items map[K]timed.Timestamp
}

var _ timed.Index[int] = (*Set[int])(nil)

// NewSet creates a set drawing timestamps from the process-wide shared
// source for K.
func NewSet[K comparable]() *Set[K] {
	return NewSetWithSource[K](clock.For[K]())
}

// NewSetWithSource creates a set with an explicit timestamp source.
func NewSetWithSource[K comparable](src *clock.Source) *Set[K] {
	return &Set[K]{src: src, items: map[K]timed.Timestamp{}}
}

// Add inserts item, reporting whether it was newly added. The timestamp of
// an already-present item is not refreshed.
func (s *Set[K]) Add(item K) (timed.Timestamp, bool) {
	ts := s.src.Next()

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if existing, ok := s.items[item]; ok {
		return existing, false
	}

	s.items[item] = ts

	return ts, true
}

// Contains reports whether item is present.
func (s *Set[K]) Contains(item K) bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	_, ok := s.items[item]

	return ok
}

// Remove deletes item, reporting whether it was present.
func (s *Set[K]) Remove(item K) bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	_, ok := s.items[item]
	delete(s.items, item)

	return ok
}

// RangeQuery returns the items added within [from, to], ascending by time.
func (s *Set[K]) RangeQuery(from, to timed.Timestamp) ([]timed.Value[K], error) {
	s.mtx.Lock()
	snapshot := s.snapshot()
	s.mtx.Unlock()

	return timed.Range(snapshot, from, to)
}

// PruneOlderThan removes items added strictly before cutoff.
func (s *Set[K]) PruneOlderThan(cutoff timed.Timestamp) int {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	removed := 0

	for item, ts := range s.items {
		if ts < cutoff {
			delete(s.items, item)

			removed++
		}
	}

	return removed
}

// PruneRange removes items added within [from, to].
func (s *Set[K]) PruneRange(from, to timed.Timestamp) (int, error) {
	if to < from {
		return 0, timed.ErrInvalidRange
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	removed := 0

	for item, ts := range s.items {
		if ts >= from && ts <= to {
			delete(s.items, item)

			removed++
		}
	}

	return removed, nil
}

// CountInRange counts items added within [from, to].
func (s *Set[K]) CountInRange(from, to timed.Timestamp) (int, error) {
	s.mtx.Lock()
	snapshot := s.snapshot()
	s.mtx.Unlock()

	return timed.CountRange(snapshot, from, to)
}

// CountSince counts items added at or after from.
func (s *Set[K]) CountSince(from timed.Timestamp) int {
	s.mtx.Lock()
	snapshot := s.snapshot()
	s.mtx.Unlock()

	return timed.CountSince(snapshot, from)
}

// Earliest returns the first-added item.
func (s *Set[K]) Earliest() (timed.Value[K], bool) {
	s.mtx.Lock()
	snapshot := s.snapshot()
	s.mtx.Unlock()

	return timed.EarliestOf(snapshot)
}

// Latest returns the most recently added item.
func (s *Set[K]) Latest() (timed.Value[K], bool) {
	s.mtx.Lock()
	snapshot := s.snapshot()
	s.mtx.Unlock()

	return timed.LatestOf(snapshot)
}

// StrictlyBefore returns the items added strictly before t.
func (s *Set[K]) StrictlyBefore(t timed.Timestamp) []timed.Value[K] {
	s.mtx.Lock()
	snapshot := s.snapshot()
	s.mtx.Unlock()

	return timed.Before(snapshot, t)
}

// StrictlyAfter returns the items added strictly after t.
func (s *Set[K]) StrictlyAfter(t timed.Timestamp) []timed.Value[K] {
	s.mtx.Lock()
	snapshot := s.snapshot()
	s.mtx.Unlock()

	return timed.After(snapshot, t)
}

// Nearest returns the item added closest to t; ties prefer the later one.
func (s *Set[K]) Nearest(t timed.Timestamp) (timed.Value[K], bool) {
	s.mtx.Lock()
	snapshot := s.snapshot()
	s.mtx.Unlock()

	return timed.NearestOf(snapshot, t)
}

// Span is the duration between the newest and oldest additions.
func (s *Set[K]) Span() time.Duration {
	s.mtx.Lock()
	snapshot := s.snapshot()
	s.mtx.Unlock()

	return timed.SpanOf(snapshot)
}

// Len reports the number of items.
func (s *Set[K]) Len() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return len(s.items)
}

// Clear discards all items.
func (s *Set[K]) Clear() {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	clear(s.items)
}

func (s *Set[K]) snapshot() []timed.Value[K] {
	result := make([]timed.Value[K], 0, len(s.items))

	for item, ts := range s.items {
		result = append(result, timed.Value[K]{Item: item, TS: ts})
	}

	return result
}
