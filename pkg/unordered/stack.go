package unordered

import (
	"sync"
	"time"

	"github.com/engineering87/TemporalCollections-sub001/pkg/clock"
	"github.com/engineering87/TemporalCollections-sub001/pkg/timed"
)

// Stack is a LIFO container of timed values. Unlike the queue's
// optional-style Dequeue, Pop on an empty stack fails with an explicit
// error; the two disciplines are intentionally different per operation
// semantics.
type Stack[T any] struct {
	mtx     sync.Mutex
	src     *clock.Source
	entries []timed.Value[T]
}

var _ timed.Index[int] = (*Stack[int])(nil)

// NewStack creates a stack drawing timestamps from the process-wide shared
// source for T.
func NewStack[T any]() *Stack[T] {
	return NewStackWithSource[T](clock.For[T]())
}

// NewStackWithSource creates a stack with an explicit timestamp source.
func NewStackWithSource[T any](src *clock.Source) *Stack[T] {
	return &Stack[T]{src: src, entries: []timed.Value[T]{}}
}

// Push stamps item and places it on top.
func (s *Stack[T]) Push(item T) timed.Timestamp {
	ts := s.src.Next()

	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.entries = append(s.entries, timed.Value[T]{Item: item, TS: ts})

	return ts
}

// Pop removes and returns the top entry. Fails with ErrEmpty when the
// stack holds no entries.
func (s *Stack[T]) Pop() (timed.Value[T], error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if len(s.entries) == 0 {
		return timed.Value[T]{}, timed.ErrEmpty
	}

	top := s.entries[len(s.entries)-1]
	s.entries = s.entries[:len(s.entries)-1]

	return top, nil
}

// Peek returns the top entry without removing it, or false when empty.
func (s *Stack[T]) Peek() (timed.Value[T], bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if len(s.entries) == 0 {
		return timed.Value[T]{}, false
	}

	return s.entries[len(s.entries)-1], true
}

// RangeQuery returns a snapshot of the entries within [from, to].
func (s *Stack[T]) RangeQuery(from, to timed.Timestamp) ([]timed.Value[T], error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return timed.Range(s.entries, from, to)
}

// PruneOlderThan removes entries with timestamps strictly less than cutoff.
func (s *Stack[T]) PruneOlderThan(cutoff timed.Timestamp) int {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	kept := s.entries[:0]
	removed := 0

	for _, entry := range s.entries {
		if entry.TS < cutoff {
			removed++

			continue
		}

		kept = append(kept, entry)
	}

	s.entries = kept

	return removed
}

// PruneRange removes entries with timestamps within [from, to].
func (s *Stack[T]) PruneRange(from, to timed.Timestamp) (int, error) {
	if to < from {
		return 0, timed.ErrInvalidRange
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	kept := s.entries[:0]
	removed := 0

	for _, entry := range s.entries {
		if entry.TS >= from && entry.TS <= to {
			removed++

			continue
		}

		kept = append(kept, entry)
	}

	s.entries = kept

	return removed, nil
}

// CountInRange counts entries within [from, to].
func (s *Stack[T]) CountInRange(from, to timed.Timestamp) (int, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return timed.CountRange(s.entries, from, to)
}

// CountSince counts entries with timestamps >= from.
func (s *Stack[T]) CountSince(from timed.Timestamp) int {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return timed.CountSince(s.entries, from)
}

// Earliest returns the entry with the minimum timestamp.
func (s *Stack[T]) Earliest() (timed.Value[T], bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return timed.EarliestOf(s.entries)
}

// Latest returns the entry with the maximum timestamp.
func (s *Stack[T]) Latest() (timed.Value[T], bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return timed.LatestOf(s.entries)
}

// StrictlyBefore returns the entries with timestamps strictly less than t.
func (s *Stack[T]) StrictlyBefore(t timed.Timestamp) []timed.Value[T] {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return timed.Before(s.entries, t)
}

// StrictlyAfter returns the entries with timestamps strictly greater than t.
func (s *Stack[T]) StrictlyAfter(t timed.Timestamp) []timed.Value[T] {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return timed.After(s.entries, t)
}

// Nearest returns the entry closest to t; exact ties prefer the later one.
func (s *Stack[T]) Nearest(t timed.Timestamp) (timed.Value[T], bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return timed.NearestOf(s.entries, t)
}

// Span is the duration between the latest and earliest entries.
func (s *Stack[T]) Span() time.Duration {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return timed.SpanOf(s.entries)
}

// Len reports the number of entries.
func (s *Stack[T]) Len() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return len(s.entries)
}

// Clear discards all entries.
func (s *Stack[T]) Clear() {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.entries = s.entries[:0]
}
