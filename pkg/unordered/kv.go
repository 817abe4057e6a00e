package unordered

import (
	"sync"
	"time"

	"github.com/engineering87/TemporalCollections-sub001/pkg/clock"
	"github.com/engineering87/TemporalCollections-sub001/pkg/timed"
)

// Map is a hash-backed key/value container whose values remember when they
// were written. Put overwrites both the value and its timestamp.
type Map[K comparable, V any] struct {
	mtx   sync.Mutex
	src   *clock.Source
	items map[K]timed.Value[V]
}

var _ timed.Index[int] = (*Map[string, int])(nil)

// NewMap creates a map drawing timestamps from the process-wide shared
// source for V.
func NewMap[K comparable, V any]() *Map[K, V] {
	return NewMapWithSource[K, V](clock.For[V]())
}

// NewMapWithSource creates a map with an explicit timestamp source.
func NewMapWithSource[K comparable, V any](src *clock.Source) *Map[K, V] {
	return &Map[K, V]{src: src, items: map[K]timed.Value[V]{}}
}

// Put stamps value and stores it under key, replacing any previous entry.
func (m *Map[K, V]) Put(key K, value V) timed.Timestamp {
	ts := m.src.Next()

	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.items[key] = timed.Value[V]{Item: value, TS: ts}

	return ts
}

// Get returns the entry stored under key, or false when absent.
func (m *Map[K, V]) Get(key K) (timed.Value[V], bool) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	entry, ok := m.items[key]

	return entry, ok
}

// Delete removes the entry stored under key, reporting whether it existed.
func (m *Map[K, V]) Delete(key K) bool {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	_, ok := m.items[key]
	delete(m.items, key)

	return ok
}

// RangeQuery returns the values written within [from, to], ascending by
// time.
func (m *Map[K, V]) RangeQuery(from, to timed.Timestamp) ([]timed.Value[V], error) {
	m.mtx.Lock()
	snapshot := m.snapshot()
	m.mtx.Unlock()

	return timed.Range(snapshot, from, to)
}

// PruneOlderThan removes entries written strictly before cutoff.
func (m *Map[K, V]) PruneOlderThan(cutoff timed.Timestamp) int {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	removed := 0

	for key, entry := range m.items {
		if entry.TS < cutoff {
			delete(m.items, key)

			removed++
		}
	}

	return removed
}

// PruneRange removes entries written within [from, to].
func (m *Map[K, V]) PruneRange(from, to timed.Timestamp) (int, error) {
	if to < from {
		return 0, timed.ErrInvalidRange
	}

	m.mtx.Lock()
	defer m.mtx.Unlock()

	removed := 0

	for key, entry := range m.items {
		if entry.TS >= from && entry.TS <= to {
			delete(m.items, key)

			removed++
		}
	}

	return removed, nil
}

// CountInRange counts entries written within [from, to].
func (m *Map[K, V]) CountInRange(from, to timed.Timestamp) (int, error) {
	m.mtx.Lock()
	snapshot := m.snapshot()
	m.mtx.Unlock()

	return timed.CountRange(snapshot, from, to)
}

// CountSince counts entries written at or after from.
func (m *Map[K, V]) CountSince(from timed.Timestamp) int {
	m.mtx.Lock()
	snapshot := m.snapshot()
	m.mtx.Unlock()

	return timed.CountSince(snapshot, from)
}

// Earliest returns the oldest entry.
func (m *Map[K, V]) Earliest() (timed.Value[V], bool) {
	m.mtx.Lock()
	snapshot := m.snapshot()
	m.mtx.Unlock()

	return timed.EarliestOf(snapshot)
}

// Latest returns the most recently written entry.
func (m *Map[K, V]) Latest() (timed.Value[V], bool) {
	m.mtx.Lock()
	snapshot := m.snapshot()
	m.mtx.Unlock()

	return timed.LatestOf(snapshot)
}

// StrictlyBefore returns the entries written strictly before t.
func (m *Map[K, V]) StrictlyBefore(t timed.Timestamp) []timed.Value[V] {
	m.mtx.Lock()
	snapshot := m.snapshot()
	m.mtx.Unlock()

	return timed.Before(snapshot, t)
}

// StrictlyAfter returns the entries written strictly after t.
func (m *Map[K, V]) StrictlyAfter(t timed.Timestamp) []timed.Value[V] {
	m.mtx.Lock()
	snapshot := m.snapshot()
	m.mtx.Unlock()

	return timed.After(snapshot, t)
}

// Nearest returns the entry written closest to t; ties prefer the later
// one.
func (m *Map[K, V]) Nearest(t timed.Timestamp) (timed.Value[V], bool) {
	m.mtx.Lock()
	snapshot := m.snapshot()
	m.mtx.Unlock()

	return timed.NearestOf(snapshot, t)
}

// Span is the duration between the newest and oldest entries.
func (m *Map[K, V]) Span() time.Duration {
	m.mtx.Lock()
	snapshot := m.snapshot()
	m.mtx.Unlock()

	return timed.SpanOf(snapshot)
}

// Len reports the number of entries.
func (m *Map[K, V]) Len() int {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return len(m.items)
}

// Clear discards all entries.
func (m *Map[K, V]) Clear() {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	clear(m.items)
}

func (m *Map[K, V]) snapshot() []timed.Value[V] {
	result := make([]timed.Value[V], 0, len(m.items))

	for _, entry := range m.items {
		result = append(result, entry)
	}

	return result
}

// MultiMap is a hash-backed key to many-values container; every appended
// value carries its own timestamp.
type MultiMap[K comparable, V any] struct {
	mtx   sync.Mutex
	src   *clock.Source
	items map[K][]timed.Value[V]
	count int
}

var _ timed.Index[int] = (*MultiMap[string, int])(nil)

// NewMultiMap creates a multimap drawing timestamps from the process-wide
// shared source for V.
func NewMultiMap[K comparable, V any]() *MultiMap[K, V] {
	return NewMultiMapWithSource[K, V](clock.For[V]())
}

// NewMultiMapWithSource creates a multimap with an explicit timestamp
// source.
func NewMultiMapWithSource[K comparable, V any](src *clock.Source) *MultiMap[K, V] {
	return &MultiMap[K, V]{src: src, items: map[K][]timed.Value[V]{}}
}

// Add stamps value and appends it under key.
func (mm *MultiMap[K, V]) Add(key K, value V) timed.Timestamp {
	ts := mm.src.Next()

	mm.mtx.Lock()
	defer mm.mtx.Unlock()

	mm.items[key] = append(mm.items[key], timed.Value[V]{Item: value, TS: ts})
	mm.count++

	return ts
}

// Get returns the values stored under key in insertion order.
func (mm *MultiMap[K, V]) Get(key K) []timed.Value[V] {
	mm.mtx.Lock()
	defer mm.mtx.Unlock()

	stored := mm.items[key]
	result := make([]timed.Value[V], len(stored))
	copy(result, stored)

	return result
}

// DeleteKey removes every value stored under key, reporting how many were
// removed.
func (mm *MultiMap[K, V]) DeleteKey(key K) int {
	mm.mtx.Lock()
	defer mm.mtx.Unlock()

	removed := len(mm.items[key])
	delete(mm.items, key)
	mm.count -= removed

	return removed
}

// RangeQuery returns the values added within [from, to], ascending by
// time.
func (mm *MultiMap[K, V]) RangeQuery(from, to timed.Timestamp) ([]timed.Value[V], error) {
	mm.mtx.Lock()
	snapshot := mm.snapshot()
	mm.mtx.Unlock()

	return timed.Range(snapshot, from, to)
}

// PruneOlderThan removes values added strictly before cutoff.
func (mm *MultiMap[K, V]) PruneOlderThan(cutoff timed.Timestamp) int {
	mm.mtx.Lock()
	defer mm.mtx.Unlock()

	return mm.pruneFunc(func(entry timed.Value[V]) bool { return entry.TS < cutoff })
}

// PruneRange removes values added within [from, to].
func (mm *MultiMap[K, V]) PruneRange(from, to timed.Timestamp) (int, error) {
	if to < from {
		return 0, timed.ErrInvalidRange
	}

	mm.mtx.Lock()
	defer mm.mtx.Unlock()

	return mm.pruneFunc(func(entry timed.Value[V]) bool {
		return entry.TS >= from && entry.TS <= to
	}), nil
}

// CountInRange counts values added within [from, to].
func (mm *MultiMap[K, V]) CountInRange(from, to timed.Timestamp) (int, error) {
	mm.mtx.Lock()
	snapshot := mm.snapshot()
	mm.mtx.Unlock()

	return timed.CountRange(snapshot, from, to)
}

// CountSince counts values added at or after from.
func (mm *MultiMap[K, V]) CountSince(from timed.Timestamp) int {
	mm.mtx.Lock()
	snapshot := mm.snapshot()
	mm.mtx.Unlock()

	return timed.CountSince(snapshot, from)
}

// Earliest returns the oldest value across all keys.
func (mm *MultiMap[K, V]) Earliest() (timed.Value[V], bool) {
	mm.mtx.Lock()
	snapshot := mm.snapshot()
	mm.mtx.Unlock()

	return timed.EarliestOf(snapshot)
}

// Latest returns the newest value across all keys.
func (mm *MultiMap[K, V]) Latest() (timed.Value[V], bool) {
	mm.mtx.Lock()
	snapshot := mm.snapshot()
	mm.mtx.Unlock()

	return timed.LatestOf(snapshot)
}

// StrictlyBefore returns the values added strictly before t.
func (mm *MultiMap[K, V]) StrictlyBefore(t timed.Timestamp) []timed.Value[V] {
	mm.mtx.Lock()
	snapshot := mm.snapshot()
	mm.mtx.Unlock()

	return timed.Before(snapshot, t)
}

// StrictlyAfter returns the values added strictly after t.
func (mm *MultiMap[K, V]) StrictlyAfter(t timed.Timestamp) []timed.Value[V] {
	mm.mtx.Lock()
	snapshot := mm.snapshot()
	mm.mtx.Unlock()

	return timed.After(snapshot, t)
}

// Nearest returns the value added closest to t; ties prefer the later one.
func (mm *MultiMap[K, V]) Nearest(t timed.Timestamp) (timed.Value[V], bool) {
	mm.mtx.Lock()
	snapshot := mm.snapshot()
	mm.mtx.Unlock()

	return timed.NearestOf(snapshot, t)
}

// Span is the duration between the newest and oldest values.
func (mm *MultiMap[K, V]) Span() time.Duration {
	mm.mtx.Lock()
	snapshot := mm.snapshot()
	mm.mtx.Unlock()

	return timed.SpanOf(snapshot)
}

// Len reports the total number of values across all keys.
func (mm *MultiMap[K, V]) Len() int {
	mm.mtx.Lock()
	defer mm.mtx.Unlock()

	return mm.count
}

// Clear discards all values.
func (mm *MultiMap[K, V]) Clear() {
	mm.mtx.Lock()
	defer mm.mtx.Unlock()

	clear(mm.items)
	mm.count = 0
}

func (mm *MultiMap[K, V]) snapshot() []timed.Value[V] {
	result := make([]timed.Value[V], 0, mm.count)

	for _, stored := range mm.items {
		result = append(result, stored...)
	}

	return result
}

func (mm *MultiMap[K, V]) pruneFunc(doomed func(timed.Value[V]) bool) int {
	removed := 0

	for key, stored := range mm.items {
		kept := stored[:0]

		for _, entry := range stored {
			if doomed(entry) {
				removed++

				continue
			}

			kept = append(kept, entry)
		}

		if len(kept) == 0 {
			delete(mm.items, key)
		} else {
			mm.items[key] = kept
		}
	}

	mm.count -= removed

	return removed
}
