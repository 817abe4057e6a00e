package timed

import (
	"slices"
	"time"
)

// Brute-force contract helpers for containers whose storage carries no time
// ordering (queue, stack, ring, set, map, multimap). Each helper performs a
// linear scan over a snapshot slice; the caller is expected to hold its own
// lock while producing the snapshot. Result slices are freshly allocated and
// sorted by ascending timestamp so query output stays deterministic
// regardless of the backing storage's iteration order.

// Range filters entries within [from, to], both ends inclusive.
func Range[T any](entries []Value[T], from, to Timestamp) ([]Value[T], error) {
	if to < from {
		return nil, ErrInvalidRange
	}

	result := make([]Value[T], 0)

	for _, entry := range entries {
		if entry.TS >= from && entry.TS <= to {
			result = append(result, entry)
		}
	}

	sortByTS(result)

	return result, nil
}

// CountRange counts entries within [from, to].
func CountRange[T any](entries []Value[T], from, to Timestamp) (int, error) {
	if to < from {
		return 0, ErrInvalidRange
	}

	count := 0

	for _, entry := range entries {
		if entry.TS >= from && entry.TS <= to {
			count++
		}
	}

	return count, nil
}

// CountSince counts entries with timestamps >= from.
func CountSince[T any](entries []Value[T], from Timestamp) int {
	count := 0

	for _, entry := range entries {
		if entry.TS >= from {
			count++
		}
	}

	return count
}

// EarliestOf returns the entry with the minimum timestamp.
func EarliestOf[T any](entries []Value[T]) (Value[T], bool) {
	if len(entries) == 0 {
		return Value[T]{}, false
	}

	best := entries[0]

	for _, entry := range entries[1:] {
		if entry.TS < best.TS {
			best = entry
		}
	}

	return best, true
}

// LatestOf returns the entry with the maximum timestamp.
func LatestOf[T any](entries []Value[T]) (Value[T], bool) {
	if len(entries) == 0 {
		return Value[T]{}, false
	}

	best := entries[0]

	for _, entry := range entries[1:] {
		if entry.TS > best.TS {
			best = entry
		}
	}

	return best, true
}

// Before returns the entries with timestamps strictly less than t,
// ascending.
func Before[T any](entries []Value[T], t Timestamp) []Value[T] {
	result := make([]Value[T], 0)

	for _, entry := range entries {
		if entry.TS < t {
			result = append(result, entry)
		}
	}

	sortByTS(result)

	return result
}

// After returns the entries with timestamps strictly greater than t,
// ascending.
func After[T any](entries []Value[T], t Timestamp) []Value[T] {
	result := make([]Value[T], 0)

	for _, entry := range entries {
		if entry.TS > t {
			result = append(result, entry)
		}
	}

	sortByTS(result)

	return result
}

// NearestOf returns the entry whose timestamp is closest to t. An exact
// distance tie is resolved in favor of the later entry.
func NearestOf[T any](entries []Value[T], t Timestamp) (Value[T], bool) {
	if len(entries) == 0 {
		return Value[T]{}, false
	}

	best := entries[0]
	bestDist := distance(best.TS, t)

	for _, entry := range entries[1:] {
		dist := distance(entry.TS, t)
		if dist < bestDist || (dist == bestDist && entry.TS > best.TS) {
			best = entry
			bestDist = dist
		}
	}

	return best, true
}

// SpanOf is the duration between the latest and earliest entries, or zero
// for fewer than two entries.
func SpanOf[T any](entries []Value[T]) time.Duration {
	if len(entries) < 2 {
		return 0
	}

	earliest, _ := EarliestOf(entries)
	latest, _ := LatestOf(entries)

	return latest.TS.Sub(earliest.TS)
}

func sortByTS[T any](entries []Value[T]) {
	slices.SortFunc(entries, func(a, b Value[T]) int {
		switch {
		case a.TS < b.TS:
			return -1
		case a.TS > b.TS:
			return 1
		default:
			return 0
		}
	})
}

func distance(a, b Timestamp) uint64 {
	if a < b {
		return uint64(int64(b) - int64(a))
	}

	return uint64(int64(a) - int64(b))
}
