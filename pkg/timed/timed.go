// Package timed defines the data model shared by every temporal container:
// the monotonic timestamp, the immutable timed value, the query contract,
// and the brute-force helpers used by the unordered collaborators.
package timed

import (
	"math"
	"time"
)

// Timestamp is a point in time measured in nanoseconds since the Unix epoch.
// Timestamps attached to container entries are issued by a clock.Source and
// are strictly increasing per element type, so two distinct entries never
// carry equal timestamps.
type Timestamp int64

// Boundary timestamps for whole-container queries.
const (
	MinTimestamp = Timestamp(math.MinInt64)
	MaxTimestamp = Timestamp(math.MaxInt64)
)

// Time converts the timestamp to a wall-clock time.Time.
func (t Timestamp) Time() time.Time {
	return time.Unix(0, int64(t))
}

// Sub returns the duration between two timestamps.
func (t Timestamp) Sub(other Timestamp) time.Duration {
	return time.Duration(int64(t) - int64(other))
}

// FromTime converts a wall-clock time to a Timestamp.
func FromTime(t time.Time) Timestamp {
	return Timestamp(t.UnixNano())
}

// Value is an immutable (item, timestamp) pair. It is created once at
// insertion and never mutated afterwards.
type Value[T any] struct {
	Item T
	TS   Timestamp
}

// Index is the query contract every temporal container exposes, whether its
// storage is time-ordered (ordered index), priority-ordered (priority index),
// interval-keyed (interval index), or unordered (queue, stack, ring, set,
// map, multimap).
//
// Range bounds are inclusive on both ends. PruneOlderThan removes entries
// with timestamps strictly less than the cutoff; entries exactly at the
// cutoff are retained. CountSince counts entries with timestamps greater
// than or equal to from.
type Index[T any] interface {
	// RangeQuery returns a point-in-time snapshot of the entries whose
	// timestamps fall within [from, to]. Fails with ErrInvalidRange when
	// to < from.
	RangeQuery(from, to Timestamp) ([]Value[T], error)

	// PruneOlderThan removes every entry with a timestamp strictly less
	// than cutoff and reports how many were removed.
	PruneOlderThan(cutoff Timestamp) int

	// PruneRange removes every entry with a timestamp within [from, to]
	// and reports how many were removed. Fails with ErrInvalidRange when
	// to < from.
	PruneRange(from, to Timestamp) (int, error)

	// CountInRange counts entries within [from, to]. Fails with
	// ErrInvalidRange when to < from.
	CountInRange(from, to Timestamp) (int, error)

	// CountSince counts entries with timestamps >= from.
	CountSince(from Timestamp) int

	// Earliest returns the entry with the minimum timestamp, or false when
	// the container is empty.
	Earliest() (Value[T], bool)

	// Latest returns the entry with the maximum timestamp, or false when
	// the container is empty.
	Latest() (Value[T], bool)

	// StrictlyBefore returns the entries with timestamps strictly less
	// than t, in ascending timestamp order.
	StrictlyBefore(t Timestamp) []Value[T]

	// StrictlyAfter returns the entries with timestamps strictly greater
	// than t, in ascending timestamp order.
	StrictlyAfter(t Timestamp) []Value[T]

	// Nearest returns the entry whose timestamp is closest to t, or false
	// when the container is empty. An exact distance tie is resolved in
	// favor of the chronologically later entry.
	Nearest(t Timestamp) (Value[T], bool)

	// Span is the duration between the latest and earliest entries, or
	// zero when the container holds fewer than two entries.
	Span() time.Duration

	// Len reports the number of entries.
	Len() int

	// Clear discards all entries.
	Clear()
}
