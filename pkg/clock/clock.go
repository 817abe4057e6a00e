// Package clock issues the strictly monotonic timestamps every temporal
// container stamps its entries with.
//
// A Source never returns a value less than or equal to any value it has
// previously returned. Wall-clock reads seed the sequence, but the source,
// not the wall clock, is the authority for ordering: when the wall clock
// stalls or steps backwards the source keeps advancing by one nanosecond
// per allocation.
package clock

import (
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/engineering87/TemporalCollections-sub001/pkg/timed"
)

// Source allocates strictly increasing timestamps. It is safe for
// concurrent use by any number of goroutines; allocation is a lock-free
// compare-and-swap loop and cannot fail, only retry.
type Source struct {
	last atomic.Int64
}

// NewSource creates an isolated source. Containers default to the shared
// per-type source from For; an isolated source decouples a container's
// timeline from every other container of the same element type, which is
// mainly useful in tests.
func NewSource() *Source {
	return &Source{}
}

// Next returns the next timestamp: the current wall-clock reading, bumped
// past the last issued value when the wall clock has not advanced.
func (s *Source) Next() timed.Timestamp {
	for {
		now := time.Now().UnixNano()

		last := s.last.Load()
		next := now

		if next <= last {
			next = last + 1
		}

		if s.last.CompareAndSwap(last, next) {
			return timed.Timestamp(next)
		}
	}
}

// Last returns the most recently issued timestamp, or zero when the source
// has never allocated.
func (s *Source) Last() timed.Timestamp {
	return timed.Timestamp(s.last.Load())
}

// sources holds the process-wide source per element type. Entries live from
// first use to process exit; there is no reset.
var sources sync.Map // reflect.Type -> *Source

// For returns the process-wide shared source for element type T. Every
// container of the same element type draws from the same sequence, so
// timestamps are strictly increasing across all instances, not just one.
func For[T any]() *Source {
	key := reflect.TypeOf((*T)(nil)).Elem()

	if src, ok := sources.Load(key); ok {
		return src.(*Source)
	}

	src, _ := sources.LoadOrStore(key, NewSource())

	return src.(*Source)
}
