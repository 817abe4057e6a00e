package unordered_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engineering87/TemporalCollections-sub001/pkg/clock"
	"github.com/engineering87/TemporalCollections-sub001/pkg/timed"
	"github.com/engineering87/TemporalCollections-sub001/pkg/unordered"
)

func TestQueueFIFO(t *testing.T) {
	t.Parallel()

	q := unordered.NewQueue[string]()
	q.Enqueue("first")
	q.Enqueue("second")
	q.Enqueue("third")

	for _, want := range []string{"first", "second", "third"} {
		entry, ok := q.Dequeue()
		require.True(t, ok)
		assert.Equal(t, want, entry.Item)
	}

	_, ok := q.Dequeue()
	assert.False(t, ok, "dequeue on empty reports absence, not an error")
}

func TestQueuePeek(t *testing.T) {
	t.Parallel()

	q := unordered.NewQueue[int]()

	_, ok := q.Peek()
	assert.False(t, ok)

	q.Enqueue(42)

	entry, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, 42, entry.Item)
	assert.Equal(t, 1, q.Len(), "peek does not remove")
}

func TestQueueTimestampsIncreasing(t *testing.T) {
	t.Parallel()

	q := unordered.NewQueueWithSource[int](clock.NewSource())

	prev := q.Enqueue(0)
	for i := 1; i < 100; i++ {
		ts := q.Enqueue(i)
		require.Greater(t, ts, prev)

		prev = ts
	}
}

func TestQueueRangeAndPrune(t *testing.T) {
	t.Parallel()

	q := unordered.NewQueue[int]()

	stamps := make([]timed.Timestamp, 0, 5)
	for i := range 5 {
		stamps = append(stamps, q.Enqueue(i))
	}

	result, err := q.RangeQuery(stamps[1], stamps[3])
	require.NoError(t, err)
	require.Len(t, result, 3)
	assert.Equal(t, 1, result[0].Item)

	_, err = q.RangeQuery(stamps[3], stamps[1])
	require.ErrorIs(t, err, timed.ErrInvalidRange)

	assert.Equal(t, 2, q.PruneOlderThan(stamps[2]))
	assert.Equal(t, 3, q.Len())

	// FIFO order survives the prune.
	head, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, 2, head.Item)

	removed, err := q.PruneRange(stamps[2], stamps[3])
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, q.Len())
}

func TestQueueContractQueries(t *testing.T) {
	t.Parallel()

	q := unordered.NewQueue[int]()

	assert.Equal(t, time.Duration(0), q.Span())

	stamps := make([]timed.Timestamp, 0, 3)
	for i := range 3 {
		stamps = append(stamps, q.Enqueue(i))
	}

	earliest, ok := q.Earliest()
	require.True(t, ok)
	assert.Equal(t, stamps[0], earliest.TS)

	latest, ok := q.Latest()
	require.True(t, ok)
	assert.Equal(t, stamps[2], latest.TS)

	assert.Equal(t, 2, q.CountSince(stamps[1]))

	count, err := q.CountInRange(stamps[0], stamps[1])
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.Len(t, q.StrictlyBefore(stamps[1]), 1)
	require.Len(t, q.StrictlyAfter(stamps[1]), 1)

	nearest, ok := q.Nearest(stamps[1])
	require.True(t, ok)
	assert.Equal(t, stamps[1], nearest.TS)

	assert.Equal(t, stamps[2].Sub(stamps[0]), q.Span())

	q.Clear()
	assert.Equal(t, 0, q.Len())
}
