package unordered_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engineering87/TemporalCollections-sub001/pkg/timed"
	"github.com/engineering87/TemporalCollections-sub001/pkg/unordered"
)

func TestRingInvalidCapacity(t *testing.T) {
	t.Parallel()

	_, err := unordered.NewRing[int](0)
	require.ErrorIs(t, err, timed.ErrInvalidCapacity)

	_, err = unordered.NewRing[int](-1)
	require.ErrorIs(t, err, timed.ErrInvalidCapacity)
}

func TestRingEviction(t *testing.T) {
	t.Parallel()

	r, err := unordered.NewRing[int](3)
	require.NoError(t, err)
	assert.Equal(t, 3, r.Capacity())

	for i := range 3 {
		_, evicted := r.Add(i)
		assert.Nil(t, evicted, "no eviction until full")
	}

	_, evicted := r.Add(3)
	require.NotNil(t, evicted)
	assert.Equal(t, 0, evicted.Item, "the oldest entry is evicted")
	assert.Equal(t, 3, r.Len())

	oldest, ok := r.Oldest()
	require.True(t, ok)
	assert.Equal(t, 1, oldest.Item)
}

func TestRingOldestEmpty(t *testing.T) {
	t.Parallel()

	r, err := unordered.NewRing[int](2)
	require.NoError(t, err)

	_, ok := r.Oldest()
	assert.False(t, ok)
}

func TestRingPrune(t *testing.T) {
	t.Parallel()

	r, err := unordered.NewRing[int](4)
	require.NoError(t, err)

	stamps := make([]timed.Timestamp, 0, 4)
	for i := range 4 {
		ts, _ := r.Add(i)
		stamps = append(stamps, ts)
	}

	assert.Equal(t, 2, r.PruneOlderThan(stamps[2]))
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, 4, r.Capacity(), "pruning never shrinks capacity")

	oldest, ok := r.Oldest()
	require.True(t, ok)
	assert.Equal(t, 2, oldest.Item)

	// Refilling after a prune keeps working across the wrap point.
	for i := 4; i < 8; i++ {
		r.Add(i)
	}

	assert.Equal(t, 4, r.Len())

	oldest, ok = r.Oldest()
	require.True(t, ok)
	assert.Equal(t, 4, oldest.Item)
}

func TestRingContractQueries(t *testing.T) {
	t.Parallel()

	r, err := unordered.NewRing[int](8)
	require.NoError(t, err)

	stamps := make([]timed.Timestamp, 0, 5)
	for i := range 5 {
		ts, _ := r.Add(i)
		stamps = append(stamps, ts)
	}

	result, err := r.RangeQuery(stamps[1], stamps[3])
	require.NoError(t, err)
	require.Len(t, result, 3)
	assert.Equal(t, 1, result[0].Item)

	count, err := r.CountInRange(stamps[0], stamps[4])
	require.NoError(t, err)
	assert.Equal(t, 5, count)
	assert.Equal(t, 2, r.CountSince(stamps[3]))

	earliest, ok := r.Earliest()
	require.True(t, ok)
	assert.Equal(t, stamps[0], earliest.TS)

	latest, ok := r.Latest()
	require.True(t, ok)
	assert.Equal(t, stamps[4], latest.TS)

	nearest, ok := r.Nearest(stamps[2])
	require.True(t, ok)
	assert.Equal(t, stamps[2], nearest.TS)

	assert.Equal(t, stamps[4].Sub(stamps[0]), r.Span())

	removed, err := r.PruneRange(stamps[0], stamps[4])
	require.NoError(t, err)
	assert.Equal(t, 5, removed)
	assert.Equal(t, 0, r.Len())

	r.Clear()

	_, ok = r.Oldest()
	assert.False(t, ok)
}
