package timed_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engineering87/TemporalCollections-sub001/pkg/timed"
)

func testValues(stamps ...timed.Timestamp) []timed.Value[string] {
	result := make([]timed.Value[string], 0, len(stamps))

	for _, ts := range stamps {
		result = append(result, timed.Value[string]{Item: "v", TS: ts})
	}

	return result
}

func TestRangeInclusiveBounds(t *testing.T) {
	t.Parallel()

	entries := testValues(10, 20, 30, 40)

	result, err := timed.Range(entries, 20, 30)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, timed.Timestamp(20), result[0].TS)
	assert.Equal(t, timed.Timestamp(30), result[1].TS)
}

func TestRangeInvalid(t *testing.T) {
	t.Parallel()

	_, err := timed.Range(testValues(10), 30, 20)
	require.ErrorIs(t, err, timed.ErrInvalidRange)
}

func TestRangeSortsUnorderedInput(t *testing.T) {
	t.Parallel()

	entries := testValues(30, 10, 20)

	result, err := timed.Range(entries, timed.MinTimestamp, timed.MaxTimestamp)
	require.NoError(t, err)
	require.Len(t, result, 3)
	assert.Equal(t, timed.Timestamp(10), result[0].TS)
	assert.Equal(t, timed.Timestamp(20), result[1].TS)
	assert.Equal(t, timed.Timestamp(30), result[2].TS)
}

func TestCountRange(t *testing.T) {
	t.Parallel()

	entries := testValues(10, 20, 30)

	count, err := timed.CountRange(entries, 10, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, err = timed.CountRange(entries, 20, 10)
	require.ErrorIs(t, err, timed.ErrInvalidRange)
}

func TestCountSinceInclusive(t *testing.T) {
	t.Parallel()

	entries := testValues(10, 20, 30)
	assert.Equal(t, 2, timed.CountSince(entries, 20))
	assert.Equal(t, 0, timed.CountSince(entries, 31))
}

func TestEarliestLatest(t *testing.T) {
	t.Parallel()

	_, ok := timed.EarliestOf(testValues())
	assert.False(t, ok)

	entries := testValues(20, 10, 30)

	earliest, ok := timed.EarliestOf(entries)
	require.True(t, ok)
	assert.Equal(t, timed.Timestamp(10), earliest.TS)

	latest, ok := timed.LatestOf(entries)
	require.True(t, ok)
	assert.Equal(t, timed.Timestamp(30), latest.TS)
}

func TestBeforeAfterStrict(t *testing.T) {
	t.Parallel()

	entries := testValues(10, 20, 30)

	before := timed.Before(entries, 20)
	require.Len(t, before, 1)
	assert.Equal(t, timed.Timestamp(10), before[0].TS)

	after := timed.After(entries, 20)
	require.Len(t, after, 1)
	assert.Equal(t, timed.Timestamp(30), after[0].TS)
}

func TestNearestTiePrefersLater(t *testing.T) {
	t.Parallel()

	entries := testValues(10, 20)

	// 15 is equidistant; the later entry wins.
	nearest, ok := timed.NearestOf(entries, 15)
	require.True(t, ok)
	assert.Equal(t, timed.Timestamp(20), nearest.TS)

	nearest, ok = timed.NearestOf(entries, 14)
	require.True(t, ok)
	assert.Equal(t, timed.Timestamp(10), nearest.TS)

	nearest, ok = timed.NearestOf(entries, 10)
	require.True(t, ok)
	assert.Equal(t, timed.Timestamp(10), nearest.TS)
}

func TestNearestEmpty(t *testing.T) {
	t.Parallel()

	_, ok := timed.NearestOf(testValues(), 10)
	assert.False(t, ok)
}

func TestSpanOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, time.Duration(0), timed.SpanOf(testValues()))
	assert.Equal(t, time.Duration(0), timed.SpanOf(testValues(10)))
	assert.Equal(t, time.Duration(20), timed.SpanOf(testValues(10, 30)))
}

func TestTimestampConversions(t *testing.T) {
	t.Parallel()

	now := time.Now()
	ts := timed.FromTime(now)
	assert.Equal(t, now.UnixNano(), ts.Time().UnixNano())
	assert.Equal(t, time.Duration(5), timed.Timestamp(15).Sub(timed.Timestamp(10)))
}
