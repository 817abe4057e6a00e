package interval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testArena(tb testing.TB, nodes int) *arena[int] {
	tb.Helper()

	a := newArena[int]()
	for i := range nodes {
		idx := a.malloc()
		a.storage[idx] = node{start: int64(i), end: int64(i + 5), max: int64(i + 5)}
		a.values[idx] = i
	}

	return a
}

func TestArenaBootPanicsWithoutColumns(t *testing.T) {
	t.Parallel()

	a := testArena(t, 200)
	a.hibernate()

	// A hibernated arena whose compressed columns were released can no
	// longer be restored; booting it must fail loudly, not corrupt state.
	a.hibernatedData[0] = nil

	assert.PanicsWithValue(t, "cannot boot a serialized arena", a.boot)
}

func TestArenaHibernateBootRestoresState(t *testing.T) {
	t.Parallel()

	a := testArena(t, 200)

	const holes = 60
	for i := uint32(1); i <= holes; i++ {
		a.free(i * 3)
	}

	used := a.used()

	a.hibernate()
	require.Nil(t, a.storage)
	require.Nil(t, a.gaps)

	a.boot()
	require.NotNil(t, a.storage)
	assert.Len(t, a.gaps, holes)
	assert.Equal(t, used, a.used())
	assert.Equal(t, 0, a.hibernatedStorageLen)

	for _, data := range a.hibernatedData {
		assert.Nil(t, data)
	}
}
