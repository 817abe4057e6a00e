package interval

import (
	"maps"
	"sync"

	"github.com/engineering87/TemporalCollections-sub001/pkg/safeconv"
)

// growCapacityNumerator and growCapacityDenominator define the 3/2 growth
// factor used when restoring storage from hibernation.
const (
	growCapacityNumerator   = 3
	growCapacityDenominator = 2
)

// hibernatedBufferCount is the number of compressed columns: start, end,
// max (int64) plus left, right (uint32) plus the gap set.
const hibernatedBufferCount = 6

// node is a tree node stored in the arena. Links are arena indices; index
// zero is the reserved nil sentinel. max is the maximum interval end within
// the node's subtree, the augmentation that lets overlap queries prune.
type node struct {
	start, end, max int64
	left, right     uint32
}

// arena is the nodes allocator. Freed indices are recycled through the gap
// set before the storage slice grows. Values live in a parallel slice
// aligned with storage, so a node's value shares its index.
type arena[V comparable] struct {
	storage []node
	values  []V
	gaps    map[uint32]bool

	hibernatedData       [hibernatedBufferCount][]byte
	hibernatedStorageLen int
	hibernatedGapsLen    int
}

func newArena[V comparable]() *arena[V] {
	return &arena[V]{
		storage: []node{},
		values:  []V{},
		gaps:    map[uint32]bool{},
	}
}

// used returns the number of live nodes in the arena.
func (a *arena[V]) used() int {
	if a.storage == nil {
		panic("hibernated arenas cannot be used")
	}

	if len(a.storage) == 0 {
		return 0
	}

	// Slot zero is the reserved sentinel.
	return len(a.storage) - len(a.gaps) - 1
}

func (a *arena[V]) malloc() uint32 {
	if a.storage == nil {
		panic("hibernated arenas cannot be used")
	}

	if len(a.gaps) > 0 {
		var key uint32

		for key = range a.gaps {
			break
		}

		delete(a.gaps, key)

		return key
	}

	if len(a.storage) == 0 {
		// Zero is reserved.
		a.storage = append(a.storage, node{})
		a.values = append(a.values, *new(V))
	}

	idx := len(a.storage)
	a.storage = append(a.storage, node{})
	a.values = append(a.values, *new(V))

	return safeconv.MustIntToUint32(idx)
}

func (a *arena[V]) free(nodeIdx uint32) {
	if a.storage == nil {
		panic("hibernated arenas cannot be used")
	}

	if nodeIdx == 0 {
		panic("node #0 is special and cannot be deallocated")
	}

	a.storage[nodeIdx] = node{}
	a.values[nodeIdx] = *new(V)
	a.gaps[nodeIdx] = true
}

// hibernate compresses the structural columns of the arena with LZ4. The
// values slice stays live: generic payloads are not serialized. Hibernating
// an already hibernated arena panics, matching malloc/free discipline.
func (a *arena[V]) hibernate() {
	if a.hibernatedStorageLen > 0 {
		panic("cannot hibernate an already hibernated arena")
	}

	a.hibernatedStorageLen = len(a.storage)
	if a.hibernatedStorageLen == 0 {
		a.storage = nil

		return
	}

	starts := make([]int64, len(a.storage))
	ends := make([]int64, len(a.storage))
	maxes := make([]int64, len(a.storage))
	lefts := make([]uint32, len(a.storage))
	rights := make([]uint32, len(a.storage))

	// We deinterleave to achieve a better compression ratio.
	for idx, nd := range a.storage {
		starts[idx] = nd.start
		ends[idx] = nd.end
		maxes[idx] = nd.max
		lefts[idx] = nd.left
		rights[idx] = nd.right
	}

	a.storage = nil

	wg := &sync.WaitGroup{}
	wg.Add(hibernatedBufferCount)

	compressInt64 := func(bufIdx int, buf []int64) {
		a.hibernatedData[bufIdx] = CompressInt64Slice(buf)

		wg.Done()
	}
	compressUint32 := func(bufIdx int, buf []uint32) {
		a.hibernatedData[bufIdx] = CompressUInt32Slice(buf)

		wg.Done()
	}

	go compressInt64(0, starts)
	go compressInt64(1, ends)
	go compressInt64(2, maxes)
	go compressUint32(3, lefts)
	go compressUint32(4, rights)

	go func() {
		if len(a.gaps) > 0 {
			a.hibernatedGapsLen = len(a.gaps)

			gapsBuffer := make([]uint32, 0, len(a.gaps))
			for key := range a.gaps {
				gapsBuffer = append(gapsBuffer, key)
			}

			a.hibernatedData[hibernatedBufferCount-1] = CompressUInt32Slice(gapsBuffer)
		}

		a.gaps = nil

		wg.Done()
	}()

	wg.Wait()
}

// boot performs the opposite of hibernate: decompresses and restores the
// structural storage. Booting a live arena is a no-op.
func (a *arena[V]) boot() {
	if a.storage == nil && a.hibernatedStorageLen == 0 {
		a.storage = []node{}
		a.gaps = map[uint32]bool{}

		return
	}

	if a.hibernatedStorageLen == 0 {
		// Not hibernated.
		return
	}

	if a.hibernatedData[0] == nil {
		panic("cannot boot a serialized arena")
	}

	a.gaps = map[uint32]bool{}

	starts := make([]int64, a.hibernatedStorageLen)
	ends := make([]int64, a.hibernatedStorageLen)
	maxes := make([]int64, a.hibernatedStorageLen)
	lefts := make([]uint32, a.hibernatedStorageLen)
	rights := make([]uint32, a.hibernatedStorageLen)

	wg := &sync.WaitGroup{}
	wg.Add(hibernatedBufferCount)

	decompressInt64 := func(bufIdx int, buf []int64) {
		DecompressInt64Slice(a.hibernatedData[bufIdx], buf)
		a.hibernatedData[bufIdx] = nil

		wg.Done()
	}
	decompressUint32 := func(bufIdx int, buf []uint32) {
		DecompressUInt32Slice(a.hibernatedData[bufIdx], buf)
		a.hibernatedData[bufIdx] = nil

		wg.Done()
	}

	go decompressInt64(0, starts)
	go decompressInt64(1, ends)
	go decompressInt64(2, maxes)
	go decompressUint32(3, lefts)
	go decompressUint32(4, rights)

	go func() {
		if a.hibernatedGapsLen > 0 {
			gapData := a.hibernatedData[hibernatedBufferCount-1]
			buffer := make([]uint32, a.hibernatedGapsLen)
			DecompressUInt32Slice(gapData, buffer)

			for _, key := range buffer {
				a.gaps[key] = true
			}

			a.hibernatedData[hibernatedBufferCount-1] = nil
			a.hibernatedGapsLen = 0
		}

		wg.Done()
	}()

	wg.Wait()

	capSize := (a.hibernatedStorageLen * growCapacityNumerator) / growCapacityDenominator
	a.storage = make([]node, a.hibernatedStorageLen, capSize)

	for idx := range a.storage {
		nd := &a.storage[idx]
		nd.start = starts[idx]
		nd.end = ends[idx]
		nd.max = maxes[idx]
		nd.left = lefts[idx]
		nd.right = rights[idx]
	}

	a.hibernatedStorageLen = 0
}

// clone copies a live arena. Used by snapshot-style tests.
func (a *arena[V]) clone() *arena[V] {
	if a.storage == nil {
		panic("cannot clone a hibernated arena")
	}

	clone := &arena[V]{
		storage: make([]node, len(a.storage), cap(a.storage)),
		values:  make([]V, len(a.values), cap(a.values)),
		gaps:    map[uint32]bool{},
	}
	copy(clone.storage, a.storage)
	copy(clone.values, a.values)
	maps.Copy(clone.gaps, a.gaps)

	return clone
}
