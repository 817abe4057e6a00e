package interval

import (
	"sync"
	"time"

	"github.com/engineering87/TemporalCollections-sub001/pkg/timed"
)

// Span is an interval entry reported by overlap queries.
type Span[V any] struct {
	Item  V
	Start timed.Timestamp
	End   timed.Timestamp
}

// Tree is the interval index: a binary search tree keyed by interval start
// where every node carries the maximum end of its subtree. A subtree is
// skipped during overlap search once no interval inside it could possibly
// extend far enough to reach the query window.
//
// The tree is not self-balancing: worst-case depth is O(n) under
// adversarial insertion order. This is a known limitation, acceptable
// because intervals are typically inserted close to current time, which
// keeps expected depth logarithmic.
//
// For the shared query contract an interval's start is treated as its
// notional timestamp. That is a modeling choice of this index, not a
// general rule.
type Tree[V comparable] struct {
	mtx   sync.Mutex
	arena *arena[V]
	root  uint32
	count int
}

var _ timed.Index[int] = (*Tree[int])(nil)

// New creates an empty interval tree.
func New[V comparable]() *Tree[V] {
	return &Tree[V]{arena: newArena[V]()}
}

// Insert adds the interval [start, end] carrying item. Fails with
// ErrInvalidInterval when end < start, leaving the tree unmodified.
func (t *Tree[V]) Insert(start, end timed.Timestamp, item V) error {
	if end < start {
		return timed.ErrInvalidInterval
	}

	t.mtx.Lock()
	defer t.mtx.Unlock()

	idx := t.arena.malloc()
	nd := &t.arena.storage[idx]
	nd.start = int64(start)
	nd.end = int64(end)
	nd.max = int64(end)
	t.arena.values[idx] = item

	t.root = t.insert(t.root, idx)
	t.count++

	return nil
}

// Remove deletes the unique node matching all three fields exactly, not
// just an overlapping one. Returns whether a match was found. A node with
// two children is replaced by its in-order successor (the minimum of the
// right subtree), and the subtree max is recomputed bottom-up along the
// affected path.
func (t *Tree[V]) Remove(start, end timed.Timestamp, item V) bool {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	var found bool

	t.root, found = t.remove(t.root, int64(start), int64(end), item)
	if found {
		t.count--
	}

	return found
}

// Overlap returns the intervals intersecting [qStart, qEnd], inclusive on
// both ends, in ascending start order. Fails with ErrInvalidRange when
// qEnd < qStart.
func (t *Tree[V]) Overlap(qStart, qEnd timed.Timestamp) ([]Span[V], error) {
	if qEnd < qStart {
		return nil, timed.ErrInvalidRange
	}

	t.mtx.Lock()
	defer t.mtx.Unlock()

	result := make([]Span[V], 0)
	t.overlap(t.root, int64(qStart), int64(qEnd), &result)

	return result, nil
}

// PruneEndedBefore removes every interval whose end is strictly less than
// cutoff and reports how many were removed. The whole tree is visited:
// end times have no relationship to the start-key ordering, so O(n).
func (t *Tree[V]) PruneEndedBefore(cutoff timed.Timestamp) int {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	removed := 0
	t.root = t.pruneWhere(t.root, func(nd *node) bool { return nd.end < int64(cutoff) }, &removed)
	t.count -= removed

	return removed
}

// Hibernate compresses the tree's structural storage with LZ4. The tree
// must not be used until Boot is called; doing so panics. Values stay
// live, only the start/end/max and link columns are compressed.
func (t *Tree[V]) Hibernate() {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	t.arena.hibernate()
}

// Boot restores a hibernated tree. Booting a live tree is a no-op.
func (t *Tree[V]) Boot() {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	t.arena.boot()
}

// Shared query contract. An interval's notional timestamp is its start.

// RangeQuery returns the intervals whose start falls within [from, to].
func (t *Tree[V]) RangeQuery(from, to timed.Timestamp) ([]timed.Value[V], error) {
	if to < from {
		return nil, timed.ErrInvalidRange
	}

	t.mtx.Lock()
	defer t.mtx.Unlock()

	result := make([]timed.Value[V], 0)
	t.rangeByStart(t.root, int64(from), int64(to), &result)

	return result, nil
}

// PruneOlderThan removes intervals whose start is strictly less than
// cutoff.
func (t *Tree[V]) PruneOlderThan(cutoff timed.Timestamp) int {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	removed := 0
	t.root = t.pruneWhere(t.root, func(nd *node) bool { return nd.start < int64(cutoff) }, &removed)
	t.count -= removed

	return removed
}

// PruneRange removes intervals whose start falls within [from, to].
func (t *Tree[V]) PruneRange(from, to timed.Timestamp) (int, error) {
	if to < from {
		return 0, timed.ErrInvalidRange
	}

	t.mtx.Lock()
	defer t.mtx.Unlock()

	removed := 0
	t.root = t.pruneWhere(t.root, func(nd *node) bool {
		return nd.start >= int64(from) && nd.start <= int64(to)
	}, &removed)
	t.count -= removed

	return removed, nil
}

// CountInRange counts intervals whose start falls within [from, to].
func (t *Tree[V]) CountInRange(from, to timed.Timestamp) (int, error) {
	entries, err := t.RangeQuery(from, to)
	if err != nil {
		return 0, err
	}

	return len(entries), nil
}

// CountSince counts intervals whose start is >= from.
func (t *Tree[V]) CountSince(from timed.Timestamp) int {
	entries, _ := t.RangeQuery(from, timed.MaxTimestamp)

	return len(entries)
}

// Earliest returns the interval with the minimum start.
func (t *Tree[V]) Earliest() (timed.Value[V], bool) {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	if t.root == 0 {
		return timed.Value[V]{}, false
	}

	idx := t.minNode(t.root)

	return t.valueAt(idx), true
}

// Latest returns the interval with the maximum start.
func (t *Tree[V]) Latest() (timed.Value[V], bool) {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	if t.root == 0 {
		return timed.Value[V]{}, false
	}

	idx := t.maxNode(t.root)

	return t.valueAt(idx), true
}

// StrictlyBefore returns the intervals with start strictly less than ts.
func (t *Tree[V]) StrictlyBefore(ts timed.Timestamp) []timed.Value[V] {
	// Nothing precedes the minimum; ts-1 would wrap to the maximum.
	if ts == timed.MinTimestamp {
		return nil
	}

	entries, _ := t.RangeQuery(timed.MinTimestamp, ts-1)

	return entries
}

// StrictlyAfter returns the intervals with start strictly greater than ts.
func (t *Tree[V]) StrictlyAfter(ts timed.Timestamp) []timed.Value[V] {
	// Nothing follows the maximum; ts+1 would wrap to the minimum.
	if ts == timed.MaxTimestamp {
		return nil
	}

	entries, _ := t.RangeQuery(ts+1, timed.MaxTimestamp)

	return entries
}

// Nearest returns the interval whose start is closest to ts; exact
// distance ties prefer the later interval.
func (t *Tree[V]) Nearest(ts timed.Timestamp) (timed.Value[V], bool) {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	if t.root == 0 {
		return timed.Value[V]{}, false
	}

	st := t.arena.storage
	target := int64(ts)

	var floor, ceil uint32

	cursor := t.root
	for cursor != 0 {
		switch {
		case st[cursor].start < target:
			floor = cursor
			cursor = st[cursor].right
		case st[cursor].start > target:
			ceil = cursor
			cursor = st[cursor].left
		default:
			return t.valueAt(cursor), true
		}
	}

	switch {
	case floor == 0:
		return t.valueAt(ceil), true
	case ceil == 0:
		return t.valueAt(floor), true
	}

	// The ceiling wins an exact distance tie: it is the later entry.
	if target-st[floor].start < st[ceil].start-target {
		return t.valueAt(floor), true
	}

	return t.valueAt(ceil), true
}

// Span is the distance between the maximum and minimum starts.
func (t *Tree[V]) Span() time.Duration {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	if t.count < 2 {
		return 0
	}

	st := t.arena.storage

	return time.Duration(st[t.maxNode(t.root)].start - st[t.minNode(t.root)].start)
}

// Len reports the number of intervals.
func (t *Tree[V]) Len() int {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	return t.count
}

// Clear discards all intervals and their backing storage.
func (t *Tree[V]) Clear() {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	t.arena = newArena[V]()
	t.root = 0
	t.count = 0
}

// Internal algorithms. Callers hold the mutex; the arena storage slice is
// stable during a single operation because nodes are allocated up front.

func (t *Tree[V]) insert(h, idx uint32) uint32 {
	if h == 0 {
		return idx
	}

	st := t.arena.storage

	// Equal starts descend right, so in-order traversal reports
	// duplicates in insertion order.
	if st[idx].start < st[h].start {
		st[h].left = t.insert(st[h].left, idx)
	} else {
		st[h].right = t.insert(st[h].right, idx)
	}

	t.updateMax(h)

	return h
}

func (t *Tree[V]) remove(h uint32, start, end int64, item V) (uint32, bool) {
	if h == 0 {
		return 0, false
	}

	st := t.arena.storage

	var found bool

	switch {
	case start < st[h].start:
		st[h].left, found = t.remove(st[h].left, start, end, item)
	case start == st[h].start && end == st[h].end && t.arena.values[h] == item:
		return t.unlink(h), true
	default:
		st[h].right, found = t.remove(st[h].right, start, end, item)
	}

	if found {
		t.updateMax(h)
	}

	return h, found
}

// unlink detaches node h from its subtree and returns the replacement
// root. A node with two children takes over its in-order successor's
// (start, end, value) fields and the successor node is unlinked instead;
// this is classic BST-delete-by-successor, not a domain mutation.
func (t *Tree[V]) unlink(h uint32) uint32 {
	st := t.arena.storage

	if st[h].left != 0 && st[h].right != 0 {
		var succ uint32

		st[h].right, succ = t.removeMin(st[h].right)

		st[h].start = st[succ].start
		st[h].end = st[succ].end
		t.arena.values[h] = t.arena.values[succ]
		t.arena.free(succ)

		t.updateMax(h)

		return h
	}

	child := st[h].left
	if child == 0 {
		child = st[h].right
	}

	t.arena.free(h)

	return child
}

// removeMin detaches the minimum node of the subtree rooted at h and
// returns (new subtree root, detached index). The detached node keeps its
// fields so the caller can copy them before freeing.
func (t *Tree[V]) removeMin(h uint32) (uint32, uint32) {
	st := t.arena.storage

	if st[h].left == 0 {
		return st[h].right, h
	}

	var removed uint32

	st[h].left, removed = t.removeMin(st[h].left)
	t.updateMax(h)

	return h, removed
}

func (t *Tree[V]) overlap(h uint32, qStart, qEnd int64, out *[]Span[V]) {
	if h == 0 {
		return
	}

	st := t.arena.storage

	// Descend left only if some interval there could reach the window.
	if left := st[h].left; left != 0 && st[left].max >= qStart {
		t.overlap(left, qStart, qEnd, out)
	}

	if st[h].start <= qEnd && st[h].end >= qStart {
		*out = append(*out, Span[V]{
			Item:  t.arena.values[h],
			Start: timed.Timestamp(st[h].start),
			End:   timed.Timestamp(st[h].end),
		})
	}

	// Start keys increase rightward: once the node starts after the
	// window closes, so does everything to its right.
	if st[h].start <= qEnd {
		t.overlap(st[h].right, qStart, qEnd, out)
	}
}

// pruneWhere removes, post-order, every node satisfying pred. Children are
// pruned before the node itself, so a successor promoted into a deleted
// node's slot has already survived the predicate.
func (t *Tree[V]) pruneWhere(h uint32, pred func(*node) bool, removed *int) uint32 {
	if h == 0 {
		return 0
	}

	st := t.arena.storage
	st[h].left = t.pruneWhere(st[h].left, pred, removed)
	st[h].right = t.pruneWhere(st[h].right, pred, removed)

	if pred(&st[h]) {
		*removed++

		h = t.unlink(h)
	}

	if h != 0 {
		t.updateMax(h)
	}

	return h
}

func (t *Tree[V]) rangeByStart(h uint32, from, to int64, out *[]timed.Value[V]) {
	if h == 0 {
		return
	}

	st := t.arena.storage

	if st[h].start >= from {
		t.rangeByStart(st[h].left, from, to, out)
	}

	if st[h].start >= from && st[h].start <= to {
		*out = append(*out, t.valueAt(h))
	}

	if st[h].start <= to {
		t.rangeByStart(st[h].right, from, to, out)
	}
}

func (t *Tree[V]) updateMax(h uint32) {
	st := t.arena.storage

	max := st[h].end
	if left := st[h].left; left != 0 && st[left].max > max {
		max = st[left].max
	}

	if right := st[h].right; right != 0 && st[right].max > max {
		max = st[right].max
	}

	st[h].max = max
}

func (t *Tree[V]) minNode(h uint32) uint32 {
	st := t.arena.storage

	for st[h].left != 0 {
		h = st[h].left
	}

	return h
}

func (t *Tree[V]) maxNode(h uint32) uint32 {
	st := t.arena.storage

	for st[h].right != 0 {
		h = st[h].right
	}

	return h
}

func (t *Tree[V]) valueAt(idx uint32) timed.Value[V] {
	return timed.Value[V]{Item: t.arena.values[idx], TS: timed.Timestamp(t.arena.storage[idx].start)}
}
