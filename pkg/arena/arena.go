// Package arena implements a scoped bump allocator whose lifetime can be
// tied to a pkg/except protected region: the arena bound to a frame is
// released during that frame's finalizer drain, so memory handed out
// inside a TRY body never outlives the region that allocated it.
//
// The allocation strategy (grow-by-chunk, reuse backing storage across
// Reset calls) is the same shape as the teacher's pkg/parser/arena.go,
// generalized from fixed typed-node slices to a raw byte bump allocator
// with the base/avail/limit accounting spec.md §4.6 describes.
package arena

import (
	"sync/atomic"
	"unsafe"
)

// align is the alignment every allocation is rounded up to — the size of
// the largest scalar this package cares about preserving alignment for.
const align = unsafe.Alignof(struct {
	_ float64
	_ uint64
}{})

// slack is added to a grown chunk's size beyond the triggering request, so
// a string of small allocations doesn't cause a new chunk per call.
const slack = 4096

// minChunk is the smallest chunk size ever requested from the system
// allocator or the free list.
const minChunk = 8192

type chunk struct {
	buf   []byte
	avail int
	prev  *chunk
}

// Arena is a scoped bump allocator. The zero value is not usable; create
// one with New.
type Arena struct {
	cur      *chunk
	total    atomic.Int64 // bytes ever acquired from chunks, including retired ones
	capacity atomic.Int64 // bytes currently held in the chunk chain
}

// New creates an empty arena with no chunks allocated yet; the first
// Alloc/Calloc call acquires the first chunk.
func New() *Arena {
	return &Arena{}
}

func roundUp(n int) int {
	return (n + int(align) - 1) &^ (int(align) - 1)
}

// Alloc returns an n-byte region from the arena, rounded up to alignment.
// A zero-byte request returns a valid, non-nil, zero-length slice rather
// than refusing (spec.md B4). Allocations are never individually freed;
// the whole arena is released as a unit via Clear or Release.
func (a *Arena) Alloc(n int) []byte {
	if n < 0 {
		panic("arena: negative allocation size")
	}
	need := roundUp(n)
	if a.cur == nil || a.cur.avail+need > len(a.cur.buf) {
		a.grow(need)
	}
	c := a.cur
	start := c.avail
	c.avail += need
	return c.buf[start : start+n : start+need]
}

// Calloc is Alloc(n*sz) with the result explicitly zeroed. Alloc alone
// does not guarantee zeroed memory once chunks are reused: freeListGet
// hands back a retired chunk's backing array verbatim, and Clear rewinds
// avail without touching the bytes, so a chunk serving a Calloc after
// being recycled or cleared can carry stale data from a previous
// allocation. Zeroing here, every call, is what makes calloc's contract
// hold regardless of whether the backing chunk is fresh or reused.
func (a *Arena) Calloc(n, sz int) []byte {
	if n < 0 || sz < 0 {
		panic("arena: negative calloc size")
	}
	if n != 0 && sz > (1<<62)/n {
		panic("arena: calloc size overflow")
	}
	region := a.Alloc(n * sz)
	clear(region)
	return region
}

// grow retires the current chunk (if any) to a.cur.prev and acquires a new
// one sized to at least need, preferring a chunk recycled from the
// process-wide free list over a fresh system allocation.
func (a *Arena) grow(need int) {
	size := need + slack
	if size < minChunk {
		size = minChunk
	}

	var buf []byte
	if reused, ok := freeListGet(size); ok {
		buf = reused
	} else {
		buf = make([]byte, size)
	}

	a.total.Add(int64(len(buf)))
	a.capacity.Add(int64(len(buf)))

	a.cur = &chunk{buf: buf, prev: a.cur}
}

// Clear resets the arena to empty, keeping its most recently grown chunk
// for reuse and returning the rest to the process-wide free list (capped
// at Threshold; overflow chunks are dropped for the GC to reclaim, per
// spec.md §4.6 free-list policy).
func (a *Arena) Clear() {
	if a.cur == nil {
		return
	}
	// Recycle every chunk but the innermost (which we keep bound to this
	// arena so repeated Alloc/Clear cycles don't thrash the free list).
	for c := a.cur.prev; c != nil; {
		next := c.prev
		a.capacity.Add(-int64(len(c.buf)))
		freeListPut(c.buf)
		c = next
	}
	a.cur.prev = nil
	a.cur.avail = 0
}

// Release returns every chunk held by the arena to the process-wide free
// list (or lets the GC reclaim it, past Threshold) and leaves the arena
// empty, as if freshly created by New. Release is what pkg/except's
// per-frame finalizer calls during drain.
func (a *Arena) Release() {
	for c := a.cur; c != nil; {
		next := c.prev
		a.capacity.Add(-int64(len(c.buf)))
		freeListPut(c.buf)
		c = next
	}
	a.cur = nil
}

// Capacity returns the number of bytes currently held across all chunks
// in the arena's chain (not the number allocated from them).
func (a *Arena) Capacity() int64 {
	return a.capacity.Load()
}

// Total returns the cumulative number of bytes ever grown into this
// arena's chunk chain, including chunks later recycled by Clear/Release.
// Every grow adds to it, whether the new chunk came from the free list or
// from a fresh system allocation. A Clear()-then-realloc cycle of the same
// size leaves it unchanged (spec.md S6) when the request fits in the chunk
// Clear retained, since no grow happens at all.
func (a *Arena) Total() int64 {
	return a.total.Load()
}
