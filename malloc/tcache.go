package malloc

import "github.com/bnclabs/gomalloc/lib"

// Cache is one thread's private tier of free chunks, one intrusive
// free list per slab. None of its methods lock and no operation on
// it allocates, it is the zero-contention fast path. A Cache must
// never be shared between threads; create one per thread via
// (*Malloc).Attach and Close it when the thread winds down.
type Cache struct {
	m       *Malloc
	heads   []uintptr
	lens    []int64
	h_sizes *lib.HistogramInt64
	closed  bool
}

// take pop the head chunk for a slab, 0 when the local list is
// empty and the caller must refill from the transfer list.
func (cache *Cache) take(index int) uintptr {
	block := cache.heads[index]
	if block == 0 {
		return 0
	}
	cache.heads[index] = getlink(block)
	cache.lens[index]--
	return block
}

// give push a chunk back on the local list. Crossing the scavenge
// threshold releases one batch back to the transfer list, so that
// an idle thread pins only a bounded number of chunks.
func (cache *Cache) give(index int, block uintptr) {
	setlink(block, cache.heads[index])
	cache.heads[index] = block
	cache.lens[index]++
	if cache.lens[index] > cache.m.scavenge {
		cache.scavengeslab(index)
	}
}

// scavengeslab detach one batch from the local list and prepend it
// on the central transfer list.
func (cache *Cache) scavengeslab(index int) {
	n := cache.m.batchsize
	if cache.lens[index] < n {
		n = cache.lens[index]
	}
	if n == 0 {
		return
	}
	head, tail := cache.heads[index], cache.heads[index]
	for i := int64(1); i < n; i++ {
		tail = getlink(tail)
	}
	cache.heads[index] = getlink(tail)
	cache.lens[index] -= n
	cache.m.transfers[index].releasebatch(head, tail, n)
}

// flushslab drain the local list for one slab entirely back to the
// transfer list.
func (cache *Cache) flushslab(index int) {
	head := cache.heads[index]
	if head == 0 {
		return
	}
	tail, n := head, int64(1)
	for next := getlink(tail); next != 0; next = getlink(tail) {
		tail, n = next, n+1
	}
	cache.heads[index], cache.lens[index] = 0, 0
	cache.m.transfers[index].releasebatch(head, tail, n)
}

// Close is the mandatory exit hook for a thread cache: every chunk
// still parked locally drains back to the transfer lists and the
// cache detaches from its allocator. Alloc and Free must not be
// called after Close; Close itself is idempotent.
func (cache *Cache) Close() {
	if cache.closed {
		return
	}
	cache.closed = true
	for index := range cache.heads {
		cache.flushslab(index)
	}
	cache.m.detach(cache)
}

// Cachedchunks number of chunks parked locally for `slab`.
func (cache *Cache) Cachedchunks(slab int64) int64 {
	return cache.lens[suitableindex(cache.m.slabs, slab)]
}

// Sizestats histogram of chunk sizes requested through this cache,
// safe only for the owning thread.
func (cache *Cache) Sizestats() *lib.HistogramInt64 {
	return cache.h_sizes.Clone()
}
