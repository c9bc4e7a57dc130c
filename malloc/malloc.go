package malloc

import "fmt"
import "sync"
import "unsafe"
import "sync/atomic"

import "github.com/bnclabs/gomalloc/lib"
import s "github.com/bnclabs/gosettings"
import humanize "github.com/dustin/go-humanize"

// Malloc is one allocator instance: the slab table, one central
// transfer list per slab, and the page heap talking to the OS.
// Threads allocate through a Cache obtained from Attach; Malloc
// methods themselves are safe for concurrent use.
type Malloc struct {
	// 64-bit aligned counters, updated with atomics.
	n_allocated int64
	n_inuse     []int64 // chunks in use per slab

	slabs     []int64
	transfers []*transfer
	ph        *pageheap

	// configuration
	minblock  int64
	maxblock  int64
	batchsize int64
	scavenge  int64
	pagesize  int64
	maxspans  int64
	setts     s.Settings
	logprefix string

	rw      sync.Mutex
	caches  map[*Cache]bool
	h_sizes *lib.HistogramInt64 // merged from closed caches
}

// New create an allocator instance from settings, start from
// Defaultsettings(). Panics on invalid settings, never panics after
// construction.
func New(name string, setts s.Settings) *Malloc {
	m := &Malloc{logprefix: fmt.Sprintf("MALC [%v]", name)}
	m.readsettings(setts)
	m.slabs = Computeslabs(m.minblock, m.maxblock)
	m.n_inuse = make([]int64, len(m.slabs))
	m.ph = newpageheap(m.pagesize, m.maxspans)
	m.transfers = make([]*transfer, len(m.slabs))
	for i, slab := range m.slabs {
		m.transfers[i] = newtransfer(slab, m.batchsize, m.pagesize, m.ph)
	}
	m.caches = make(map[*Cache]bool)
	m.h_sizes = m.newsizehistogram()

	total, _, free := getsysmem()
	fmsg := "%v started slabs:%v pagesize:%v sysmem:%v/%v\n"
	infof(
		fmsg, m.logprefix, len(m.slabs), m.pagesize,
		humanize.Bytes(free), humanize.Bytes(total),
	)
	if atleast := uint64(m.maxspans * m.pagesize); atleast > total {
		fmsg := "%v spans.max %v can map %v, more than system memory %v\n"
		warnf(
			fmsg, m.logprefix, m.maxspans,
			humanize.Bytes(atleast), humanize.Bytes(total),
		)
	}
	return m
}

func (m *Malloc) readsettings(setts s.Settings) {
	m.minblock = setts.Int64("minblock")
	m.maxblock = setts.Int64("maxblock")
	m.batchsize = setts.Int64("batchsize")
	m.scavenge = setts.Int64("scavenge.threshold")
	m.pagesize = setts.Int64("pagesize")
	m.maxspans = setts.Int64("spans.max")
	if m.batchsize <= 0 {
		panicerr("batchsize %v should be positive", m.batchsize)
	} else if m.scavenge < m.batchsize {
		fmsg := "scavenge.threshold %v < batchsize %v"
		panicerr(fmsg, m.scavenge, m.batchsize)
	} else if ispow2(m.pagesize) == false {
		panicerr("pagesize %v is not a power of 2", m.pagesize)
	} else if m.maxspans <= 0 || m.maxspans > Maxspans {
		panicerr("spans.max %v out of range (0, %v]", m.maxspans, Maxspans)
	}
	m.setts = setts
}

// Attach create and register a Cache for the calling thread.
func (m *Malloc) Attach() *Cache {
	cache := &Cache{
		m:       m,
		heads:   make([]uintptr, len(m.slabs)),
		lens:    make([]int64, len(m.slabs)),
		h_sizes: m.newsizehistogram(),
	}
	m.rw.Lock()
	defer m.rw.Unlock()
	if m.caches == nil {
		panicerr("allocator released")
	}
	m.caches[cache] = true
	return cache
}

func (m *Malloc) detach(cache *Cache) {
	m.rw.Lock()
	defer m.rw.Unlock()
	if m.caches != nil {
		m.h_sizes.Merge(cache.h_sizes)
		delete(m.caches, cache)
	}
}

// Alloc a chunk of `size` bytes. Nil when size is zero, or when the
// OS mapping fails, or when the span-descriptor pool is exhausted;
// callers must treat nil as out-of-memory.
func (cache *Cache) Alloc(size int64) unsafe.Pointer {
	if size <= 0 {
		return nil
	}
	m := cache.m
	if size > m.maxblock {
		return m.alloclarge(cache, size)
	}

	index := suitableindex(m.slabs, size)
	block := cache.take(index)
	if block == 0 {
		head, n := m.transfers[index].refill()
		if n == 0 {
			return nil
		}
		cache.heads[index], cache.lens[index] = head, n
		block = cache.take(index)
	}
	slab := m.slabs[index]
	setsize(block, slab)
	initblock(block+uintptr(chunkHeader), slab)
	cache.h_sizes.Add(size)
	atomic.AddInt64(&m.n_allocated, slab+chunkHeader)
	atomic.AddInt64(&m.n_inuse[index], 1)
	return unsafe.Pointer(block + uintptr(chunkHeader))
}

// Free a chunk obtained from Alloc on the same allocator, Free(nil)
// is a no-op. Double-free, freeing a foreign pointer and
// use-after-free are caller contract violations, not detected here.
func (cache *Cache) Free(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	m := cache.m
	size := getsize(ptr)
	if size > m.maxblock {
		m.freelarge(ptr)
		return
	}

	index := suitableindex(m.slabs, size)
	atomic.AddInt64(&m.n_allocated, -(size + chunkHeader))
	atomic.AddInt64(&m.n_inuse[index], -1)
	cache.give(index, uintptr(ptr)-uintptr(chunkHeader))
}

// large chunks bypass the caching tiers entirely, each one maps its
// own span and the whole span unmaps on Free.
func (m *Malloc) alloclarge(cache *Cache, size int64) unsafe.Pointer {
	npages := divceil(size+chunkHeader, m.pagesize)
	sp := m.ph.allocspan(npages)
	if sp == nil {
		return nil
	}
	block := sp.base()
	setsize(block, size)
	cache.h_sizes.Add(size)
	atomic.AddInt64(&m.n_allocated, sp.size(m.pagesize))
	return unsafe.Pointer(block + uintptr(chunkHeader))
}

func (m *Malloc) freelarge(ptr unsafe.Pointer) {
	hdr := unsafe.Pointer(uintptr(ptr) - uintptr(chunkHeader))
	sp := m.ph.lookupspan(hdr)
	if sp == nil {
		return
	}
	atomic.AddInt64(&m.n_allocated, -sp.size(m.pagesize))
	m.ph.freespan(sp)
}

// Release the allocator and every OS mapping it holds in one sweep.
// Attached caches become invalid and outstanding chunks must not be
// touched afterwards.
func (m *Malloc) Release() {
	m.rw.Lock()
	for cache := range m.caches {
		cache.closed = true
		m.h_sizes.Merge(cache.h_sizes)
	}
	m.caches = nil
	m.rw.Unlock()

	m.ph.release()
	atomic.StoreInt64(&m.n_allocated, 0)
	for i := range m.n_inuse {
		atomic.StoreInt64(&m.n_inuse[i], 0)
	}
	infof("%v released\n", m.logprefix)
}

func (m *Malloc) newsizehistogram() *lib.HistogramInt64 {
	return lib.NewhistorgramInt64(m.minblock, m.maxblock, m.minblock)
}
