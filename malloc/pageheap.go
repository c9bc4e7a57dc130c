package malloc

import "sync"
import "unsafe"

// pageheap acquires and releases OS memory in page aligned spans
// and remembers, for every page-id it covers, the owning span. One
// mutex guards both the span logic and the page-id index; this is
// the only tier that can enter a system call while holding a lock.
type pageheap struct {
	mu        sync.Mutex
	pagesize  int64
	pageshift uint
	pagemap   map[uintptr]*span
	spanpool  []span
	spanoff   int
	reserved  int64 // bytes currently mapped from OS
}

func newpageheap(pagesize, maxspans int64) *pageheap {
	return &pageheap{
		pagesize:  pagesize,
		pageshift: shiftof(pagesize),
		pagemap:   make(map[uintptr]*span),
		spanpool:  make([]span, maxspans),
	}
}

// allocspan map `npages` of fresh anonymous memory and index every
// page-id the span covers. Nil when the OS mapping fails or the
// descriptor pool is exhausted.
func (ph *pageheap) allocspan(npages int64) *span {
	ph.mu.Lock()
	defer ph.mu.Unlock()

	if ph.pagemap == nil {
		panicerr("page heap released")
	} else if ph.spanoff >= len(ph.spanpool) {
		errorf("malloc: span descriptor pool exhausted (%v)", len(ph.spanpool))
		return nil
	}
	mem, err := osreserve(npages * ph.pagesize)
	if err != nil {
		errorf("malloc: reserving %v pages from OS: %v", npages, err)
		return nil
	}
	sp := &ph.spanpool[ph.spanoff]
	ph.spanoff++
	sp.startpage = uintptr(unsafe.Pointer(&mem[0])) >> ph.pageshift
	sp.npages, sp.mem = npages, mem
	for i := uintptr(0); i < uintptr(npages); i++ {
		ph.pagemap[sp.startpage+i] = sp
	}
	ph.reserved += npages * ph.pagesize
	return sp
}

// freespan return the span's full page range to the OS and drop its
// page-id index entries. The descriptor itself is not recycled.
func (ph *pageheap) freespan(sp *span) {
	ph.mu.Lock()
	defer ph.mu.Unlock()

	for i := uintptr(0); i < uintptr(sp.npages); i++ {
		delete(ph.pagemap, sp.startpage+i)
	}
	ph.reserved -= sp.size(ph.pagesize)
	mem := sp.mem
	sp.mem = nil
	if err := osrelease(mem); err != nil {
		errorf("malloc: releasing span %v to OS: %v", sp.startpage, err)
	}
}

// lookupspan map a pointer back to its owning span via the page-id
// index, nil when no live span covers the pointer.
func (ph *pageheap) lookupspan(ptr unsafe.Pointer) *span {
	pageid := uintptr(ptr) >> ph.pageshift

	ph.mu.Lock()
	defer ph.mu.Unlock()
	return ph.pagemap[pageid]
}

func (ph *pageheap) reservedbytes() int64 {
	ph.mu.Lock()
	defer ph.mu.Unlock()
	return ph.reserved
}

func (ph *pageheap) overheadbytes() int64 {
	ph.mu.Lock()
	defer ph.mu.Unlock()

	self := int64(unsafe.Sizeof(*ph))
	poolsz := int64(len(ph.spanpool)) * int64(unsafe.Sizeof(span{}))
	mapsz := int64(len(ph.pagemap)) * int64(unsafe.Sizeof(uintptr(0))*2)
	return self + poolsz + mapsz
}

// release unmap every live span in one sweep, for allocator
// teardown. The page heap cannot be used afterwards.
func (ph *pageheap) release() {
	ph.mu.Lock()
	defer ph.mu.Unlock()

	for pageid, sp := range ph.pagemap {
		if pageid != sp.startpage || sp.mem == nil {
			continue
		}
		if err := osrelease(sp.mem); err != nil {
			errorf("malloc: releasing span %v to OS: %v", sp.startpage, err)
		}
		sp.mem = nil
	}
	ph.pagemap, ph.reserved = nil, 0
}
