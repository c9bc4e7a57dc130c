package malloc

import "sync"
import "sync/atomic"

// transfer is the central free list for one slab size, shared by
// every thread cache. Each slab gets its own mutex so that two
// slabs never contend, and chunks move in batches so that the cost
// of one lock acquisition amortizes over `batchsize` operations.
type transfer struct {
	n_locks int64 // updated with atomics

	slab      int64
	batchsize int64
	pagesize  int64
	ph        *pageheap

	mu       sync.Mutex // guards the fields below
	head     uintptr
	count    int64
	n_carved int64 // chunks carved from the page heap so far
}

func newtransfer(slab, batchsize, pagesize int64, ph *pageheap) *transfer {
	return &transfer{
		slab: slab, batchsize: batchsize, pagesize: pagesize, ph: ph,
	}
}

// refill detach up to batchsize chunks for a thread cache whose
// local list ran dry, carving a fresh span from the page heap when
// the central list is also empty. Returns the chain head and its
// length, (0, 0) when the page heap is out of memory.
func (tc *transfer) refill() (uintptr, int64) {
	atomic.AddInt64(&tc.n_locks, 1)
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if tc.count == 0 && tc.carve() == false {
		return 0, 0
	}
	n := tc.batchsize
	if tc.count < n {
		n = tc.count
	}
	head, tail := tc.head, tc.head
	for i := int64(1); i < n; i++ {
		tail = getlink(tail)
	}
	tc.head = getlink(tail)
	setlink(tail, 0)
	tc.count -= n
	return head, n
}

// carve one span into chunks of this slab and push them on the
// central list, caller must hold tc.mu. The span must cover at
// least one whole chunk, so slabs bigger than the page size carve
// multi-page spans.
func (tc *transfer) carve() bool {
	blocksz := tc.slab + chunkHeader
	npages := divceil(blocksz, tc.pagesize)
	sp := tc.ph.allocspan(npages)
	if sp == nil {
		return false
	}
	nblocks := sp.size(tc.pagesize) / blocksz
	if nblocks == 0 {
		nblocks = 1
	}
	base := sp.base()
	for i := int64(0); i < nblocks; i++ {
		block := base + uintptr(i*blocksz)
		setlink(block, tc.head)
		tc.head = block
	}
	tc.count += nblocks
	tc.n_carved += nblocks
	return true
}

// releasebatch prepend a detached chain of `n` chunks onto the
// central list, the scavenging half of the batch protocol.
func (tc *transfer) releasebatch(head, tail uintptr, n int64) {
	atomic.AddInt64(&tc.n_locks, 1)
	tc.mu.Lock()
	defer tc.mu.Unlock()

	setlink(tail, tc.head)
	tc.head = head
	tc.count += n
}

func (tc *transfer) len() int64 {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.count
}

func (tc *transfer) carved() int64 {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.n_carved
}

func (tc *transfer) lockcount() int64 {
	return atomic.LoadInt64(&tc.n_locks)
}
