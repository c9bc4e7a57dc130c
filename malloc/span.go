package malloc

import "unsafe"

// span is a contiguous run of OS pages managed as one unit by the
// page heap, identified by its starting page-id and page count.
// Descriptors are bump allocated from a pool fixed at construction
// time and never recycled, so that page-heap bookkeeping can never
// recurse into the public Alloc path.
type span struct {
	startpage uintptr // base address >> pageshift
	npages    int64
	mem       []byte // live OS mapping covering the span
}

func (sp *span) base() uintptr {
	return uintptr(unsafe.Pointer(&sp.mem[0]))
}

func (sp *span) size(pagesize int64) int64 {
	return sp.npages * pagesize
}
