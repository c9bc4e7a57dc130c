package malloc

import "unsafe"
import "sync/atomic"

import "github.com/bnclabs/gomalloc/api"
import "github.com/bnclabs/gomalloc/lib"
import humanize "github.com/dustin/go-humanize"

//---- statistics and accounting on the allocator instance.

// Slabs return the slab sizes served by the caching tiers, in
// ascending order.
func (m *Malloc) Slabs() []int64 {
	return m.slabs
}

// Slabsize return the nominal size stored in the chunk's header,
// slab size for small chunks, exact requested size for large ones.
func (m *Malloc) Slabsize(ptr unsafe.Pointer) int64 {
	return getsize(ptr)
}

// Chunklen return the number of bytes usable by the application.
func (m *Malloc) Chunklen(ptr unsafe.Pointer) int64 {
	return getsize(ptr)
}

// Info return memory accounting for this allocator: `reserved`
// bytes currently mapped from the OS, `allocated` bytes handed out
// to the application, and bookkeeping `overhead`.
func (m *Malloc) Info() (reserved, allocated, overhead int64) {
	reserved = m.ph.reservedbytes()
	allocated = atomic.LoadInt64(&m.n_allocated)

	overhead = int64(unsafe.Sizeof(*m)) + m.ph.overheadbytes()
	overhead += int64(len(m.transfers)) * int64(unsafe.Sizeof(transfer{}))
	m.rw.Lock()
	percache := int64(len(m.slabs)) * 16 // head + length per slab
	overhead += int64(len(m.caches)) * (int64(unsafe.Sizeof(Cache{})) + percache)
	m.rw.Unlock()
	return reserved, allocated, overhead
}

// Utilization return, for every slab that has carved memory from
// the page heap, the percentage of its chunks currently in use.
func (m *Malloc) Utilization() ([]int, []float64) {
	ss, zs := make([]int, 0, len(m.slabs)), make([]float64, 0, len(m.slabs))
	for i, slab := range m.slabs {
		carved := m.transfers[i].carved()
		if carved == 0 {
			continue
		}
		inuse := atomic.LoadInt64(&m.n_inuse[i])
		ss = append(ss, int(slab))
		zs = append(zs, (float64(inuse)/float64(carved))*100)
	}
	return ss, zs
}

// Sizestats histogram of requested chunk sizes, merged from every
// cache that has closed so far. Live caches fold their samples in
// on Close.
func (m *Malloc) Sizestats() *lib.HistogramInt64 {
	m.rw.Lock()
	defer m.rw.Unlock()
	return m.h_sizes.Clone()
}

// Logstatistics log a human readable summary of allocator state.
func (m *Malloc) Logstatistics() {
	reserved, allocated, overhead := m.Info()
	fmsg := "%v reserved:%v allocated:%v overhead:%v\n"
	infof(
		fmsg, m.logprefix, humanize.Bytes(uint64(reserved)),
		humanize.Bytes(uint64(allocated)), humanize.Bytes(uint64(overhead)),
	)
	if h := m.Sizestats(); h.Samples() > 0 {
		fmsg = "%v sizes samples:%v mean:%v sd:%.2f %v\n"
		infof(fmsg, m.logprefix, h.Samples(), h.Mean(), h.SD(), h.Logstring())
	}
	ss, zs := m.Utilization()
	for i, slab := range ss {
		infof("%v slab %v utilization %.2f%%\n", m.logprefix, slab, zs[i])
	}
}

//---- api.Mallocer{} on the per-thread cache, accounting methods
//---- delegate to the owning allocator.

// Slabs implement api.Mallocer{} interface.
func (cache *Cache) Slabs() []int64 {
	return cache.m.Slabs()
}

// Slabsize implement api.Mallocer{} interface.
func (cache *Cache) Slabsize(ptr unsafe.Pointer) int64 {
	return cache.m.Slabsize(ptr)
}

// Chunklen implement api.Mallocer{} interface.
func (cache *Cache) Chunklen(ptr unsafe.Pointer) int64 {
	return cache.m.Chunklen(ptr)
}

// Info implement api.Mallocer{} interface.
func (cache *Cache) Info() (reserved, allocated, overhead int64) {
	return cache.m.Info()
}

// Utilization implement api.Mallocer{} interface.
func (cache *Cache) Utilization() ([]int, []float64) {
	return cache.m.Utilization()
}

var _ api.Mallocer = (*Cache)(nil)
