package malloc

import "testing"
import "unsafe"

import s "github.com/bnclabs/gosettings"

func testsettings() s.Settings {
	setts := Defaultsettings()
	setts["pagesize"] = int64(4096)
	return setts
}

func TestNewmalloc(t *testing.T) {
	m := New("test", testsettings())
	if x := len(m.slabs); x != 8 {
		t.Errorf("expected %v, got %v", 8, x)
	}
	if x, y := len(m.slabs), len(m.transfers); x != y {
		t.Errorf("expected %v, got %v", x, y)
	}
	m.Release()

	// panic cases
	for _, badsetts := range []s.Settings{
		testsettings().Mixin(s.Settings{"batchsize": int64(0)}),
		testsettings().Mixin(s.Settings{"scavenge.threshold": int64(16)}),
		testsettings().Mixin(s.Settings{"pagesize": int64(4095)}),
		testsettings().Mixin(s.Settings{"spans.max": int64(0)}),
	} {
		func() {
			defer func() {
				if r := recover(); r == nil {
					t.Errorf("expected panic for %v", badsetts)
				}
			}()
			New("test", badsetts)
		}()
	}
}

func TestAllocZero(t *testing.T) {
	m := New("test", testsettings())
	defer m.Release()

	cache := m.Attach()
	defer cache.Close()

	if ptr := cache.Alloc(0); ptr != nil {
		t.Errorf("expected nil for zero-size alloc, got %v", ptr)
	}
	if reserved, _, _ := m.Info(); reserved != 0 {
		t.Errorf("zero-size alloc touched the page heap: %v", reserved)
	}
	cache.Free(nil) // no-op
}

func TestAllocSmall(t *testing.T) {
	m := New("test", testsettings())
	defer m.Release()

	cache := m.Attach()
	defer cache.Close()

	ptr := cache.Alloc(100)
	if ptr == nil {
		t.Fatalf("unexpected allocation failure")
	}
	if x := m.Slabsize(ptr); x != 128 {
		t.Errorf("expected %v, got %v", 128, x)
	} else if x := m.Chunklen(ptr); x != 128 {
		t.Errorf("expected %v, got %v", 128, x)
	}
	// the chunk is usable across its full slab.
	block := unsafe.Slice((*byte)(ptr), 128)
	for i := range block {
		block[i] = 0xab
	}
	if _, allocated, _ := m.Info(); allocated != 128+chunkHeader {
		t.Errorf("expected %v, got %v", 128+chunkHeader, allocated)
	}

	// freeing parks the chunk locally, the next alloc of the same
	// slab reuses it.
	cache.Free(ptr)
	if x := cache.Cachedchunks(128); x != 1 {
		t.Errorf("expected %v, got %v", 1, x)
	}
	if again := cache.Alloc(128); again != ptr {
		t.Errorf("expected %v, got %v", ptr, again)
	} else if block[0] != 0 {
		t.Errorf("expected zero filled chunk, got %x", block[0])
	}
	cache.Free(ptr)
}

func TestAllocBoundary(t *testing.T) {
	m := New("test", testsettings())
	defer m.Release()

	cache := m.Attach()
	defer cache.Close()

	if ptr := cache.Alloc(8); m.Slabsize(ptr) != 8 {
		t.Errorf("expected %v, got %v", 8, m.Slabsize(ptr))
	}
	if ptr := cache.Alloc(9); m.Slabsize(ptr) != 16 {
		t.Errorf("expected %v, got %v", 16, m.Slabsize(ptr))
	}

	// 1024 takes the small path, its span stays with the transfer
	// tier even after free.
	ptr := cache.Alloc(1024)
	if x := m.Slabsize(ptr); x != 1024 {
		t.Errorf("expected %v, got %v", 1024, x)
	}
	hdr := unsafe.Pointer(uintptr(ptr) - uintptr(chunkHeader))
	cache.Free(ptr)
	if sp := m.ph.lookupspan(hdr); sp == nil {
		t.Errorf("small span should stay mapped")
	}

	// 1025 takes the large path, the whole span unmaps on free.
	ptr = cache.Alloc(1025)
	if x := m.Slabsize(ptr); x != 1025 {
		t.Errorf("expected %v, got %v", 1025, x)
	}
	hdr = unsafe.Pointer(uintptr(ptr) - uintptr(chunkHeader))
	cache.Free(ptr)
	if sp := m.ph.lookupspan(hdr); sp != nil {
		t.Errorf("large span should unmap on free")
	}
}

func TestAllocLarge(t *testing.T) {
	m := New("test", testsettings())
	defer m.Release()

	cache := m.Attach()
	defer cache.Close()

	reserved0, _, _ := m.Info()
	ptr := cache.Alloc(2000)
	if ptr == nil {
		t.Fatalf("unexpected allocation failure")
	}
	// header records the exact requested size, no rounding.
	if x := m.Slabsize(ptr); x != 2000 {
		t.Errorf("expected %v, got %v", 2000, x)
	}
	block := unsafe.Slice((*byte)(ptr), 2000)
	for i := range block {
		block[i] = 0xcd
	}
	reserved1, _, _ := m.Info()
	if x := reserved1 - reserved0; x != 4096 {
		t.Errorf("expected %v, got %v", 4096, x)
	}

	base := uintptr(ptr) - uintptr(chunkHeader)
	sp := m.ph.lookupspan(unsafe.Pointer(base))
	if sp == nil {
		t.Fatalf("expected a live span")
	}
	npages := sp.npages

	cache.Free(ptr)
	for i := int64(0); i < npages; i++ {
		page := unsafe.Pointer(base + uintptr(i*4096))
		if m.ph.lookupspan(page) != nil {
			t.Errorf("page %v still indexed after free", i)
		}
	}
	reserved2, _, _ := m.Info()
	if x := reserved2 - reserved0; x != 0 {
		t.Errorf("expected %v, got %v", 0, x)
	}
}

func TestChurn(t *testing.T) {
	m := New("test", testsettings())
	defer m.Release()

	cache := m.Attach()
	defer cache.Close()

	// steady-state churn must not grow the OS reservation.
	for i := 0; i < 1000000; i++ {
		ptr := cache.Alloc(64)
		if ptr == nil {
			t.Fatalf("unexpected allocation failure at %v", i)
		}
		cache.Free(ptr)
		if i%100000 == 0 {
			if reserved, _, _ := m.Info(); reserved > 4*4096 {
				t.Fatalf("reservation grew to %v at %v", reserved, i)
			}
		}
	}
	reserved, allocated, _ := m.Info()
	if reserved > 4*4096 {
		t.Errorf("reservation grew to %v", reserved)
	}
	if allocated != 0 {
		t.Errorf("expected %v, got %v", 0, allocated)
	}
}

func TestDescriptorExhaustion(t *testing.T) {
	setts := testsettings().Mixin(s.Settings{"spans.max": int64(2)})
	m := New("test", setts)
	defer m.Release()

	cache := m.Attach()
	defer cache.Close()

	ptrs := make([]unsafe.Pointer, 0, 3)
	for i := 0; i < 3; i++ {
		ptrs = append(ptrs, cache.Alloc(5000))
	}
	if ptrs[0] == nil || ptrs[1] == nil {
		t.Errorf("expected two successful spans")
	}
	// descriptors are never recycled, the pool is spent even though
	// both spans could be freed.
	if ptrs[2] != nil {
		t.Errorf("expected nil on descriptor exhaustion")
	}
	cache.Free(ptrs[0])
	cache.Free(ptrs[1])
	if ptr := cache.Alloc(5000); ptr != nil {
		t.Errorf("expected nil on descriptor exhaustion")
	}
}

func TestInfoUtilization(t *testing.T) {
	m := New("test", testsettings())
	defer m.Release()

	cache := m.Attach()

	ptrs := make([]unsafe.Pointer, 0, 64)
	for i := 0; i < 64; i++ {
		ptrs = append(ptrs, cache.Alloc(256))
	}
	reserved, allocated, overhead := m.Info()
	if reserved == 0 {
		t.Errorf("expected a reservation")
	} else if x := int64(64 * (256 + chunkHeader)); allocated != x {
		t.Errorf("expected %v, got %v", x, allocated)
	} else if overhead == 0 {
		t.Errorf("expected overhead")
	}

	ss, zs := m.Utilization()
	if len(ss) != 1 || ss[0] != 256 {
		t.Errorf("expected slab 256, got %v", ss)
	} else if zs[0] <= 0 || zs[0] > 100 {
		t.Errorf("unexpected utilization %v", zs)
	}

	for _, ptr := range ptrs {
		cache.Free(ptr)
	}
	cache.Close()

	// all samples fold into the allocator histogram on Close.
	if h := m.Sizestats(); h.Samples() != 64 {
		t.Errorf("expected %v, got %v", 64, h.Samples())
	}
	m.Logstatistics()
}

func TestRelease(t *testing.T) {
	m := New("test", testsettings())
	cache := m.Attach()
	for i := 0; i < 100; i++ {
		cache.Alloc(512)
	}
	cache.Alloc(100000)
	m.Release()

	if reserved := m.ph.reservedbytes(); reserved != 0 {
		t.Errorf("expected %v, got %v", 0, reserved)
	}
	// attach after release
	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Errorf("expected panic")
			}
		}()
		m.Attach()
	}()
}
