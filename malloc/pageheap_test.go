package malloc

import "testing"
import "unsafe"

import "github.com/stretchr/testify/require"

func TestPageheapSpans(t *testing.T) {
	ph := newpageheap(4096, 16)

	sp := ph.allocspan(3)
	require.NotNil(t, sp)
	require.Equal(t, int64(3), sp.npages)
	require.Equal(t, int64(3*4096), ph.reservedbytes())

	// every covered page maps back to the span, neighbours do not.
	base := sp.base()
	for i := int64(0); i < 3; i++ {
		page := unsafe.Pointer(base + uintptr(i*4096))
		require.Equal(t, sp, ph.lookupspan(page))
	}
	// interior addresses resolve too.
	require.Equal(t, sp, ph.lookupspan(unsafe.Pointer(base+100)))

	ph.freespan(sp)
	require.Equal(t, int64(0), ph.reservedbytes())
	for i := int64(0); i < 3; i++ {
		page := unsafe.Pointer(base + uintptr(i*4096))
		require.Nil(t, ph.lookupspan(page))
	}
}

func TestPageheapOverlap(t *testing.T) {
	ph := newpageheap(4096, 16)

	// live spans never share a page-id.
	spans := make([]*span, 0, 8)
	seen := map[uintptr]bool{}
	for i := 0; i < 8; i++ {
		sp := ph.allocspan(2)
		require.NotNil(t, sp)
		for p := uintptr(0); p < 2; p++ {
			require.False(t, seen[sp.startpage+p])
			seen[sp.startpage+p] = true
		}
		spans = append(spans, sp)
	}
	for _, sp := range spans {
		ph.freespan(sp)
	}
}

func TestPageheapExhaustion(t *testing.T) {
	ph := newpageheap(4096, 2)
	sp1, sp2 := ph.allocspan(1), ph.allocspan(1)
	require.NotNil(t, sp1)
	require.NotNil(t, sp2)
	// descriptors are bump allocated, never recycled.
	ph.freespan(sp1)
	require.Nil(t, ph.allocspan(1))
}

func TestPageheapRelease(t *testing.T) {
	ph := newpageheap(4096, 16)
	for i := 0; i < 4; i++ {
		require.NotNil(t, ph.allocspan(2))
	}
	ph.release()
	require.Equal(t, int64(0), ph.reservedbytes())

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Errorf("expected panic")
			}
		}()
		ph.allocspan(1)
	}()
}
