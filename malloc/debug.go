//go:build debug
// +build debug

package malloc

import "unsafe"

var poolblkinit = make([]byte, 1024)

func init() {
	for i := 0; i < len(poolblkinit); i++ {
		poolblkinit[i] = 0xff
	}
}

// initblock poison a chunk with 0xff before handing it to the
// application, so that stale reads stand out.
func initblock(block uintptr, size int64) {
	dst := unsafe.Slice((*byte)(unsafe.Pointer(block)), size)
	for n := copy(dst, poolblkinit); int64(n) < size; {
		n += copy(dst[n:], poolblkinit)
	}
}
