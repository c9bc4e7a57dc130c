//go:build !debug
// +build !debug

package malloc

import "unsafe"

var zeroblkinit = make([]byte, 1024)

// initblock zero fill a chunk before handing it to the application.
func initblock(block uintptr, size int64) {
	dst := unsafe.Slice((*byte)(unsafe.Pointer(block)), size)
	for n := copy(dst, zeroblkinit); int64(n) < size; {
		n += copy(dst[n:], zeroblkinit)
	}
}
