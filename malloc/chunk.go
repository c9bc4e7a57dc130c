package malloc

import "unsafe"

// Every chunk carries an 8-byte header immediately preceding the
// pointer handed to the application. While the chunk is allocated
// the header holds its nominal size, slab size for small chunks and
// exact requested size for large chunks. While the chunk sits on a
// free list the same word holds the link to the next free chunk.
const chunkHeader = int64(8)

func setsize(block uintptr, size int64) {
	*(*int64)(unsafe.Pointer(block)) = size
}

func getsize(ptr unsafe.Pointer) int64 {
	return *(*int64)(unsafe.Pointer(uintptr(ptr) - uintptr(chunkHeader)))
}

func setlink(block, next uintptr) {
	*(*uintptr)(unsafe.Pointer(block)) = next
}

func getlink(block uintptr) uintptr {
	return *(*uintptr)(unsafe.Pointer(block))
}
