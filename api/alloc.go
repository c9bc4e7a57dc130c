package api

import "unsafe"

// Mallocer interface for custom memory management.
type Mallocer interface {
	// Slabs allocatable slab of sizes.
	Slabs() (sizes []int64)

	// Alloc allocate a chunk of `n` bytes, nil means out-of-memory.
	// Allocated memory is always 64-bit aligned.
	Alloc(n int64) unsafe.Pointer

	// Slabsize return the size of the chunk's slab.
	Slabsize(ptr unsafe.Pointer) int64

	// Chunklen return the length of the chunk usable by application.
	Chunklen(ptr unsafe.Pointer) int64

	// Free chunk back to its slab.
	Free(ptr unsafe.Pointer)

	// Info of memory accounting for this allocator.
	Info() (reserved, allocated, overhead int64)

	// Utilization map of slab-size and its utilization.
	Utilization() ([]int, []float64)
}
