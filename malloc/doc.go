// Package malloc implements a thread-caching memory allocator for
// programs that make small frequent allocations from many threads,
// with a limited scope:
//
//   - Allocations are served from three tiers, a per-thread cache
//     that needs no locking, a per-slab central transfer list, and a
//     page-heap that maps anonymous memory from the OS.
//   - Requests up to `maxblock` round up to one of a fixed set of
//     slab sizes; larger requests map whole pages directly from the
//     OS and unmap them on Free.
//   - Once a page-span is carved into slab chunks it is not given
//     back to OS until the allocator is Released.
//   - Out-of-memory is reported by returning nil from Alloc, never
//     by panic and never by an error value.
//   - Chunks handed out by this package are always 64-bit aligned.
//
// Callers attach one Cache per OS thread (or per exclusively owned
// goroutine) and must Close it when the thread winds down, so that
// cached chunks drain back to the shared transfer lists. Double-free,
// freeing a foreign pointer and use-after-free are caller contract
// violations; this package does not detect them.
package malloc
