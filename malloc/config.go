package malloc

import "os"

import s "github.com/bnclabs/gosettings"
import sigar "github.com/cloudfoundry/gosigar"

// Alignment chunks allocated by this package are always aligned
// to Alignment boundary.
const Alignment = int64(8)

// Minblock smallest slab size allowed while configuring an allocator.
const Minblock = int64(8)

// Maxblock largest slab size allowed while configuring an allocator,
// requests beyond the configured maxblock take the large path.
const Maxblock = int64(1024 * 1024)

// Maxspans maximum number of span descriptors allowed in the
// bootstrap pool.
const Maxspans = int64(1024 * 1024)

// Defaultsettings for creating a new Malloc instance.
//
// "minblock" (int64, default: 8)
//
//	Smallest slab size, subsequent slabs double until "maxblock".
//
// "maxblock" (int64, default: 1024)
//
//	Largest slab size, requests above it map whole pages.
//
// "batchsize" (int64, default: 32)
//
//	Number of chunks moved between a thread cache and its central
//	transfer list in one critical section.
//
// "scavenge.threshold" (int64, default: 128)
//
//	Number of free chunks a thread cache holds, per slab, before
//	releasing a batch back to the transfer list.
//
// "pagesize" (int64, default: OS page size)
//
//	Unit of memory mapped from the OS, must be a power of 2.
//
// "spans.max" (int64, default: 1024)
//
//	Capacity of the span-descriptor pool. Descriptors are bump
//	allocated and never recycled, each OS mapping consumes one.
func Defaultsettings() s.Settings {
	return s.Settings{
		"minblock":           int64(8),
		"maxblock":           int64(1024),
		"batchsize":          int64(32),
		"scavenge.threshold": int64(128),
		"pagesize":           int64(os.Getpagesize()),
		"spans.max":          int64(1024),
	}
}

func getsysmem() (total, used, free uint64) {
	mem := sigar.Mem{}
	mem.Get()
	return mem.Total, mem.Used, mem.Free
}
