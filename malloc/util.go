package malloc

import "fmt"

func panicerr(fmsg string, args ...interface{}) {
	panic(fmt.Errorf(fmsg, args...))
}

// Suitableslab return the smallest slab size that can hold a chunk
// of `size` bytes. Call only with size <= slabs[len(slabs)-1].
func Suitableslab(slabs []int64, size int64) int64 {
	return slabs[suitableindex(slabs, size)]
}

func suitableindex(slabs []int64, size int64) int {
	from := 0
	for {
		switch len(slabs) {
		case 1:
			return from

		case 2:
			if size <= slabs[0] {
				return from
			} else if size <= slabs[1] {
				return from + 1
			}
			panicerr("size %v exceeds largest slab %v", size, slabs[1])

		default:
			pivot := len(slabs) / 2
			if slabs[pivot] < size {
				from, slabs = from+pivot+1, slabs[pivot+1:]
			} else {
				slabs = slabs[:pivot+1]
			}
		}
	}
}

// Computeslabs generate the slab sizes for an allocator, doubling
// from minblock to maxblock.
func Computeslabs(minblock, maxblock int64) []int64 {
	if minblock < Minblock {
		panicerr("minblock %v < %v", minblock, Minblock)
	} else if maxblock > Maxblock {
		panicerr("maxblock %v > %v", maxblock, Maxblock)
	} else if minblock > maxblock {
		panicerr("minblock %v > maxblock %v", minblock, maxblock)
	} else if (minblock % Alignment) != 0 {
		panicerr("minblock %v is not multiple of %v", minblock, Alignment)
	}
	sizes := make([]int64, 0, 16)
	for size := minblock; size < maxblock; size = size * 2 {
		sizes = append(sizes, size)
	}
	sizes = append(sizes, maxblock)
	return sizes
}

func divceil(a, b int64) int64 {
	return (a + b - 1) / b
}

func ispow2(n int64) bool {
	return n > 0 && (n&(n-1)) == 0
}

func shiftof(n int64) uint {
	shift := uint(0)
	for (int64(1) << shift) < n {
		shift++
	}
	return shift
}
