//go:build !windows
// +build !windows

package malloc

import "golang.org/x/sys/unix"

// osreserve maps `size` bytes of fresh anonymous memory from the OS,
// page aligned and zero filled.
func osreserve(size int64) ([]byte, error) {
	return unix.Mmap(
		-1, 0, int(size),
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANON|unix.MAP_PRIVATE,
	)
}

// osrelease unmaps a region obtained from osreserve.
func osrelease(mem []byte) error {
	return unix.Munmap(mem)
}
