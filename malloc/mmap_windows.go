//go:build windows
// +build windows

package malloc

import "unsafe"

import "golang.org/x/sys/windows"

// osreserve maps `size` bytes of fresh anonymous memory from the OS,
// page aligned and zero filled.
func osreserve(size int64) ([]byte, error) {
	addr, err := windows.VirtualAlloc(
		0, uintptr(size),
		windows.MEM_COMMIT|windows.MEM_RESERVE,
		windows.PAGE_READWRITE,
	)
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil
}

// osrelease unmaps a region obtained from osreserve.
func osrelease(mem []byte) error {
	addr := uintptr(unsafe.Pointer(&mem[0]))
	return windows.VirtualFree(addr, 0, windows.MEM_RELEASE)
}
