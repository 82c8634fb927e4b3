//go:build unix

// Package mmfile provides platform-specific helpers for reserving arena memory.
package mmfile

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Reserve maps size bytes of anonymous, private, read/write memory. The
// mapping is zero-filled by the kernel and is not backed by any file.
func Reserve(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("mmfile: invalid reservation size %d", size)
	}
	data, err := unix.Mmap(
		-1,
		0,
		size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANON|unix.MAP_PRIVATE,
	)
	if err != nil {
		return nil, fmt.Errorf("mmfile: mmap %d bytes: %w", size, err)
	}
	return data, nil
}

// Release unmaps a region returned by Reserve. Arenas never call it; it
// exists for tests and tools that reserve scratch regions.
func Release(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	err := unix.Munmap(data)
	if errors.Is(err, unix.EINVAL) {
		// Treat double-unmap as no-op for callers.
		return nil
	}
	return err
}

// PageSize returns the system page size.
func PageSize() int {
	return unix.Getpagesize()
}
