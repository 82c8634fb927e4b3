//go:build !unix

package mmfile

import (
	"fmt"
	"os"
)

// Reserve allocates size zeroed bytes from the Go heap when anonymous
// mappings are not available.
func Reserve(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("mmfile: invalid reservation size %d", size)
	}
	return make([]byte, size), nil
}

// Release is a no-op; the garbage collector owns fallback regions.
func Release([]byte) error { return nil }

// PageSize returns the system page size.
func PageSize() int {
	return os.Getpagesize()
}
