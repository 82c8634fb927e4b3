package heap

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/mmfile"
)

// ReserveFunc obtains size bytes of zeroed read/write memory.
type ReserveFunc func(size int) ([]byte, error)

// Arena is the single contiguous region backing an allocator, reserved lazily.
type Arena struct {
	data    []byte
	size    int
	used    int
	reserve ReserveFunc
	err     error // sticky reservation failure
}

// NewArena validates size and returns an arena that has not yet touched the
// operating system. A nil reserve selects mmfile.Reserve.
func NewArena(size int, reserve ReserveFunc) (*Arena, error) {
	if err := ValidateSize(size); err != nil {
		return nil, err
	}
	if reserve == nil {
		reserve = mmfile.Reserve
	}
	return &Arena{size: size, reserve: reserve}, nil
}

// ValidateSize reports whether size can back an arena.
func ValidateSize(size int) error {
	switch {
	case size < format.MinArenaSize:
		return fmt.Errorf("%w: %d bytes is below the minimum of %d", ErrBadArenaSize, size, format.MinArenaSize)
	case size > format.MaxArenaSize:
		return fmt.Errorf("%w: %d bytes exceeds the maximum of %d", ErrBadArenaSize, size, format.MaxArenaSize)
	case !format.IsAligned(size):
		return fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrBadArenaSize, size, format.HeaderAlignment)
	}
	return nil
}

// EnsureInitialized reserves the region on first use. It reports true only
// on the call that performed the reservation, so the caller can install its
// initial metadata exactly once.
func (a *Arena) EnsureInitialized() (bool, error) {
	if a.data != nil {
		return false, nil
	}
	if a.err != nil {
		return false, a.err
	}

	data, err := a.reserve(a.size)
	if err != nil {
		a.err = fmt.Errorf("%w: %d bytes: %w", ErrResourceExhausted, a.size, err)
		return false, a.err
	}
	if len(data) < a.size {
		a.err = fmt.Errorf("%w: reserved %d of %d bytes", ErrResourceExhausted, len(data), a.size)
		return false, a.err
	}

	a.data = data[:a.size:a.size]
	a.used = 0
	return true, nil
}

// Initialized reports whether the region has been reserved.
func (a *Arena) Initialized() bool { return a.data != nil }

// Bytes returns the arena contents, or nil before initialization.
func (a *Arena) Bytes() []byte { return a.data }

// Size returns the fixed arena size in bytes.
func (a *Arena) Size() int { return a.size }

// Used returns the bytes held by live allocations, headers included.
func (a *Arena) Used() int { return a.used }

// AddUsed adjusts the used-bytes counter by delta.
func (a *Arena) AddUsed(delta int) { a.used += delta }
