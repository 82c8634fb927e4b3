package alloc

import "errors"

var (
	// ErrFreeListExhausted indicates that no free block large enough was found.
	// The arena never grows, so the request cannot be satisfied.
	ErrFreeListExhausted = errors.New("alloc: free list exhausted")

	// ErrInvalidFree indicates a pointer that was not returned by Alloc or was already freed.
	ErrInvalidFree = errors.New("alloc: invalid free")

	// ErrZeroSize indicates a request for zero or negative bytes.
	ErrZeroSize = errors.New("alloc: size must be positive")

	// ErrCorrupt indicates free-list metadata that fails bounds or ordering checks.
	ErrCorrupt = errors.New("alloc: free list corrupt")
)
