package alloc

// Ptr is the arena offset of a live payload. The zero Ptr is nil: a payload
// always follows a header, so it can never start at offset 0.
type Ptr = uint32

// Allocator defines the interface for arena allocation and deallocation.
//
// Implementations:
//   - FreeListAllocator: first-fit, address-ordered free list with coalescing
type Allocator interface {
	// Alloc returns a pointer to n zeroed bytes and a slice over exactly those bytes.
	Alloc(n int) (Ptr, []byte, error)

	// Free releases a pointer previously returned by Alloc.
	Free(p Ptr) error
}

var _ Allocator = (*FreeListAllocator)(nil)
