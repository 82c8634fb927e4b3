// Package alloc provides first-fit allocation and free-list management over a
// single fixed-size arena.
//
// # Overview
//
// FreeListAllocator carves live allocations out of one heap.Arena using a
// singly linked list of free blocks embedded in the arena itself. Links are
// arena offsets, never Go pointers, and every offset read back from the arena
// is validated before use.
//
//   - Alloc(n): first-fit search from the list head, split, zero-fill
//   - Free(p): validate the live header, address-ordered reinsertion, zero-fill
//   - coalescing of address-contiguous free blocks after every Free
//
// # Usage Example
//
//	fa, err := alloc.New(nil) // DefaultConfig: one 4 KiB arena
//	if err != nil {
//	    return err
//	}
//
//	p, buf, err := fa.Alloc(8) // buf is 8 zeroed bytes
//	if err != nil {
//	    return err // ErrFreeListExhausted, heap.ErrResourceExhausted
//	}
//	binary.LittleEndian.PutUint32(buf, 1337)
//
//	if err := fa.Free(p); err != nil {
//	    return err // ErrInvalidFree on a foreign or already freed pointer
//	}
//
// # Block Layout
//
// Every block starts with an 8-byte header. A live block carries its payload
// capacity and a tag bound to its offset; a free block carries its free size
// and the offset of the next free block:
//
//	live: | size u32 | tag u32  | payload (size bytes)    |
//	free: | size u32 | next u32 | zeroed space (size bytes) |
//
// Because both headers are the same size, a reclaimed allocation header is
// reinterpreted in place as a free-list node. Request sizes are rounded up to
// 8 bytes. When a split would leave a tail too small to hold a node header,
// the tail is absorbed into the allocation and returned with it on Free.
//
// # Failure Model
//
// The arena never grows. A request no free block can satisfy fails with
// ErrFreeListExhausted and leaves the allocator unchanged. Callers that want
// the process to terminate on exhaustion do so themselves (see cmd/heapctl).
//
// # Thread Safety
//
// Allocator instances are not thread-safe. Callers must synchronize access
// externally.
//
// # Related Packages
//
//   - github.com/joshuapare/heapkit/heap: arena reservation and used-bytes accounting
//   - github.com/joshuapare/heapkit/heap/verify: invariant checks for tests and tools
//   - github.com/joshuapare/heapkit/internal/format: header layout constants
package alloc
