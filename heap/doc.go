// Package heap owns the single fixed-size memory region that backs an
// allocator.
//
// # Overview
//
// An Arena is created cheaply and reserves its memory from the operating
// system only on the first call to EnsureInitialized. The reservation is an
// anonymous, private, read/write mapping made exactly once; it is never grown
// and never released. Failure to reserve is sticky: the arena reports the same
// error on every later call rather than retrying.
//
// The arena tracks a used-bytes counter on behalf of the allocator that
// carves it up. It does not interpret its contents; block layout lives in
// internal/format and free-list management in heap/alloc.
//
// # Usage
//
//	a, err := heap.NewArena(4096, nil) // nil selects the mmap reservation
//	if err != nil {
//	    return err
//	}
//	fresh, err := a.EnsureInitialized()
//	if err != nil {
//	    return err // wraps heap.ErrResourceExhausted
//	}
//	if fresh {
//	    // install the initial free block
//	}
//
// # Thread Safety
//
// Arena instances are not thread-safe.
package heap
