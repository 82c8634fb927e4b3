package alloc

import (
	"fmt"
	"log/slog"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/logger"
)

const (
	allocHeaderSize = format.AllocHeaderSize
	nodeHeaderSize  = format.NodeHeaderSize
)

// FreeListAllocator is a first-fit allocator over a single fixed arena.
//   - The free list is kept in ascending address order
//   - Splits leave the remainder in the candidate's list position
//   - Every Free is followed by a coalescing pass
type FreeListAllocator struct {
	arena *heap.Arena
	name  string
	log   *slog.Logger

	// head is the offset of the lowest free node, format.NilOffset when the
	// list is empty or the arena is not yet reserved.
	head uint32

	// Statistics for testing and instrumentation
	stats Counters
}

// New creates an allocator for the arena described by config. The arena is
// not reserved until the first Alloc.
//
// Parameters:
//   - config: arena configuration (use nil for DefaultConfig)
func New(config *Config) (*FreeListAllocator, error) {
	if config == nil {
		config = &DefaultConfig
	}
	size := config.ArenaSize
	if size == 0 {
		size = format.DefaultArenaSize
	}

	arena, err := heap.NewArena(size, config.Reserve)
	if err != nil {
		return nil, err
	}

	log := config.Logger
	if log == nil {
		log = logger.L
	}
	name := config.Name
	if name == "" {
		name = "custom"
	}

	return &FreeListAllocator{
		arena: arena,
		name:  name,
		log:   log.With("allocator", name),
		head:  format.NilOffset,
	}, nil
}

// ensureInitialized reserves the arena on first use and installs one free
// node spanning it.
func (fa *FreeListAllocator) ensureInitialized() error {
	fresh, err := fa.arena.EnsureInitialized()
	if err != nil {
		fa.log.Error("arena reservation failed", "size", fa.arena.Size(), "error", err)
		return err
	}
	if !fresh {
		return nil
	}

	data := fa.arena.Bytes()
	format.PutNode(data, 0, format.Node{
		Size: uint32(len(data) - nodeHeaderSize),
		Next: format.NilOffset,
	})
	fa.head = 0
	fa.log.Debug("arena reserved", "size", len(data))
	return nil
}

// Alloc returns a pointer to n zeroed bytes using first-fit selection.
func (fa *FreeListAllocator) Alloc(n int) (Ptr, []byte, error) {
	fa.stats.AllocCalls++

	if n <= 0 {
		return 0, nil, fmt.Errorf("%w: %d", ErrZeroSize, n)
	}
	if err := fa.ensureInitialized(); err != nil {
		return 0, nil, err
	}
	if n > fa.arena.Size() {
		return 0, nil, fa.exhausted(n)
	}
	need := uint32(format.Align8(n))

	prev, cur, node, err := fa.findFirstFit(need)
	if err != nil {
		return 0, nil, err
	}
	if cur == format.NilOffset {
		return 0, nil, fa.exhausted(int(need))
	}

	data := fa.arena.Bytes()
	capacity := need
	succ := node.Next

	rem := node.Size - need
	if rem > nodeHeaderSize {
		// Split: the tail becomes a node in the candidate's list position.
		tail := cur + allocHeaderSize + need
		format.PutNode(data, tail, format.Node{Size: rem - nodeHeaderSize, Next: succ})
		succ = tail
		fa.stats.SplitCount++
	} else {
		// Use entire block (absorb remainder)
		capacity = node.Size
		if rem > 0 {
			fa.stats.AbsorbCount++
		}
	}
	fa.setNext(prev, succ)

	format.PutAllocHeader(data, cur, capacity)
	payloadOff := int(cur) + allocHeaderSize
	clear(data[payloadOff : payloadOff+int(capacity)])

	span := allocHeaderSize + int(capacity)
	fa.arena.AddUsed(span)
	fa.stats.BytesAllocated += int64(span)

	fa.log.Debug("alloc", "request", n, "off", cur, "capacity", capacity, "split", rem > nodeHeaderSize)
	return Ptr(payloadOff), data[payloadOff : payloadOff+n : payloadOff+n], nil
}

// exhausted records a failed request and builds its error.
func (fa *FreeListAllocator) exhausted(need int) error {
	fa.stats.FailedAllocs++
	largest, count := fa.largestFree()
	fa.log.Warn("free list exhausted",
		"need", need,
		"largest_free", largest,
		"free_nodes", count,
		"used", fa.arena.Used(),
	)
	return fmt.Errorf("%w: need %d bytes, largest free block %d", ErrFreeListExhausted, need, largest)
}

// Free returns a live allocation to the free list and coalesces.
func (fa *FreeListAllocator) Free(p Ptr) error {
	fa.stats.FreeCalls++

	off, hdr, err := fa.resolve(p)
	if err != nil {
		return fa.invalidFree(p, err)
	}

	prev, next, err := fa.insertionPoint(off)
	if err != nil {
		return fa.invalidFree(p, err)
	}

	data := fa.arena.Bytes()
	span := hdr.Span()
	clear(data[off : int(off)+span])
	format.PutNode(data, off, format.Node{Size: uint32(span - nodeHeaderSize), Next: next})
	fa.setNext(prev, off)

	fa.arena.AddUsed(-span)
	fa.stats.BytesFreed += int64(span)

	merged := fa.coalesce()
	fa.log.Debug("free", "off", off, "span", span, "merged", merged)
	return nil
}

func (fa *FreeListAllocator) invalidFree(p Ptr, err error) error {
	fa.stats.InvalidFrees++
	fa.log.Warn("invalid free", "ptr", p, "error", err)
	return err
}

// resolve validates p and decodes its live header.
func (fa *FreeListAllocator) resolve(p Ptr) (uint32, format.AllocHeader, error) {
	if !fa.arena.Initialized() {
		return 0, format.AllocHeader{}, fmt.Errorf("%w: pointer %d: arena not initialized", ErrInvalidFree, p)
	}
	if p < allocHeaderSize {
		return 0, format.AllocHeader{}, fmt.Errorf("%w: pointer %d: below first payload", ErrInvalidFree, p)
	}
	off := p - allocHeaderSize
	hdr, err := format.ReadAllocHeader(fa.arena.Bytes(), int(off))
	if err != nil {
		return 0, format.AllocHeader{}, fmt.Errorf("%w: pointer %d: %w", ErrInvalidFree, p, err)
	}
	return off, hdr, nil
}

// Bytes returns the full payload of a live pointer, including any absorbed
// remainder.
func (fa *FreeListAllocator) Bytes(p Ptr) ([]byte, error) {
	off, hdr, err := fa.resolve(p)
	if err != nil {
		return nil, err
	}
	b, ok := buf.Slice(fa.arena.Bytes(), int(off)+allocHeaderSize, int(hdr.Size))
	if !ok {
		return nil, fmt.Errorf("%w: payload of %d", ErrCorrupt, p)
	}
	return b, nil
}

// SizeOf returns the payload capacity of a live pointer.
func (fa *FreeListAllocator) SizeOf(p Ptr) (int, error) {
	_, hdr, err := fa.resolve(p)
	if err != nil {
		return 0, err
	}
	return int(hdr.Size), nil
}

// Arena returns the arena backing this allocator.
func (fa *FreeListAllocator) Arena() *heap.Arena { return fa.arena }

// Name returns the configuration name.
func (fa *FreeListAllocator) Name() string { return fa.name }
