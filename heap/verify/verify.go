package verify

import (
	"fmt"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/internal/format"
)

// Inspectable is the view of an allocator the checks need.
type Inspectable interface {
	Arena() *heap.Arena
	FreeHead() uint32
}

// ValidationError describes the first invariant violation found.
type ValidationError struct {
	Type    string
	Message string
	Offset  int
	Details map[string]interface{}
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset 0x%X: %s", e.Type, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// node is a free-list entry decoded by the verifier.
type node struct {
	off  int
	span int
}

// AllInvariants validates all arena invariants in one call.
// Returns the first error encountered, or nil if all checks pass.
func AllInvariants(a Inspectable) error {
	if err := AddressOrdered(a); err != nil {
		return err
	}
	if err := Coalesced(a); err != nil {
		return err
	}
	if err := Tiling(a); err != nil {
		return err
	}
	return Conservation(a)
}

// freeList decodes the list from the head, failing on anything that would
// make it untraversable: misaligned or out-of-bounds nodes, nodes running
// past the arena, descending or overlapping links.
func freeList(a Inspectable) ([]node, error) {
	data := a.Arena().Bytes()
	var nodes []node
	for cur := a.FreeHead(); cur != format.NilOffset; {
		off := int(cur)
		if !format.IsAligned(off) || off+format.NodeHeaderSize > len(data) {
			return nil, &ValidationError{
				Type:    "AddressOrdered",
				Message: fmt.Sprintf("node header outside arena or misaligned (arena %d bytes)", len(data)),
				Offset:  off,
			}
		}
		n := format.ReadNode(data, cur)
		span := n.Span()
		if off+span > len(data) {
			return nil, &ValidationError{
				Type:    "AddressOrdered",
				Message: fmt.Sprintf("node extends beyond arena: span=%d, available=%d", span, len(data)-off),
				Offset:  off,
			}
		}
		if len(nodes) > 0 {
			prev := nodes[len(nodes)-1]
			if off <= prev.off {
				return nil, &ValidationError{
					Type:    "AddressOrdered",
					Message: fmt.Sprintf("list not ascending: 0x%X follows 0x%X", off, prev.off),
					Offset:  off,
				}
			}
			if prev.off+prev.span > off {
				return nil, &ValidationError{
					Type:    "AddressOrdered",
					Message: fmt.Sprintf("node overlaps predecessor ending at 0x%X", prev.off+prev.span),
					Offset:  off,
				}
			}
		}
		nodes = append(nodes, node{off: off, span: span})
		cur = n.Next
	}
	return nodes, nil
}

// AddressOrdered validates that the free list is traversable and ascending.
func AddressOrdered(a Inspectable) error {
	if !a.Arena().Initialized() {
		return nil
	}
	_, err := freeList(a)
	return err
}

// Coalesced validates that no two list-adjacent free nodes are contiguous.
func Coalesced(a Inspectable) error {
	if !a.Arena().Initialized() {
		return nil
	}
	nodes, err := freeList(a)
	if err != nil {
		return err
	}
	for i := 1; i < len(nodes); i++ {
		prev, cur := nodes[i-1], nodes[i]
		if prev.off+prev.span == cur.off {
			return &ValidationError{
				Type:    "Coalesced",
				Message: fmt.Sprintf("free node at 0x%X is contiguous with its successor", prev.off),
				Offset:  cur.off,
				Details: map[string]interface{}{
					"prev_off":  prev.off,
					"prev_span": prev.span,
				},
			}
		}
	}
	return nil
}

// Tiling validates that the arena is an exact sequence of free nodes and
// live blocks whose headers carry valid tags.
func Tiling(a Inspectable) error {
	if !a.Arena().Initialized() {
		return nil
	}
	_, _, err := tile(a)
	return err
}

// tile walks the arena linearly and returns the free and live byte totals.
func tile(a Inspectable) (free, live int, err error) {
	nodes, err := freeList(a)
	if err != nil {
		return 0, 0, err
	}

	data := a.Arena().Bytes()
	next := 0 // index of the next free node expected in address order
	for pos := 0; pos < len(data); {
		if next < len(nodes) && nodes[next].off == pos {
			free += nodes[next].span
			pos += nodes[next].span
			next++
			continue
		}
		hdr, hdrErr := format.ReadAllocHeader(data, pos)
		if hdrErr != nil {
			return 0, 0, &ValidationError{
				Type:    "Tiling",
				Message: fmt.Sprintf("expected a live block: %v", hdrErr),
				Offset:  pos,
			}
		}
		end := pos + hdr.Span()
		if next < len(nodes) && end > nodes[next].off {
			return 0, 0, &ValidationError{
				Type:    "Tiling",
				Message: fmt.Sprintf("live block overlaps free node at 0x%X", nodes[next].off),
				Offset:  pos,
			}
		}
		live += hdr.Span()
		pos = end
	}
	if next != len(nodes) {
		return 0, 0, &ValidationError{
			Type:    "Tiling",
			Message: fmt.Sprintf("%d free nodes not reached by the linear walk", len(nodes)-next),
			Offset:  nodes[next].off,
		}
	}
	return free, live, nil
}

// Conservation validates that live and free spans account for every byte
// and that the used-bytes counter matches the live spans.
func Conservation(a Inspectable) error {
	arena := a.Arena()
	if !arena.Initialized() {
		if arena.Used() != 0 {
			return &ValidationError{
				Type:    "Conservation",
				Message: fmt.Sprintf("used=%d before reservation", arena.Used()),
				Offset:  -1,
			}
		}
		return nil
	}
	free, live, err := tile(a)
	if err != nil {
		return err
	}

	if free+live != arena.Size() {
		return &ValidationError{
			Type:    "Conservation",
			Message: fmt.Sprintf("live %d + free %d != arena size %d", live, free, arena.Size()),
			Offset:  -1,
		}
	}
	if live != arena.Used() {
		return &ValidationError{
			Type:    "Conservation",
			Message: fmt.Sprintf("used counter %d != live spans %d", arena.Used(), live),
			Offset:  -1,
			Details: map[string]interface{}{
				"arena_size": arena.Size(),
				"free":       free,
				"used":       arena.Used(),
			},
		}
	}
	return nil
}

// ZeroedFreeSpace validates that every free node body reads as zero. It holds
// whenever the reserved memory started zeroed, which the mmap reservation
// guarantees.
func ZeroedFreeSpace(a Inspectable) error {
	if !a.Arena().Initialized() {
		return nil
	}
	nodes, err := freeList(a)
	if err != nil {
		return err
	}
	data := a.Arena().Bytes()
	for _, n := range nodes {
		for i := n.off + format.NodeHeaderSize; i < n.off+n.span; i++ {
			if data[i] != 0 {
				return &ValidationError{
					Type:    "ZeroedFreeSpace",
					Message: fmt.Sprintf("free byte 0x%02X in node at 0x%X", data[i], n.off),
					Offset:  i,
				}
			}
		}
	}
	return nil
}
