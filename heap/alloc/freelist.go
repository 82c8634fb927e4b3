package alloc

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// FreeHead returns the offset of the first free node, or format.NilOffset.
func (fa *FreeListAllocator) FreeHead() uint32 { return fa.head }

// node decodes the free node at off after checking it lies on the header
// grid inside the arena.
func (fa *FreeListAllocator) node(off uint32) (format.Node, error) {
	data := fa.arena.Bytes()
	if !format.IsAligned(int(off)) {
		return format.Node{}, fmt.Errorf("%w: node at %d: %w", ErrCorrupt, off, format.ErrMisaligned)
	}
	if _, err := buf.CheckRange(len(data), int(off), nodeHeaderSize); err != nil {
		return format.Node{}, fmt.Errorf("%w: node at %d: %w", ErrCorrupt, off, err)
	}
	n := format.ReadNode(data, off)
	if _, err := buf.CheckRange(len(data), int(off)+nodeHeaderSize, int(n.Size)); err != nil {
		return format.Node{}, fmt.Errorf("%w: node at %d: %w", ErrCorrupt, off, err)
	}
	return n, nil
}

// setNext points prev at next, or moves the head when prev is nil.
func (fa *FreeListAllocator) setNext(prev, next uint32) {
	if prev == format.NilOffset {
		fa.head = next
		return
	}
	format.PutU32(fa.arena.Bytes(), int(prev)+format.NextFieldOffset, next)
}

// maxSteps bounds list walks; a list longer than this must contain a cycle.
func (fa *FreeListAllocator) maxSteps() int {
	return fa.arena.Size()/nodeHeaderSize + 1
}

// findFirstFit returns the first node in list order with at least need free
// bytes, and its predecessor. cur is format.NilOffset when nothing fits.
func (fa *FreeListAllocator) findFirstFit(need uint32) (prev, cur uint32, n format.Node, err error) {
	prev = format.NilOffset
	cur = fa.head
	for steps := 0; cur != format.NilOffset; steps++ {
		if steps > fa.maxSteps() {
			return 0, 0, format.Node{}, fmt.Errorf("%w: cycle detected", ErrCorrupt)
		}
		n, err = fa.node(cur)
		if err != nil {
			return 0, 0, format.Node{}, err
		}
		if n.Size >= need {
			return prev, cur, n, nil
		}
		prev, cur = cur, n.Next
	}
	return prev, format.NilOffset, format.Node{}, nil
}

// insertionPoint finds the neighbours of a block being returned at off so
// that the list stays in address order. It rejects offsets that fall inside
// an existing free node or do not start a live block.
func (fa *FreeListAllocator) insertionPoint(off uint32) (prev, next uint32, err error) {
	prev = format.NilOffset
	cur := fa.head
	var prevNode format.Node
	for steps := 0; cur != format.NilOffset && cur < off; steps++ {
		if steps > fa.maxSteps() {
			return 0, 0, fmt.Errorf("%w: cycle detected", ErrCorrupt)
		}
		n, nodeErr := fa.node(cur)
		if nodeErr != nil {
			return 0, 0, nodeErr
		}
		prev, prevNode, cur = cur, n, n.Next
	}
	if cur == off {
		return 0, 0, fmt.Errorf("%w: block at %d is already free", ErrInvalidFree, off)
	}
	pos := 0
	if prev != format.NilOffset {
		pos = int(prev) + prevNode.Span()
		if pos > int(off) {
			return 0, 0, fmt.Errorf("%w: block at %d overlaps free node at %d", ErrInvalidFree, off, prev)
		}
	}

	// Everything between prev and cur is live, so off must be reachable by
	// stepping over live headers. A header forged inside a payload is not.
	data := fa.arena.Bytes()
	for pos < int(off) {
		hdr, hdrErr := format.ReadAllocHeader(data, pos)
		if hdrErr != nil {
			return 0, 0, fmt.Errorf("%w: block at %d: %w", ErrCorrupt, pos, hdrErr)
		}
		pos += hdr.Span()
	}
	if pos != int(off) {
		return 0, 0, fmt.Errorf("%w: offset %d is inside the live block ending at %d", ErrInvalidFree, off, pos)
	}
	return prev, cur, nil
}

// FreeNodes returns the free list in list order.
func (fa *FreeListAllocator) FreeNodes() ([]FreeNode, error) {
	if !fa.arena.Initialized() {
		return nil, nil
	}
	var nodes []FreeNode
	for cur := fa.head; cur != format.NilOffset; {
		if len(nodes) > fa.maxSteps() {
			return nodes, fmt.Errorf("%w: cycle detected", ErrCorrupt)
		}
		n, err := fa.node(cur)
		if err != nil {
			return nodes, err
		}
		nodes = append(nodes, FreeNode{Off: cur, Size: n.Size, Next: n.Next})
		cur = n.Next
	}
	return nodes, nil
}

// largestFree returns the largest free size and the node count. A corrupt
// list reports what was walked before the damage.
func (fa *FreeListAllocator) largestFree() (uint32, int) {
	nodes, _ := fa.FreeNodes()
	var largest uint32
	for _, n := range nodes {
		largest = max(largest, n.Size)
	}
	return largest, len(nodes)
}
