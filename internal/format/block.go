package format

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/buf"
)

// AllocHeader is the decoded form of the header preceding a live payload.
type AllocHeader struct {
	Size uint32 // Payload capacity, excluding the header
	Tag  uint32
}

// Node is the decoded form of a free-list node header.
type Node struct {
	Size uint32 // Free bytes following the header
	Next uint32 // Offset of the next node or NilOffset
}

// LiveTag returns the canary stored in a live header at off recording size.
// Binding the tag to the header position makes a stale or shifted header fail
// validation even when its size field looks plausible.
func LiveTag(off, size uint32) uint32 {
	return LiveMagic ^ off ^ size
}

// Span returns the total bytes covered by a header plus its body.
func (n Node) Span() int { return NodeHeaderSize + int(n.Size) }

// Span returns the total bytes covered by the header plus its payload.
func (h AllocHeader) Span() int { return AllocHeaderSize + int(h.Size) }

// ReadNode decodes the node header at off. The caller must ensure the
// header lies within b.
func ReadNode(b []byte, off uint32) Node {
	return Node{
		Size: ReadU32(b, int(off)+SizeFieldOffset),
		Next: ReadU32(b, int(off)+NextFieldOffset),
	}
}

// PutNode encodes n at off.
func PutNode(b []byte, off uint32, n Node) {
	PutU32(b, int(off)+SizeFieldOffset, n.Size)
	PutU32(b, int(off)+NextFieldOffset, n.Next)
}

// PutAllocHeader writes a live header for a payload of size bytes at off.
func PutAllocHeader(b []byte, off, size uint32) {
	PutU32(b, int(off)+SizeFieldOffset, size)
	PutU32(b, int(off)+TagFieldOffset, LiveTag(off, size))
}

// ReadAllocHeader decodes and validates the live header at off. It checks
// alignment, bounds of both header and payload, and the tag.
func ReadAllocHeader(b []byte, off int) (AllocHeader, error) {
	if !IsAligned(off) {
		return AllocHeader{}, fmt.Errorf("header at %d: %w", off, ErrMisaligned)
	}
	if !buf.Has(b, off, AllocHeaderSize) {
		return AllocHeader{}, fmt.Errorf("header at %d: %w", off, ErrTruncated)
	}
	h := AllocHeader{
		Size: ReadU32(b, off+SizeFieldOffset),
		Tag:  ReadU32(b, off+TagFieldOffset),
	}
	if h.Tag != LiveTag(uint32(off), h.Size) {
		return AllocHeader{}, fmt.Errorf("header at %d: %w", off, ErrBadTag)
	}
	if !buf.Has(b, off+AllocHeaderSize, int(h.Size)) {
		return AllocHeader{}, fmt.Errorf("payload at %d (%d bytes): %w", off+AllocHeaderSize, h.Size, ErrTruncated)
	}
	return h, nil
}
