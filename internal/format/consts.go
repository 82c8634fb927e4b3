// Package format describes the in-arena layout of allocator metadata. It does
// not depend on the allocator; the verifier and tools decode arenas with it
// directly.
package format

const (
	// DefaultArenaSize is the arena size used when none is configured. It is a
	// single 4 KiB page.
	DefaultArenaSize = 4096

	// MaxArenaSize bounds every offset and size below 2^30. LiveTag relies on
	// this to keep tags disjoint from offsets and zeroed memory.
	MaxArenaSize = 1 << 30

	// HeaderAlignment is the alignment of every header within the arena.
	// Request sizes are rounded up to it.
	HeaderAlignment = 8

	// HeaderAlignmentMask is HeaderAlignment - 1.
	HeaderAlignmentMask = HeaderAlignment - 1

	// AllocHeaderSize is the size of the header preceding a live payload.
	//
	//	Offset  Size  Description
	//	0x00    4     Payload capacity in bytes.
	//	0x04    4     Live tag, see LiveTag.
	AllocHeaderSize = 8

	// NodeHeaderSize is the size of a free-list node header.
	//
	//	Offset  Size  Description
	//	0x00    4     Free bytes following the header.
	//	0x04    4     Offset of the next node, NilOffset at the tail.
	NodeHeaderSize = 8

	// MinArenaSize is the smallest arena able to hold one header and one
	// aligned payload.
	MinArenaSize = AllocHeaderSize + HeaderAlignment

	// NilOffset terminates the free list.
	NilOffset uint32 = 0xFFFFFFFF

	// LiveMagic seeds the live tag. Bit 31 is set and bit 30 clear, so a tag
	// built from in-range offsets never equals an offset, zero or NilOffset.
	LiveMagic uint32 = 0xA11C0DE5

	// Field offsets shared by both header kinds.
	SizeFieldOffset = 0x00
	TagFieldOffset  = 0x04
	NextFieldOffset = 0x04
)
