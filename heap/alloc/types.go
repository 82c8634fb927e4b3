package alloc

// FreeNode is a decoded free-list entry.
type FreeNode struct {
	Off  uint32 // Offset of the node header
	Size uint32 // Free bytes following the header
	Next uint32 // Offset of the next node, format.NilOffset at the tail
}

// Span returns the bytes covered by the node including its header.
func (n FreeNode) Span() int { return nodeHeaderSize + int(n.Size) }

// Block is one entry of a linear walk over the arena.
type Block struct {
	Off  uint32 // Offset of the block header
	Span int    // Header plus body
	Size uint32 // Payload capacity for live blocks, free bytes for free blocks
	Free bool
}

// Payload returns the Ptr of a live block, or 0 for a free one.
func (b Block) Payload() Ptr {
	if b.Free {
		return 0
	}
	return b.Off + allocHeaderSize
}
