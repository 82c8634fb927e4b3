package alloc

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
)

// Blocks walks the arena from offset 0 and returns every block in address
// order. Free blocks are recognised by free-list membership and live blocks
// by a valid header, so the walk fails if the arena does not tile exactly.
func (fa *FreeListAllocator) Blocks() ([]Block, error) {
	if !fa.arena.Initialized() {
		return nil, nil
	}
	nodes, err := fa.FreeNodes()
	if err != nil {
		return nil, err
	}
	free := make(map[uint32]FreeNode, len(nodes))
	for _, n := range nodes {
		free[n.Off] = n
	}

	data := fa.arena.Bytes()
	blocks := make([]Block, 0, 2*len(nodes)+1)
	for off := 0; off < len(data); {
		if n, ok := free[uint32(off)]; ok {
			blocks = append(blocks, Block{Off: n.Off, Span: n.Span(), Size: n.Size, Free: true})
			off += n.Span()
			continue
		}
		hdr, err := format.ReadAllocHeader(data, off)
		if err != nil {
			return blocks, fmt.Errorf("%w: block at %d: %w", ErrCorrupt, off, err)
		}
		blocks = append(blocks, Block{Off: uint32(off), Span: hdr.Span(), Size: hdr.Size})
		off += hdr.Span()
	}
	return blocks, nil
}
