package alloc

import "github.com/joshuapare/heapkit/internal/format"

// coalesce merges every free node with address-contiguous list successors
// and returns the number of merges. It relies on the list being in address
// order; nodes that are adjacent in memory but not in the list are left
// alone.
func (fa *FreeListAllocator) coalesce() int {
	data := fa.arena.Bytes()
	merged := 0

	for cur := fa.head; cur != format.NilOffset; {
		n := format.ReadNode(data, cur)
		// Repeat at the same cursor: a merge can expose another neighbour.
		for n.Next != format.NilOffset && cur+nodeHeaderSize+n.Size == n.Next {
			succOff := n.Next
			succ := format.ReadNode(data, succOff)
			clear(data[succOff : int(succOff)+succ.Span()])
			n.Size += uint32(succ.Span())
			n.Next = succ.Next
			merged++
		}
		format.PutNode(data, cur, n)
		cur = n.Next
	}

	fa.stats.CoalesceCount += merged
	return merged
}
