package alloc

// Counters holds cumulative allocator statistics.
type Counters struct {
	AllocCalls     int   `json:"alloc_calls"`     // Total Alloc() calls
	FreeCalls      int   `json:"free_calls"`      // Total Free() calls
	FailedAllocs   int   `json:"failed_allocs"`   // Allocs that found no fit
	InvalidFrees   int   `json:"invalid_frees"`   // Frees rejected by validation
	SplitCount     int   `json:"split_count"`     // Allocations that split a node
	AbsorbCount    int   `json:"absorb_count"`    // Allocations that absorbed a small remainder
	CoalesceCount  int   `json:"coalesce_count"`  // Node merges
	BytesAllocated int64 `json:"bytes_allocated"` // Total bytes handed out (including headers)
	BytesFreed     int64 `json:"bytes_freed"`     // Total bytes returned (including headers)
}

// Stats is a snapshot of allocator counters and arena occupancy.
type Stats struct {
	Counters

	Name        string  `json:"name"`
	Initialized bool    `json:"initialized"`
	ArenaSize   int     `json:"arena_size"`
	Used        int     `json:"used"`         // Live bytes including headers
	FreeBytes   int     `json:"free_bytes"`   // Free bytes including node headers
	FreeNodes   int     `json:"free_nodes"`   // Free list length
	LargestFree int     `json:"largest_free"` // Largest single request that can succeed
	Utilization float64 `json:"utilization"`  // Used / ArenaSize (0.0-1.0)
}

// Stats returns a snapshot of allocator statistics. Free-list figures cover
// the walkable prefix if the list is corrupt.
func (fa *FreeListAllocator) Stats() Stats {
	s := Stats{
		Counters:    fa.stats,
		Name:        fa.name,
		Initialized: fa.arena.Initialized(),
		ArenaSize:   fa.arena.Size(),
		Used:        fa.arena.Used(),
	}
	if !s.Initialized {
		// The whole arena becomes one node on first use.
		s.FreeBytes = s.ArenaSize
		s.FreeNodes = 1
		s.LargestFree = s.ArenaSize - nodeHeaderSize
		return s
	}

	nodes, _ := fa.FreeNodes()
	for _, n := range nodes {
		s.FreeBytes += n.Span()
		s.LargestFree = max(s.LargestFree, int(n.Size))
	}
	s.FreeNodes = len(nodes)
	s.Utilization = float64(s.Used) / float64(s.ArenaSize)
	return s
}
