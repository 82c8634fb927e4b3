package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/verify"
	"github.com/joshuapare/heapkit/internal/format"
)

// ============================================================================
// Test Helpers
// ============================================================================

// goReserve backs arenas with Go memory so tests do not leak mappings.
func goReserve(size int) ([]byte, error) {
	return make([]byte, size), nil
}

// newTestAllocator creates an allocator over a Go-backed arena of size bytes.
func newTestAllocator(t testing.TB, size int) *FreeListAllocator {
	t.Helper()
	fa, err := New(&Config{Name: "test", ArenaSize: size, Reserve: goReserve})
	require.NoError(t, err)
	return fa
}

// mustAlloc allocates n bytes and fails the test on error.
func mustAlloc(t testing.TB, fa *FreeListAllocator, n int) (Ptr, []byte) {
	t.Helper()
	p, buf, err := fa.Alloc(n)
	require.NoError(t, err, "Alloc(%d)", n)
	require.Len(t, buf, n)
	return p, buf
}

// requireInvariants checks every arena invariant.
func requireInvariants(t testing.TB, fa *FreeListAllocator) {
	t.Helper()
	require.NoError(t, verify.AllInvariants(fa))
	require.NoError(t, verify.ZeroedFreeSpace(fa))
}

// freeList returns the free list as {off: size} pairs in list order.
func freeList(t testing.TB, fa *FreeListAllocator) [][2]uint32 {
	t.Helper()
	nodes, err := fa.FreeNodes()
	require.NoError(t, err)
	out := make([][2]uint32, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, [2]uint32{n.Off, n.Size})
	}
	return out
}

// fill writes b over every byte of payload.
func fill(payload []byte, b byte) {
	for i := range payload {
		payload[i] = b
	}
}

// requireFilled asserts every byte of payload equals b.
func requireFilled(t testing.TB, payload []byte, b byte, msgAndArgs ...any) {
	t.Helper()
	for i := range payload {
		if payload[i] != b {
			require.Failf(t, "payload corrupted", "byte %d = 0x%02X, want 0x%02X %v", i, payload[i], b, msgAndArgs)
		}
	}
}

// firstFit predicts the node Alloc(n) should select, or NilOffset.
func firstFit(t testing.TB, fa *FreeListAllocator, n int) uint32 {
	t.Helper()
	nodes, err := fa.FreeNodes()
	require.NoError(t, err)
	need := uint32(format.Align8(n))
	for _, node := range nodes {
		if node.Size >= need {
			return node.Off
		}
	}
	return format.NilOffset
}
