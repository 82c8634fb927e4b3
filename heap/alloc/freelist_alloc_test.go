package alloc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/internal/format"
)

// Test_Scenario_ThreeAllocsFreedOutOfOrder walks the reference scenario:
// 8, 16, 8 bytes allocated, then freed first, last, middle.
func Test_Scenario_ThreeAllocsFreedOutOfOrder(t *testing.T) {
	fa := newTestAllocator(t, 4096)

	a1, b1 := mustAlloc(t, fa, 8)
	a2, _ := mustAlloc(t, fa, 16)
	a3, _ := mustAlloc(t, fa, 8)
	requireFilled(t, b1, 0)

	require.Equal(t, Ptr(8), a1)
	require.Equal(t, Ptr(24), a2)
	require.Equal(t, Ptr(48), a3)
	require.Equal(t, [][2]uint32{{56, 4032}}, freeList(t, fa))
	require.Equal(t, 56, fa.Arena().Used())
	requireInvariants(t, fa)

	require.NoError(t, fa.Free(a1))
	require.Equal(t, [][2]uint32{{0, 8}, {56, 4032}}, freeList(t, fa))
	requireInvariants(t, fa)

	require.NoError(t, fa.Free(a3))
	require.Equal(t, [][2]uint32{{0, 8}, {40, 4048}}, freeList(t, fa))
	requireInvariants(t, fa)

	require.NoError(t, fa.Free(a2))
	require.Equal(t, [][2]uint32{{0, 4096 - format.NodeHeaderSize}}, freeList(t, fa))
	require.Zero(t, fa.Arena().Used())
	requireInvariants(t, fa)

	s := fa.Stats()
	assert.Equal(t, 3, s.AllocCalls)
	assert.Equal(t, 3, s.FreeCalls)
	assert.Equal(t, 3, s.SplitCount)
	assert.Equal(t, 3, s.CoalesceCount)
	assert.Equal(t, int64(56), s.BytesAllocated)
	assert.Equal(t, int64(56), s.BytesFreed)
}

func TestAlloc_LazyReservation(t *testing.T) {
	calls := 0
	fa, err := New(&Config{ArenaSize: 4096, Reserve: func(size int) ([]byte, error) {
		calls++
		return make([]byte, size), nil
	}})
	require.NoError(t, err)
	require.Zero(t, calls, "New must not reserve")
	require.False(t, fa.Stats().Initialized)
	require.Equal(t, format.NilOffset, fa.FreeHead())

	mustAlloc(t, fa, 1)
	mustAlloc(t, fa, 1)
	require.Equal(t, 1, calls)
	require.True(t, fa.Stats().Initialized)
}

func TestAlloc_ReservationFailure(t *testing.T) {
	osErr := errors.New("mmap: cannot allocate memory")
	fa, err := New(&Config{ArenaSize: 4096, Reserve: func(int) ([]byte, error) { return nil, osErr }})
	require.NoError(t, err)

	_, _, err = fa.Alloc(8)
	require.ErrorIs(t, err, heap.ErrResourceExhausted)
	require.ErrorIs(t, err, osErr)

	_, _, err = fa.Alloc(8)
	require.ErrorIs(t, err, heap.ErrResourceExhausted)
}

func TestAlloc_DefaultConfigUsesMapping(t *testing.T) {
	fa, err := New(nil)
	require.NoError(t, err)
	require.Equal(t, "Page", fa.Name())

	p, buf := mustAlloc(t, fa, 64)
	requireFilled(t, buf, 0)
	fill(buf, 0x5A)
	require.NoError(t, fa.Free(p))
	requireInvariants(t, fa)
}

func TestNew_RejectsBadArenaSize(t *testing.T) {
	for _, size := range []int{8, 4092, -1, format.MaxArenaSize + 8} {
		_, err := New(&Config{ArenaSize: size, Reserve: goReserve})
		require.ErrorIs(t, err, heap.ErrBadArenaSize, "size %d", size)
	}
}

func TestAlloc_ZeroSize(t *testing.T) {
	fa := newTestAllocator(t, 4096)
	for _, n := range []int{0, -1, -4096} {
		p, buf, err := fa.Alloc(n)
		require.ErrorIs(t, err, ErrZeroSize)
		require.Zero(t, p)
		require.Nil(t, buf)
	}
	require.False(t, fa.Arena().Initialized(), "rejected requests must not reserve")
}

// TestAlloc_ZeroOnAlloc reuses a dirty block and checks it comes back zeroed.
func TestAlloc_ZeroOnAlloc(t *testing.T) {
	fa := newTestAllocator(t, 4096)

	p, buf := mustAlloc(t, fa, 100)
	fill(buf, 0xFF)
	require.NoError(t, fa.Free(p))

	p2, buf2 := mustAlloc(t, fa, 100)
	require.Equal(t, p, p2, "first fit should reuse the same block")
	requireFilled(t, buf2, 0)
}

// TestAlloc_ZeroOnAllocDirtyReservation checks zeroing does not depend on
// the reservation handing out zeroed memory.
func TestAlloc_ZeroOnAllocDirtyReservation(t *testing.T) {
	fa, err := New(&Config{ArenaSize: 256, Reserve: func(size int) ([]byte, error) {
		b := make([]byte, size)
		fill(b, 0xEE)
		return b, nil
	}})
	require.NoError(t, err)

	_, buf := mustAlloc(t, fa, 40)
	requireFilled(t, buf, 0)
}

func TestAlloc_PayloadSliceIsClipped(t *testing.T) {
	fa := newTestAllocator(t, 4096)
	_, buf := mustAlloc(t, fa, 5)
	require.Equal(t, 5, len(buf))
	require.Equal(t, 5, cap(buf))

	// Appending must reallocate instead of writing into the neighbour.
	p2, next := mustAlloc(t, fa, 8)
	_ = append(buf, 0xAB, 0xAB, 0xAB, 0xAB)
	requireFilled(t, next, 0)
	sz, err := fa.SizeOf(p2)
	require.NoError(t, err)
	require.Equal(t, 8, sz)
}

// TestAlloc_FirstFitNotBestFit builds a large hole ahead of a tighter one and
// checks the earlier hole is chosen.
func TestAlloc_FirstFitNotBestFit(t *testing.T) {
	fa := newTestAllocator(t, 4096)

	mustAlloc(t, fa, 8)          // A: 0..16
	b, _ := mustAlloc(t, fa, 64) // B: 16..88
	mustAlloc(t, fa, 8)          // C: 88..104
	d, _ := mustAlloc(t, fa, 32) // D: 104..144
	mustAlloc(t, fa, 8)          // E: 144..160

	require.NoError(t, fa.Free(b))
	require.NoError(t, fa.Free(d))
	require.Equal(t, [][2]uint32{{16, 64}, {104, 32}, {160, 3928}}, freeList(t, fa))

	p, _ := mustAlloc(t, fa, 24)
	require.Equal(t, b, p, "first fit takes the 64-byte hole, not the 32-byte one")
	require.Equal(t, [][2]uint32{{48, 32}, {104, 32}, {160, 3928}}, freeList(t, fa))
	requireInvariants(t, fa)
}

// TestAlloc_AbsorbsUnsplittableRemainder checks that a remainder too small
// for a node header stays with the allocation and returns with it.
func TestAlloc_AbsorbsUnsplittableRemainder(t *testing.T) {
	fa := newTestAllocator(t, 4096)

	mustAlloc(t, fa, 8)             // 0..16
	hole, _ := mustAlloc(t, fa, 32) // 16..56
	mustAlloc(t, fa, 8)             // 56..72
	require.NoError(t, fa.Free(hole))

	p, buf := mustAlloc(t, fa, 24) // 32-byte hole, remainder 8
	require.Equal(t, hole, p)
	require.Len(t, buf, 24)

	sz, err := fa.SizeOf(p)
	require.NoError(t, err)
	require.Equal(t, 32, sz, "remainder absorbed into capacity")

	full, err := fa.Bytes(p)
	require.NoError(t, err)
	require.Len(t, full, 32)

	require.Equal(t, [][2]uint32{{72, 4016}}, freeList(t, fa))
	require.Equal(t, 1, fa.Stats().AbsorbCount)
	requireInvariants(t, fa)

	require.NoError(t, fa.Free(p))
	require.Equal(t, [][2]uint32{{16, 32}, {72, 4016}}, freeList(t, fa))
	requireInvariants(t, fa)
}

func TestAlloc_ExactFit(t *testing.T) {
	fa := newTestAllocator(t, 4096)

	p, _ := mustAlloc(t, fa, 4096-format.AllocHeaderSize)
	require.Equal(t, format.NilOffset, fa.FreeHead(), "exact fit empties the list")
	require.Equal(t, 4096, fa.Arena().Used())
	requireInvariants(t, fa)

	_, _, err := fa.Alloc(1)
	require.ErrorIs(t, err, ErrFreeListExhausted)

	require.NoError(t, fa.Free(p))
	require.Equal(t, [][2]uint32{{0, 4088}}, freeList(t, fa))
	requireInvariants(t, fa)
}

// TestAlloc_ExhaustionLeavesStateUnchanged checks a failed request neither
// returns a pointer nor mutates the arena.
func TestAlloc_ExhaustionLeavesStateUnchanged(t *testing.T) {
	fa := newTestAllocator(t, 256)
	mustAlloc(t, fa, 100)
	before := append([]byte(nil), fa.Arena().Bytes()...)
	head, used := fa.FreeHead(), fa.Arena().Used()

	for _, n := range []int{200, 257, 1 << 20} {
		p, buf, err := fa.Alloc(n)
		require.ErrorIs(t, err, ErrFreeListExhausted, "Alloc(%d)", n)
		require.Zero(t, p)
		require.Nil(t, buf)
	}

	require.Equal(t, before, fa.Arena().Bytes())
	require.Equal(t, head, fa.FreeHead())
	require.Equal(t, used, fa.Arena().Used())
	require.Equal(t, 3, fa.Stats().FailedAllocs)
}

// TestAlloc_PayloadIntegrity checks neighbours survive alloc/free churn.
func TestAlloc_PayloadIntegrity(t *testing.T) {
	fa := newTestAllocator(t, 4096)

	keep1, buf1 := mustAlloc(t, fa, 40)
	tmp1, tmpBuf1 := mustAlloc(t, fa, 24)
	keep2, buf2 := mustAlloc(t, fa, 17)
	fill(buf1, 0xAA)
	fill(tmpBuf1, 0xBB)
	fill(buf2, 0xCC)

	require.NoError(t, fa.Free(tmp1))
	tmp2, tmpBuf2 := mustAlloc(t, fa, 8)
	fill(tmpBuf2, 0xDD)
	tmp3, _ := mustAlloc(t, fa, 500)
	require.NoError(t, fa.Free(tmp2))
	require.NoError(t, fa.Free(tmp3))

	requireFilled(t, buf1, 0xAA)
	requireFilled(t, buf2, 0xCC)

	again1, err := fa.Bytes(keep1)
	require.NoError(t, err)
	requireFilled(t, again1, 0xAA)
	again2, err := fa.Bytes(keep2)
	require.NoError(t, err)
	requireFilled(t, again2[:17], 0xCC)
	requireInvariants(t, fa)
}

func TestAlloc_RoundsToHeaderAlignment(t *testing.T) {
	fa := newTestAllocator(t, 4096)
	for _, n := range []int{1, 7, 8, 9, 15} {
		p, _ := mustAlloc(t, fa, n)
		require.True(t, format.IsAligned(int(p)), "ptr %d for %d bytes", p, n)
		sz, err := fa.SizeOf(p)
		require.NoError(t, err)
		require.Equal(t, format.Align8(n), sz)
	}
	requireInvariants(t, fa)
}
