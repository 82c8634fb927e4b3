package format

import (
	"errors"
	"testing"
)

func TestNodeRoundTripAtOffset(t *testing.T) {
	b := make([]byte, 64)
	PutNode(b, 16, Node{Size: 24, Next: NilOffset})

	got := ReadNode(b, 16)
	if got.Size != 24 || got.Next != NilOffset {
		t.Fatalf("ReadNode = %+v, want size 24 next nil", got)
	}
	if got.Span() != 32 {
		t.Fatalf("Span = %d, want 32", got.Span())
	}
	for i := 0; i < 16; i++ {
		if b[i] != 0 {
			t.Fatalf("byte %d touched outside node header", i)
		}
	}
}

func TestReadAllocHeader(t *testing.T) {
	b := make([]byte, 64)
	PutAllocHeader(b, 8, 16)

	h, err := ReadAllocHeader(b, 8)
	if err != nil {
		t.Fatalf("ReadAllocHeader: %v", err)
	}
	if h.Size != 16 || h.Span() != 24 {
		t.Fatalf("header = %+v span %d", h, h.Span())
	}
}

func TestReadAllocHeaderRejects(t *testing.T) {
	b := make([]byte, 64)
	PutAllocHeader(b, 8, 16)

	tests := []struct {
		name string
		off  int
		mut  func([]byte)
		want error
	}{
		{"misaligned", 12, nil, ErrMisaligned},
		{"past end", 64, nil, ErrTruncated},
		{"zeroed header", 32, nil, ErrBadTag},
		{"size tampered", 8, func(b []byte) { PutU32(b, 8, 24) }, ErrBadTag},
		{"payload past end", 48, func(b []byte) { PutAllocHeader(b, 48, 64) }, ErrTruncated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := append([]byte(nil), b...)
			if tt.mut != nil {
				tt.mut(c)
			}
			_, err := ReadAllocHeader(c, tt.off)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLiveTagNeverMatchesNodeFields(t *testing.T) {
	// A freed header is either zeroed or reinterpreted as a node; neither
	// layout may validate as live for any in-range offset and size.
	for _, off := range []uint32{0, 8, 4088, MaxArenaSize - 8} {
		for _, size := range []uint32{0, 8, 4088, MaxArenaSize - 16} {
			tag := LiveTag(off, size)
			if tag < MaxArenaSize || tag == NilOffset || tag == 0 {
				t.Fatalf("LiveTag(%d,%d) = %#x collides with node fields", off, size, tag)
			}
		}
	}
}

func TestAlign8(t *testing.T) {
	cases := map[int]int{1: 8, 7: 8, 8: 8, 9: 16, 16: 16, 4088: 4088}
	for in, want := range cases {
		if got := Align8(in); got != want {
			t.Fatalf("Align8(%d) = %d, want %d", in, got, want)
		}
	}
	if !IsAligned(16) || IsAligned(12) {
		t.Fatalf("IsAligned mismatch")
	}
}
