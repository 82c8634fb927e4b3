package format

import "errors"

var (
	// ErrTruncated indicates the buffer lacked the bytes required for a header.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrMisaligned indicates a header offset off the 8-byte grid.
	ErrMisaligned = errors.New("format: misaligned header")
	// ErrBadTag indicates an allocation header whose tag does not match.
	ErrBadTag = errors.New("format: allocation tag mismatch")
)
