// Package trace parses and replays allocation scripts.
//
// A script holds one command per line; blank lines and lines starting with
// '#' are ignored:
//
//	alloc a1 8        # a1 = Alloc(8)
//	write a1 0x2A     # fill a1's payload with 0x2A
//	check a1 42       # every payload byte must equal 42
//	free a1
//	expect-fail 9000  # Alloc(9000) must fail with exhaustion
//
// Input may be UTF-8 or UTF-16 with a byte order mark.
package trace
