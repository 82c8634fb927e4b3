package format

// Align8 returns n aligned up to the next header boundary.
//
// Example:
//
//	Align8(1)  = 8
//	Align8(8)  = 8
//	Align8(9)  = 16
//	Align8(16) = 16
func Align8(n int) int {
	return (n + HeaderAlignmentMask) & ^HeaderAlignmentMask
}

// IsAligned reports whether off sits on a header boundary.
func IsAligned(off int) bool {
	return off&HeaderAlignmentMask == 0
}
