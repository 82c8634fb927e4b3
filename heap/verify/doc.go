// Package verify checks the structural invariants of a free-list arena.
//
// # Overview
//
// The checks decode the arena directly through internal/format instead of
// asking the allocator, so a bug in the allocator's own walkers cannot hide
// a corrupt arena. They are used after every step of property tests and
// trace replays.
//
// Validation categories:
//   - AddressOrdered: free list strictly ascending, in bounds, non-overlapping
//   - Coalesced: no free node ends where its list successor begins
//   - Tiling: the arena is an exact sequence of free nodes and live blocks
//     with valid tags
//   - Conservation: live spans plus free spans equal the arena size, and live
//     spans equal the used-bytes counter
//
// # Quick Start
//
//	if err := verify.AllInvariants(fa); err != nil {
//	    var verr *verify.ValidationError
//	    if errors.As(err, &verr) {
//	        fmt.Printf("%s at 0x%X: %s\n", verr.Type, verr.Offset, verr.Message)
//	    }
//	}
//
// An arena that has not been reserved yet passes every check.
package verify
