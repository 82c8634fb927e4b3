package heap

import "errors"

var (
	// ErrResourceExhausted indicates the operating system refused the arena reservation.
	ErrResourceExhausted = errors.New("heap: arena reservation failed")

	// ErrBadArenaSize indicates an arena size outside the supported range or off the header grid.
	ErrBadArenaSize = errors.New("heap: invalid arena size")
)
