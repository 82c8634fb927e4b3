package trace

import "errors"

var (
	// ErrSyntax indicates a malformed script line.
	ErrSyntax = errors.New("trace: syntax error")

	// ErrUnknownName indicates a command naming an allocation that is not live.
	ErrUnknownName = errors.New("trace: unknown allocation")

	// ErrDuplicateName indicates an alloc reusing the name of a live allocation.
	ErrDuplicateName = errors.New("trace: allocation already live")

	// ErrCheckFailed indicates a payload byte that did not match a check command.
	ErrCheckFailed = errors.New("trace: payload check failed")

	// ErrFinished is returned by Replayer.Next once every command has run.
	ErrFinished = errors.New("trace: replay finished")

	// ErrUnexpectedSuccess indicates an expect-fail allocation that succeeded.
	ErrUnexpectedSuccess = errors.New("trace: allocation should have failed")
)
