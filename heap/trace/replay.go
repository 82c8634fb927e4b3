package trace

import (
	"context"
	"errors"
	"fmt"

	"github.com/joshuapare/heapkit/heap/alloc"
)

// Step reports one executed command.
type Step struct {
	Index   int       // Position in Script.Commands
	Command Command   // The command executed
	Ptr     alloc.Ptr // Pointer allocated or freed, 0 for expect-fail
}

// Options configures Replay.
type Options struct {
	// OnStep runs after every successful command. A non-nil error stops the
	// replay and is returned wrapped with the command's line.
	OnStep func(Step) error
}

// Result summarises a finished replay.
type Result struct {
	Steps        int                  // Commands executed
	Allocs       int                  // Successful alloc commands
	Frees        int                  // Successful free commands
	ExpectedFail int                  // expect-fail commands that failed as required
	Live         map[string]alloc.Ptr // Allocations still outstanding
}

// Replayer executes a script one command at a time.
type Replayer struct {
	a      alloc.Allocator
	script *Script
	next   int
	live   map[string]liveAlloc
	result Result
}

type liveAlloc struct {
	ptr     alloc.Ptr
	payload []byte
}

// NewReplayer prepares s for execution against a.
func NewReplayer(a alloc.Allocator, s *Script) *Replayer {
	return &Replayer{
		a:      a,
		script: s,
		live:   make(map[string]liveAlloc),
	}
}

// Done reports whether every command has run.
func (r *Replayer) Done() bool { return r.next >= len(r.script.Commands) }

// Position returns the index of the next command.
func (r *Replayer) Position() int { return r.next }

// Next executes the next command. A failed command is not retried; the
// replayer stays on it.
func (r *Replayer) Next() (Step, error) {
	if r.Done() {
		return Step{}, ErrFinished
	}
	cmd := r.script.Commands[r.next]
	step := Step{Index: r.next, Command: cmd}

	ptr, err := r.exec(cmd)
	if err != nil {
		return step, fmt.Errorf("%s:%d: %s: %w", r.script.Source, cmd.Line, cmd, err)
	}
	step.Ptr = ptr
	r.next++
	r.result.Steps++
	return step, nil
}

func (r *Replayer) exec(cmd Command) (alloc.Ptr, error) {
	switch cmd.Op {
	case OpAlloc:
		if _, ok := r.live[cmd.Name]; ok {
			return 0, fmt.Errorf("%w: %s", ErrDuplicateName, cmd.Name)
		}
		p, payload, err := r.a.Alloc(cmd.Size)
		if err != nil {
			return 0, err
		}
		r.live[cmd.Name] = liveAlloc{ptr: p, payload: payload}
		r.result.Allocs++
		return p, nil

	case OpFree:
		la, err := r.lookup(cmd.Name)
		if err != nil {
			return 0, err
		}
		if err := r.a.Free(la.ptr); err != nil {
			return 0, err
		}
		delete(r.live, cmd.Name)
		r.result.Frees++
		return la.ptr, nil

	case OpWrite:
		la, err := r.lookup(cmd.Name)
		if err != nil {
			return 0, err
		}
		for i := range la.payload {
			la.payload[i] = cmd.Byte
		}
		return la.ptr, nil

	case OpCheck:
		la, err := r.lookup(cmd.Name)
		if err != nil {
			return 0, err
		}
		for i, b := range la.payload {
			if b != cmd.Byte {
				return 0, fmt.Errorf("%w: %s[%d] = 0x%02X, want 0x%02X", ErrCheckFailed, cmd.Name, i, b, cmd.Byte)
			}
		}
		return la.ptr, nil

	case OpExpectFail:
		p, _, err := r.a.Alloc(cmd.Size)
		if err == nil {
			// Return the block so the arena matches the script's view.
			if freeErr := r.a.Free(p); freeErr != nil {
				return 0, fmt.Errorf("%w: and release failed: %w", ErrUnexpectedSuccess, freeErr)
			}
			return 0, fmt.Errorf("%w: got pointer %d", ErrUnexpectedSuccess, p)
		}
		if !errors.Is(err, alloc.ErrFreeListExhausted) {
			return 0, err
		}
		r.result.ExpectedFail++
		return 0, nil
	}
	return 0, fmt.Errorf("%w: unknown op %v", ErrSyntax, cmd.Op)
}

func (r *Replayer) lookup(name string) (liveAlloc, error) {
	la, ok := r.live[name]
	if !ok {
		return liveAlloc{}, fmt.Errorf("%w: %s", ErrUnknownName, name)
	}
	return la, nil
}

// Result returns the summary so far.
func (r *Replayer) Result() *Result {
	res := r.result
	res.Live = make(map[string]alloc.Ptr, len(r.live))
	for name, la := range r.live {
		res.Live[name] = la.ptr
	}
	return &res
}

// Replay runs every command of s against a. It stops at the first failing
// command, the first hook error, or when ctx is cancelled, returning the
// partial result alongside the error.
func Replay(ctx context.Context, a alloc.Allocator, s *Script, opts *Options) (*Result, error) {
	if opts == nil {
		opts = &Options{}
	}
	r := NewReplayer(a, s)
	for !r.Done() {
		if err := ctx.Err(); err != nil {
			return r.Result(), err
		}
		step, err := r.Next()
		if err != nil {
			return r.Result(), err
		}
		if opts.OnStep != nil {
			if err := opts.OnStep(step); err != nil {
				return r.Result(), fmt.Errorf("%s:%d: %w", s.Source, step.Command.Line, err)
			}
		}
	}
	return r.Result(), nil
}
