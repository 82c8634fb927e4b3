package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	commentPrefix = "#"

	// Scanner buffer sizes
	scannerInitialBufferSize = 4 * 1024
	scannerMaxLineSize       = 64 * 1024
)

// Op identifies a script command.
type Op int

const (
	OpAlloc Op = iota
	OpFree
	OpWrite
	OpCheck
	OpExpectFail
)

var opNames = map[Op]string{
	OpAlloc:      "alloc",
	OpFree:       "free",
	OpWrite:      "write",
	OpCheck:      "check",
	OpExpectFail: "expect-fail",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Command is one parsed script line.
type Command struct {
	Line int    // 1-based source line
	Op   Op     // Command kind
	Name string // Allocation name (alloc, free, write, check)
	Size int    // Request size (alloc, expect-fail)
	Byte byte   // Fill or expected byte (write, check)
}

func (c Command) String() string {
	switch c.Op {
	case OpAlloc:
		return fmt.Sprintf("alloc %s %d", c.Name, c.Size)
	case OpFree:
		return "free " + c.Name
	case OpWrite, OpCheck:
		return fmt.Sprintf("%s %s 0x%02X", c.Op, c.Name, c.Byte)
	case OpExpectFail:
		return fmt.Sprintf("expect-fail %d", c.Size)
	}
	return c.Op.String()
}

// Script is a parsed trace.
type Script struct {
	Source   string // File name or "<input>"
	Commands []Command
}

// ParseFile reads and parses the script at path.
func ParseFile(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trace: %w", err)
	}
	defer f.Close()

	s, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Source = path
	return s, nil
}

// Parse reads a script from r. A UTF-16 byte order mark switches decoding to
// UTF-16; otherwise the input is read as UTF-8 with any BOM stripped.
func Parse(r io.Reader) (*Script, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	scanner := bufio.NewScanner(transform.NewReader(r, decoder))
	scanner.Buffer(make([]byte, 0, scannerInitialBufferSize), scannerMaxLineSize)

	s := &Script{Source: "<input>"}
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.Index(line, commentPrefix); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		cmd, err := parseCommand(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		cmd.Line = lineNo
		s.Commands = append(s.Commands, cmd)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	return s, nil
}

// arity is the argument count of each command.
var arity = map[string]int{
	"alloc":       2,
	"free":        1,
	"write":       2,
	"check":       2,
	"expect-fail": 1,
}

func parseCommand(fields []string) (Command, error) {
	verb, args := strings.ToLower(fields[0]), fields[1:]

	n, ok := arity[verb]
	if !ok {
		return Command{}, fmt.Errorf("%w: unknown command %q", ErrSyntax, fields[0])
	}
	if len(args) != n {
		return Command{}, fmt.Errorf("%w: %s takes %d arguments, got %d", ErrSyntax, verb, n, len(args))
	}

	switch verb {
	case "alloc":
		size, err := parseSize(args[1])
		if err != nil {
			return Command{}, err
		}
		return Command{Op: OpAlloc, Name: args[0], Size: size}, nil
	case "free":
		return Command{Op: OpFree, Name: args[0]}, nil
	case "write", "check":
		b, err := strconv.ParseUint(args[1], 0, 8)
		if err != nil {
			return Command{}, fmt.Errorf("%w: bad byte %q", ErrSyntax, args[1])
		}
		op := OpWrite
		if verb == "check" {
			op = OpCheck
		}
		return Command{Op: op, Name: args[0], Byte: byte(b)}, nil
	default: // expect-fail
		size, err := parseSize(args[0])
		if err != nil {
			return Command{}, err
		}
		return Command{Op: OpExpectFail, Size: size}, nil
	}
}

// parseSize accepts decimal, 0x hex or 0o octal sizes. Zero and negative
// sizes are left for the allocator to reject.
func parseSize(s string) (int, error) {
	v, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: bad size %q", ErrSyntax, s)
	}
	return int(v), nil
}
