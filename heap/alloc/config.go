package alloc

import (
	"log/slog"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/internal/format"
)

// Config defines the arena an allocator manages.
type Config struct {
	// Name for this configuration (for logs and tools)
	Name string

	// ArenaSize is the fixed arena size in bytes; a multiple of 8.
	ArenaSize int

	// Reserve obtains the arena memory. nil selects an anonymous mmap.
	Reserve heap.ReserveFunc

	// Logger receives allocator events. nil selects logger.L.
	Logger *slog.Logger
}

// Predefined configurations.
var (
	// ConfigPage: a single 4 KiB page, the classic fixed heap.
	ConfigPage = Config{
		Name:      "Page",
		ArenaSize: format.DefaultArenaSize,
	}

	// ConfigLarge: 64 KiB for tools replaying longer traces.
	ConfigLarge = Config{
		Name:      "Large",
		ArenaSize: 64 * 1024,
	}

	// Default configuration (used if none specified).
	DefaultConfig = ConfigPage
)
