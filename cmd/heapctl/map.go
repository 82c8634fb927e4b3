package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/alloc"
)

const (
	liveGlyph = "#"
	freeGlyph = "."
)

var mapWidth int

func init() {
	cmd := newMapCmd()
	cmd.Flags().IntVar(&mapWidth, "width", 64, "Cells per map row")
	rootCmd.AddCommand(cmd)
}

func newMapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "map <trace>",
		Short: "Replay a trace and draw the arena layout",
		Long: `The map command replays a trace and then draws the arena as a grid of
cells, one row per --width cells. Each cell stands for an equal slice of the
arena and shows '#' when that slice starts inside a live block and '.' when
it starts inside a free node.

Example:
  heapctl map workload.trace
  heapctl map workload.trace --width 32 --no-color`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMap(cmd, args[0])
		},
	}
}

func runMap(cmd *cobra.Command, path string) error {
	fa, _, err := replayTrace(cmd.Context(), path)
	if err != nil {
		return err
	}
	blocks, err := fa.Blocks()
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(blocks)
	}

	printInfo("%s\n", render(headerStyle, fmt.Sprintf("%s (%s bytes)", path, formatNumber(fa.Arena().Size()))))
	printInfo("%s\n", render(mapStyle, renderMap(blocks, fa.Arena().Size(), mapWidth, 0)))
	if verbose {
		printInfo("\n%s", renderBlockTable(blocks))
	}
	return nil
}

// renderMap draws the arena as rows of width cells. Arenas smaller than the
// cell count get one cell per 8 bytes. maxRows limits the output when
// positive.
func renderMap(blocks []alloc.Block, arenaSize, width, maxRows int) string {
	if width <= 0 {
		width = 64
	}
	cells := width * 4
	bytesPerCell := max(arenaSize/cells, 8)
	cells = arenaSize / bytesPerCell

	var sb strings.Builder
	bi := 0
	for c := 0; c < cells; c++ {
		if c > 0 && c%width == 0 {
			if maxRows > 0 && c/width >= maxRows {
				break
			}
			sb.WriteByte('\n')
		}
		off := c * bytesPerCell
		for bi < len(blocks)-1 && int(blocks[bi].Off)+blocks[bi].Span <= off {
			bi++
		}
		if len(blocks) == 0 || blocks[bi].Free {
			sb.WriteString(render(freeCellStyle, freeGlyph))
		} else {
			sb.WriteString(render(liveCellStyle, liveGlyph))
		}
	}
	return sb.String()
}

// renderBlockTable lists every block in address order.
func renderBlockTable(blocks []alloc.Block) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-8s %-8s %-8s %s\n", "OFFSET", "SPAN", "SIZE", "STATE")
	for _, b := range blocks {
		state := "live"
		if b.Free {
			state = "free"
		}
		fmt.Fprintf(&sb, "%-8d %-8d %-8d %s\n", b.Off, b.Span, b.Size, state)
	}
	return sb.String()
}
