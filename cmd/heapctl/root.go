package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/logger"
)

var (
	// Global flags
	verbose   bool
	quiet     bool
	jsonOut   bool
	noColor   bool
	debug     bool
	logDir    string
	arenaSize int
)

var rootCmd = &cobra.Command{
	Use:   "heapctl",
	Short: "Drive and inspect a fixed-arena free-list allocator",
	Long: `heapctl runs allocation workloads against a first-fit, address-ordered,
coalescing free-list allocator over a single fixed arena. It can replay
allocation traces, check heap invariants after every step, and draw the
resulting block layout.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogging()
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log allocator events to stderr")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Write debug logs to daily files in this directory")
	rootCmd.PersistentFlags().
		IntVar(&arenaSize, "arena-size", format.DefaultArenaSize, "Arena size in bytes (multiple of 8)")
}

func execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		logger.Error("heapctl failed", "error", err)
		printError("%v\n", err)
		os.Exit(1)
	}
}

// initLogging enables the shared logger for --debug. Without the flag the
// HEAP_LOG_ALLOC environment setting is left in effect.
func initLogging() error {
	if !debug {
		return nil
	}
	return logger.Init(logger.Options{
		Enabled: true,
		Level:   slog.LevelDebug,
		LogDir:  logDir,
	})
}

// newAllocator builds an allocator for the configured arena size.
func newAllocator() (*alloc.FreeListAllocator, error) {
	cfg := alloc.DefaultConfig
	if arenaSize != cfg.ArenaSize {
		cfg = alloc.Config{Name: "heapctl", ArenaSize: arenaSize}
	}
	fa, err := alloc.New(&cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid --arena-size: %w", err)
	}
	return fa, nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

var numberPrinter = message.NewPrinter(language.English)

// formatNumber renders n with thousands separators.
func formatNumber(n int) string {
	return numberPrinter.Sprintf("%d", n)
}

// formatPercent renders a 0.0-1.0 ratio as a percentage.
func formatPercent(f float64) string {
	return numberPrinter.Sprintf("%.1f%%", f*100)
}

// printStats writes the allocator summary shared by several commands.
func printStats(s alloc.Stats) {
	printInfo("Arena:\n")
	printInfo("  Size:         %s bytes\n", formatNumber(s.ArenaSize))
	printInfo("  Used:         %s bytes (%s)\n", formatNumber(s.Used), formatPercent(s.Utilization))
	printInfo("  Free:         %s bytes in %d node(s)\n", formatNumber(s.FreeBytes), s.FreeNodes)
	printInfo("  Largest fit:  %s bytes\n", formatNumber(s.LargestFree))
	printInfo("\nOperations:\n")
	printInfo("  Allocs:       %s (%d failed)\n", formatNumber(s.AllocCalls), s.FailedAllocs)
	printInfo("  Frees:        %s (%d rejected)\n", formatNumber(s.FreeCalls), s.InvalidFrees)
	printInfo("  Splits:       %d\n", s.SplitCount)
	printInfo("  Absorbed:     %d\n", s.AbsorbCount)
	printInfo("  Merges:       %d\n", s.CoalesceCount)
}

// printFreeList writes one line per free node.
func printFreeList(nodes []alloc.FreeNode) {
	if len(nodes) == 0 {
		printInfo("  (empty)\n")
		return
	}
	for _, n := range nodes {
		printInfo("  node @%-6d size %s\n", n.Off, formatNumber(int(n.Size)))
	}
}
