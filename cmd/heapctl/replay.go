package main

import (
	"context"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/trace"
	"github.com/joshuapare/heapkit/heap/verify"
)

var replayNoVerify bool

func init() {
	cmd := newReplayCmd()
	cmd.Flags().BoolVar(&replayNoVerify, "no-verify", false, "Skip invariant checks between steps")
	rootCmd.AddCommand(cmd)
}

func newReplayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replay <trace>",
		Short: "Replay an allocation trace",
		Long: `The replay command runs every command of a trace file against a fresh
arena. Heap invariants are checked after each step; the first failure stops
the replay with exit status 1.

Example:
  heapctl replay workload.trace
  heapctl replay workload.trace --arena-size 65536 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := runReplay(cmd.Context(), args[0])
			return err
		},
	}
}

// ReplayReport is the JSON form of a replay.
type ReplayReport struct {
	Trace    string           `json:"trace"`
	Steps    int              `json:"steps"`
	Live     int              `json:"live"`
	Stats    alloc.Stats      `json:"stats"`
	FreeList []alloc.FreeNode `json:"free_list"`
}

// replayTrace parses path and replays it against a new allocator.
func replayTrace(ctx context.Context, path string) (*alloc.FreeListAllocator, *trace.Result, error) {
	script, err := trace.ParseFile(path)
	if err != nil {
		return nil, nil, err
	}
	fa, err := newAllocator()
	if err != nil {
		return nil, nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	opts := &trace.Options{OnStep: func(s trace.Step) error {
		printVerbose("%4d  %-24s ptr=%d\n", s.Command.Line, s.Command, s.Ptr)
		if replayNoVerify {
			return nil
		}
		return verify.AllInvariants(fa)
	}}
	res, err := trace.Replay(ctx, fa, script, opts)
	return fa, res, err
}

func runReplay(ctx context.Context, path string) (*ReplayReport, error) {
	printVerbose("Replaying trace: %s\n", path)

	fa, res, err := replayTrace(ctx, path)
	if err != nil {
		return nil, err
	}
	nodes, err := fa.FreeNodes()
	if err != nil {
		return nil, err
	}

	report := &ReplayReport{
		Trace:    path,
		Steps:    res.Steps,
		Live:     len(res.Live),
		Stats:    fa.Stats(),
		FreeList: nodes,
	}
	if jsonOut {
		return report, printJSON(report)
	}

	printInfo("Replayed %s: %s step(s), %d live allocation(s)\n\n", path, formatNumber(report.Steps), report.Live)
	printStats(report.Stats)
	printInfo("\nFree list:\n")
	printFreeList(nodes)
	if report.Live > 0 {
		printVerbose("\nLive allocations:\n")
		for _, name := range slices.Sorted(maps.Keys(res.Live)) {
			printVerbose("  %-12s ptr %d\n", name, res.Live[name])
		}
	}
	return report, nil
}
