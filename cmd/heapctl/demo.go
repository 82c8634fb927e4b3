package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/verify"
)

func init() {
	rootCmd.AddCommand(newDemoCmd())
}

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the three-allocation coalescing scenario",
		Long: `The demo command allocates 8, 16 and 8 bytes, then frees them first,
last and middle, printing the free list after every step. The arena ends as a
single free node.

Example:
  heapctl demo
  heapctl demo --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo()
		},
	}
}

// DemoStep is one line of the demo transcript.
type DemoStep struct {
	Action   string           `json:"action"`
	Ptr      alloc.Ptr        `json:"ptr"`
	FreeList []alloc.FreeNode `json:"free_list"`
}

// DemoResult is the JSON form of the demo.
type DemoResult struct {
	Steps []DemoStep  `json:"steps"`
	Stats alloc.Stats `json:"stats"`
}

func runDemo() error {
	fa, err := newAllocator()
	if err != nil {
		return err
	}

	var result DemoResult
	record := func(action string, p alloc.Ptr) error {
		if err := verify.AllInvariants(fa); err != nil {
			return fmt.Errorf("after %s: %w", action, err)
		}
		nodes, err := fa.FreeNodes()
		if err != nil {
			return err
		}
		result.Steps = append(result.Steps, DemoStep{Action: action, Ptr: p, FreeList: nodes})
		return nil
	}

	var ptrs [3]alloc.Ptr
	for i, n := range []int{8, 16, 8} {
		p, payload, err := fa.Alloc(n)
		if err != nil {
			return fmt.Errorf("alloc a%d: %w", i+1, err)
		}
		payload[0] = byte(i + 1)
		ptrs[i] = p
		if err := record(fmt.Sprintf("alloc a%d %d", i+1, n), p); err != nil {
			return err
		}
	}
	for _, i := range []int{0, 2, 1} {
		if err := fa.Free(ptrs[i]); err != nil {
			return fmt.Errorf("free a%d: %w", i+1, err)
		}
		if err := record(fmt.Sprintf("free a%d", i+1), ptrs[i]); err != nil {
			return err
		}
	}
	result.Stats = fa.Stats()

	if jsonOut {
		return printJSON(result)
	}

	for _, step := range result.Steps {
		printInfo("%-12s -> ptr %d\n", step.Action, step.Ptr)
		if verbose {
			printFreeList(step.FreeList)
		}
	}
	printInfo("\nFinal free list:\n")
	printFreeList(result.Steps[len(result.Steps)-1].FreeList)
	printVerbose("\n")
	if verbose {
		printStats(result.Stats)
	}
	return nil
}
