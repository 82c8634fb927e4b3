package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/trace"
)

func TestReplayCommand(t *testing.T) {
	tests := []struct {
		name        string
		trace       string
		arena       int
		jsonOut     bool
		wantErr     error
		wantContain []string
	}{
		{
			name:        "scenario",
			trace:       "testdata/scenario.trace",
			wantContain: []string{"Replayed testdata/scenario.trace: 12 step(s), 0 live", "node @0      size 4,088"},
		},
		{
			name:        "leak in large arena",
			trace:       "testdata/leak.trace",
			arena:       65536,
			wantContain: []string{"2 live allocation(s)", "65,536 bytes"},
		},
		{
			name:    "double free",
			trace:   "testdata/double_free.trace",
			wantErr: trace.ErrUnknownName,
		},
		{
			name:    "exhaustion in small arena",
			trace:   "testdata/leak.trace",
			arena:   128,
			wantErr: alloc.ErrFreeListExhausted,
		},
		{
			name:        "json",
			trace:       "testdata/leak.trace",
			jsonOut:     true,
			wantContain: []string{`"live": 2`, `"free_list"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			jsonOut = tt.jsonOut
			if tt.arena != 0 {
				arenaSize = tt.arena
			}

			out, err := captureOutput(t, func() error {
				_, err := runReplay(t.Context(), tt.trace)
				return err
			})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			for _, want := range tt.wantContain {
				assert.Contains(t, out, want)
			}
			if tt.jsonOut {
				var report ReplayReport
				require.NoError(t, json.Unmarshal([]byte(out), &report))
				assert.Equal(t, 6, report.Steps)
			}
		})
	}
}

func TestReplayCommand_MissingFile(t *testing.T) {
	resetFlags(t)
	_, err := runReplay(t.Context(), "testdata/nope.trace")
	require.Error(t, err)
}
