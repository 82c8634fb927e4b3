package main

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	overlay "github.com/rmhubbert/bubbletea-overlay"
	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/trace"
	"github.com/joshuapare/heapkit/heap/verify"
	"github.com/joshuapare/heapkit/internal/logger"
)

// historyLines is how many executed commands the stepper keeps on screen.
const historyLines = 8

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

func init() {
	rootCmd.AddCommand(newStepCmd())
}

func newStepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "step <trace>",
		Short: "Step through a trace interactively",
		Long: `The step command opens a terminal view that executes a trace one
command at a time, redrawing the arena map and free list after each step.
Invariants are checked after every command; a violation halts the stepper.

Example:
  heapctl step workload.trace`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := trace.ParseFile(args[0])
			if err != nil {
				return err
			}
			m, err := newStepModel(script)
			if err != nil {
				return err
			}
			final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
			if err != nil {
				return fmt.Errorf("run stepper: %w", err)
			}
			return final.(*stepModel).err
		},
	}
}

// stepModel is the bubbletea model behind `heapctl step`.
type stepModel struct {
	script    *trace.Script
	fa        *alloc.FreeListAllocator
	replayer  *trace.Replayer
	keys      KeyMap
	history   []string
	err       error
	status    string
	showTable bool
	showHelp  bool
	width     int
}

func newStepModel(script *trace.Script) (*stepModel, error) {
	m := &stepModel{script: script, keys: DefaultKeyMap(), width: 64}
	if err := m.reset(); err != nil {
		return nil, err
	}
	return m, nil
}

// reset starts the script over on a fresh arena.
func (m *stepModel) reset() error {
	fa, err := newAllocator()
	if err != nil {
		return err
	}
	m.fa = fa
	m.replayer = trace.NewReplayer(fa, m.script)
	m.history = m.history[:0]
	m.err = nil
	m.status = ""
	return nil
}

func (m *stepModel) Init() tea.Cmd { return nil }

func (m *stepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Leave room for the border and padding.
		m.width = max(16, min(msg.Width-4, 128))
	case tea.KeyMsg:
		if m.showHelp {
			// Any key closes the overlay; quit still quits.
			m.showHelp = false
			if key.Matches(msg, m.keys.Quit) {
				return m, tea.Quit
			}
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
		case key.Matches(msg, m.keys.Next):
			m.advance()
		case key.Matches(msg, m.keys.RunAll):
			for m.err == nil && !m.replayer.Done() {
				m.advance()
			}
		case key.Matches(msg, m.keys.Reset):
			if err := m.reset(); err != nil {
				m.err = err
			}
		case key.Matches(msg, m.keys.Table):
			m.showTable = !m.showTable
		case key.Matches(msg, m.keys.Copy):
			m.copyBlocks()
		}
	}
	return m, nil
}

// advance runs one command and checks the arena. Errors halt stepping.
func (m *stepModel) advance() {
	if m.err != nil || m.replayer.Done() {
		return
	}
	step, err := m.replayer.Next()
	if err == nil {
		err = verify.AllInvariants(m.fa)
	}
	if err != nil {
		logger.Warn("step failed", "line", step.Command.Line, "error", err)
		m.err = err
		return
	}
	m.history = append(m.history, fmt.Sprintf("%4d  %-24s ptr=%d", step.Command.Line, step.Command, step.Ptr))
	if len(m.history) > historyLines {
		m.history = m.history[len(m.history)-historyLines:]
	}
}

// copyBlocks puts the block table on the system clipboard.
func (m *stepModel) copyBlocks() {
	blocks, err := m.fa.Blocks()
	if err == nil {
		err = writeClipboard(renderBlockTable(blocks))
	}
	if err != nil {
		logger.Warn("clipboard copy failed", "error", err)
		m.status = "copy failed: " + err.Error()
		return
	}
	m.status = fmt.Sprintf("copied %d block(s)", len(blocks))
}

func (m *stepModel) View() string {
	if m.showHelp {
		return overlay.New(helpView{keys: m.keys}, stepBackground{m}, overlay.Center, overlay.Center, 0, 0).View()
	}
	return m.mainView()
}

// mainView renders the stepper without any overlay.
func (m *stepModel) mainView() string {
	var sb strings.Builder

	pos, total := m.replayer.Position(), len(m.script.Commands)
	sb.WriteString(render(headerStyle, fmt.Sprintf("%s  step %d/%d", m.script.Source, pos, total)))
	sb.WriteString("\n\n")

	for _, line := range m.history {
		sb.WriteString(render(doneStyle, line))
		sb.WriteByte('\n')
	}
	switch {
	case m.err != nil:
		sb.WriteString(render(errorStyle, "error: "+m.err.Error()))
	case pos < total:
		sb.WriteString(render(currentStyle, "next: "+m.script.Commands[pos].String()))
	default:
		sb.WriteString(render(currentStyle, "finished"))
	}
	sb.WriteString("\n\n")

	blocks, err := m.fa.Blocks()
	if err != nil {
		sb.WriteString(render(errorStyle, err.Error()))
	} else {
		sb.WriteString(render(mapStyle, renderMap(blocks, m.fa.Arena().Size(), m.width, 16)))
		if m.showTable {
			sb.WriteString("\n")
			sb.WriteString(renderBlockTable(blocks))
		}
	}

	s := m.fa.Stats()
	fmt.Fprintf(&sb, "\nused %s / %s bytes  free nodes %d  largest fit %s\n",
		formatNumber(s.Used), formatNumber(s.ArenaSize), s.FreeNodes, formatNumber(s.LargestFree))

	if m.status != "" {
		sb.WriteString(render(doneStyle, m.status))
		sb.WriteByte('\n')
	}

	help := make([]string, 0, len(m.keys.ShortHelp()))
	for _, b := range m.keys.ShortHelp() {
		help = append(help, b.Help().Key+" "+b.Help().Desc)
	}
	sb.WriteString(render(helpStyle, strings.Join(help, " • ")))
	return sb.String()
}

// stepBackground exposes the main view as a tea.Model for the overlay.
type stepBackground struct{ m *stepModel }

func (b stepBackground) Init() tea.Cmd                       { return nil }
func (b stepBackground) Update(tea.Msg) (tea.Model, tea.Cmd) { return b, nil }
func (b stepBackground) View() string                        { return b.m.mainView() }

// helpView lists every key binding in a bordered box.
type helpView struct{ keys KeyMap }

func (h helpView) Init() tea.Cmd                       { return nil }
func (h helpView) Update(tea.Msg) (tea.Model, tea.Cmd) { return h, nil }

func (h helpView) View() string {
	var sb strings.Builder
	sb.WriteString(render(headerStyle, "Keys"))
	for _, b := range h.keys.FullHelp() {
		fmt.Fprintf(&sb, "\n%-10s %s", b.Help().Key, b.Help().Desc)
	}
	return render(mapStyle, sb.String())
}
