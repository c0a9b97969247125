package controller

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	m "gest.dev/pkg/gest/internal/model"
)

// TUI implements UI using Bubble Tea for interactive display.
type TUI struct {
	output  io.Writer
	program *tea.Program
	done    chan struct{}
	mu      sync.Mutex
	err     error
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

type runStartMsg struct{ files []m.Path }

type suiteResultMsg struct{ result m.SuiteResult }

type coverageMsg struct{ coverage []m.FileCoverage }

type summaryMsg struct{ summary m.RunSummary }

type testFilesMsg struct{ files []m.Path }

type errorMsg struct{ err error }

type closeMsg struct{}

// Start launches the Bubble Tea program in the background.
func (p *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	config := newStartConfig(options)
	p.program = tea.NewProgram(newRunModel(config.mode), tea.WithOutput(p.output), tea.WithAltScreen())
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)

		if _, err := p.program.Run(); err != nil {
			p.mu.Lock()
			p.err = err
			p.mu.Unlock()
		}
	}()

	return nil
}

// Close marks the run as finished. The program stays open until the user quits.
func (p *TUI) Close(_ context.Context) {
	p.send(closeMsg{})
}

// Wait blocks until the user quits the program or ctx is done.
func (p *TUI) Wait(ctx context.Context) {
	if p.done == nil {
		return
	}

	select {
	case <-p.done:
	case <-ctx.Done():
		p.program.Quit()
		<-p.done
	}
}

// Err returns the error the program exited with, if any.
func (p *TUI) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.err
}

// DisplayRunStart resets the view for a new run.
func (p *TUI) DisplayRunStart(_ context.Context, files []m.Path) {
	p.send(runStartMsg{files: files})
}

// DisplaySuiteResult appends a suite to the view.
func (p *TUI) DisplaySuiteResult(_ context.Context, result m.SuiteResult) {
	p.send(suiteResultMsg{result: result})
}

// DisplayCoverage shows the coverage table below the results.
func (p *TUI) DisplayCoverage(_ context.Context, coverage []m.FileCoverage) {
	p.send(coverageMsg{coverage: coverage})
}

// DisplaySummary shows the run totals.
func (p *TUI) DisplaySummary(_ context.Context, summary m.RunSummary) {
	p.send(summaryMsg{summary: summary})
}

// DisplayTestFiles shows the discovered test files.
func (p *TUI) DisplayTestFiles(_ context.Context, files []m.Path) {
	p.send(testFilesMsg{files: files})
}

// DisplayError shows err in the view.
func (p *TUI) DisplayError(_ context.Context, err error) {
	p.send(errorMsg{err: err})
}

func (p *TUI) send(msg tea.Msg) {
	if p.program == nil {
		return
	}

	p.program.Send(msg)
}

// runModel is the Bubble Tea model for a live test run.
type runModel struct {
	mode     StartMode
	spinner  spinner.Model
	running  bool
	total    int
	suites   []m.SuiteResult
	coverage []m.FileCoverage
	summary  *m.RunSummary
	files    []m.Path
	errors   []string
	height   int
	width    int
	offset   int
	quitting bool
}

func newRunModel(mode StartMode) runModel {
	s := spinner.New()
	s.Spinner = spinner.Dot

	return runModel{
		mode:    mode,
		spinner: s,
		running: mode == ModeRun || mode == ModeWatch,
	}
}

func (rm runModel) Init() tea.Cmd {
	return rm.spinner.Tick
}

func (rm runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		rm.height = msg.Height
		rm.width = msg.Width

		return rm, nil

	case tea.KeyMsg:
		return rm.handleKeyPress(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		rm.spinner, cmd = rm.spinner.Update(msg)

		return rm, cmd

	case runStartMsg:
		rm.running = true
		rm.total = len(msg.files)
		rm.suites = nil
		rm.coverage = nil
		rm.summary = nil
		rm.errors = nil
		rm.offset = 0

		return rm, nil

	case suiteResultMsg:
		rm.suites = append(rm.suites, msg.result)
		return rm, nil

	case coverageMsg:
		rm.coverage = msg.coverage
		return rm, nil

	case summaryMsg:
		summary := msg.summary
		rm.summary = &summary
		rm.running = false

		return rm, nil

	case testFilesMsg:
		rm.files = msg.files
		rm.running = false

		return rm, nil

	case errorMsg:
		rm.errors = append(rm.errors, msg.err.Error())
		return rm, nil

	case closeMsg:
		rm.running = false
		return rm, nil
	}

	return rm, nil
}

//nolint:cyclop,exhaustive // Key handling requires multiple cases for UI navigation
func (rm runModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		rm.quitting = true
		return rm, tea.Quit
	default:
	}

	switch msg.String() {
	case "q":
		rm.quitting = true
		return rm, tea.Quit

	case "down", "j":
		rm.offset = min(rm.offset+1, rm.maxOffset())

	case "up", "k":
		rm.offset = max(rm.offset-1, 0)

	case "pgdown", "d":
		rm.offset = min(rm.offset+rm.itemsPerPage(), rm.maxOffset())

	case "pgup", "u":
		rm.offset = max(rm.offset-rm.itemsPerPage(), 0)

	case "home", "g":
		rm.offset = 0

	case "end", "G":
		rm.offset = rm.maxOffset()
	}

	return rm, nil
}

func (rm runModel) itemsPerPage() int {
	// header (4) + footer (2)
	const chrome = 6

	if rm.height <= chrome {
		return 10
	}

	return rm.height - chrome
}

func (rm runModel) maxOffset() int {
	return max(len(rm.contentLines())-rm.itemsPerPage(), 0)
}

func (rm runModel) View() string {
	if rm.quitting {
		return ""
	}

	var b strings.Builder

	rm.renderHeader(&b)

	lines := rm.contentLines()
	end := min(rm.offset+rm.itemsPerPage(), len(lines))

	for _, line := range lines[min(rm.offset, end):end] {
		b.WriteString(line)
		b.WriteString("\n")
	}

	rm.renderFooter(&b, len(lines))

	return b.String()
}

func (rm runModel) renderHeader(b *strings.Builder) {
	b.WriteString("╔════════════════════════════════════════════════════════════════╗\n")
	b.WriteString("║                        Gest - Test Runner                      ║\n")
	b.WriteString("╚════════════════════════════════════════════════════════════════╝\n")

	if rm.running {
		fmt.Fprintf(b, "%s Running %d/%d test file(s)\n", rm.spinner.View(), len(rm.suites), rm.total)
		return
	}

	b.WriteString("\n")
}

func (rm runModel) contentLines() []string {
	var content strings.Builder

	if rm.mode == ModeList {
		for _, file := range rm.files {
			fmt.Fprintf(&content, "%s\n", file)
		}

		fmt.Fprintf(&content, "\n%d test file(s)\n", len(rm.files))
	}

	for _, suite := range rm.suites {
		content.WriteString(renderSuite(suite))
	}

	if len(rm.coverage) > 0 {
		content.WriteString("\n")
		content.WriteString(renderCoverageTable(rm.coverage))
	}

	if rm.summary != nil {
		content.WriteString("\n")
		content.WriteString(renderSummary(*rm.summary))
	}

	for _, message := range rm.errors {
		fmt.Fprintf(&content, "%s %s\n", failStyle.Render("error:"), message)
	}

	text := strings.TrimRight(content.String(), "\n")
	if text == "" {
		return nil
	}

	return strings.Split(text, "\n")
}

func (rm runModel) renderFooter(b *strings.Builder, totalLines int) {
	b.WriteString("\n")

	hint := "q: quit"
	if totalLines > rm.itemsPerPage() {
		hint = fmt.Sprintf("Lines %d-%d of %d  ↑/↓ j/k scroll  d/u page  g/G top/bottom  q: quit",
			rm.offset+1, min(rm.offset+rm.itemsPerPage(), totalLines), totalLines)
	}

	if rm.mode == ModeWatch {
		hint += "  (watching for changes)"
	}

	b.WriteString(dimStyle.Render(hint))
	b.WriteString("\n")
}
