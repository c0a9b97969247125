package controller

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	m "gest.dev/pkg/gest/internal/model"
)

// SimpleUI implements UI by printing to the command's output.
type SimpleUI struct {
	cmd  *cobra.Command
	mode StartMode
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mode = newStartConfig(options).mode

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// Wait returns immediately, except in watch mode where it blocks until ctx is done.
func (s *SimpleUI) Wait(ctx context.Context) {
	if s.mode != ModeWatch {
		return
	}

	<-ctx.Done()
}

// DisplayRunStart announces the files about to run.
func (s *SimpleUI) DisplayRunStart(ctx context.Context, files []m.Path) {
	if ctx.Err() != nil {
		return
	}

	if s.mode == ModeWatch {
		s.printf("\n%s\n", dimStyle.Render(fmt.Sprintf("Running %d test file(s)...", len(files))))
	}
}

// DisplaySuiteResult prints the outcome of one test file.
func (s *SimpleUI) DisplaySuiteResult(ctx context.Context, result m.SuiteResult) {
	if ctx.Err() != nil {
		return
	}

	s.printf("%s", renderSuite(result))
}

// DisplayCoverage prints the coverage table. Nothing is printed without rows.
func (s *SimpleUI) DisplayCoverage(ctx context.Context, coverage []m.FileCoverage) {
	if ctx.Err() != nil || len(coverage) == 0 {
		return
	}

	s.printf("\n%s", renderCoverageTable(coverage))
}

// DisplaySummary prints the run totals.
func (s *SimpleUI) DisplaySummary(ctx context.Context, summary m.RunSummary) {
	if ctx.Err() != nil {
		return
	}

	s.printf("\n%s", renderSummary(summary))

	if s.mode == ModeWatch {
		s.printf("%s\n", dimStyle.Render("Watching for changes. Press Ctrl+C to exit."))
	}
}

// DisplayTestFiles lists the discovered test files.
func (s *SimpleUI) DisplayTestFiles(ctx context.Context, files []m.Path) {
	if ctx.Err() != nil {
		return
	}

	if len(files) == 0 {
		s.printf("No test files found\n")
		return
	}

	for _, file := range files {
		s.printf("%s\n", file)
	}

	s.printf("\n%d test file(s)\n", len(files))
}

// DisplayError prints err.
func (s *SimpleUI) DisplayError(ctx context.Context, err error) {
	if ctx.Err() != nil || err == nil {
		return
	}

	s.printf("%s %v\n", failStyle.Render("error:"), err)
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
