package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"gest.dev/pkg/gest/internal/adapter"
	"gest.dev/pkg/gest/internal/controller"
	m "gest.dev/pkg/gest/internal/model"
)

// RunArgs contains the arguments for running test files.
type RunArgs struct {
	Config m.Config
}

// ListArgs contains the arguments for listing test files.
type ListArgs struct {
	Config m.Config
}

// ViewArgs contains the arguments for displaying a stored report.
type ViewArgs struct {
	Reports m.Path
}

// Workflow defines the gest use cases driven by the CLI.
type Workflow interface {
	Run(ctx context.Context, args RunArgs) (m.RunSummary, error)
	Watch(ctx context.Context, args RunArgs) error
	List(ctx context.Context, args ListArgs) error
	View(ctx context.Context, args ViewArgs) error
}

type workflow struct {
	adapter.ReportStore
	adapter.SourceFSAdapter
	controller.UI
	watcher      adapter.Watcher
	orchestrator OrchestratorFactory
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	reportStore adapter.ReportStore,
	watcher adapter.Watcher,
	ui controller.UI,
	orchestrator OrchestratorFactory,
) Workflow {
	return &workflow{
		SourceFSAdapter: fsAdapter,
		ReportStore:     reportStore,
		UI:              ui,
		watcher:         watcher,
		orchestrator:    orchestrator,
	}
}

// Run discovers the test files, runs them once and stores the report.
func (w *workflow) Run(ctx context.Context, args RunArgs) (m.RunSummary, error) {
	if err := w.Start(ctx, controller.WithRunMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return m.RunSummary{}, err
	}

	report, err := w.runOnce(ctx, args.Config)
	if err != nil {
		w.DisplayError(ctx, err)
		w.Close(ctx)

		return m.RunSummary{}, err
	}

	w.Close(ctx)
	w.Wait(ctx)

	return report.Summary, nil
}

// Watch runs the test files, then re-runs them with fresh services whenever a
// script changes, until ctx is done or the UI is closed.
func (w *workflow) Watch(ctx context.Context, args RunArgs) error {
	if err := w.Start(ctx, controller.WithWatchMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	changes, watchErrs, err := w.watcher.Watch(ctx, watchRoots(args.Config))
	if err != nil {
		w.Close(ctx)
		return fmt.Errorf("watch: %w", err)
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		w.Wait(groupCtx)
		cancel()

		return nil
	})

	group.Go(func() error {
		w.runAndReport(groupCtx, args.Config)

		for {
			select {
			case <-groupCtx.Done():
				return nil
			case _, ok := <-changes:
				if !ok {
					return nil
				}

				slog.Info("Change detected, re-running tests")
				w.runAndReport(groupCtx, args.Config)
			case err, ok := <-watchErrs:
				if !ok {
					return nil
				}

				slog.Error("Watcher error", "error", err)
				w.DisplayError(groupCtx, err)
			}
		}
	})

	err = group.Wait()
	w.Close(context.WithoutCancel(ctx))

	return err
}

func (w *workflow) runAndReport(ctx context.Context, config m.Config) {
	if _, err := w.runOnce(ctx, config); err != nil && !errors.Is(err, context.Canceled) {
		w.DisplayError(ctx, err)
	}
}

// List prints the test files the configuration selects.
func (w *workflow) List(ctx context.Context, args ListArgs) error {
	if err := w.Start(ctx, controller.WithListMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}

	files, err := w.Glob(ctx, "", args.Config.TestMatch)
	if err != nil {
		w.Close(ctx)
		return fmt.Errorf("discover test files: %w", err)
	}

	w.DisplayTestFiles(ctx, files)
	w.Close(ctx)
	w.Wait(ctx)

	return nil
}

// View displays the report stored by the last run.
func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	report, err := w.LoadReport(args.Reports)
	if err != nil {
		return fmt.Errorf("load report: %w", err)
	}

	if err := w.Start(ctx, controller.WithViewMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}

	for _, suite := range report.Suites {
		w.DisplaySuiteResult(ctx, suite)
	}

	w.DisplayCoverage(ctx, report.Coverage)
	w.DisplaySummary(ctx, report.Summary)
	w.Close(ctx)
	w.Wait(ctx)

	return nil
}

func (w *workflow) runOnce(ctx context.Context, config m.Config) (m.RunReport, error) {
	start := time.Now()

	files, err := w.Glob(ctx, "", config.TestMatch)
	if err != nil {
		return m.RunReport{}, fmt.Errorf("discover test files: %w", err)
	}

	slog.Info("Running test files", "count", len(files))
	w.DisplayRunStart(ctx, files)

	orchestrator := w.orchestrator(config)
	report := m.RunReport{Suites: make([]m.SuiteResult, 0, len(files))}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		result := orchestrator.RunSuite(ctx, file)
		report.Suites = append(report.Suites, result)
		w.DisplaySuiteResult(ctx, result)
	}

	report.Coverage = orchestrator.Coverage()
	w.DisplayCoverage(ctx, report.Coverage)

	report.Summary = orchestrator.Summary()
	report.Summary.Elapsed = time.Since(start)
	report.FinishedAt = time.Now()
	w.DisplaySummary(ctx, report.Summary)

	w.saveReport(config, report)

	return report, nil
}

func (w *workflow) saveReport(config m.Config, report m.RunReport) {
	if config.Reports == "" {
		return
	}

	if err := w.SaveReport(config.Reports, report); err != nil {
		slog.Error("Failed to save report", "path", config.Reports, "error", err)
	}
}

// watchRoots returns the static directories of every test pattern plus the
// module base path.
func watchRoots(config m.Config) []m.Path {
	seen := make(map[string]struct{})
	roots := make([]m.Path, 0, len(config.TestMatch)+1)

	add := func(dir string) {
		dir = filepath.Clean(dir)
		if _, ok := seen[dir]; ok {
			return
		}

		seen[dir] = struct{}{}
		roots = append(roots, m.Path(dir))
	}

	for _, pattern := range config.TestMatch {
		base, _ := doublestar.SplitPattern(filepath.ToSlash(pattern))
		add(filepath.FromSlash(base))
	}

	base := string(config.BasePath)
	if base == "" {
		base = "."
	}

	add(base)

	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })

	return roots
}
