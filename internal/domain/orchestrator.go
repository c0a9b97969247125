package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dop251/goja"

	"gest.dev/pkg/gest/internal/adapter"
	m "gest.dev/pkg/gest/internal/model"
)

const outputTypeHint = "Make sure your test ends with an expect function."

// Orchestrator runs test files one at a time against a shared engine and
// reports per-suite results, the run summary and coverage.
type Orchestrator interface {
	RunSuite(ctx context.Context, file m.Path) m.SuiteResult
	Summary() m.RunSummary
	Coverage() []m.FileCoverage
}

// OrchestratorFactory builds an Orchestrator with fresh services for a run.
type OrchestratorFactory func(config m.Config) Orchestrator

type orchestrator struct {
	engine *Engine
}

// NewOrchestrator constructs an Orchestrator backed by a new engine for config.
func NewOrchestrator(fsAdapter adapter.SourceFSAdapter, config m.Config) Orchestrator {
	return &orchestrator{engine: NewEngine(config, fsAdapter)}
}

// NewOrchestratorFactory returns a factory that wires every orchestrator to fsAdapter.
func NewOrchestratorFactory(fsAdapter adapter.SourceFSAdapter) OrchestratorFactory {
	return func(config m.Config) Orchestrator {
		return NewOrchestrator(fsAdapter, config)
	}
}

func (o *orchestrator) RunSuite(ctx context.Context, file m.Path) (result m.SuiteResult) {
	o.engine.mu.Lock()
	defer o.engine.mu.Unlock()
	defer o.resetTestScope()

	start := time.Now()
	tests := o.engine.tests
	tests.AddSuite(file)

	result = m.SuiteResult{File: file}
	defer func() {
		result.Passed = tests.SuitePassed(file)
		result.Duration = time.Since(start)
	}()

	if err := ctx.Err(); err != nil {
		o.failSuite(&result, "Eval Error:", err, "")
		return result
	}

	s := o.engine.newSession(ctx, file)

	compiled, content, err := o.engine.resolver.CompileScript(ctx, file)
	if err != nil {
		slog.Error("Failed to compile test file", "file", file, "error", err)
		o.failSuite(&result, "Compilation Error:", err, content)

		return result
	}

	if _, err := s.rt.RunProgram(compiled.Program); err != nil && !isScriptExit(err) {
		slog.Error("Failed to evaluate test file", "file", file, "error", err)
		o.failSuite(&result, "Eval Error:", err, content)

		return result
	}

	s.rt.ClearInterrupt()

	for _, test := range tests.Tests(file) {
		if ctx.Err() != nil {
			break
		}

		result.Tests = append(result.Tests, o.runTest(s, test))
	}

	return result
}

func (o *orchestrator) runTest(s *session, test Test) m.TestResult {
	start := time.Now()
	tests := o.engine.tests

	o.resetTestScope()

	defer func() {
		o.resetTestScope()
		s.rt.ClearInterrupt()
	}()

	value, err := s.run(test.Fn, o.engine.config.TestTimeout)
	if err == nil && value != nil && !goja.IsUndefined(value) {
		err = &OutputTypeError{Got: describeValue(value)}
	}

	result := m.TestResult{Name: test.Name, Status: m.Passed}

	switch {
	case err != nil && !isScriptExit(err):
		result.Status = m.Failed
		result.Reason = o.testErrorReason(test, err)
	default:
		if failure, failed := tests.FirstFailure(); failed {
			result.Status = m.Failed
			result.Reason = failure.Message
		}
	}

	result.Duration = time.Since(start)
	tests.RecordTest(result.Status)

	if result.Status == m.Failed {
		tests.FailSuite(test.File)
		slog.Debug("Test failed", "file", test.File, "test", test.Name, "reason", result.Reason)
	}

	return result
}

// resetTestScope drops the expectation results and logs recorded so far.
// Anything recorded outside a test body never reaches a test.
func (o *orchestrator) resetTestScope() {
	o.engine.logs.Reset()
	o.engine.tests.ClearExpectResults()
}

func (o *orchestrator) testErrorReason(test Test, err error) string {
	wrapped := &FunctionCallError{Name: test.Name, Source: string(test.File), Err: err}
	reason := FormatStackTrace("Error running test:", StackTrace(wrapped, string(test.File)))

	var outputErr *OutputTypeError
	if errors.As(err, &outputErr) {
		reason += "\n" + outputTypeHint
	}

	return reason
}

func (o *orchestrator) failSuite(result *m.SuiteResult, header string, err error, content string) {
	o.engine.tests.FailSuite(result.File)

	frames := StackTrace(err, string(result.File))
	result.Error = FormatStackTrace(header, frames)

	if len(frames) == 0 {
		return
	}

	leaf := frames[len(frames)-1]
	if leaf.Source == string(result.File) {
		if snippet := SourceSnippet(content, leaf.Position); snippet != "" {
			result.Error += "\n\n" + snippet
		}
	}
}

func (o *orchestrator) Summary() m.RunSummary {
	return o.engine.tests.Summary()
}

func (o *orchestrator) Coverage() []m.FileCoverage {
	if !o.engine.config.Coverage {
		return nil
	}

	return o.engine.coverage.Report()
}

func isScriptExit(err error) bool {
	var interrupted *goja.InterruptedError
	if !errors.As(err, &interrupted) {
		return false
	}

	cause, _ := interrupted.Value().(error)

	return errors.Is(cause, ErrScriptExit)
}

func describeValue(value goja.Value) string {
	if obj, ok := value.(*goja.Object); ok {
		return fmt.Sprintf("a %s", obj.ClassName())
	}

	return fmt.Sprintf("%s %s", valueFromScript(value, nil).Kind(), value.String())
}
