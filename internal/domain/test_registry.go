package domain

import (
	"sync"

	"github.com/dop251/goja"

	m "gest.dev/pkg/gest/internal/model"
)

// Test is a test registered by a script through test(name, fn).
type Test struct {
	Name string
	Fn   goja.Callable
	File m.Path
}

// TestRegistry records registered tests, suite outcomes and the expectation
// results of the test currently running.
type TestRegistry struct {
	mu            sync.Mutex
	tests         []Test
	suites        map[m.Path]bool
	order         []m.Path
	testsPassed   int
	testsFailed   int
	expectResults []m.ExpectationResult
}

// NewTestRegistry constructs an empty TestRegistry.
func NewTestRegistry() *TestRegistry {
	return &TestRegistry{suites: make(map[m.Path]bool)}
}

// AddSuite registers a suite as passing. Adding an existing suite is a no-op.
func (r *TestRegistry) AddSuite(file m.Path) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.suites[file]; ok {
		return
	}

	r.suites[file] = true
	r.order = append(r.order, file)
}

// AddTest registers a test.
func (r *TestRegistry) AddTest(test Test) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tests = append(r.tests, test)
}

// Tests returns the tests registered for file in registration order.
func (r *TestRegistry) Tests(file m.Path) []Test {
	r.mu.Lock()
	defer r.mu.Unlock()

	var tests []Test

	for _, test := range r.tests {
		if test.File == file {
			tests = append(tests, test)
		}
	}

	return tests
}

// FailSuite marks a suite as failed.
func (r *TestRegistry) FailSuite(file m.Path) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.suites[file]; !ok {
		r.order = append(r.order, file)
	}

	r.suites[file] = false
}

// SuitePassed reports whether a registered suite is still passing.
func (r *TestRegistry) SuitePassed(file m.Path) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.suites[file]
}

// HasFailedSuites reports whether any suite failed.
func (r *TestRegistry) HasFailedSuites() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, passed := range r.suites {
		if !passed {
			return true
		}
	}

	return false
}

// RecordTest counts the outcome of a finished test.
func (r *TestRegistry) RecordTest(status m.TestStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if status == m.Passed {
		r.testsPassed++
	} else {
		r.testsFailed++
	}
}

// AddExpectResult appends the result of a matcher call.
func (r *TestRegistry) AddExpectResult(result m.ExpectationResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.expectResults = append(r.expectResults, result)
}

// ExpectResults returns a copy of the expectation results of the current test.
func (r *TestRegistry) ExpectResults() []m.ExpectationResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]m.ExpectationResult(nil), r.expectResults...)
}

// FirstFailure returns the first failed expectation of the current test.
func (r *TestRegistry) FirstFailure() (m.ExpectationResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, result := range r.expectResults {
		if !result.Passed {
			return result, true
		}
	}

	return m.ExpectationResult{}, false
}

// ClearExpectResults drops the expectation results of the current test.
func (r *TestRegistry) ClearExpectResults() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.expectResults = nil
}

// Summary returns the suite and test counts recorded so far.
func (r *TestRegistry) Summary() m.RunSummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	summary := m.RunSummary{TestsPassed: r.testsPassed, TestsFailed: r.testsFailed}

	for _, file := range r.order {
		if r.suites[file] {
			summary.SuitesPassed++
		} else {
			summary.SuitesFailed++
		}
	}

	return summary
}
