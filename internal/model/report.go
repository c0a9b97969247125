package model

import "time"

// TestStatus represents the outcome of a single test.
type TestStatus int

const (
	// Passed indicates every expectation of the test held.
	Passed TestStatus = iota
	// Failed indicates an expectation failed or the test raised an error.
	Failed
)

func (s TestStatus) String() string {
	switch s {
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalYAML stores the status by name.
func (s TestStatus) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// UnmarshalYAML restores a status stored by name.
func (s *TestStatus) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}

	if name == Failed.String() {
		*s = Failed
	} else {
		*s = Passed
	}

	return nil
}

// ExpectationResult is the outcome of one matcher call.
type ExpectationResult struct {
	Passed  bool
	Message string
}

// Pass returns a passing ExpectationResult.
func Pass() ExpectationResult {
	return ExpectationResult{Passed: true}
}

// Fail returns a failing ExpectationResult carrying message.
func Fail(message string) ExpectationResult {
	return ExpectationResult{Message: message}
}

// TestResult holds the outcome of a single test.
type TestResult struct {
	Name     string        `yaml:"name"`
	Status   TestStatus    `yaml:"status"`
	Reason   string        `yaml:"reason,omitempty"`
	Duration time.Duration `yaml:"duration"`
}

// SuiteResult holds the outcome of every test in one test file.
type SuiteResult struct {
	File     Path          `yaml:"file"`
	Passed   bool          `yaml:"passed"`
	Tests    []TestResult  `yaml:"tests"`
	Error    string        `yaml:"error,omitempty"`
	Duration time.Duration `yaml:"duration"`
}

// RunSummary aggregates suite and test counts of a run.
type RunSummary struct {
	SuitesPassed int           `yaml:"suites_passed"`
	SuitesFailed int           `yaml:"suites_failed"`
	TestsPassed  int           `yaml:"tests_passed"`
	TestsFailed  int           `yaml:"tests_failed"`
	Elapsed      time.Duration `yaml:"elapsed"`
}

// Failed reports whether any suite failed.
func (s RunSummary) Failed() bool {
	return s.SuitesFailed > 0
}

// SuitesTotal returns the number of suites run.
func (s RunSummary) SuitesTotal() int {
	return s.SuitesPassed + s.SuitesFailed
}

// TestsTotal returns the number of tests run.
func (s RunSummary) TestsTotal() int {
	return s.TestsPassed + s.TestsFailed
}

// RunReport is the persisted result of a complete run.
type RunReport struct {
	Suites     []SuiteResult  `yaml:"suites"`
	Coverage   []FileCoverage `yaml:"coverage,omitempty"`
	Summary    RunSummary     `yaml:"summary"`
	FinishedAt time.Time      `yaml:"finished_at"`
}
