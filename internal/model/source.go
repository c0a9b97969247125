// Package model defines the data structures shared by the test runner.
package model

import "time"

// Path represents a file system path.
type Path string

// Config is the run configuration loaded from the JSON config file.
type Config struct {
	// TestMatch holds the glob patterns used to discover test files.
	TestMatch []string
	// BasePath is the directory relative imports are resolved against.
	BasePath Path
	// Coverage enables line instrumentation and the coverage report.
	Coverage bool
	// TestTimeout interrupts a single test after the given duration. Zero disables it.
	TestTimeout time.Duration
	// Reports is the directory the last run report is persisted to.
	Reports Path
}
