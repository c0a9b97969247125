package adapter

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "gest.dev/pkg/gest/internal/model"
)

func TestYAMLReportStore_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports", "nested")
	store := NewReportStore()

	report := m.RunReport{
		Suites: []m.SuiteResult{
			{
				File:   "math.test.js",
				Passed: false,
				Tests: []m.TestResult{
					{Name: "adds", Status: m.Passed, Duration: 2 * time.Millisecond},
					{Name: "bad", Status: m.Failed, Reason: "Type mismatch: expected value to be string \"1\" but instead got integer 1"},
				},
				Duration: 5 * time.Millisecond,
			},
		},
		Coverage: []m.FileCoverage{
			{Source: "lib.js", Statements: m.Ratio{Hit: 1, Total: 2}, UncoveredLines: []int{4}},
		},
		Summary:    m.RunSummary{SuitesFailed: 1, TestsPassed: 1, TestsFailed: 1, Elapsed: time.Second},
		FinishedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	require.NoError(t, store.SaveReport(m.Path(dir), report))
	assert.FileExists(t, filepath.Join(dir, LastRunFileName))

	loaded, err := store.LoadReport(m.Path(dir))
	require.NoError(t, err)
	assert.True(t, report.FinishedAt.Equal(loaded.FinishedAt))

	loaded.FinishedAt = report.FinishedAt
	assert.Equal(t, report, loaded)
}

func TestYAMLReportStore_StatusIsStoredByName(t *testing.T) {
	dir := t.TempDir()
	store := NewReportStore()

	require.NoError(t, store.SaveReport(m.Path(dir), m.RunReport{
		Suites: []m.SuiteResult{{File: "a.test.js", Tests: []m.TestResult{{Name: "t", Status: m.Failed}}}},
	}))

	data, err := os.ReadFile(filepath.Join(dir, LastRunFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "status: failed")
}

func TestYAMLReportStore_LoadErrors(t *testing.T) {
	store := NewReportStore()

	_, err := store.LoadReport(m.Path(t.TempDir()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoReport))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, LastRunFileName), []byte("suites: [\n"), 0o600))

	_, err = store.LoadReport(m.Path(dir))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode report")
}

func TestYAMLReportStore_SaveError(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	err := NewReportStore().SaveReport(m.Path(file), m.RunReport{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create reports directory")
}
