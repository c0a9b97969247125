package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "gest.dev/pkg/gest/internal/model"
)

func TestTestRegistry_Suites(t *testing.T) {
	registry := NewTestRegistry()

	registry.AddSuite("a.test.js")
	registry.AddSuite("b.test.js")
	registry.FailSuite("b.test.js")
	registry.AddSuite("b.test.js")
	registry.FailSuite("c.test.js")

	assert.True(t, registry.SuitePassed("a.test.js"))
	assert.False(t, registry.SuitePassed("b.test.js"))
	assert.False(t, registry.SuitePassed("c.test.js"))
	assert.False(t, registry.SuitePassed("unknown.test.js"))
	assert.True(t, registry.HasFailedSuites())

	summary := registry.Summary()
	assert.Equal(t, 1, summary.SuitesPassed)
	assert.Equal(t, 2, summary.SuitesFailed)
	assert.Equal(t, 3, summary.SuitesTotal())
}

func TestTestRegistry_TestsByFile(t *testing.T) {
	registry := NewTestRegistry()
	registry.AddTest(Test{Name: "one", File: "a.test.js"})
	registry.AddTest(Test{Name: "other", File: "b.test.js"})
	registry.AddTest(Test{Name: "two", File: "a.test.js"})

	tests := registry.Tests("a.test.js")
	require.Len(t, tests, 2)
	assert.Equal(t, "one", tests[0].Name)
	assert.Equal(t, "two", tests[1].Name)
	assert.Empty(t, registry.Tests("missing.test.js"))
}

func TestTestRegistry_ExpectResults(t *testing.T) {
	registry := NewTestRegistry()

	_, failed := registry.FirstFailure()
	assert.False(t, failed)

	registry.AddExpectResult(m.Pass())
	registry.AddExpectResult(m.Fail("first"))
	registry.AddExpectResult(m.Fail("second"))

	failure, failed := registry.FirstFailure()
	require.True(t, failed)
	assert.Equal(t, "first", failure.Message)
	assert.Len(t, registry.ExpectResults(), 3)

	registry.ClearExpectResults()
	assert.Empty(t, registry.ExpectResults())

	_, failed = registry.FirstFailure()
	assert.False(t, failed)
}

func TestTestRegistry_RecordTest(t *testing.T) {
	registry := NewTestRegistry()
	registry.RecordTest(m.Passed)
	registry.RecordTest(m.Passed)
	registry.RecordTest(m.Failed)

	summary := registry.Summary()
	assert.Equal(t, 2, summary.TestsPassed)
	assert.Equal(t, 1, summary.TestsFailed)
	assert.Equal(t, 3, summary.TestsTotal())
	assert.False(t, registry.HasFailedSuites())
}
