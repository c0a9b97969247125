package coverage

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "gest.dev/pkg/gest/internal/model"
)

func TestRegistry_RegistrationIsIdempotent(t *testing.T) {
	registry := NewRegistry()

	registry.AddFunction("add", "sum.js", 1)
	registry.AddFunction("add", "sum.js", 1)
	registry.AddStatement("sum.js", 2)
	registry.AddStatement("sum.js", 2)
	registry.AddBranch("sum.js", 3)

	sites := registry.Sites("sum.js")
	require.Len(t, sites, 3)
	assert.Equal(t, m.SiteFunction, sites[0].Kind)
	assert.Equal(t, "add", sites[0].Label)
	assert.Equal(t, m.SiteStatement, sites[1].Kind)
	assert.Equal(t, m.SiteBranch, sites[2].Kind)
}

func TestRegistry_ReRegisteringKeepsHit(t *testing.T) {
	registry := NewRegistry()
	registry.AddStatement("a.js", 4)
	require.NoError(t, registry.StatementCalled("a.js", 4))

	registry.AddStatement("a.js", 4)

	sites := registry.Sites("a.js")
	require.Len(t, sites, 1)
	assert.True(t, sites[0].Hit)
}

func TestRegistry_CallbacksForUnknownSitesFail(t *testing.T) {
	registry := NewRegistry()
	registry.AddFunction("add", "sum.js", 1)

	tests := []struct {
		name string
		call func() error
		kind m.SiteKind
	}{
		{"function with other label", func() error { return registry.FunctionCalled("sub", "sum.js", 1) }, m.SiteFunction},
		{"statement", func() error { return registry.StatementCalled("sum.js", 9) }, m.SiteStatement},
		{"branch", func() error { return registry.BranchCalled("other.js", 1) }, m.SiteBranch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()

			var siteErr *UnregisteredSiteError
			require.ErrorAs(t, err, &siteErr)
			assert.Equal(t, tt.kind, siteErr.Key.Kind)
			assert.Contains(t, err.Error(), "never registered")
		})
	}
}

func TestRegistry_Report(t *testing.T) {
	registry := NewRegistry()
	registry.AddFunction("add", "b.js", 1)
	registry.AddStatement("b.js", 2)
	registry.AddStatement("b.js", 5)
	registry.AddStatement("b.js", 3)
	registry.AddBranch("b.js", 4)
	registry.AddStatement("a.js", 1)

	require.NoError(t, registry.FunctionCalled("add", "b.js", 1))
	require.NoError(t, registry.StatementCalled("b.js", 3))
	require.NoError(t, registry.StatementCalled("a.js", 1))

	report := registry.Report()
	require.Len(t, report, 2)

	assert.Equal(t, "a.js", report[0].Source)
	assert.Equal(t, m.Ratio{Hit: 1, Total: 1}, report[0].Statements)
	assert.Empty(t, report[0].UncoveredLines)
	assert.InDelta(t, 100.0, report[0].Branches.Percent(), 0.001)

	row := report[1]
	assert.Equal(t, "b.js", row.Source)
	assert.Equal(t, m.Ratio{Hit: 1, Total: 3}, row.Statements)
	assert.Equal(t, m.Ratio{Hit: 0, Total: 1}, row.Branches)
	assert.Equal(t, m.Ratio{Hit: 1, Total: 1}, row.Functions)
	assert.Equal(t, []int{2, 5}, row.UncoveredLines)
}

func TestRegistry_StatementHitLeavesUncoveredLines(t *testing.T) {
	registry := NewRegistry()
	registry.AddStatement("x.js", 7)
	require.Equal(t, []int{7}, registry.Report()[0].UncoveredLines)

	require.NoError(t, registry.StatementCalled("x.js", 7))
	assert.NotContains(t, registry.Report()[0].UncoveredLines, 7)
}

func TestRegistry_ConcurrentUse(t *testing.T) {
	registry := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)

		go func(line int) {
			defer wg.Done()
			registry.AddStatement("c.js", line%5+1)
			_ = registry.StatementCalled("c.js", line%5+1)
		}(i)
	}

	wg.Wait()

	report := registry.Report()
	require.Len(t, report, 1)
	assert.Equal(t, m.Ratio{Hit: 5, Total: 5}, report[0].Statements)
}
