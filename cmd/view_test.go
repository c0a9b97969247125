package cmd

import (
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gest.dev/pkg/gest/internal/domain"
	m "gest.dev/pkg/gest/internal/model"
)

func TestViewCmd_UsesRootOutputFlagByDefault(t *testing.T) {
	mockWorkflow := useMockWorkflow(t)

	cmd := newTestRootCmd(t, "view")
	cmd.AddCommand(newViewCmd())

	mockWorkflow.On("View", mock.Anything, mock.MatchedBy(func(args domain.ViewArgs) bool {
		return args.Reports == m.Path(".gest-reports")
	})).Return(nil)

	require.NoError(t, cmd.Execute())
}

func TestViewCmd_RootOutputFlagIsPassedThrough(t *testing.T) {
	mockWorkflow := useMockWorkflow(t)

	cmd := newTestRootCmd(t, "view", "--output", "./reports-dir")
	cmd.AddCommand(newViewCmd())

	mockWorkflow.On("View", mock.Anything, mock.MatchedBy(func(args domain.ViewArgs) bool {
		return args.Reports == m.Path("./reports-dir")
	})).Return(nil)

	require.NoError(t, cmd.Execute())
}

func TestViewCmd_PositionalArgsAreRejected(t *testing.T) {
	useMockWorkflow(t)

	cmd := newTestRootCmd(t, "view", "./custom-reports")
	cmd.AddCommand(newViewCmd())

	require.Error(t, cmd.Execute())
}
