package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"gest.dev/pkg/gest/internal/domain"
)

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the test files selected by the configuration",
		Long:  "List the test files matched by the testMatch globs of the run configuration.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			config, err := loadCommandConfig(cmd)
			if err != nil {
				return err
			}

			return workflow.List(context.Background(), domain.ListArgs{Config: config})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(listCmd)
}
