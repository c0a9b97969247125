package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// initCmd represents the init command.
var initCmd = newInitCmd()

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate a default gest.config.json configuration file",
		Long: `Create the run configuration file (gest.config.json unless --config is
given) populated with the default test globs so it can be edited manually.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := writeDefaultRunConfig(configPathFlag); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}

			cmd.Printf("Created %s\n", configPathFlag)

			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
}
