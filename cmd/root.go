// Package cmd provides the root command and CLI setup for gest.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"gest.dev/pkg/gest/internal/adapter"
	"gest.dev/pkg/gest/internal/controller"
	"gest.dev/pkg/gest/internal/domain"
	m "gest.dev/pkg/gest/internal/model"
)

// Process exit codes.
const (
	exitTestsFailed = 1
	exitConfigError = 99
)

var fsAdapter adapter.SourceFSAdapter
var reportStore adapter.ReportStore
var watcher adapter.Watcher
var orchestrators domain.OrchestratorFactory
var workflow domain.Workflow
var ui controller.UI

var configPathFlag string
var watchFlag bool
var coverageFlag bool
var interactiveFlag bool
var reportsOutputDirFlag string
var verboseFlag bool

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	ui = controller.NewSimpleUI(rootCmd)
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	reportStore = adapter.NewReportStore()
	watcher = adapter.NewFSWatcher(fsAdapter, 0)
	orchestrators = domain.NewOrchestratorFactory(fsAdapter)
	workflow = newWorkflow(ui)
}

func newWorkflow(ui controller.UI) domain.Workflow {
	return domain.NewWorkflow(fsAdapter, reportStore, watcher, ui, orchestrators)
}

const rootLongDescription = `Gest runs JavaScript test files inside an embedded interpreter.

Test files are selected by the testMatch globs of gest.config.json and may
register tests with test(name, fn), group them with describe(name, fn) and
assert with expect(value). Modules are loaded with require(path) relative
to basePath. Line coverage is collected when coverage is enabled.`

// exitError carries a process exit code through cobra.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}

	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gest",
		Short: "JavaScript test runner",
		Long:  rootLongDescription,
		Args:  cobra.NoArgs,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
		},
		RunE: runTests,
	}
}

func runTests(cmd *cobra.Command, _ []string) error {
	config, err := loadCommandConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	wf := workflow
	if interactiveFlag && controller.IsTTY(os.Stdout) {
		wf = newWorkflow(controller.NewUI(cmd, true))
	}

	args := domain.RunArgs{Config: config}

	if watchFlag {
		return wf.Watch(ctx, args)
	}

	summary, err := wf.Run(ctx, args)
	if err != nil {
		return err
	}

	if summary.Failed() {
		cmd.SilenceErrors = true
		return &exitError{code: exitTestsFailed}
	}

	return nil
}

// loadCommandConfig reads the run configuration and applies flag overrides.
// Flags are parsed by now, so later errors do not print usage.
func loadCommandConfig(cmd *cobra.Command) (m.Config, error) {
	cmd.SilenceUsage = true

	config, err := loadRunConfig(configPathFlag)
	if err != nil {
		return m.Config{}, &exitError{code: exitConfigError, err: err}
	}

	if coverageFlag {
		config.Coverage = true
	}

	if flag := cmd.Flag(outputFlagName); flag != nil && flag.Changed {
		config.Reports = m.Path(viper.GetString(outputFlagName))
	}

	return config, nil
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configPathFlag, configFlagName, "c", runConfigFileName, "path to the run configuration file")

	cmd.PersistentFlags().
		StringVarP(
			&reportsOutputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for run reports",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)

	cmd.Flags().BoolVarP(&watchFlag, watchFlagName, "w", false, "re-run tests when script files change")
	cmd.Flags().BoolVar(&coverageFlag, coverageFlagName, false, "collect and print line coverage")
	cmd.Flags().BoolVarP(&interactiveFlag, interactiveFlagName, "i", false, "use the interactive terminal UI")
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}

	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}

	return 1
}
