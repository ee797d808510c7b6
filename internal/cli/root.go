// Package cli implements the cobra-based command line for sqlfluff-check.
//
// The tool has a single root command that takes SQL files as positional
// arguments. This file defines that command, binds its flags into viper
// and translates pipeline outcomes into process exit codes.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/shinji-kodama/sqlfluff-check/internal/check"
	"github.com/shinji-kodama/sqlfluff-check/internal/logging"
	"github.com/shinji-kodama/sqlfluff-check/internal/model"
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// checkFlags holds the flags that are not routed through viper. The two
// actions are per-invocation choices, never environment defaults.
type checkFlags struct {
	parse  bool
	format bool
}

// NewRootCommand creates the root cobra command backed by the real
// filesystem abstraction fs and the sqlfluff linter chosen by settings.
func NewRootCommand(v *viper.Viper, fs afero.Fs) *cobra.Command {
	return newRootCommand(v, fs, newLinter)
}

// newRootCommand lets tests substitute the linter factory.
func newRootCommand(v *viper.Viper, fs afero.Fs, factory linterFactory) *cobra.Command {
	flags := &checkFlags{}

	rootCmd := &cobra.Command{
		Use:   "sqlfluff-check [flags] FILE...",
		Short: "Check SQL files with sqlfluff for parsing and/or formatting",
		Long: `sqlfluff-check is a pre-commit hook that runs sqlfluff on the given files.

Only arguments ending in .sql are checked. A sqlfluff configuration file
(.sqlfluff by default) must exist; its [sqlfluff] large_file_skip_byte_limit
rejects oversized files before sqlfluff runs (default 20000 bytes, 0 disables).

With --format, files that are not formatted correctly are rewritten in place
and the run fails, so the fixed files can be reviewed and staged.

Examples:
  sqlfluff-check --parse queries/*.sql
  sqlfluff-check --parse --format models/a.sql models/b.sql
  sqlfluff-check --format --docker-image sqlfluff/sqlfluff:3.2.5 a.sql`,

		// File count is checked by the pipeline, behind the config gate.
		Args: cobra.ArbitraryArgs,

		// Errors and usage are printed by Execute, once.
		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		RunE: func(cmd *cobra.Command, args []string) error {
			inv := model.Invocation{Files: args, Parse: flags.parse, Format: flags.format}
			return runCheck(cmd.Context(), cmd, v, fs, factory, inv)
		},
	}

	rootCmd.Flags().BoolVar(&flags.parse, "parse", false, "Check SQL parsing using sqlfluff parse")
	rootCmd.Flags().BoolVar(&flags.format, "format", false,
		"Check SQL formatting using sqlfluff format; if not formatted, the file is updated and exit code is 1")

	bindSettings(v, rootCmd.Flags())

	return rootCmd
}

// runCheck wires settings, logger, linter and reporter into a pipeline
// and runs it.
func runCheck(ctx context.Context, cmd *cobra.Command, v *viper.Viper, fs afero.Fs,
	factory linterFactory, inv model.Invocation) error {
	s := loadSettings(v)

	logger := logging.New(s.Verbose, zapcore.AddSync(cmd.ErrOrStderr()))
	defer func() { _ = logger.Sync() }()

	logger.Debug("Starting sqlfluff-check",
		zap.String("version", Version),
		zap.String("config", s.ConfigPath),
		zap.Bool("parse", inv.Parse),
		zap.Bool("format", inv.Format))

	linter := newLazyLinter(func() (closableLinter, error) {
		return factory(ctx, s, logger)
	})
	defer func() {
		if err := linter.Close(); err != nil {
			logger.Warn("Failed to release linter", zap.Error(err))
		}
	}()

	var reporter check.Reporter = check.NewTextReporter(cmd.OutOrStdout())
	if s.JSON {
		reporter = check.NewJSONReporter(cmd.OutOrStdout())
	}

	pipeline := &check.Pipeline{
		ConfigPath: s.ConfigPath,
		FS:         fs,
		Linter:     linter,
		Reporter:   reporter,
		Logger:     logger,
	}

	code, err := pipeline.Run(ctx, inv)
	if err != nil {
		var cliErr *model.CLIError
		if errors.As(err, &cliErr) {
			return err
		}
		return model.WrapCLIError(model.ExitGeneralError, "sqlfluff could not be run", err)
	}
	if code != model.ExitSuccess {
		return model.NewExitError(code, "checks failed")
	}
	return nil
}

// Execute runs the root command and exits the process with the resulting
// code. This is the main entry point called from main.go.
func Execute(ctx context.Context, rootCmd *cobra.Command) {
	err := rootCmd.ExecuteContext(ctx)
	os.Exit(int(handleError(err, os.Stderr)))
}

// handleError maps a command error to an exit code, printing it to w
// unless its message was already reported on stdout.
func handleError(err error, w io.Writer) model.ExitCode {
	if err == nil {
		return model.ExitSuccess
	}

	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		if !cliErr.Silent {
			fmt.Fprintf(w, "Error: %s\n", cliErr.Error())
		}
		return cliErr.Code
	}

	fmt.Fprintf(w, "Error: %s\n", err)
	return model.ExitGeneralError
}
