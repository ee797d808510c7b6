package check

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/shinji-kodama/sqlfluff-check/internal/config"
	"github.com/shinji-kodama/sqlfluff-check/internal/lint"
	"github.com/shinji-kodama/sqlfluff-check/internal/model"
)

// User-facing precondition messages.
const (
	msgNoSQLFiles = "No SQL files to check."
	msgNoAction   = "No action requested, please use --parse and/or --format."
	msgNoFiles    = "requires at least 1 file argument"
)

// Pipeline sequences the stages and maps their outcome to an exit code.
type Pipeline struct {
	// ConfigPath is the sqlfluff configuration file whose presence gates
	// the run and which supplies the large-file limit.
	ConfigPath string

	FS       afero.Fs
	Linter   lint.Linter
	Reporter Reporter
	Logger   *zap.Logger
}

// Run executes one invocation.
//
// The returned exit code covers every designed outcome, including failed
// checks. An error is returned for a usage error (no file arguments at all)
// and for unexpected failures such as a linter that cannot be started; the
// reporter is not finished in either case.
func (p *Pipeline) Run(ctx context.Context, inv model.Invocation) (model.ExitCode, error) {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	code, err := p.run(ctx, inv, logger)
	if err != nil {
		return model.ExitGeneralError, err
	}

	if err := p.Reporter.Finish(code); err != nil {
		return model.ExitGeneralError, err
	}
	return code, nil
}

func (p *Pipeline) run(ctx context.Context, inv model.Invocation, logger *zap.Logger) (model.ExitCode, error) {
	if !config.Exists(p.FS, p.ConfigPath) {
		p.Reporter.Notice(fmt.Sprintf(
			"A %s configuration file is required for this script in this directory.",
			filepath.Base(p.ConfigPath)))
		return model.ExitGeneralError, nil
	}

	// Argument validation comes after the config gate.
	if len(inv.Files) == 0 {
		return model.ExitGeneralError, model.NewCLIError(model.ExitGeneralError, msgNoFiles)
	}

	files := SelectSQLFiles(inv.Files)
	if len(files) == 0 {
		p.Reporter.Notice(msgNoSQLFiles)
		return model.ExitSuccess, nil
	}

	if !inv.HasAction() {
		p.Reporter.Notice(msgNoAction)
		return model.ExitGeneralError, nil
	}

	logger.Debug("Selected SQL files",
		zap.Strings("files", files),
		zap.Int("ignored", len(inv.Files)-len(files)))

	limit := config.ResolveLargeFileLimit(p.FS, p.ConfigPath, logger)
	report, err := CheckSizes(p.FS, files, limit)
	if err != nil {
		return model.ExitGeneralError, err
	}
	if !p.passed(report, logger) {
		return model.ExitGeneralError, nil
	}

	runner := NewRunner(p.FS, p.Linter, logger)
	for _, step := range []struct {
		enabled bool
		mode    lint.Mode
	}{
		{inv.Parse, lint.ModeParse},
		{inv.Format, lint.ModeFormat},
	} {
		if !step.enabled {
			continue
		}

		report, err := runner.RunStage(ctx, step.mode, files)
		if err != nil {
			return model.ExitGeneralError, err
		}
		if !p.passed(report, logger) {
			return model.ExitGeneralError, nil
		}
	}

	return model.ExitSuccess, nil
}

// passed hands a failing report to the reporter and reports whether the
// stage succeeded.
func (p *Pipeline) passed(report *model.StageReport, logger *zap.Logger) bool {
	if report.Passed() {
		logger.Debug("Stage passed", zap.String("stage", report.Stage.String()))
		return true
	}

	logger.Debug("Stage failed",
		zap.String("stage", report.Stage.String()),
		zap.Int("failures", len(report.Errors())))
	p.Reporter.StageFailed(report)
	return false
}
