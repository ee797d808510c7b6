package check

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/shinji-kodama/sqlfluff-check/internal/lint"
	"github.com/shinji-kodama/sqlfluff-check/internal/model"
)

// Runner drives the external linter over a file set, one file at a time.
type Runner struct {
	fs     afero.Fs
	linter lint.Linter
	logger *zap.Logger
}

// NewRunner creates a Runner. A nil logger discards diagnostics.
func NewRunner(fsys afero.Fs, linter lint.Linter, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{fs: fsys, linter: linter, logger: logger}
}

// RunStage runs the linter in the given mode against every file and
// collects the failures.
//
// A missing file is recorded and skipped without starting the linter. A
// non-zero linter exit is recorded with its stderr. An error is returned
// only when the linter cannot be run at all, which aborts the stage.
func (r *Runner) RunStage(ctx context.Context, mode lint.Mode, files []string) (*model.StageReport, error) {
	stage, reason, err := stageFor(mode)
	if err != nil {
		return nil, err
	}
	report := model.NewStageReport(stage)

	for _, path := range files {
		if _, err := r.fs.Stat(path); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("stat %s: %w", path, err)
			}
			report.Add(&model.FileError{Path: path, Reason: model.ReasonNotFound})
			continue
		}

		result, err := lint.Run(ctx, r.linter, mode, path)
		if err != nil {
			return nil, err
		}

		r.logger.Debug("Checked file",
			zap.String("stage", stage.String()),
			zap.String("path", path),
			zap.Int("exitCode", result.ExitCode))

		if !result.Success() {
			report.Add(&model.FileError{Path: path, Reason: reason, Stderr: result.Stderr})
		}
	}

	return report, nil
}

// stageFor maps a linter mode to its pipeline stage and failure reason.
func stageFor(mode lint.Mode) (model.Stage, model.FailureReason, error) {
	switch mode {
	case lint.ModeParse:
		return model.StageParse, model.ReasonParseFailed, nil
	case lint.ModeFormat:
		return model.StageFormat, model.ReasonFormatIssue, nil
	default:
		return "", "", fmt.Errorf("unsupported linter mode %q", mode)
	}
}
