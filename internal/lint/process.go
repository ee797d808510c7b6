package lint

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// DefaultCommand is the linter command used when none is configured.
const DefaultCommand = "sqlfluff"

// ProcessLinter runs sqlfluff as a local child process, one process per
// file and mode. Runs block until the process exits; there is no timeout
// beyond cancellation of the context.
type ProcessLinter struct {
	// argv is the command prefix, e.g. ["sqlfluff"] or
	// ["python", "-m", "sqlfluff"].
	argv []string

	// dir is the working directory for the child; empty means the
	// current process's working directory.
	dir string

	logger *zap.Logger
}

// NewProcessLinter creates a ProcessLinter from a command line. The command
// is split on whitespace; an empty command falls back to DefaultCommand.
func NewProcessLinter(command, dir string, logger *zap.Logger) *ProcessLinter {
	argv := strings.Fields(command)
	if len(argv) == 0 {
		argv = []string{DefaultCommand}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProcessLinter{argv: argv, dir: dir, logger: logger}
}

// Parse runs "<command> parse <path>".
func (p *ProcessLinter) Parse(ctx context.Context, path string) (Result, error) {
	return p.run(ctx, ModeParse, path)
}

// Format runs "<command> format <path>".
func (p *ProcessLinter) Format(ctx context.Context, path string) (Result, error) {
	return p.run(ctx, ModeFormat, path)
}

// run executes the linter and translates its exit status.
//
// Stdout is discarded; only stderr is reported to the user. A non-zero
// exit is a Result, while a failure to start the process (or being
// killed by a cancelled context) is an error.
func (p *ProcessLinter) run(ctx context.Context, mode Mode, path string) (Result, error) {
	args := append(append([]string{}, p.argv[1:]...), mode.String(), path)

	// #nosec G204 -- command is user configuration
	cmd := exec.CommandContext(ctx, p.argv[0], args...)
	cmd.Dir = p.dir
	cmd.Stdout = io.Discard

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	p.logger.Debug("Running linter",
		zap.String("command", p.argv[0]),
		zap.Strings("args", args))

	err := cmd.Run()
	if err == nil {
		return Result{ExitCode: 0, Stderr: stderr.String()}, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return Result{}, fmt.Errorf("%s %s %s: %w", p.argv[0], mode, path, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		p.logger.Debug("Linter reported failure",
			zap.String("path", path),
			zap.String("mode", mode.String()),
			zap.Int("exitCode", exitErr.ExitCode()))
		return Result{ExitCode: exitErr.ExitCode(), Stderr: stderr.String()}, nil
	}

	return Result{}, fmt.Errorf("failed to run %s: %w", p.argv[0], err)
}
