package lint

import (
	"context"
	"fmt"
)

// Mode selects the sqlfluff subcommand to run against a file.
type Mode string

const (
	// ModeParse runs "sqlfluff parse <file>" (validation only).
	ModeParse Mode = "parse"

	// ModeFormat runs "sqlfluff format <file>", which rewrites a
	// non-conforming file in place and exits non-zero.
	ModeFormat Mode = "format"
)

// String returns the sqlfluff subcommand name.
func (m Mode) String() string {
	return string(m)
}

// Result is what the pipeline consumes from one linter run.
type Result struct {
	// ExitCode is the linter's exit status. Zero means success.
	ExitCode int

	// Stderr is the linter's standard error, unmodified.
	Stderr string
}

// Success reports whether the linter exited with status zero.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Linter runs the external SQL linter against a single file.
//
// A returned error means the linter could not be run at all (missing
// executable, unreachable Docker daemon). A linter that ran and reported
// problems returns a Result with a non-zero ExitCode and a nil error.
type Linter interface {
	Parse(ctx context.Context, path string) (Result, error)
	Format(ctx context.Context, path string) (Result, error)
}

// Run dispatches to the Linter method matching mode.
func Run(ctx context.Context, l Linter, mode Mode, path string) (Result, error) {
	switch mode {
	case ModeParse:
		return l.Parse(ctx, path)
	case ModeFormat:
		return l.Format(ctx, path)
	default:
		return Result{}, fmt.Errorf("unsupported linter mode %q", mode)
	}
}
