package model

import (
	"fmt"

	"go.uber.org/multierr"
)

// SQLSuffix is the literal, case-sensitive suffix a path must carry to be
// selected for checking.
const SQLSuffix = ".sql"

// DefaultLargeFileLimit is the byte limit used when the configuration does
// not provide a usable large_file_skip_byte_limit value (20kB).
const DefaultLargeFileLimit int64 = 20000

// Stage identifies one step of the check pipeline. Stages run strictly in
// the order size → parse → format, and each one either fully succeeds or
// fails before the next begins.
type Stage string

const (
	// StageSize rejects files larger than the configured byte limit
	// before the external linter is ever started.
	StageSize Stage = "size"

	// StageParse runs the linter's parse-only validation on every file.
	StageParse Stage = "parse"

	// StageFormat runs the linter's format command, which rewrites
	// non-conforming files in place as a side effect.
	StageFormat Stage = "format"
)

// String returns the string representation of Stage.
func (s Stage) String() string {
	return string(s)
}

// Invocation is the parsed command line: the raw file arguments in the
// order they were given plus the two independent check switches.
type Invocation struct {
	// Files holds the positional arguments exactly as supplied. They are
	// not filtered or validated here.
	Files []string

	// Parse requests the parse-validation stage.
	Parse bool

	// Format requests the format-and-rewrite stage.
	Format bool
}

// HasAction reports whether at least one check was requested. A run
// without any action is rejected before any file is touched.
func (i Invocation) HasAction() bool {
	return i.Parse || i.Format
}

// FailureReason classifies why a single file failed a stage.
type FailureReason string

const (
	// ReasonTooLarge means the file exceeded the large-file limit.
	ReasonTooLarge FailureReason = "too-large"

	// ReasonNotFound means the file did not exist when a check ran.
	ReasonNotFound FailureReason = "not-found"

	// ReasonParseFailed means the linter's parse command exited non-zero.
	ReasonParseFailed FailureReason = "parse-failed"

	// ReasonFormatIssue means the linter's format command exited non-zero.
	// The file may already have been rewritten on disk.
	ReasonFormatIssue FailureReason = "format-issue"
)

// FileError describes one failed file within a stage. Its Error string is
// the exact line printed to the user.
type FileError struct {
	// Path is the file path as it was supplied on the command line.
	Path string

	// Reason is the failure classification.
	Reason FailureReason

	// Size and Limit are only set for ReasonTooLarge.
	Size  int64
	Limit int64

	// Stderr is the linter's captured standard error, used verbatim.
	Stderr string
}

// Error satisfies the error interface.
func (e *FileError) Error() string {
	switch e.Reason {
	case ReasonTooLarge:
		return fmt.Sprintf("File too large (%d > %d bytes): %s", e.Size, e.Limit, e.Path)
	case ReasonNotFound:
		return fmt.Sprintf("File not found: %s", e.Path)
	case ReasonParseFailed:
		return fmt.Sprintf("Parsing failed for %s:\n%s", e.Path, e.Stderr)
	case ReasonFormatIssue:
		return fmt.Sprintf("Formatting issue for %s:\n%s", e.Path, e.Stderr)
	default:
		return fmt.Sprintf("%s: %s", e.Reason, e.Path)
	}
}

// StageReport accumulates the per-file failures of one stage in the order
// they were found. An empty report means the stage passed.
type StageReport struct {
	// Stage is the stage this report belongs to.
	Stage Stage

	// err holds every recorded failure combined with multierr, which keeps
	// insertion order and lets Errors() split them back out.
	err error
}

// NewStageReport returns an empty report for the given stage.
func NewStageReport(stage Stage) *StageReport {
	return &StageReport{Stage: stage}
}

// Add records a failure. Nil errors are ignored.
func (r *StageReport) Add(err error) {
	r.err = multierr.Append(r.err, err)
}

// Passed reports whether no failure has been recorded.
func (r *StageReport) Passed() bool {
	return r.err == nil
}

// Errors returns the recorded failures in order.
func (r *StageReport) Errors() []error {
	return multierr.Errors(r.err)
}

// Messages returns the user-facing line for each recorded failure.
func (r *StageReport) Messages() []string {
	errs := r.Errors()
	messages := make([]string, 0, len(errs))
	for _, err := range errs {
		messages = append(messages, err.Error())
	}
	return messages
}

// ExitCode defines the process exit codes. Any failure collapses to
// ExitGeneralError; there is no separate code for partial failure.
type ExitCode int

const (
	// ExitSuccess indicates every requested check passed, or there was
	// nothing to check.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates a precondition failed or at least one
	// file failed a requested check.
	ExitGeneralError ExitCode = 1
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error

	// Silent marks errors whose user-facing output has already been
	// written to stdout. The CLI exits with Code without printing again.
	Silent bool
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}

// NewExitError creates a silent CLIError that only carries an exit code.
func NewExitError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message, Silent: true}
}
