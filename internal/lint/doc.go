// Package lint defines the external linter capability used by the check
// pipeline and its local-process implementation.
//
// All real SQL work is delegated to sqlfluff. The pipeline only consumes
// two things from it: the exit status (zero means success) and the
// captured standard error, which is reported verbatim. Modelling this as
// the Linter interface keeps the pipeline free of process handling and
// lets tests substitute deterministic fakes.
//
// Process invocation follows the same shape as the git wrapper this tool
// grew out of: build the argument list, capture stderr into a buffer,
// and translate *exec.ExitError into a plain exit code.
package lint
