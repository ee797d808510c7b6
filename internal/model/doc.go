// Package model defines the domain types and value objects for the
// sqlfluff-check CLI.
//
// Every entity here (Invocation, StageReport, FileError) lives for a single
// process run only. Nothing is persisted between invocations; the only
// lasting effect of a run is whatever the external formatter rewrites in
// the SQL files themselves.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
