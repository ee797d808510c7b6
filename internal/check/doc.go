// Package check implements the gating pipeline that decides whether a set
// of SQL files passes sqlfluff.
//
// The pipeline is single-threaded and runs in a fixed order, stopping at
// the first failing stage:
//
//	config gate → select *.sql → size gate → parse → format
//
// Within a stage every file is attempted and each failure is recorded in
// a model.StageReport; the stage fails if the report is non-empty. No
// linter process is started for any file once an earlier stage failed.
package check
