package check

import (
	"context"

	"github.com/shinji-kodama/sqlfluff-check/internal/lint"
)

// fakeLinter is a scripted lint.Linter. Results are looked up by mode and
// path; unknown files succeed. Every call is recorded as "<mode> <path>".
type fakeLinter struct {
	results map[lint.Mode]map[string]lint.Result
	errs    map[lint.Mode]error

	// onFormat, when set, replaces the scripted format result.
	onFormat func(path string) lint.Result

	calls []string
}

func newFakeLinter() *fakeLinter {
	return &fakeLinter{
		results: map[lint.Mode]map[string]lint.Result{
			lint.ModeParse:  {},
			lint.ModeFormat: {},
		},
		errs: map[lint.Mode]error{},
	}
}

// fail scripts a non-zero exit with the given stderr.
func (f *fakeLinter) fail(mode lint.Mode, path, stderr string) *fakeLinter {
	f.results[mode][path] = lint.Result{ExitCode: 1, Stderr: stderr}
	return f
}

func (f *fakeLinter) Parse(_ context.Context, path string) (lint.Result, error) {
	return f.record(lint.ModeParse, path)
}

func (f *fakeLinter) Format(_ context.Context, path string) (lint.Result, error) {
	if f.onFormat != nil {
		f.calls = append(f.calls, "format "+path)
		return f.onFormat(path), nil
	}
	return f.record(lint.ModeFormat, path)
}

func (f *fakeLinter) record(mode lint.Mode, path string) (lint.Result, error) {
	f.calls = append(f.calls, mode.String()+" "+path)
	if err := f.errs[mode]; err != nil {
		return lint.Result{}, err
	}
	return f.results[mode][path], nil
}
