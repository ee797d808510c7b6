package check

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shinji-kodama/sqlfluff-check/internal/model"
)

// Reporter receives the user-facing outcome of a run.
type Reporter interface {
	// Notice reports a precondition message such as "No SQL files to check.".
	Notice(msg string)

	// StageFailed reports the failures of the stage that stopped the run.
	StageFailed(report *model.StageReport)

	// Finish is called once with the final exit code.
	Finish(code model.ExitCode) error
}

// TextReporter prints one line per message, as plain text.
type TextReporter struct {
	w io.Writer
}

// NewTextReporter creates a TextReporter writing to w.
func NewTextReporter(w io.Writer) *TextReporter {
	return &TextReporter{w: w}
}

// Notice prints msg on its own line.
func (r *TextReporter) Notice(msg string) {
	fmt.Fprintln(r.w, msg)
}

// StageFailed prints every recorded failure in order.
func (r *TextReporter) StageFailed(report *model.StageReport) {
	for _, msg := range report.Messages() {
		fmt.Fprintln(r.w, msg)
	}
}

// Finish is a no-op; text output is written as it happens.
func (r *TextReporter) Finish(model.ExitCode) error {
	return nil
}

// jsonResult is the document written by JSONReporter.
type jsonResult struct {
	Stage    string   `json:"stage"`
	Passed   bool     `json:"passed"`
	Message  string   `json:"message,omitempty"`
	Errors   []string `json:"errors"`
	ExitCode int      `json:"exitCode"`
}

// JSONReporter collects the outcome and writes a single JSON object when
// the run finishes.
type JSONReporter struct {
	w      io.Writer
	result jsonResult
}

// NewJSONReporter creates a JSONReporter writing to w.
func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{w: w, result: jsonResult{Errors: []string{}}}
}

// Notice records msg.
func (r *JSONReporter) Notice(msg string) {
	r.result.Message = msg
}

// StageFailed records the failing stage and its messages.
func (r *JSONReporter) StageFailed(report *model.StageReport) {
	r.result.Stage = report.Stage.String()
	r.result.Errors = append(r.result.Errors, report.Messages()...)
}

// Finish writes the collected result.
func (r *JSONReporter) Finish(code model.ExitCode) error {
	r.result.ExitCode = int(code)
	r.result.Passed = code == model.ExitSuccess

	data, err := json.MarshalIndent(r.result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err = fmt.Fprintln(r.w, string(data))
	return err
}
