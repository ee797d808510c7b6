package check

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/sqlfluff-check/internal/config"
	"github.com/shinji-kodama/sqlfluff-check/internal/lint"
	"github.com/shinji-kodama/sqlfluff-check/internal/model"
)

const defaultConfig = "[sqlfluff]\ndialect = ansi\n"

// pipelineFixture bundles a pipeline with its fake collaborators.
type pipelineFixture struct {
	fs       afero.Fs
	linter   *fakeLinter
	out      *bytes.Buffer
	pipeline *Pipeline
}

// newPipelineFixture creates a pipeline over an in-memory filesystem that
// holds a .sqlfluff with the given content plus the given SQL files.
func newPipelineFixture(t *testing.T, configContent string, files map[string]string) *pipelineFixture {
	t.Helper()

	fs := afero.NewMemMapFs()
	if configContent != "" {
		require.NoError(t, afero.WriteFile(fs, config.DefaultFileName, []byte(configContent), 0o644))
	}
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}

	linter := newFakeLinter()
	out := &bytes.Buffer{}
	return &pipelineFixture{
		fs:     fs,
		linter: linter,
		out:    out,
		pipeline: &Pipeline{
			ConfigPath: config.DefaultFileName,
			FS:         fs,
			Linter:     linter,
			Reporter:   NewTextReporter(out),
		},
	}
}

func (f *pipelineFixture) run(t *testing.T, inv model.Invocation) model.ExitCode {
	t.Helper()

	code, err := f.pipeline.Run(context.Background(), inv)
	require.NoError(t, err)
	return code
}

// --- Preconditions ---

func TestPipeline_MissingConfig(t *testing.T) {
	f := newPipelineFixture(t, "", map[string]string{"a.sql": "select 1\n"})

	code := f.run(t, model.Invocation{Files: []string{"a.sql"}, Parse: true})

	assert.Equal(t, model.ExitGeneralError, code)
	assert.Equal(t, "A .sqlfluff configuration file is required for this script in this directory.\n", f.out.String())
	assert.Empty(t, f.linter.calls)
}

// TestPipeline_NoFileArguments verifies that an empty file list is a usage
// error, reported only once the configuration file is known to exist.
func TestPipeline_NoFileArguments(t *testing.T) {
	t.Run("config present", func(t *testing.T) {
		f := newPipelineFixture(t, defaultConfig, nil)

		code, err := f.pipeline.Run(context.Background(), model.Invocation{Parse: true})

		assert.Equal(t, model.ExitGeneralError, code)
		var cliErr *model.CLIError
		require.ErrorAs(t, err, &cliErr)
		assert.Equal(t, "requires at least 1 file argument", cliErr.Message)
		assert.Empty(t, f.out.String())
	})

	t.Run("config missing", func(t *testing.T) {
		f := newPipelineFixture(t, "", nil)

		code := f.run(t, model.Invocation{Parse: true})

		assert.Equal(t, model.ExitGeneralError, code)
		assert.Equal(t, "A .sqlfluff configuration file is required for this script in this directory.\n", f.out.String())
	})
}

// TestPipeline_ConfigDirectory verifies that a directory named .sqlfluff
// passes the gate and the run continues with the default limit.
func TestPipeline_ConfigDirectory(t *testing.T) {
	f := newPipelineFixture(t, "", map[string]string{"a.sql": "select 1\n"})
	require.NoError(t, f.fs.Mkdir(config.DefaultFileName, 0o755))

	code := f.run(t, model.Invocation{Files: []string{"a.sql"}, Parse: true})

	assert.Equal(t, model.ExitSuccess, code)
	assert.Equal(t, []string{"parse a.sql"}, f.linter.calls)
}

// TestPipeline_NoSQLFiles verifies that a run without any *.sql argument
// succeeds with the same message regardless of flags.
func TestPipeline_NoSQLFiles(t *testing.T) {
	for _, inv := range []model.Invocation{
		{Files: []string{"README.md"}},
		{Files: []string{"main.go", "x.SQL"}, Parse: true},
		{Files: []string{"schema.yml"}, Parse: true, Format: true},
	} {
		f := newPipelineFixture(t, defaultConfig, nil)

		code := f.run(t, inv)

		assert.Equal(t, model.ExitSuccess, code)
		assert.Equal(t, "No SQL files to check.\n", f.out.String())
		assert.Empty(t, f.linter.calls)
	}
}

func TestPipeline_NoAction(t *testing.T) {
	f := newPipelineFixture(t, defaultConfig, map[string]string{"a.sql": "select 1\n"})

	code := f.run(t, model.Invocation{Files: []string{"a.sql"}})

	assert.Equal(t, model.ExitGeneralError, code)
	assert.Equal(t, "No action requested, please use --parse and/or --format.\n", f.out.String())
	assert.Empty(t, f.linter.calls, "no linter may run without an action")
}

// --- Size gate ---

// TestPipeline_OversizedFileStopsEverything verifies that one oversized
// file prevents the linter from running for every file.
func TestPipeline_OversizedFileStopsEverything(t *testing.T) {
	f := newPipelineFixture(t, "[sqlfluff]\nlarge_file_skip_byte_limit = 50\n", map[string]string{
		"ok.sql":  "select 1\n",
		"big.sql": strings.Repeat("-", 51),
	})

	code := f.run(t, model.Invocation{Files: []string{"ok.sql", "big.sql"}, Parse: true, Format: true})

	assert.Equal(t, model.ExitGeneralError, code)
	assert.Equal(t, "File too large (51 > 50 bytes): big.sql\n", f.out.String())
	assert.Empty(t, f.linter.calls)
}

func TestPipeline_DefaultLimitWhenKeyMissing(t *testing.T) {
	f := newPipelineFixture(t, defaultConfig, map[string]string{
		"edge.sql": strings.Repeat("-", int(model.DefaultLargeFileLimit)),
		"over.sql": strings.Repeat("-", int(model.DefaultLargeFileLimit)+1),
	})

	code := f.run(t, model.Invocation{Files: []string{"edge.sql", "over.sql"}, Parse: true})

	assert.Equal(t, model.ExitGeneralError, code)
	assert.Equal(t, "File too large (20001 > 20000 bytes): over.sql\n", f.out.String())
}

func TestPipeline_ZeroLimitDisablesGate(t *testing.T) {
	f := newPipelineFixture(t, "[sqlfluff]\nlarge_file_skip_byte_limit = 0\n", map[string]string{
		"huge.sql": strings.Repeat("-", 100000),
	})

	code := f.run(t, model.Invocation{Files: []string{"huge.sql"}, Parse: true})

	assert.Equal(t, model.ExitSuccess, code)
	assert.Empty(t, f.out.String())
	assert.Equal(t, []string{"parse huge.sql"}, f.linter.calls)
}

// --- Check stages ---

func TestPipeline_ParseAndFormatPass(t *testing.T) {
	f := newPipelineFixture(t, defaultConfig, map[string]string{"a.sql": "select 1;\n"})

	code := f.run(t, model.Invocation{Files: []string{"a.sql"}, Parse: true, Format: true})

	assert.Equal(t, model.ExitSuccess, code)
	assert.Empty(t, f.out.String())
	assert.Equal(t, []string{"parse a.sql", "format a.sql"}, f.linter.calls)
}

func TestPipeline_FormatIssue(t *testing.T) {
	f := newPipelineFixture(t, defaultConfig, map[string]string{"a.sql": "select  1;\n"})
	f.linter.fail(lint.ModeFormat, "a.sql", "line 3: bad indent")

	code := f.run(t, model.Invocation{Files: []string{"a.sql"}, Parse: true, Format: true})

	assert.Equal(t, model.ExitGeneralError, code)
	assert.Equal(t, "Formatting issue for a.sql:\nline 3: bad indent\n", f.out.String())
}

// TestPipeline_ParseFailureSkipsFormat verifies that the format stage never
// starts once the parse stage has failed.
func TestPipeline_ParseFailureSkipsFormat(t *testing.T) {
	f := newPipelineFixture(t, defaultConfig, map[string]string{"a.sql": "selec 1\n", "b.sql": "select 2\n"})
	f.linter.fail(lint.ModeParse, "a.sql", "unparsable")

	code := f.run(t, model.Invocation{Files: []string{"a.sql", "b.sql"}, Parse: true, Format: true})

	assert.Equal(t, model.ExitGeneralError, code)
	assert.Equal(t, "Parsing failed for a.sql:\nunparsable\n", f.out.String())
	assert.Equal(t, []string{"parse a.sql", "parse b.sql"}, f.linter.calls)
}

func TestPipeline_MissingFile(t *testing.T) {
	f := newPipelineFixture(t, defaultConfig, nil)

	code := f.run(t, model.Invocation{Files: []string{"missing.sql"}, Parse: true})

	assert.Equal(t, model.ExitGeneralError, code)
	assert.Equal(t, "File not found: missing.sql\n", f.out.String())
	assert.Empty(t, f.linter.calls)
}

// TestPipeline_MissingAndOversized verifies that existence wins over size:
// a missing file never trips the size gate.
func TestPipeline_MissingAndOversized(t *testing.T) {
	f := newPipelineFixture(t, "[sqlfluff]\nlarge_file_skip_byte_limit = 1\n", nil)

	code := f.run(t, model.Invocation{Files: []string{"missing.sql"}, Format: true})

	assert.Equal(t, model.ExitGeneralError, code)
	assert.Equal(t, "File not found: missing.sql\n", f.out.String())
}

func TestPipeline_FormatOnly(t *testing.T) {
	f := newPipelineFixture(t, defaultConfig, map[string]string{"a.sql": "select 1;\n"})

	code := f.run(t, model.Invocation{Files: []string{"a.sql", "notes.txt"}, Format: true})

	assert.Equal(t, model.ExitSuccess, code)
	assert.Equal(t, []string{"format a.sql"}, f.linter.calls)
}

// TestPipeline_FormatIsIdempotent simulates sqlfluff format rewriting a
// file: the first run reports the rewrite, the next two find nothing to do
// and leave the file untouched.
func TestPipeline_FormatIsIdempotent(t *testing.T) {
	const canonical = "select 1;\n"
	f := newPipelineFixture(t, defaultConfig, map[string]string{"a.sql": "SELECT   1;\n"})

	writes := 0
	f.linter.onFormat = func(path string) lint.Result {
		data, err := afero.ReadFile(f.fs, path)
		require.NoError(t, err)
		if string(data) == canonical {
			return lint.Result{}
		}
		writes++
		require.NoError(t, afero.WriteFile(f.fs, path, []byte(canonical), 0o644))
		return lint.Result{ExitCode: 1, Stderr: "1 file reformatted"}
	}
	inv := model.Invocation{Files: []string{"a.sql"}, Format: true}

	assert.Equal(t, model.ExitGeneralError, f.run(t, inv))
	assert.Equal(t, model.ExitSuccess, f.run(t, inv))
	assert.Equal(t, model.ExitSuccess, f.run(t, inv))
	assert.Equal(t, 1, writes, "an already formatted file must not be rewritten")
}

// TestPipeline_LinterError verifies that an unexpected linter failure is
// returned as an error and that no final report is written.
func TestPipeline_LinterError(t *testing.T) {
	f := newPipelineFixture(t, defaultConfig, map[string]string{"a.sql": "select 1;\n"})
	f.linter.errs[lint.ModeParse] = errors.New("docker daemon unreachable")
	f.pipeline.Reporter = NewJSONReporter(f.out)

	code, err := f.pipeline.Run(context.Background(), model.Invocation{Files: []string{"a.sql"}, Parse: true})

	require.Error(t, err)
	assert.Equal(t, model.ExitGeneralError, code)
	assert.Empty(t, f.out.String())
}

func TestPipeline_JSONReport(t *testing.T) {
	f := newPipelineFixture(t, defaultConfig, map[string]string{"a.sql": "select 1;\n"})
	f.linter.fail(lint.ModeParse, "a.sql", "boom")
	f.pipeline.Reporter = NewJSONReporter(f.out)

	code := f.run(t, model.Invocation{Files: []string{"a.sql"}, Parse: true})

	assert.Equal(t, model.ExitGeneralError, code)
	assert.Contains(t, f.out.String(), `"stage": "parse"`)
	assert.Contains(t, f.out.String(), `"exitCode": 1`)
}

// TestPipeline_ExplicitConfigPath verifies that the configuration is read
// from the configured path instead of the working directory.
func TestPipeline_ExplicitConfigPath(t *testing.T) {
	f := newPipelineFixture(t, "", map[string]string{
		"a.sql":                strings.Repeat("-", 30),
		"/proj/pyproject.toml": "[tool.sqlfluff.core]\nlarge_file_skip_byte_limit = 20\n",
	})
	f.pipeline.ConfigPath = "/proj/pyproject.toml"

	code := f.run(t, model.Invocation{Files: []string{"a.sql"}, Parse: true})

	assert.Equal(t, model.ExitGeneralError, code)
	assert.Equal(t, "File too large (30 > 20 bytes): a.sql\n", f.out.String())
}
