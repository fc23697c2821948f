package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/primops/internal/compiler"
)

func TestValidateHarnessScenarios(t *testing.T) {
	dir := filepath.Join("..", "harness", "testdata", "scenarios")

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ All scenarios valid (4 scenario(s) in 3 file(s))")
}

func TestValidateHarnessScenariosJSON(t *testing.T) {
	dir := filepath.Join("..", "harness", "testdata", "scenarios")

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), dir)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 3, resp.Data.Files)
	assert.Equal(t, 4, resp.Data.Scenarios)
}

func TestValidateNonExistentDirectory(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), "/nonexistent/path")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "scenarios directory not found")
}

func TestValidateEmptyDirectory(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "no scenario files found")
}

func TestValidateMissingArgument(t *testing.T) {
	_, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory required")
}

func TestValidateUnknownField(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"typo.yaml": `name: typo
flow:
  - invoke: add
    args: { lhs: 1, rhs: 2 }
    expekt: { value: 3 }
`})

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "expekt")
}

func TestValidateUnknownOpInSuite(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"bad.cue": `suite: bad: cases: [{op: "mod", lhs: 7, rhs: 2, want: 1}]`})

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.NotNil(t, resp.Error)
	assert.Equal(t, compiler.ErrUnknownOp, resp.Error.Code)
}

func TestValidateDuplicateNames(t *testing.T) {
	dir := scenarioDir(t, map[string]string{
		"a.yaml": passingScenario,
		"b.yaml": passingScenario,
	})

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Contains(t, out, "duplicate scenario name")
	assert.Contains(t, out, compiler.ErrDuplicateSuite)
}

func TestValidateCollectsEveryError(t *testing.T) {
	dir := scenarioDir(t, map[string]string{
		"a.yaml":  "name: a\nflow: []\nbogus: true\n",
		"b.cue":   `suite: b: cases: [{op: "nope", lhs: 1, rhs: 1, want: 0}]`,
		"ok.yaml": passingScenario,
	})

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), dir)
	require.Error(t, err)

	var resp struct {
		Data ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Len(t, resp.Data.Errors, 2)
	assert.Equal(t, 1, resp.Data.Scenarios)
}

func TestValidateFilter(t *testing.T) {
	dir := scenarioDir(t, map[string]string{
		"good.yaml": passingScenario,
		"bad.yaml":  "not: [valid",
	})

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), dir, "--filter", "good*")
	require.NoError(t, err)
	assert.Contains(t, out, "1 scenario(s) in 1 file(s)")
}

func TestValidateVerboseOutput(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"smoke.yaml": passingScenario})

	_, stderr := runWithStderr(t, NewValidateCommand(&RootOptions{Format: "text", Verbose: true}), dir)
	assert.Contains(t, stderr, "Found 1 scenario file(s)")
	assert.Contains(t, stderr, "Validating")
}

func TestToValidationError(t *testing.T) {
	verr := toValidationError("s.cue", compiler.ValidationError{Field: "cases[0].op", Message: "unknown", Code: compiler.ErrUnknownOp, Line: 3})
	assert.Equal(t, compiler.ErrUnknownOp, verr.Code)
	assert.Equal(t, "s.cue: cases[0].op", verr.Field)
	assert.Equal(t, 3, verr.Line)

	cerr := toValidationError("s.cue", &compiler.CompileError{Field: "suite.x.cases", Message: "cases is required"})
	assert.Equal(t, compiler.ErrSuiteNoCases, cerr.Code)

	other := toValidationError("s.yaml", assert.AnError)
	assert.Equal(t, ErrCodeLoadFailed, other.Code)
	assert.Equal(t, "s.yaml", other.Field)
}

func TestValidateMixedFiles(t *testing.T) {
	dir := scenarioDir(t, map[string]string{
		"shifts.cue":       shiftSuite,
		"smoke.yaml":       passingScenario,
		"golden/skip.yaml": "not: [valid",
	})

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), dir)
	require.NoError(t, err)
	assert.Contains(t, out, "2 scenario(s) in 2 file(s)")
}
