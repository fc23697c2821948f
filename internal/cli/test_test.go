package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory required")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "scenarios directory not found")
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")
}

func TestTestCommandEmptyScenariosDirJSON(t *testing.T) {
	out, err := execute(t, NewTestCommand(&RootOptions{Format: "json"}), t.TempDir())
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Empty(t, resp.Data.Scenarios)
	assert.Zero(t, resp.Data.Total)
}

func TestTestCommandHarnessScenarios(t *testing.T) {
	dir := filepath.Join("..", "harness", "testdata", "scenarios")

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ literals")
	assert.Contains(t, out, "✓ arithmetic")
	assert.Contains(t, out, "✓ bitwise")
	assert.Contains(t, out, "✓ shifts")
	assert.Contains(t, out, "Test Summary: 4 passed, 0 failed, 4 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTestCommandFailingScenarioHalts(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"wrong.yaml": failingScenario})

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong_sum")
	assert.Contains(t, out, "Test Summary: 0 passed, 1 failed, 1 total")
	assert.NotContains(t, out, "All scenarios passed")
}

func TestTestCommandFailingScenarioJSON(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"wrong.yaml": failingScenario})

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "json"}), dir)
	require.Error(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)

	require.Len(t, resp.Data.Scenarios, 1)
	sr := resp.Data.Scenarios[0]
	assert.False(t, sr.Pass)
	assert.Equal(t, 1, sr.StepsRun)
	require.NotNil(t, sr.HaltedAt)
	assert.Equal(t, 0, *sr.HaltedAt)
	assert.Len(t, sr.Errors, 1)
}

func TestTestCommandKeepGoing(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"wrong.yaml": failingScenario})

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "json"}), dir, "--keep-going")
	require.Error(t, err)

	var resp struct {
		Data TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Scenarios, 1)
	sr := resp.Data.Scenarios[0]
	assert.Equal(t, 2, sr.StepsRun)
	assert.Nil(t, sr.HaltedAt)
}

func TestTestCommandFilter(t *testing.T) {
	dir := scenarioDir(t, map[string]string{
		"smoke.yaml": passingScenario,
		"wrong.yaml": failingScenario,
	})

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), dir, "--filter", "smoke*")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ arithmetic_smoke")
	assert.NotContains(t, out, "wrong_sum")
}

func TestTestCommandLoadError(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"broken.yaml": "name: broken\nflow: [\n"})

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Contains(t, out, "✗ broken.yaml")
	assert.Contains(t, out, "load error")
}

func TestTestCommandGoldenLifecycle(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"smoke.yaml": passingScenario})
	golden := filepath.Join(dir, goldenSubdir, "arithmetic_smoke.golden")

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ arithmetic_smoke (golden updated)")
	assert.FileExists(t, golden)

	out, err = execute(t, NewTestCommand(&RootOptions{Format: "json"}), dir)
	require.NoError(t, err)
	var resp struct {
		Data TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "match", resp.Data.Scenarios[0].Golden)

	require.NoError(t, os.WriteFile(golden, []byte("{}\n"), 0o644))
	out, err = execute(t, NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTestCommandUpdateSkipsFailedScenario(t *testing.T) {
	dir := scenarioDir(t, map[string]string{
		"smoke.yaml": passingScenario,
		"wrong.yaml": failingScenario,
	})

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), dir, "--update")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✓ arithmetic_smoke (golden updated)")
	assert.Contains(t, out, "golden file not updated: scenario failed")

	assert.FileExists(t, filepath.Join(dir, goldenSubdir, "arithmetic_smoke.golden"))
	assert.NoFileExists(t, filepath.Join(dir, goldenSubdir, "wrong_sum.golden"))
}

func TestTestCommandRecordsToDatabase(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"smoke.yaml": passingScenario})
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	_, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), dir, "--db", dbPath)
	require.NoError(t, err)

	out, err := execute(t, NewTraceCommand(&RootOptions{Format: "text"}), "--db", dbPath, "--flow", "flow-smoke")
	require.NoError(t, err)
	assert.Contains(t, out, "add(2147483647, 1)")
	assert.Contains(t, out, "DivideByZero")
}

func TestTestCommandVerboseOutput(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"smoke.yaml": passingScenario})

	_, stderr := runWithStderr(t, NewTestCommand(&RootOptions{Format: "text", Verbose: true}), dir)
	assert.Contains(t, stderr, "Loading")
}

func TestTestHelpText(t *testing.T) {
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	assert.Contains(t, cmd.Long, "--keep-going")
	assert.Contains(t, cmd.Long, "golden")
	assert.Contains(t, cmd.Long, "Exit codes")
}

func TestScenariosDirArg(t *testing.T) {
	dir, err := scenariosDirArg(&RootOptions{}, []string{"./s"})
	require.NoError(t, err)
	assert.Equal(t, "./s", dir)

	dir, err = scenariosDirArg(&RootOptions{Config: Config{Scenarios: "/cfg/s"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "/cfg/s", dir)

	_, err = scenariosDirArg(&RootOptions{}, nil)
	require.Error(t, err)
}
