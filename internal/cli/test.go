package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/primops/internal/harness"
)

// goldenSubdir holds golden files inside a scenarios directory.
const goldenSubdir = "golden"

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update    bool   // regenerate golden files
	Filter    string // scenario file filter (glob on the base name)
	Database  string // record every run in this SQLite database
	KeepGoing bool   // evaluate every step even after a mismatch
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name      string   `json:"name"`
	File      string   `json:"file"`
	Pass      bool     `json:"pass"`
	FlowToken string   `json:"flow_token,omitempty"`
	StepsRun  int      `json:"steps_run"`
	HaltedAt  *int     `json:"halted_at,omitempty"`
	Golden    string   `json:"golden,omitempty"`
	Errors    []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test [scenarios-dir]",
		Short: "Run scenario files through the harness",
		Long: `Run every .yaml, .yml and .cue scenario under a directory.

Each step's outcome is checked against its expect clause and the run
halts at the first mismatch unless --keep-going (or the scenario's
continue_on_failure) is set. Traces are compared with
<scenarios-dir>/golden/<name>.golden when that file exists.

The directory defaults to the "scenarios" key of --config.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  primops test ./scenarios
  primops test ./scenarios --filter "shift*"
  primops test ./scenarios --update
  primops test ./scenarios --db ./primops.db --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := scenariosDirArg(rootOpts, args)
			if err != nil {
				return err
			}
			return runTests(cmd.Context(), opts, dir, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "run only scenario files matching this glob")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record runs in this SQLite database")
	cmd.Flags().BoolVar(&opts.KeepGoing, "keep-going", false, "do not halt on the first mismatch")

	return cmd
}

// scenariosDirArg returns the positional directory or the configured default.
func scenariosDirArg(opts *RootOptions, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if opts.Config.Scenarios != "" {
		return opts.Config.Scenarios, nil
	}
	return "", NewExitError(ExitCommandError, "scenarios directory required (argument or \"scenarios\" in --config)")
}

func runTests(ctx context.Context, opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("scenarios directory not found: %s", scenariosDir), nil)
	}

	scenarioFiles, err := harness.FindScenarioFiles(scenariosDir, opts.Filter)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeScanError, fmt.Sprintf("failed to find scenarios: %v", err), nil)
	}

	if len(scenarioFiles) == 0 {
		if formatter.IsJSON() {
			return outputTestJSON(formatter, TestResult{Scenarios: []ScenarioResult{}})
		}
		fmt.Fprintln(formatter.Writer, "No scenarios found.")
		return nil
	}

	runOpts := []harness.RunOption{
		harness.WithLogger(opts.logger()),
		harness.WithKeepGoing(opts.KeepGoing),
	}
	if opts.Database != "" {
		st, err := openDatabase(formatter, opts.Database)
		if err != nil {
			return err
		}
		defer st.Close()
		runOpts = append(runOpts, harness.WithStore(st))
	}

	goldenDir := filepath.Join(scenariosDir, goldenSubdir)
	result := TestResult{Scenarios: []ScenarioResult{}}

	for _, file := range scenarioFiles {
		formatter.VerboseLog("Loading %s", file)
		for _, sr := range runScenarioFile(ctx, file, goldenDir, opts, runOpts) {
			if !formatter.IsJSON() {
				printScenarioResult(formatter.Writer, sr)
			}
			result.Scenarios = append(result.Scenarios, sr)
			result.Total++
			if sr.Pass {
				result.Passed++
			} else {
				result.Failed++
			}
		}
	}

	if formatter.IsJSON() {
		return outputTestJSON(formatter, result)
	}
	return outputTestText(formatter.Writer, result)
}

// runScenarioFile loads one file and runs every scenario in it.
func runScenarioFile(ctx context.Context, file, goldenDir string, opts *TestOptions, runOpts []harness.RunOption) []ScenarioResult {
	scenarios, err := harness.LoadPath(file)
	if err != nil {
		return []ScenarioResult{{
			Name:   filepath.Base(file),
			File:   file,
			Errors: []string{fmt.Sprintf("load error: %v", err)},
		}}
	}

	results := make([]ScenarioResult, 0, len(scenarios))
	for _, scenario := range scenarios {
		results = append(results, runScenario(ctx, scenario, file, goldenDir, opts, runOpts))
	}
	return results
}

func runScenario(ctx context.Context, scenario *harness.Scenario, file, goldenDir string, opts *TestOptions, runOpts []harness.RunOption) ScenarioResult {
	sr := ScenarioResult{Name: scenario.Name, File: file}

	result, err := harness.Run(ctx, scenario, runOpts...)
	if err != nil {
		sr.Errors = []string{fmt.Sprintf("execution error: %v", err)}
		return sr
	}

	sr.Pass = result.Pass
	sr.FlowToken = result.FlowToken
	sr.StepsRun = result.StepsRun
	sr.Errors = result.Errors
	if result.Halted() {
		haltedAt := result.HaltedAt
		sr.HaltedAt = &haltedAt
	}

	// A failed or halted trace is never written as the reference.
	if opts.Update && !result.Pass {
		sr.Errors = append(sr.Errors, "golden file not updated: scenario failed")
		return sr
	}

	status, err := harness.CheckGoldenFile(goldenDir, scenario.Name, result, opts.Update)
	if err != nil {
		sr.Pass = false
		sr.Errors = append(sr.Errors, fmt.Sprintf("golden file error: %v", err))
		return sr
	}
	if status != harness.GoldenMissing {
		sr.Golden = string(status)
	}
	if status == harness.GoldenMismatch {
		sr.Pass = false
		sr.Errors = append(sr.Errors, "trace does not match golden file (run with --update to regenerate)")
	}
	return sr
}

func printScenarioResult(w io.Writer, sr ScenarioResult) {
	switch {
	case sr.Pass && sr.Golden == string(harness.GoldenUpdated):
		fmt.Fprintf(w, "✓ %s (golden updated)\n", sr.Name)
	case sr.Pass:
		fmt.Fprintf(w, "✓ %s\n", sr.Name)
	default:
		fmt.Fprintf(w, "✗ %s\n", sr.Name)
		for _, e := range sr.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(formatter *OutputFormatter, result TestResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}
	if result.Failed > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeTestFailed,
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}

	if err := formatter.Encode(response); err != nil {
		return err
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// outputTestText outputs the test summary as text.
func outputTestText(w io.Writer, result TestResult) error {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}
