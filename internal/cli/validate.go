package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/primops/internal/compiler"
	"github.com/roach88/primops/internal/harness"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool                       `json:"valid"`
	Files     int                        `json:"files"`
	Scenarios int                        `json:"scenarios"`
	Errors    []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "validate [scenarios-dir]",
		Short: "Validate scenario files without running them",
		Long: `Load and validate every .yaml, .yml and .cue scenario under a directory.

YAML scenarios are decoded strictly (unknown fields are errors) and CUE
suites are unified with the case schema. Every step must name a catalog
operation with int32 operands and a consistent expect clause. Scenario
names must be unique because they name golden files.

Faster than test for development feedback: nothing is evaluated.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := scenariosDirArg(rootOpts, args)
			if err != nil {
				return err
			}
			return runValidate(rootOpts, dir, filter, cmd)
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "validate only scenario files matching this glob")

	return cmd
}

func runValidate(opts *RootOptions, scenariosDir, filter string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("scenarios directory not found: %s", scenariosDir), nil)
	}

	files, err := harness.FindScenarioFiles(scenariosDir, filter)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeScanError, fmt.Sprintf("error scanning directory: %v", err), nil)
	}
	if len(files) == 0 {
		return formatter.Fail(ExitCommandError, ErrCodeNoFiles, fmt.Sprintf("no scenario files found in %s", scenariosDir), nil)
	}

	formatter.VerboseLog("Found %d scenario file(s) in %s", len(files), scenariosDir)

	result := ValidationResult{Files: len(files)}
	seen := make(map[string]string)
	for _, file := range files {
		formatter.VerboseLog("Validating %s", file)

		scenarios, err := harness.LoadPath(file)
		if err != nil {
			result.Errors = append(result.Errors, toValidationError(file, err))
			continue
		}
		for _, s := range scenarios {
			if prev, ok := seen[s.Name]; ok {
				result.Errors = append(result.Errors, compiler.ValidationError{
					Field:   file,
					Message: fmt.Sprintf("duplicate scenario name %q (also in %s)", s.Name, prev),
					Code:    compiler.ErrDuplicateSuite,
				})
				continue
			}
			seen[s.Name] = file
			result.Scenarios++
		}
	}

	if len(result.Errors) > 0 {
		return outputValidationErrors(formatter, result)
	}
	return outputValidateSuccess(formatter, result)
}

// toValidationError keeps the code and line of compiler errors and reports
// everything else as a load failure.
func toValidationError(file string, err error) compiler.ValidationError {
	var verr compiler.ValidationError
	if errors.As(err, &verr) {
		verr.Field = fmt.Sprintf("%s: %s", file, verr.Field)
		return verr
	}
	var cerr *compiler.CompileError
	if errors.As(err, &cerr) {
		return compiler.ValidationError{
			Field:   file,
			Message: cerr.Message,
			Code:    MapFieldToErrorCode(cerr.Field),
			Line:    cerr.Line(),
		}
	}
	return compiler.ValidationError{
		Field:   file,
		Message: err.Error(),
		Code:    ErrCodeLoadFailed,
	}
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	result.Valid = true
	if formatter.IsJSON() {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ All scenarios valid (%d scenario(s) in %d file(s))\n", result.Scenarios, result.Files)
	return nil
}

// outputValidationErrors outputs every validation error.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	errs := result.Errors
	if formatter.IsJSON() {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}
		if err := formatter.Encode(response); err != nil {
			return err
		}
		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "  %v\n", err)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
