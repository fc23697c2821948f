package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/primops/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompiledSuite is a suite with its content hash.
type CompiledSuite struct {
	ir.SuiteSpec
	Hash string `json:"hash"`
}

// CompilationResult holds the compiled suites.
type CompilationResult struct {
	IRVersion string          `json:"ir_version"`
	Suites    []CompiledSuite `json:"suites"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <suites-dir>",
		Short: "Compile CUE suites to canonical JSON",
		Long: `Compile the CUE case suites in a directory to canonical JSON.

Every case is unified with the suite schema (int32 operands, known
failure cases), then checked against the operation catalog. With
--output the canonical form is written to a file; each suite carries a
content hash that changes whenever a case changes.

Examples:
  primops compile ./suites
  primops compile ./suites -o suites.json
  primops compile ./suites --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, suitesDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	loadResult, loadErrors := LoadSuites(suitesDir, LoadModeCollectAll)
	if loadResult == nil && len(loadErrors) > 0 {
		code, message := parseLoadError(loadErrors[0])
		return formatter.Fail(ExitCommandError, code, message, nil)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, suitesDir)
	for _, suite := range loadResult.Suites {
		formatter.VerboseLog("Compiling suite: %s", suite.Name)
	}

	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}

	result := CompilationResult{
		IRVersion: ir.IRVersion,
		Suites:    make([]CompiledSuite, 0, len(loadResult.Suites)),
	}
	for _, suite := range loadResult.Suites {
		hash, err := ir.SuiteHash(suite)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("hashing suite %s: %v", suite.Name, err), nil)
		}
		result.Suites = append(result.Suites, CompiledSuite{SuiteSpec: suite, Hash: hash})
	}

	if opts.Output != "" {
		if err := writeSuitesToFile(result, opts.Output); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

// canonicalSuites returns the canonical document written by --output.
func canonicalSuites(result CompilationResult) ir.IRObject {
	suites := make(ir.IRArray, len(result.Suites))
	for i, s := range result.Suites {
		obj := ir.SuiteObject(s.SuiteSpec)
		obj["hash"] = ir.IRString(s.Hash)
		suites[i] = obj
	}
	return ir.IRObject{
		"ir_version": ir.IRString(result.IRVersion),
		"suites":     suites,
	}
}

// writeSuitesToFile writes the canonical JSON form to path.
func writeSuitesToFile(result CompilationResult, path string) error {
	data, err := ir.MarshalCanonical(canonicalSuites(result))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result CompilationResult, outputFile string) error {
	if formatter.IsJSON() {
		return formatter.Success(result)
	}

	cases := 0
	for _, s := range result.Suites {
		cases += len(s.Cases)
	}
	fmt.Fprintf(formatter.Writer, "✓ Compiled %d suite(s), %d case(s)\n\n", len(result.Suites), cases)

	fmt.Fprintln(formatter.Writer, "Suites:")
	for _, s := range result.Suites {
		fmt.Fprintf(formatter.Writer, "  %s: %d case(s) %s\n", s.Name, len(s.Cases), s.Hash[:12])
	}
	fmt.Fprintln(formatter.Writer)

	if outputFile != "" {
		fmt.Fprintf(formatter.Writer, "Wrote canonical JSON to %s\n", outputFile)
	}
	return nil
}

// outputCompileErrors outputs every compilation error.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	cliErrors := make([]CLIError, len(errs))
	for i, err := range errs {
		code, message := parseLoadError(err)
		cliErrors[i] = CLIError{Code: code, Message: message}
	}

	if formatter.IsJSON() {
		if err := formatter.Encode(CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors, // Include all errors in data
		}); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(formatter.Writer, "✗ Compilation failed with %d error(s)\n\n", len(errs))
		for _, err := range errs {
			fmt.Fprintf(formatter.Writer, "  %v\n", err)
		}
	}

	// Compilation errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}

// parseLoadError extracts the code and message from a loader error.
func parseLoadError(err error) (code, message string) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	return ErrCodeGeneric, err.Error()
}
