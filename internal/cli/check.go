package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/primops/internal/laws"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Workers       int
	Random        int    // sampled tuples per law; 0 sweeps the boundary grid
	Seed          uint64 // seed for --random
	MaxViolations int
	Laws          []string // subset of laws by name
}

// CheckResult is the outcome of a law sweep.
type CheckResult struct {
	Mode    string           `json:"mode"` // "grid" or "random"
	Seed    uint64           `json:"seed,omitempty"`
	Checked int              `json:"checked"`
	Passed  int              `json:"passed"`
	Failed  int              `json:"failed"`
	Laws    []laws.LawResult `json:"laws"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Sweep the algebraic laws of the operation catalog",
		Long: `Check algebraic laws (comparison trichotomy, commutativity,
wraparound, truncating division, shift domain, ...) over operand tuples.

By default every law is checked on every tuple of a boundary grid
(int32 extremes, values around zero, shift counts around 32). With
--random N each law is instead checked on N tuples drawn from a seeded
generator, so a failing run can be reproduced with the same --seed.

Exit codes:
  0 - Every law held
  1 - One or more laws were violated
  2 - Command error (unknown law, bad flag)

Examples:
  primops check
  primops check --workers 4
  primops check --random 100000 --seed 42
  primops check --law trichotomy --law div_truncates --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "laws checked concurrently (default: GOMAXPROCS)")
	cmd.Flags().IntVar(&opts.Random, "random", 0, "check N random tuples per law instead of the boundary grid")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 1, "seed for --random")
	cmd.Flags().IntVar(&opts.MaxViolations, "max-violations", laws.DefaultMaxViolations, "violations kept per law")
	cmd.Flags().StringSliceVar(&opts.Laws, "law", nil, "check only the named laws (repeatable)")

	return cmd
}

func runCheck(ctx context.Context, opts *CheckOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Workers < 0 {
		return formatter.Fail(ExitCommandError, ErrCodeBadFlag, fmt.Sprintf("--workers must not be negative, got %d", opts.Workers), nil)
	}
	if opts.Random < 0 {
		return formatter.Fail(ExitCommandError, ErrCodeBadFlag, fmt.Sprintf("--random must not be negative, got %d", opts.Random), nil)
	}

	selected, err := selectLaws(opts.Laws)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeBadFlag, err.Error(), lawNames(laws.All()))
	}

	result := CheckResult{Mode: "grid"}
	inputs := laws.Grid(laws.DefaultGrid())
	if opts.Random > 0 {
		result.Mode = "random"
		result.Seed = opts.Seed
		inputs = laws.Sample(opts.Random, opts.Seed)
	}
	formatter.VerboseLog("Checking %d law(s) in %s mode", len(selected), result.Mode)

	report, err := laws.Sweep(ctx, selected, inputs, laws.Options{
		Workers:       opts.Workers,
		MaxViolations: opts.MaxViolations,
		Logger:        opts.logger(),
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "law sweep failed", err)
	}

	result.Laws = report.Laws
	result.Checked = report.Checked()
	for _, l := range report.Laws {
		if len(l.Violations) == 0 {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if formatter.IsJSON() {
		return outputCheckJSON(formatter, result)
	}
	return outputCheckText(formatter.Writer, result)
}

// selectLaws resolves --law names, or returns every law when none are given.
func selectLaws(names []string) ([]laws.Law, error) {
	if len(names) == 0 {
		return laws.All(), nil
	}
	selected := make([]laws.Law, 0, len(names))
	for _, name := range names {
		law, ok := laws.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown law %q", name)
		}
		selected = append(selected, law)
	}
	return selected, nil
}

func lawNames(all []laws.Law) []string {
	names := make([]string, len(all))
	for i, l := range all {
		names[i] = l.Name
	}
	return names
}

// outputCheckJSON outputs the check result as JSON.
func outputCheckJSON(formatter *OutputFormatter, result CheckResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}
	if result.Failed > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeLawViolated,
			Message: fmt.Sprintf("%d law(s) violated", result.Failed),
		}
	}

	if err := formatter.Encode(response); err != nil {
		return err
	}
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d law(s) violated", result.Failed))
	}
	return nil
}

// outputCheckText outputs the check result as text.
func outputCheckText(w io.Writer, result CheckResult) error {
	for _, l := range result.Laws {
		if len(l.Violations) == 0 {
			fmt.Fprintf(w, "✓ %s (%d)\n", l.Name, l.Checked)
			continue
		}
		fmt.Fprintf(w, "✗ %s (%d)\n", l.Name, l.Checked)
		for _, v := range l.Violations {
			fmt.Fprintf(w, "  %v: %s\n", v.Operands, v.Message)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Check Summary: %d passed, %d failed, %d evaluations\n", result.Passed, result.Failed, result.Checked)
	if result.Mode == "random" {
		fmt.Fprintf(w, "Seed: %d\n", result.Seed)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d law(s) violated", result.Failed))
	}

	fmt.Fprintln(w, "✓ All laws hold")
	return nil
}
