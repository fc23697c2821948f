package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/primops/internal/engine"
	"github.com/roach88/primops/internal/ir"
	"github.com/roach88/primops/internal/ops"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	Database  string // record the call when set
	FlowToken string // flow to record under, generated when empty
}

// EvalResult is the outcome of a single evaluation.
type EvalResult struct {
	Op           string `json:"op"`
	Lhs          int32  `json:"lhs"`
	Rhs          int32  `json:"rhs"`
	OutputCase   string `json:"output_case"`
	Value        *int32 `json:"value,omitempty"`
	FlowToken    string `json:"flow_token,omitempty"`
	InvocationID string `json:"invocation_id,omitempty"`
	Seq          int64  `json:"seq,omitempty"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <op> <lhs> <rhs>",
		Short: "Evaluate one operation",
		Long: `Evaluate one primitive operation on two 32-bit signed integers.

The op is a catalog name or alias (see "primops list"). Operands are
decimal and must fit in int32. Flags go before the op so that negative
operands are not parsed as flags.

Exit codes:
  0 - The operation returned a value
  1 - Domain violation (DivideByZero or ShiftOutOfRange)
  2 - Command error (unknown op, bad operand, database error)

Examples:
  primops eval add 2147483647 1
  primops eval div -7 2
  primops eval --db ./primops.db --flow demo shl 1 31
  primops --format json eval shr -8 1`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd.Context(), opts, args[0], args[1], args[2], cmd)
		},
	}

	// Stop flag parsing at the op so "-1" is an operand.
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the call in this SQLite database")
	cmd.Flags().StringVar(&opts.FlowToken, "flow", "", "flow token to record under (default: new UUIDv7)")

	return cmd
}

func runEval(ctx context.Context, opts *EvalOptions, opName, rawLhs, rawRhs string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	op, ok := ops.Lookup(opName)
	if !ok {
		return formatter.Fail(ExitCommandError, ErrCodeUnknownOp,
			fmt.Sprintf("unknown operation %q", opName), ops.Names())
	}
	lhs, err := engine.ParseOperand("lhs", rawLhs)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeBadOperand, err.Error(), nil)
	}
	rhs, err := engine.ParseOperand("rhs", rawRhs)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeBadOperand, err.Error(), nil)
	}

	var gen engine.FlowTokenGenerator = engine.UUIDv7Generator{}
	if opts.FlowToken != "" {
		gen = engine.NewFixedGenerator(opts.FlowToken)
	}
	engineOpts := []engine.EngineOption{engine.WithLogger(opts.logger())}

	recorded := opts.Database != ""
	if recorded {
		st, err := openDatabase(formatter, opts.Database)
		if err != nil {
			return err
		}
		defer st.Close()

		lastSeq, err := st.GetLastSeq(ctx)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, fmt.Sprintf("failed to read database: %v", err), nil)
		}
		engineOpts = append(engineOpts, engine.WithStore(st), engine.WithClock(engine.NewClockAt(lastSeq)))
	}

	eng := engine.New(gen, engineOpts...)
	flowToken := eng.NewFlow()
	call, err := eng.Invoke(ctx, flowToken, op.String(), lhs, rhs)
	if err != nil {
		return WrapExitError(ExitCommandError, "evaluation failed", err)
	}

	result := EvalResult{
		Op:         op.String(),
		Lhs:        lhs,
		Rhs:        rhs,
		OutputCase: call.Completion.OutputCase,
	}
	if value, ok := call.Value(); ok {
		result.Value = &value
	}
	if recorded {
		result.FlowToken = flowToken
		result.InvocationID = call.Invocation.ID
		result.Seq = call.Invocation.Seq
		formatter.VerboseLog("Recorded %s at seq %d in flow %s", call.Invocation.ID, call.Invocation.Seq, flowToken)
	}

	if call.Violation != nil {
		return outputEvalViolation(formatter, result, call.Violation)
	}
	return outputEvalSuccess(formatter, result)
}

func outputEvalSuccess(formatter *OutputFormatter, result EvalResult) error {
	if formatter.IsJSON() {
		return formatter.Encode(CLIResponse{Status: "ok", Data: result, TraceID: result.FlowToken})
	}
	return formatter.Success(*result.Value)
}

// outputEvalViolation reports a domain violation with exit code 1.
func outputEvalViolation(formatter *OutputFormatter, result EvalResult, violation error) error {
	if formatter.IsJSON() {
		if err := formatter.Encode(CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    ErrCodeDomainViolation,
				Message: violation.Error(),
				Details: ir.IRObject{"output_case": ir.IRString(result.OutputCase)},
			},
			TraceID: result.FlowToken,
		}); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(formatter.Writer, "✗ %s\n", result.OutputCase)
		fmt.Fprintf(formatter.Writer, "  %v\n", violation)
	}
	return WrapExitError(ExitFailure, result.OutputCase, violation)
}
