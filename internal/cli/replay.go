package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/primops/internal/engine"
	"github.com/roach88/primops/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database  string
	FlowToken string // optional - specific flow only
}

// ReplayDivergence describes one recorded call that did not reproduce.
type ReplayDivergence struct {
	InvocationID string `json:"invocation_id"`
	Op           string `json:"op"`
	Lhs          int32  `json:"lhs"`
	Rhs          int32  `json:"rhs"`
	Reason       string `json:"reason"`
	Diff         string `json:"diff,omitempty"`
}

// ReplayFlowResult holds the replay result for a single flow.
type ReplayFlowResult struct {
	FlowToken     string             `json:"flow_token"`
	Checked       int                `json:"checked"`
	Pending       int                `json:"pending"`
	IsComplete    bool               `json:"is_complete"`
	Deterministic bool               `json:"deterministic"`
	Divergences   []ReplayDivergence `json:"divergences,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Flows            []ReplayFlowResult `json:"flows"`
	TotalFlows       int                `json:"total_flows"`
	TotalChecked     int                `json:"total_checked"`
	AllDeterministic bool               `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-evaluate recorded calls and verify they reproduce",
		Long: `Re-evaluate every recorded invocation and compare the outcome with its
recorded completion.

Every operation is a pure function of its operands, so a recorded call
must reproduce exactly: same output case, same value, same content
addressed IDs. Any difference is reported as a divergence.

Exit codes:
  0 - Every recorded call reproduced
  1 - One or more divergences
  2 - Command error (database not found, etc.)

Examples:
  primops replay --db ./primops.db
  primops replay --db ./primops.db --flow flow-shifts
  primops replay --db ./primops.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.FlowToken, "flow", "", "replay specific flow only")

	return cmd
}

func runReplay(ctx context.Context, opts *ReplayOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openDatabase(formatter, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	var flowTokens []string
	if opts.FlowToken != "" {
		flowTokens = []string{opts.FlowToken}
	} else {
		flowTokens, err = st.ListFlowTokens(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list flow tokens", err)
		}
	}

	result := ReplayResult{
		Flows:            make([]ReplayFlowResult, 0, len(flowTokens)),
		TotalFlows:       len(flowTokens),
		AllDeterministic: true,
	}

	if len(flowTokens) == 0 {
		if formatter.IsJSON() {
			return outputReplayJSON(formatter, result)
		}
		fmt.Fprintln(formatter.Writer, "No flows found in database.")
		return nil
	}

	for _, token := range flowTokens {
		formatter.VerboseLog("Replaying flow %s", token)
		flowResult, err := replayFlow(ctx, st, token)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay flow %s", token), err)
		}
		result.Flows = append(result.Flows, flowResult)
		result.TotalChecked += flowResult.Checked
		if !flowResult.Deterministic {
			result.AllDeterministic = false
		}
	}

	if formatter.IsJSON() {
		return outputReplayJSON(formatter, result)
	}
	return outputReplayText(formatter.Writer, result, opts.Verbose)
}

// replayFlow verifies every recorded call of one flow.
func replayFlow(ctx context.Context, st *store.Store, flowToken string) (ReplayFlowResult, error) {
	state, err := st.GetFlowState(ctx, flowToken)
	if err != nil {
		return ReplayFlowResult{}, err
	}

	report, err := engine.Verify(ctx, st, flowToken)
	if err != nil {
		return ReplayFlowResult{}, err
	}

	flowResult := ReplayFlowResult{
		FlowToken:     flowToken,
		Checked:       report.Checked,
		Pending:       report.Pending,
		IsComplete:    state.IsComplete,
		Deterministic: report.OK(),
	}
	for _, d := range report.Divergences {
		flowResult.Divergences = append(flowResult.Divergences, ReplayDivergence{
			InvocationID: d.InvocationID,
			Op:           string(d.Op),
			Lhs:          d.Lhs,
			Rhs:          d.Rhs,
			Reason:       d.Reason,
			Diff:         d.Diff,
		})
	}
	return flowResult, nil
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(formatter *OutputFormatter, result ReplayResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}
	if !result.AllDeterministic {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeDivergence,
			Message: "replay verification failed",
		}
	}

	if err := formatter.Encode(response); err != nil {
		return err
	}

	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "replay verification failed")
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(w io.Writer, result ReplayResult, verbose bool) error {
	fmt.Fprintf(w, "Replay Summary: %d flow(s), %d call(s) checked\n", result.TotalFlows, result.TotalChecked)
	fmt.Fprintln(w)

	for _, flow := range result.Flows {
		status := "✓"
		if !flow.Deterministic {
			status = "✗"
		}
		fmt.Fprintf(w, "%s Flow: %s\n", status, flow.FlowToken)
		fmt.Fprintf(w, "  Calls: %d checked, %d pending\n", flow.Checked, flow.Pending)

		for _, d := range flow.Divergences {
			fmt.Fprintf(w, "  %s(%d, %d) %s: %s\n", d.Op, d.Lhs, d.Rhs, truncateID(d.InvocationID), d.Reason)
			if verbose && d.Diff != "" {
				fmt.Fprintf(w, "%s\n", d.Diff)
			}
		}
	}

	fmt.Fprintln(w)
	if !result.AllDeterministic {
		fmt.Fprintln(w, "✗ Replay verification failed")
		return NewExitError(ExitFailure, "replay verification failed")
	}

	fmt.Fprintln(w, "✓ All recorded calls reproduced")
	return nil
}
