package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/primops/internal/ir"
	"github.com/roach88/primops/internal/ops"
	"github.com/roach88/primops/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database  string
	FlowToken string
	Op        string // optional - filter to one operation
}

// TraceEvent represents a single event in the trace timeline.
type TraceEvent struct {
	Seq          int64       `json:"seq"`
	Type         string      `json:"type"` // "invocation" or "completion"
	ID           string      `json:"id"`
	InvocationID string      `json:"invocation_id,omitempty"`
	Op           string      `json:"op,omitempty"`
	Args         ir.IRObject `json:"args,omitempty"`
	OutputCase   string      `json:"output_case,omitempty"`
	Result       ir.IRObject `json:"result,omitempty"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	FlowToken string         `json:"flow_token"`
	Timeline  []TraceEvent   `json:"timeline"`
	Outcomes  map[string]int `json:"outcomes"`
	Stats     TraceStats     `json:"stats"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	TotalEvents int   `json:"total_events"`
	Invocations int   `json:"invocations"`
	Completions int   `json:"completions"`
	Pending     int   `json:"pending"`
	LastSeq     int64 `json:"last_seq"`
	IsComplete  bool  `json:"is_complete"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Print the timeline of a recorded flow",
		Long: `Print every invocation and completion recorded for one flow, in
logical-clock order, with a count of completions per output case.

With --op only calls of that operation (name or alias) are listed.
Outcome counts and stats always cover the whole flow.

Examples:
  primops trace --db ./primops.db --flow flow-shifts
  primops trace --db ./primops.db --flow flow-shifts --op shl
  primops trace --db ./primops.db --flow flow-shifts --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.FlowToken, "flow", "", "flow token to trace (required)")
	_ = cmd.MarkFlagRequired("flow")
	cmd.Flags().StringVar(&opts.Op, "op", "", "only list calls of this operation")

	return cmd
}

func runTrace(ctx context.Context, opts *TraceOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	var opFilter string
	if opts.Op != "" {
		op, ok := ops.Lookup(opts.Op)
		if !ok {
			return formatter.Fail(ExitCommandError, ErrCodeUnknownOp, fmt.Sprintf("unknown operation %q", opts.Op), ops.Names())
		}
		opFilter = op.String()
	}

	st, err := openDatabase(formatter, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	state, err := st.GetFlowState(ctx, opts.FlowToken)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to get flow state", err)
	}
	events, err := st.ReplayFlow(ctx, opts.FlowToken)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to replay flow", err)
	}

	if len(events) == 0 {
		if formatter.IsJSON() {
			return formatter.Success(TraceResult{
				FlowToken: opts.FlowToken,
				Timeline:  []TraceEvent{},
				Outcomes:  map[string]int{},
			})
		}
		fmt.Fprintf(formatter.Writer, "No events found for flow: %s\n", opts.FlowToken)
		return nil
	}

	outcomes, err := st.CountOutcomes(ctx, opts.FlowToken)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to count outcomes", err)
	}

	timeline := buildTimeline(events, opFilter)
	result := TraceResult{
		FlowToken: opts.FlowToken,
		Timeline:  timeline,
		Outcomes:  outcomes,
		Stats: TraceStats{
			TotalEvents: len(timeline),
			Invocations: len(state.Invocations),
			Completions: len(state.Completions),
			Pending:     state.PendingCount,
			LastSeq:     state.LastSeq,
			IsComplete:  state.IsComplete,
		},
	}

	if formatter.IsJSON() {
		return formatter.Success(result)
	}
	return outputTraceText(formatter.Writer, result, opts.Verbose)
}

// buildTimeline converts store events to timeline events.
// When opFilter is set, only invocations of that op and their completions
// are included.
func buildTimeline(events []store.FlowEvent, opFilter string) []TraceEvent {
	timeline := []TraceEvent{}
	matched := make(map[string]bool)

	for _, event := range events {
		switch event.Type {
		case store.EventInvocation:
			inv := event.Invocation
			if inv == nil || (opFilter != "" && string(inv.Op) != opFilter) {
				continue
			}
			matched[inv.ID] = true
			timeline = append(timeline, TraceEvent{
				Seq:  event.Seq,
				Type: event.Type.String(),
				ID:   inv.ID,
				Op:   string(inv.Op),
				Args: inv.Args(),
			})

		case store.EventCompletion:
			comp := event.Completion
			// ReplayFlow orders a completion after its invocation
			if comp == nil || !matched[comp.InvocationID] {
				continue
			}
			timeline = append(timeline, TraceEvent{
				Seq:          event.Seq,
				Type:         event.Type.String(),
				ID:           comp.ID,
				InvocationID: comp.InvocationID,
				OutputCase:   comp.OutputCase,
				Result:       comp.Result(),
			})
		}
	}
	return timeline
}

// outputTraceText outputs the trace result as text.
func outputTraceText(w io.Writer, result TraceResult, verbose bool) error {
	fmt.Fprintf(w, "Trace for Flow: %s\n", result.FlowToken)
	fmt.Fprintf(w, "Status: %s\n", completeStatus(result.Stats.IsComplete))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Timeline ===")
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no events)")
	}
	for _, event := range result.Timeline {
		formatTimelineEvent(w, event, verbose)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Outcomes ===")
	cases := make([]string, 0, len(result.Outcomes))
	for c := range result.Outcomes {
		cases = append(cases, c)
	}
	slices.Sort(cases)
	for _, c := range cases {
		fmt.Fprintf(w, "  %-16s %d\n", c+":", result.Outcomes[c])
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Total Events: %d\n", result.Stats.TotalEvents)
	fmt.Fprintf(w, "  Invocations:  %d\n", result.Stats.Invocations)
	fmt.Fprintf(w, "  Completions:  %d\n", result.Stats.Completions)
	fmt.Fprintf(w, "  Pending:      %d\n", result.Stats.Pending)

	return nil
}

// formatTimelineEvent formats a single timeline event for text output.
func formatTimelineEvent(w io.Writer, event TraceEvent, verbose bool) {
	switch event.Type {
	case "invocation":
		fmt.Fprintf(w, "  [%d] INV  %s%s\n", event.Seq, event.Op, formatIRArgs(event.Args))
	case "completion":
		fmt.Fprintf(w, "  [%d] COMP %s", event.Seq, event.OutputCase)
		if v, ok := event.Result["value"]; ok {
			fmt.Fprintf(w, " = %d", v)
		}
		fmt.Fprintln(w)
	}
	if verbose {
		fmt.Fprintf(w, "       ID: %s\n", truncateID(event.ID))
	}
}

// formatIRArgs renders operands as "(lhs, rhs)".
func formatIRArgs(args ir.IRObject) string {
	lhs, errL := args.Int32("lhs")
	rhs, errR := args.Int32("rhs")
	if errL != nil || errR != nil {
		parts := make([]string, 0, len(args))
		for _, k := range args.SortedKeys() {
			parts = append(parts, fmt.Sprintf("%s=%v", k, args[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return fmt.Sprintf("(%d, %d)", lhs, rhs)
}

// truncateID truncates a long ID for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}

// completeStatus returns a human-readable completion status.
func completeStatus(isComplete bool) string {
	if isComplete {
		return "Complete"
	}
	return "Incomplete (pending invocations)"
}
