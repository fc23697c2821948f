package harness

import "github.com/roach88/primops/internal/ir"

// Trace event types.
const (
	EventInvocation = "invocation"
	EventCompletion = "completion"
)

// TraceEvent is one invocation or completion in execution order.
type TraceEvent struct {
	Type       string      `json:"type"` // "invocation" or "completion"
	Op         string      `json:"op,omitempty"`
	Args       ir.IRObject `json:"args,omitempty"`
	OutputCase string      `json:"output_case,omitempty"`
	Result     ir.IRObject `json:"result,omitempty"`
	Seq        int64       `json:"seq"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every executed step matched its expect clause and
	// every assertion held.
	Pass bool `json:"pass"`

	// FlowToken is the flow every call of the run was recorded under.
	FlowToken string `json:"flow_token"`

	// Trace holds all invocations and completions in seq order.
	Trace []TraceEvent `json:"trace"`

	// Errors holds mismatch and assertion messages. Empty if Pass.
	Errors []string `json:"errors,omitempty"`

	// StepsRun counts flow steps that were evaluated.
	StepsRun int `json:"steps_run"`

	// HaltedAt is the index of the step that stopped the run, or -1 when
	// the run was not halted.
	HaltedAt int `json:"halted_at"`
}

// NewResult creates a new passing result.
func NewResult(flowToken string) *Result {
	return &Result{
		Pass:      true,
		FlowToken: flowToken,
		Trace:     []TraceEvent{},
		Errors:    []string{},
		HaltedAt:  -1,
	}
}

// Halted reports whether the run stopped before the end of the flow.
func (r *Result) Halted() bool {
	return r.HaltedAt >= 0
}

// AddError records a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddInvocationTrace appends an invocation to the trace.
func (r *Result) AddInvocationTrace(inv ir.Invocation) {
	r.Trace = append(r.Trace, TraceEvent{
		Type: EventInvocation,
		Op:   string(inv.Op),
		Args: inv.Args(),
		Seq:  inv.Seq,
	})
}

// AddCompletionTrace appends a completion to the trace.
func (r *Result) AddCompletionTrace(comp ir.Completion) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:       EventCompletion,
		OutputCase: comp.OutputCase,
		Result:     comp.Result(),
		Seq:        comp.Seq,
	})
}
