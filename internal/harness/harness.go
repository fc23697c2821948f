package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/primops/internal/engine"
	"github.com/roach88/primops/internal/ir"
	"github.com/roach88/primops/internal/store"
	"github.com/roach88/primops/internal/testutil"
)

// Harness executes one scenario against a dedicated engine.
type Harness struct {
	store     *store.Store
	engine    *engine.Engine
	logger    *slog.Logger
	keepGoing bool
}

type runConfig struct {
	store     *store.Store
	logger    *slog.Logger
	keepGoing bool
}

// RunOption configures Run.
type RunOption func(*runConfig)

// WithStore records the run in s instead of a throwaway in-memory store.
// The logical clock resumes after the last seq already in s.
func WithStore(s *store.Store) RunOption {
	return func(c *runConfig) {
		c.store = s
	}
}

// WithLogger sets the structured logger. The default discards.
func WithLogger(l *slog.Logger) RunOption {
	return func(c *runConfig) {
		c.logger = l
	}
}

// WithKeepGoing evaluates every step even after a mismatch, regardless of
// the scenario's continue_on_failure.
func WithKeepGoing(keepGoing bool) RunOption {
	return func(c *runConfig) {
		c.keepGoing = keepGoing
	}
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Open the run log (fresh in-memory store unless WithStore is given)
//  2. Evaluate flow steps in order, checking each expect clause; stop at
//     the first mismatch unless continue_on_failure is set
//  3. If the flow was not halted, evaluate assertions and replay the
//     recorded calls
//
// A mismatch is reported through the result, not the error. The error is
// reserved for failures of the harness itself.
func Run(ctx context.Context, scenario *Scenario, opts ...RunOption) (*Result, error) {
	cfg := runConfig{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	st := cfg.store
	if st == nil {
		mem, err := store.Open(":memory:")
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory store: %w", err)
		}
		defer mem.Close()
		st = mem
	}

	lastSeq, err := st.GetLastSeq(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read last seq: %w", err)
	}

	eng := engine.New(
		testutil.NewScenarioFlowGenerator(scenario.FlowToken),
		engine.WithStore(st),
		engine.WithClock(engine.NewClockAt(lastSeq)),
		engine.WithLogger(cfg.logger),
	)

	h := &Harness{
		store:     st,
		engine:    eng,
		logger:    cfg.logger.With("scenario", scenario.Name),
		keepGoing: cfg.keepGoing || scenario.ContinueOnFailure,
	}

	result := NewResult(eng.NewFlow())
	if err := h.executeFlow(ctx, scenario.Flow, result); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}
	if result.Halted() {
		h.logger.Info("scenario halted", "step", result.HaltedAt)
		return result, nil
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	if err := h.verifyReplay(ctx, result); err != nil {
		return nil, err
	}

	h.logger.Info("scenario finished", "pass", result.Pass, "steps", result.StepsRun)
	return result, nil
}

// executeFlow evaluates flow steps in order and checks expect clauses.
func (h *Harness) executeFlow(ctx context.Context, flow []FlowStep, result *Result) error {
	for i, step := range flow {
		if step.Args.Lhs == nil || step.Args.Rhs == nil {
			return fmt.Errorf("flow step %d: args must set both lhs and rhs", i)
		}
		lhs, rhs := *step.Args.Lhs, *step.Args.Rhs

		call, err := h.engine.Invoke(ctx, result.FlowToken, step.Invoke, lhs, rhs)
		if err != nil {
			return fmt.Errorf("flow step %d: %w", i, err)
		}
		result.StepsRun++
		result.AddInvocationTrace(call.Invocation)
		result.AddCompletionTrace(call.Completion)

		h.logger.Debug("flow step completed",
			"step", i,
			"op", string(call.Invocation.Op),
			"invocation_id", call.Invocation.ID,
			"completion_id", call.Completion.ID,
			"output_case", call.Completion.OutputCase,
		)

		mismatch := checkExpect(i, step, call.Completion)
		if mismatch == nil {
			continue
		}
		result.AddError(mismatch.Error())
		if !h.keepGoing {
			result.HaltedAt = i
			return nil
		}
	}
	return nil
}

// checkExpect compares a completion with the step's expect clause.
func checkExpect(index int, step FlowStep, comp ir.Completion) *MismatchError {
	if step.Expect == nil {
		return nil
	}

	expectedCase := step.Expect.OutputCase()
	caseMatches := comp.OutputCase == expectedCase
	valueMatches := step.Expect.Value == nil || (comp.Succeeded() && comp.Value == *step.Expect.Value)
	if caseMatches && valueMatches {
		return nil
	}

	return &MismatchError{
		Step:         index,
		Line:         step.Line,
		Op:           step.Invoke,
		Lhs:          *step.Args.Lhs,
		Rhs:          *step.Args.Rhs,
		ExpectedCase: expectedCase,
		ActualCase:   comp.OutputCase,
		Expected:     step.Expect.Value,
		Actual:       comp.Value,
	}
}

// verifyReplay re-evaluates the recorded calls of the run's flow.
func (h *Harness) verifyReplay(ctx context.Context, result *Result) error {
	report, err := engine.Verify(ctx, h.store, result.FlowToken)
	if err != nil {
		return fmt.Errorf("failed to verify replay: %w", err)
	}
	for _, d := range report.Divergences {
		result.AddError(fmt.Sprintf("replay: %s(%d, %d): %s", d.Op, d.Lhs, d.Rhs, d.Reason))
	}
	return nil
}
