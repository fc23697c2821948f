package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/roach88/primops/internal/ir"
	"github.com/roach88/primops/internal/ops"
	"github.com/roach88/primops/internal/store"
)

// Engine evaluates operations and stamps every call with logical time.
//
// Thread-safety model:
//   - Invoke(): safe from any goroutine; seq values are unique per engine
//   - NewFlow(): safe if the generator is
//   - store writes are serialized by the store's single connection
type Engine struct {
	store   *store.Store // nil: calls are not persisted
	clock   *Clock
	flowGen FlowTokenGenerator
	logger  *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithStore persists every call to s.
func WithStore(s *store.Store) EngineOption {
	return func(e *Engine) {
		e.store = s
	}
}

// WithClock uses c instead of a fresh clock. Pass NewClockAt(lastSeq) to
// append to an existing run log.
func WithClock(c *Clock) EngineOption {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithLogger sets the structured logger. The default discards.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine with the given flow generator.
func New(flowGen FlowTokenGenerator, opts ...EngineOption) *Engine {
	e := &Engine{
		clock:   NewClock(),
		flowGen: flowGen,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Clock returns the engine's logical clock.
func (e *Engine) Clock() *Clock {
	return e.clock
}

// NewFlow generates a flow token for a new group of calls.
func (e *Engine) NewFlow() string {
	return e.flowGen.Generate()
}

// Call is one evaluated invocation and its completion.
type Call struct {
	Invocation ir.Invocation
	Completion ir.Completion

	// Violation is the domain error behind a failure completion, nil on
	// success.
	Violation error
}

// Value returns the result and whether the call succeeded.
func (c Call) Value() (int32, bool) {
	return c.Completion.Value, c.Completion.Succeeded()
}

// Invoke evaluates op (a catalog name or alias) on lhs and rhs.
//
// Domain violations are reported through the completion's output case and
// Call.Violation, not as an error. The error return is reserved for unknown
// operations, context cancellation, and store failures.
func (e *Engine) Invoke(ctx context.Context, flowToken, op string, lhs, rhs int32) (Call, error) {
	if err := ctx.Err(); err != nil {
		return Call{}, err
	}

	resolved, ok := ops.Lookup(op)
	if !ok {
		return Call{}, NewUnknownOperationError(flowToken, op)
	}

	call, err := evaluate(flowToken, resolved, lhs, rhs, e.clock.Next(), e.clock.Next)
	if err != nil {
		return Call{}, err
	}

	e.logger.Debug("call evaluated",
		"flow", flowToken,
		"op", resolved.String(),
		"lhs", lhs,
		"rhs", rhs,
		"output_case", call.Completion.OutputCase,
		"value", call.Completion.Value,
		"seq", call.Invocation.Seq,
	)

	if e.store != nil {
		if err := e.store.WriteCall(ctx, call.Invocation, call.Completion); err != nil {
			return Call{}, NewStoreError(flowToken, "record call", err)
		}
	}
	return call, nil
}

// evaluate builds the invocation/completion pair for one call.
// completionSeq is called after the operation runs.
func evaluate(flowToken string, op ops.Op, lhs, rhs int32, invSeq int64, completionSeq func() int64) (Call, error) {
	opRef := ir.OpRef(op.String())
	invID, err := ir.InvocationID(flowToken, opRef, lhs, rhs, invSeq)
	if err != nil {
		return Call{}, err
	}
	inv := ir.Invocation{
		ID:            invID,
		FlowToken:     flowToken,
		Op:            opRef,
		Lhs:           lhs,
		Rhs:           rhs,
		Seq:           invSeq,
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}

	value, violation := ops.Apply(op, lhs, rhs)
	outputCase, ok := OutputCase(violation)
	if !ok {
		return Call{}, violation
	}
	if outputCase != ir.CaseSuccess {
		value = 0
	}

	comp, err := completionFor(inv, outputCase, value, completionSeq())
	if err != nil {
		return Call{}, err
	}
	return Call{Invocation: inv, Completion: comp, Violation: violation}, nil
}

func completionFor(inv ir.Invocation, outputCase string, value int32, seq int64) (ir.Completion, error) {
	id, err := ir.CompletionID(inv.ID, outputCase, value, seq)
	if err != nil {
		return ir.Completion{}, err
	}
	return ir.Completion{
		ID:           id,
		InvocationID: inv.ID,
		OutputCase:   outputCase,
		Value:        value,
		Seq:          seq,
	}, nil
}

// OutputCase maps the error returned by an operation to its output case.
// nil maps to Success; ok is false for errors that are not domain violations.
func OutputCase(err error) (outputCase string, ok bool) {
	switch {
	case err == nil:
		return ir.CaseSuccess, true
	case errors.Is(err, ops.ErrDivideByZero):
		return ir.CaseDivideByZero, true
	case errors.Is(err, ops.ErrShiftOutOfRange):
		return ir.CaseShiftOutOfRange, true
	default:
		return "", false
	}
}
