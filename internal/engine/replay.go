package engine

import (
	"context"
	"fmt"

	"github.com/google/go-cmp/cmp"

	"github.com/roach88/primops/internal/ir"
	"github.com/roach88/primops/internal/ops"
	"github.com/roach88/primops/internal/store"
)

// Divergence describes a recorded call that does not reproduce.
type Divergence struct {
	InvocationID string
	FlowToken    string
	Op           ir.OpRef
	Lhs          int32
	Rhs          int32
	Reason       string
	Diff         string // go-cmp diff, recorded (-) vs recomputed (+)
}

// VerifyReport summarizes a replay verification.
type VerifyReport struct {
	Checked     int
	Pending     int // Invocations recorded without a completion
	Divergences []Divergence
}

// OK reports whether every recorded call reproduced.
func (r VerifyReport) OK() bool {
	return len(r.Divergences) == 0
}

// Verify re-evaluates every recorded invocation in s and compares the result
// with the recorded completion. An empty flowToken verifies all flows.
//
// Both record IDs are recomputed from content, so tampered operands or
// outcomes are reported even when the value happens to match.
func Verify(ctx context.Context, s *store.Store, flowToken string) (VerifyReport, error) {
	var (
		invocations []ir.Invocation
		completions []ir.Completion
		err         error
	)
	if flowToken == "" {
		invocations, err = s.ReadAllInvocations(ctx)
		if err == nil {
			completions, err = s.ReadAllCompletions(ctx)
		}
	} else {
		invocations, completions, err = s.ReadFlow(ctx, flowToken)
	}
	if err != nil {
		return VerifyReport{}, NewStoreError(flowToken, "read run log", err)
	}

	byInvocation := make(map[string]ir.Completion, len(completions))
	for _, comp := range completions {
		byInvocation[comp.InvocationID] = comp
	}

	var report VerifyReport
	for _, inv := range invocations {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		recorded, ok := byInvocation[inv.ID]
		if !ok {
			report.Pending++
			continue
		}
		report.Checked++

		if d, diverged := verifyCall(inv, recorded); diverged {
			report.Divergences = append(report.Divergences, d)
		}
	}
	return report, nil
}

func verifyCall(inv ir.Invocation, recorded ir.Completion) (Divergence, bool) {
	d := Divergence{
		InvocationID: inv.ID,
		FlowToken:    inv.FlowToken,
		Op:           inv.Op,
		Lhs:          inv.Lhs,
		Rhs:          inv.Rhs,
	}

	op, ok := ops.Lookup(string(inv.Op))
	if !ok {
		d.Reason = fmt.Sprintf("unknown operation %q", inv.Op)
		return d, true
	}

	seq := recorded.Seq
	call, err := evaluate(inv.FlowToken, op, inv.Lhs, inv.Rhs, inv.Seq, func() int64 { return seq })
	if err != nil {
		d.Reason = err.Error()
		return d, true
	}

	if call.Invocation.ID != inv.ID {
		d.Reason = "invocation ID does not match its content"
		d.Diff = cmp.Diff(inv, call.Invocation)
		return d, true
	}
	if diff := cmp.Diff(recorded, call.Completion); diff != "" {
		d.Reason = "completion does not reproduce"
		d.Diff = diff
		return d, true
	}
	return Divergence{}, false
}
