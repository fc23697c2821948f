package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/primops/internal/ir"
	"github.com/roach88/primops/internal/ops"
)

// canonicalOp resolves a name or alias to its catalog name. Unknown names
// are returned unchanged so they simply never match.
func canonicalOp(name string) string {
	if op, ok := ops.Lookup(name); ok {
		return op.String()
	}
	return name
}

// assertTraceContains checks if the trace contains an invocation matching
// the specified action and args (subset match).
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	action := canonicalOp(assertion.Action)
	for _, event := range trace {
		if event.Type == EventInvocation && event.Op == action && matchArgs(event, assertion.Args) {
			return nil
		}
	}

	expected := "action " + action
	if assertion.Args != nil {
		expected += " with args " + formatOperands(assertion.Args)
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: expected,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks if actions are first invoked in the specified
// order. Actions don't need to be consecutive.
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	positions := make(map[string]int)
	pos := 0
	for _, event := range trace {
		if event.Type != EventInvocation {
			continue
		}
		pos++ // 1-indexed for readability
		if positions[event.Op] == 0 {
			positions[event.Op] = pos
		}
	}

	actions := make([]string, len(assertion.Actions))
	for i, a := range assertion.Actions {
		actions[i] = canonicalOp(a)
	}

	for _, action := range actions {
		if positions[action] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all actions present: %v", actions),
				Actual:   fmt.Sprintf("missing action: %s", action),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(actions); i++ {
		prev, curr := actions[i-1], actions[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("actions in order: %v", actions),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}
	return nil
}

// assertTraceCount checks if the action is invoked exactly Count times.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	action := canonicalOp(assertion.Action)
	count := 0
	for _, event := range trace {
		if event.Type == EventInvocation && event.Op == action {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, action),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertOutcomeCount checks if exactly Count completions end in Case.
func assertOutcomeCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Type == EventCompletion && event.OutputCase == assertion.Case {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertOutcomeCount,
			Expected: fmt.Sprintf("%d completions with case %s", assertion.Count, assertion.Case),
			Actual:   fmt.Sprintf("%d completions", count),
			Trace:    trace,
		}
	}
	return nil
}

// matchArgs checks the invocation operands against the expected subset.
func matchArgs(event TraceEvent, expected *Operands) bool {
	if expected == nil {
		return true
	}
	if expected.Lhs != nil {
		if v, err := event.Args.Int32("lhs"); err != nil || v != *expected.Lhs {
			return false
		}
	}
	if expected.Rhs != nil {
		if v, err := event.Args.Int32("rhs"); err != nil || v != *expected.Rhs {
			return false
		}
	}
	return true
}

func formatOperands(o *Operands) string {
	var parts []string
	if o.Lhs != nil {
		parts = append(parts, fmt.Sprintf("lhs=%d", *o.Lhs))
	}
	if o.Rhs != nil {
		parts = append(parts, fmt.Sprintf("rhs=%d", *o.Rhs))
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// formatArgs renders invocation operands as "(lhs, rhs)".
func formatArgs(args ir.IRObject) string {
	return fmt.Sprintf("(%v, %v)", args["lhs"], args["rhs"])
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertOutcomeCount:
			err = assertOutcomeCount(result.Trace, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
