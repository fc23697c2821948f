package harness

import (
	"errors"
	"fmt"
	"strings"
)

// MismatchError is reported when a step's completion differs from its
// expect clause.
type MismatchError struct {
	Step         int
	Line         int
	Op           string
	Lhs          int32
	Rhs          int32
	ExpectedCase string
	ActualCase   string
	Expected     *int32
	Actual       int32
}

func (e *MismatchError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "flow[%d]", e.Step)
	if e.Line > 0 {
		fmt.Fprintf(&buf, " (line %d)", e.Line)
	}
	fmt.Fprintf(&buf, ": %s(%d, %d): ", e.Op, e.Lhs, e.Rhs)

	if e.ExpectedCase != e.ActualCase {
		fmt.Fprintf(&buf, "expected case %s, got %s", e.ExpectedCase, e.ActualCase)
		if e.ActualCase == "Success" {
			fmt.Fprintf(&buf, " (value %d)", e.Actual)
		}
		return buf.String()
	}
	fmt.Fprintf(&buf, "expected %d, got %d", *e.Expected, e.Actual)
	return buf.String()
}

// IsMismatch reports whether err is a MismatchError.
func IsMismatch(err error) bool {
	var m *MismatchError
	return errors.As(err, &m)
}

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		n := 0
		for _, event := range e.Trace {
			if event.Type == EventInvocation {
				n++
				fmt.Fprintf(&buf, "  [%d] %s%s\n", n, event.Op, formatArgs(event.Args))
			}
		}
	}

	return buf.String()
}
