// Package harness runs conformance scenarios against the primops engine.
//
// A scenario feeds literal operand pairs to catalog operations and checks
// each completion against an expected value or failure case. Execution
// halts at the first mismatching step unless the scenario sets
// continue_on_failure.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: comparison_literals
//	description: "Literal comparison checks"
//	flow_token: "flow-comparison"
//	flow:
//	  - invoke: eq
//	    args: { lhs: 1, rhs: 1 }
//	    expect: { value: 1 }
//	  - invoke: div
//	    args: { lhs: 1, rhs: 0 }
//	    expect: { case: DivideByZero }
//	assertions:
//	  - type: trace_count
//	    action: eq
//	    count: 1
//
// CUE suite files (see package compiler) load as one scenario per suite.
//
// # Assertion Types
//
//   - trace_contains: an invocation of action appears, optionally with args
//   - trace_order: actions are first invoked in the given order
//   - trace_count: action is invoked exactly count times
//   - outcome_count: exactly count completions end in the given case
//
// # Deterministic Testing
//
// Every run uses a fresh logical clock and a single flow token (the
// scenario's flow_token, or "test-flow-default"), so the same scenario
// always produces a byte-identical trace. Traces are compared with golden
// files through RunWithGolden.
package harness
