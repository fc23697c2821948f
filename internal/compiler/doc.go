// Package compiler turns CUE case suites into ir.SuiteSpec values and
// validates them.
//
// A suite file declares one or more suites under the top-level "suite"
// field:
//
//	suite: shifts: {
//		description: "shift domain"
//		cases: [
//			{op: "shl", lhs: 1, rhs: 1, want: 2},
//			{op: "shl", lhs: 1, rhs: 32, fails: "ShiftOutOfRange"},
//		]
//	}
//
// Every suite is unified with a schema that types operands and results as
// int32, so literals outside the operand domain fail compilation with a
// source position. Semantic checks that need the operation catalog run in
// Validate.
package compiler
