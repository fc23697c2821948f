// Package engine evaluates primitive operations and records each call.
//
// An evaluation turns (op, lhs, rhs) into an invocation/completion pair:
//
//  1. The op name (or alias) is resolved against the ops catalog.
//  2. The invocation is stamped with the next logical seq and a
//     content-addressed ID.
//  3. The operation runs. Domain violations become failure output cases
//     (DivideByZero, ShiftOutOfRange) instead of errors.
//  4. The completion is stamped with the next seq and, when a store is
//     attached, both records are written in one transaction.
//
// Logical clock: every record carries a monotonic seq from Clock.Next().
// Wall-clock time is never used for ordering.
//
// Replay: operations are referentially transparent, so re-evaluating a
// recorded invocation must reproduce its recorded completion bit for bit.
// Verify walks the store and reports any divergence.
package engine
