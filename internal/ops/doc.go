// Package ops implements the primitive integer operation set.
//
// Every operation takes two 32-bit two's-complement signed integers and
// produces one integer of the same width. Comparisons encode their result
// as 0 or 1.
//
// # Arithmetic Model
//
// Width is 32 bits. Add, Sub and Mul wrap modulo 2^32. Div truncates toward
// zero, and MinValue / -1 wraps to MinValue.
//
// # Domain Violations
//
// Two calls fall outside the domain and fail with a *DomainError instead of
// returning a value:
//
//   - Div with rhs == 0 (ErrDivideByZero)
//   - Shl or Shr with a count outside [0, Width) (ErrShiftOutOfRange)
//
// Every other operation is total.
//
// # Concurrency
//
// All functions are pure: no shared state, no allocation on the success
// path, no blocking. They may be called from any number of goroutines.
//
// The catalog (Catalog, Lookup, Apply) is immutable package-level data used
// for dispatch by name.
package ops
