package ops

import "math"

// Width is the bit width of the integer domain.
const Width = 32

// Bounds of the integer domain.
const (
	MinValue int32 = math.MinInt32
	MaxValue int32 = math.MaxInt32
)

func bit(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// Eq returns 1 if lhs == rhs, 0 otherwise.
func Eq(lhs, rhs int32) int32 { return bit(lhs == rhs) }

// Neq returns 1 if lhs != rhs, 0 otherwise.
func Neq(lhs, rhs int32) int32 { return bit(lhs != rhs) }

// Lt returns 1 if lhs < rhs, 0 otherwise.
func Lt(lhs, rhs int32) int32 { return bit(lhs < rhs) }

// Gt returns 1 if lhs > rhs, 0 otherwise.
func Gt(lhs, rhs int32) int32 { return bit(lhs > rhs) }

// Lte returns 1 if lhs <= rhs, 0 otherwise.
func Lte(lhs, rhs int32) int32 { return bit(lhs <= rhs) }

// Gte returns 1 if lhs >= rhs, 0 otherwise.
func Gte(lhs, rhs int32) int32 { return bit(lhs >= rhs) }

// Add returns lhs + rhs with two's-complement wraparound.
func Add(lhs, rhs int32) int32 { return lhs + rhs }

// Sub returns lhs - rhs with two's-complement wraparound.
func Sub(lhs, rhs int32) int32 { return lhs - rhs }

// Mul returns the low 32 bits of lhs * rhs.
func Mul(lhs, rhs int32) int32 { return lhs * rhs }

// Div returns lhs / rhs truncated toward zero.
//
// A zero divisor fails with ErrDivideByZero. MinValue / -1 overflows the
// domain and wraps to MinValue.
func Div(lhs, rhs int32) (int32, error) {
	if rhs == 0 {
		return 0, newDomainError(ErrCodeDivideByZero, OpDiv, lhs, rhs)
	}
	if lhs == MinValue && rhs == -1 {
		return MinValue, nil
	}
	return lhs / rhs, nil
}

// And returns the bitwise AND of lhs and rhs.
func And(lhs, rhs int32) int32 { return lhs & rhs }

// Or returns the bitwise OR of lhs and rhs.
func Or(lhs, rhs int32) int32 { return lhs | rhs }

// Shl shifts lhs left by count bits, discarding bits shifted past the top.
// count must be in [0, Width).
func Shl(lhs, count int32) (int32, error) {
	if !shiftInRange(count) {
		return 0, newDomainError(ErrCodeShiftOutOfRange, OpShl, lhs, count)
	}
	return lhs << uint(count), nil
}

// Shr shifts lhs right by count bits, replicating the sign bit.
// count must be in [0, Width).
func Shr(lhs, count int32) (int32, error) {
	if !shiftInRange(count) {
		return 0, newDomainError(ErrCodeShiftOutOfRange, OpShr, lhs, count)
	}
	return lhs >> uint(count), nil
}

func shiftInRange(count int32) bool {
	return count >= 0 && count < Width
}
