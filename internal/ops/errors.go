package ops

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a domain violation.
type ErrorCode string

const (
	// ErrCodeDivideByZero indicates Div was called with rhs == 0.
	ErrCodeDivideByZero ErrorCode = "DIVIDE_BY_ZERO"

	// ErrCodeShiftOutOfRange indicates a shift count outside [0, Width).
	ErrCodeShiftOutOfRange ErrorCode = "SHIFT_OUT_OF_RANGE"
)

// Sentinel errors. A *DomainError unwraps to the sentinel matching its code.
var (
	ErrDivideByZero    = errors.New("division by zero")
	ErrShiftOutOfRange = errors.New("shift count out of range")
	ErrUnknownOp       = errors.New("unknown operation")
)

// DomainError reports a call whose arguments fall outside the operation's
// domain. It carries the offending arguments for diagnostics.
type DomainError struct {
	Code ErrorCode
	Op   Op
	Lhs  int32
	Rhs  int32
}

func newDomainError(code ErrorCode, op Op, lhs, rhs int32) *DomainError {
	return &DomainError{Code: code, Op: op, Lhs: lhs, Rhs: rhs}
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s(%d, %d): %v", e.Code, e.Op, e.Lhs, e.Rhs, e.Unwrap())
}

// Unwrap returns the sentinel for the error code.
func (e *DomainError) Unwrap() error {
	switch e.Code {
	case ErrCodeDivideByZero:
		return ErrDivideByZero
	case ErrCodeShiftOutOfRange:
		return ErrShiftOutOfRange
	default:
		return nil
	}
}

// IsDivideByZero reports whether err is, or wraps, a division by zero.
func IsDivideByZero(err error) bool {
	return errors.Is(err, ErrDivideByZero)
}

// IsShiftOutOfRange reports whether err is, or wraps, an out-of-range shift.
func IsShiftOutOfRange(err error) bool {
	return errors.Is(err, ErrShiftOutOfRange)
}

// IsDomainError reports whether err is, or wraps, any domain violation.
func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}
