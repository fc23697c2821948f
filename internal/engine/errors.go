package engine

import (
	"errors"
	"fmt"
	"strconv"
)

// RuntimeError is an error detected while evaluating or recording a call.
// Domain violations are not RuntimeErrors; they become output cases.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// FlowToken identifies the affected flow, if any.
	FlowToken string

	// Op is the requested operation name.
	Op string

	// Details contains additional context.
	Details map[string]string

	// Err is the underlying cause, if any.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeUnknownOperation indicates the op name is not in the catalog.
	ErrCodeUnknownOperation RuntimeErrorCode = "UNKNOWN_OPERATION"

	// ErrCodeOperandOutOfRange indicates an operand does not fit in int32.
	ErrCodeOperandOutOfRange RuntimeErrorCode = "OPERAND_OUT_OF_RANGE"

	// ErrCodeStoreFailure indicates the run log could not be read or written.
	ErrCodeStoreFailure RuntimeErrorCode = "STORE_FAILURE"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.FlowToken != "" {
		msg += fmt.Sprintf(" (flow=%s)", e.FlowToken)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

func hasCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsUnknownOperation reports whether err is an unknown-operation error.
func IsUnknownOperation(err error) bool {
	return hasCode(err, ErrCodeUnknownOperation)
}

// IsOperandOutOfRange reports whether err is an operand range error.
func IsOperandOutOfRange(err error) bool {
	return hasCode(err, ErrCodeOperandOutOfRange)
}

// IsStoreFailure reports whether err is a store failure.
func IsStoreFailure(err error) bool {
	return hasCode(err, ErrCodeStoreFailure)
}

// NewUnknownOperationError creates a RuntimeError for an unresolvable op.
func NewUnknownOperationError(flowToken, op string) *RuntimeError {
	return &RuntimeError{
		Code:      ErrCodeUnknownOperation,
		Message:   fmt.Sprintf("unknown operation %q", op),
		FlowToken: flowToken,
		Op:        op,
	}
}

// NewOperandError creates a RuntimeError for an operand outside int32.
func NewOperandError(name, raw string, cause error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeOperandOutOfRange,
		Message: fmt.Sprintf("operand %s=%s is not a 32-bit signed integer", name, raw),
		Details: map[string]string{"operand": name, "value": raw},
		Err:     cause,
	}
}

// NewStoreError wraps a run log failure.
func NewStoreError(flowToken, action string, cause error) *RuntimeError {
	return &RuntimeError{
		Code:      ErrCodeStoreFailure,
		Message:   action,
		FlowToken: flowToken,
		Err:       cause,
	}
}

// ParseOperand parses a decimal operand that must fit in int32.
func ParseOperand(name, raw string) (int32, error) {
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, NewOperandError(name, raw, err)
	}
	return int32(n), nil
}
