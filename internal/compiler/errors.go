package compiler

import (
	"fmt"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// CompileError represents a compilation error with a source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Line returns the source line of the error, or 0 if unknown.
func (e *CompileError) Line() int {
	if !e.Pos.IsValid() {
		return 0
	}
	return e.Pos.Line()
}

// formatCUEError converts a CUE error into a CompileError for the first
// reported problem that carries a position. field names the suite path being
// compiled.
func formatCUEError(field string, err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &CompileError{Field: field, Message: err.Error()}
	}

	for _, e := range errs {
		if positions := errors.Positions(e); len(positions) > 0 {
			return &CompileError{
				Field:   field,
				Message: e.Error(),
				Pos:     positions[0],
			}
		}
	}

	return &CompileError{Field: field, Message: errs[0].Error()}
}
