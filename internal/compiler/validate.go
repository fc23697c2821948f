package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/primops/internal/ir"
	"github.com/roach88/primops/internal/ops"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedIRType = "E100" // unsupported IR type for validation

	// SuiteSpec errors (E101-E109)
	ErrSuiteNameEmpty  = "E101" // suite name is required
	ErrSuiteNoCases    = "E102" // at least one case required
	ErrDuplicateSuite  = "E103" // duplicate suite name
	ErrInvalidFlowName = "E104" // flow token has surrounding whitespace
	ErrInvalidName     = "E105" // suite name is not a single file name component

	// CaseSpec errors (E110-E119)
	ErrUnknownOp          = "E110" // op is not in the catalog
	ErrAmbiguousExpect    = "E111" // both want and fails set
	ErrMissingExpect      = "E112" // neither want nor fails set
	ErrInvalidFailureCase = "E113" // fails is not a failure case
	ErrImpossibleFailure  = "E114" // op can never produce the failure case
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate validates compiled IR against schema rules.
// Returns all errors found (does not fail-fast).
// Supports SuiteSpec, []SuiteSpec and CaseSpec.
func Validate(v any) []ValidationError {
	switch x := v.(type) {
	case *ir.SuiteSpec:
		return validateSuite(x)
	case ir.SuiteSpec:
		return validateSuite(&x)
	case []ir.SuiteSpec:
		return validateSuites(x)
	case ir.CaseSpec:
		return validateCase("case", x)
	case *ir.CaseSpec:
		return validateCase("case", *x)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported IR type: %T", v),
			Code:    ErrUnsupportedIRType,
		}}
	}
}

func validateSuites(suites []ir.SuiteSpec) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool, len(suites))
	for i := range suites {
		// E103: suite names are unique
		if name := suites[i].Name; name != "" && seen[name] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("suite.%s", name),
				Message: fmt.Sprintf("duplicate suite name: %q", name),
				Code:    ErrDuplicateSuite,
			})
		} else {
			seen[name] = true
		}
		errs = append(errs, validateSuite(&suites[i])...)
	}
	return errs
}

func validateSuite(spec *ir.SuiteSpec) []ValidationError {
	var errs []ValidationError

	// E101: name is required
	if strings.TrimSpace(spec.Name) == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "suite name is required and must be non-empty",
			Code:    ErrSuiteNameEmpty,
		})
	}

	// E105: suite names become golden file names
	if name := spec.Name; name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("suite name %q must be a single file name component", name),
			Code:    ErrInvalidName,
		})
	}

	// E104: flow tokens are used verbatim as store keys
	if spec.FlowToken != strings.TrimSpace(spec.FlowToken) {
		errs = append(errs, ValidationError{
			Field:   "flow_token",
			Message: fmt.Sprintf("flow token %q has surrounding whitespace", spec.FlowToken),
			Code:    ErrInvalidFlowName,
		})
	}

	// E102: at least one case
	if len(spec.Cases) == 0 {
		errs = append(errs, ValidationError{
			Field:   "cases",
			Message: "at least one case is required",
			Code:    ErrSuiteNoCases,
		})
	}

	for i, c := range spec.Cases {
		errs = append(errs, validateCase(fmt.Sprintf("cases[%d]", i), c)...)
	}
	return errs
}

func validateCase(field string, c ir.CaseSpec) []ValidationError {
	var errs []ValidationError
	add := func(sub, code, msg string) {
		errs = append(errs, ValidationError{
			Field:   field + sub,
			Message: msg,
			Code:    code,
			Line:    c.Line,
		})
	}

	// E110: op must resolve
	op, known := ops.Lookup(c.Op)
	if !known {
		add(".op", ErrUnknownOp, fmt.Sprintf("unknown operation %q", c.Op))
	}

	switch {
	case c.Want != nil && c.Fails != "":
		add("", ErrAmbiguousExpect, "want and fails are mutually exclusive")
	case c.Want == nil && c.Fails == "":
		add("", ErrMissingExpect, "one of want or fails is required")
	}

	if c.Fails == "" {
		return errs
	}

	// E113: fails names a failure case
	if !ir.FailureCases[c.Fails] {
		add(".fails", ErrInvalidFailureCase, fmt.Sprintf("%q is not a failure case", c.Fails))
		return errs
	}

	// E114: the op must be able to produce it
	if known && !canFail(op, c.Fails) {
		add(".fails", ErrImpossibleFailure, fmt.Sprintf("%s never fails with %s", op, c.Fails))
	}
	return errs
}

// canFail reports whether op can complete with the given failure case.
func canFail(op ops.Op, outputCase string) bool {
	switch outputCase {
	case ir.CaseDivideByZero:
		return op == ops.OpDiv
	case ir.CaseShiftOutOfRange:
		return op == ops.OpShl || op == ops.OpShr
	default:
		return false
	}
}
