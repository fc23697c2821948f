package ir

// Output cases recorded on completions.
const (
	CaseSuccess         = "Success"
	CaseDivideByZero    = "DivideByZero"
	CaseShiftOutOfRange = "ShiftOutOfRange"
)

// FailureCases lists the output cases that carry no value.
var FailureCases = map[string]bool{
	CaseDivideByZero:    true,
	CaseShiftOutOfRange: true,
}

// ValidCase reports whether name is a known output case.
func ValidCase(name string) bool {
	return name == CaseSuccess || FailureCases[name]
}

// Invocation records one call of one operation.
type Invocation struct {
	ID            string `json:"id"` // Content-addressed hash
	FlowToken     string `json:"flow_token"`
	Op            OpRef  `json:"op"`
	Lhs           int32  `json:"lhs"`
	Rhs           int32  `json:"rhs"`
	Seq           int64  `json:"seq"` // Logical clock
	EngineVersion string `json:"engine_version"`
	IRVersion     string `json:"ir_version"`
}

// Args returns the operands as an IRObject for traces and canonical JSON.
func (inv Invocation) Args() IRObject {
	return IRObject{
		"lhs": IRInt(inv.Lhs),
		"rhs": IRInt(inv.Rhs),
	}
}

// Completion records the outcome of an invocation.
// Value is meaningful only when OutputCase is CaseSuccess.
type Completion struct {
	ID           string `json:"id"` // Content-addressed hash
	InvocationID string `json:"invocation_id"`
	OutputCase   string `json:"output_case"`
	Value        int32  `json:"value"`
	Seq          int64  `json:"seq"` // Logical clock
}

// Succeeded reports whether the call returned a value.
func (c Completion) Succeeded() bool {
	return c.OutputCase == CaseSuccess
}

// Result returns the completion payload as an IRObject.
// Failures have an empty result.
func (c Completion) Result() IRObject {
	if !c.Succeeded() {
		return IRObject{}
	}
	return IRObject{"value": IRInt(c.Value)}
}

// SuiteSpec is a compiled case suite.
type SuiteSpec struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	FlowToken   string     `json:"flow_token,omitempty"`
	Cases       []CaseSpec `json:"cases"`
}

// CaseSpec is one literal check: evaluate Op on (Lhs, Rhs) and expect
// either Want or the failure case named by Fails.
type CaseSpec struct {
	Op    string `json:"op"`
	Lhs   int32  `json:"lhs"`
	Rhs   int32  `json:"rhs"`
	Want  *int32 `json:"want,omitempty"`
	Fails string `json:"fails,omitempty"`
	Line  int    `json:"-"` // Source line, when known
}

// ExpectedCase returns the output case this check expects.
func (c CaseSpec) ExpectedCase() string {
	if c.Fails != "" {
		return c.Fails
	}
	return CaseSuccess
}
