package compiler

import (
	"errors"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/primops/internal/ir"
)

func compileString(t *testing.T, src string) cue.Value {
	t.Helper()
	v := cuecontext.New().CompileString(src, cue.Filename("suite.cue"))
	require.NoError(t, v.Err())
	return v
}

func TestCompileSuiteBasic(t *testing.T) {
	v := compileString(t, `
		suite: shifts: {
			description: "shift domain"
			flow_token: "flow-shifts"
			cases: [
				{op: "shl", lhs: 1, rhs: 1, want: 2},
				{op: "shl", lhs: 1, rhs: 32, fails: "ShiftOutOfRange"},
			]
		}
	`)

	spec, err := CompileSuite(v.LookupPath(cue.ParsePath("suite.shifts")))
	require.NoError(t, err)

	assert.Equal(t, "shifts", spec.Name)
	assert.Equal(t, "shift domain", spec.Description)
	assert.Equal(t, "flow-shifts", spec.FlowToken)
	require.Len(t, spec.Cases, 2)

	first := spec.Cases[0]
	assert.Equal(t, "shl", first.Op)
	assert.Equal(t, int32(1), first.Lhs)
	assert.Equal(t, int32(1), first.Rhs)
	require.NotNil(t, first.Want)
	assert.Equal(t, int32(2), *first.Want)
	assert.Empty(t, first.Fails)
	assert.Equal(t, ir.CaseSuccess, first.ExpectedCase())
	assert.Positive(t, first.Line)

	second := spec.Cases[1]
	assert.Nil(t, second.Want)
	assert.Equal(t, "ShiftOutOfRange", second.Fails)
	assert.Equal(t, ir.CaseShiftOutOfRange, second.ExpectedCase())
}

func TestCompileSuiteQuotedLabel(t *testing.T) {
	v := compileString(t, `
		suite: "wide shifts": cases: [
			{op: "shl", lhs: 1, rhs: 31, want: -2147483648},
		]
	`)

	spec, err := CompileSuite(v.LookupPath(cue.ParsePath(`suite."wide shifts"`)))
	require.NoError(t, err)
	assert.Equal(t, "wide shifts", spec.Name)
}

func TestCompileSuiteInt32Bounds(t *testing.T) {
	v := compileString(t, `
		suite: edges: cases: [
			{op: "sub", lhs: -2147483648, rhs: 1, want: 2147483647},
		]
	`)

	spec, err := CompileSuite(v.LookupPath(cue.ParsePath("suite.edges")))
	require.NoError(t, err)
	require.Len(t, spec.Cases, 1)
	assert.Equal(t, int32(-2147483648), spec.Cases[0].Lhs)
	assert.Equal(t, int32(2147483647), *spec.Cases[0].Want)
	assert.Empty(t, spec.Description)
}

func TestCompileSuiteRejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{
			name: "operand above int32",
			src:  `suite: s: cases: [{op: "add", lhs: 2147483648, rhs: 0, want: 0}]`,
		},
		{
			name: "operand below int32",
			src:  `suite: s: cases: [{op: "add", lhs: -2147483649, rhs: 0, want: 0}]`,
		},
		{
			name: "want above int32",
			src:  `suite: s: cases: [{op: "add", lhs: 0, rhs: 0, want: 4294967296}]`,
		},
		{
			name: "string operand",
			src:  `suite: s: cases: [{op: "add", lhs: "1", rhs: 0, want: 1}]`,
		},
		{
			name: "float operand",
			src:  `suite: s: cases: [{op: "add", lhs: 1.5, rhs: 0, want: 1}]`,
		},
		{
			name: "unknown failure case",
			src:  `suite: s: cases: [{op: "div", lhs: 1, rhs: 0, fails: "Overflow"}]`,
		},
		{
			name: "unknown field",
			src:  `suite: s: cases: [{op: "add", lhs: 1, rhs: 0, want: 1, note: "x"}]`,
		},
		{
			name: "missing rhs",
			src:  `suite: s: cases: [{op: "add", lhs: 1, want: 1}]`,
		},
		{
			name: "missing cases",
			src:  `suite: s: description: "empty"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := compileString(t, tt.src)
			_, err := CompileSuite(v.LookupPath(cue.ParsePath("suite.s")))
			require.Error(t, err)

			var compileErr *CompileError
			require.True(t, errors.As(err, &compileErr), "got %T: %v", err, err)
			assert.Contains(t, compileErr.Field, "suite.s")
		})
	}
}

func TestCompileSuiteMissingCasesHasPosition(t *testing.T) {
	v := compileString(t, `
suite: s: {
	description: "no cases"
}
`)
	_, err := CompileSuite(v.LookupPath(cue.ParsePath("suite.s")))
	require.Error(t, err)

	var compileErr *CompileError
	require.True(t, errors.As(err, &compileErr))
	assert.Equal(t, "suite.s.cases", compileErr.Field)
	assert.Equal(t, "cases is required", compileErr.Message)
}

func TestCompileSuitesDeclarationOrder(t *testing.T) {
	v := compileString(t, `
		suite: zeta: cases: [{op: "eq", lhs: 1, rhs: 1, want: 1}]
		suite: alpha: cases: [{op: "lt", lhs: 0, rhs: 2, want: 1}]
	`)

	suites, err := CompileSuites(v)
	require.NoError(t, err)
	require.Len(t, suites, 2)
	assert.Equal(t, "zeta", suites[0].Name)
	assert.Equal(t, "alpha", suites[1].Name)
}

func TestCompileSuitesNoSuite(t *testing.T) {
	v := compileString(t, `other: 1`)

	_, err := CompileSuites(v)
	require.Error(t, err)

	var compileErr *CompileError
	require.True(t, errors.As(err, &compileErr))
	assert.Equal(t, "suite", compileErr.Field)
}

func TestCompileSource(t *testing.T) {
	src := []byte(`
suite: literals: cases: [
	{op: "eq", lhs: 1, rhs: 1, want: 1},
	{op: "div", lhs: 7, rhs: 0, fails: "DivideByZero"},
]
`)
	suites, err := CompileSource("literals.cue", src)
	require.NoError(t, err)
	require.Len(t, suites, 1)
	require.Len(t, suites[0].Cases, 2)
	assert.Equal(t, 3, suites[0].Cases[0].Line)
	assert.Equal(t, 4, suites[0].Cases[1].Line)
}

func TestCompileSourceSyntaxError(t *testing.T) {
	_, err := CompileSource("broken.cue", []byte(`suite: s: cases: [`))
	require.Error(t, err)

	var compileErr *CompileError
	require.True(t, errors.As(err, &compileErr))
	assert.Equal(t, "cue", compileErr.Field)
}

func TestCompileErrorFormat(t *testing.T) {
	err := &CompileError{Field: "suite.s", Message: "bad"}
	assert.Equal(t, "suite.s: bad", err.Error())
	assert.Equal(t, 0, err.Line())
}

func TestFormatCUEErrorNil(t *testing.T) {
	assert.NoError(t, formatCUEError("x", nil))
}

func TestFormatCUEErrorPlain(t *testing.T) {
	err := formatCUEError("x", errors.New("boom"))

	var compileErr *CompileError
	require.True(t, errors.As(err, &compileErr))
	assert.Equal(t, "x", compileErr.Field)
	assert.Contains(t, compileErr.Message, "boom")
}
