package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/primops/internal/ir"
)

// caseDoc mirrors #Case for decoding.
type caseDoc struct {
	Op    string `json:"op"`
	Lhs   int32  `json:"lhs"`
	Rhs   int32  `json:"rhs"`
	Want  *int32 `json:"want"`
	Fails string `json:"fails"`
}

// CompileSuite parses a CUE value into a SuiteSpec.
// The suite name is taken from the value's last path selector.
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`suite: basics: { cases: [...] }`)
//	spec, err := CompileSuite(v.LookupPath(cue.ParsePath("suite.basics")))
func CompileSuite(v cue.Value) (*ir.SuiteSpec, error) {
	field := "suite"
	if p := v.Path().String(); p != "" {
		field = p
	}
	if err := v.Err(); err != nil {
		return nil, formatCUEError(field, err)
	}

	spec := &ir.SuiteSpec{}
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Name = labelName(labels[len(labels)-1])
	}

	rawCases := v.LookupPath(cue.ParsePath("cases"))
	if !rawCases.Exists() {
		return nil, &CompileError{
			Field:   field + ".cases",
			Message: "cases is required",
			Pos:     v.Pos(),
		}
	}

	def, err := suiteDefinition(v.Context())
	if err != nil {
		return nil, formatCUEError("schema", err)
	}
	unified := def.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(field, err)
	}

	if d := unified.LookupPath(cue.ParsePath("description")); d.Exists() {
		if spec.Description, err = d.String(); err != nil {
			return nil, formatCUEError(field+".description", err)
		}
	}
	if f := unified.LookupPath(cue.ParsePath("flow_token")); f.Exists() {
		if spec.FlowToken, err = f.String(); err != nil {
			return nil, formatCUEError(field+".flow_token", err)
		}
	}

	spec.Cases, err = compileCases(field, rawCases, unified.LookupPath(cue.ParsePath("cases")))
	if err != nil {
		return nil, err
	}
	return spec, nil
}

// labelName returns a selector as written, without quotes for quoted labels
// such as "a b".
func labelName(sel cue.Selector) string {
	if sel.IsString() {
		return sel.Unquoted()
	}
	return sel.String()
}

// compileCases decodes the unified case list. raw is the list as written
// and supplies source lines.
func compileCases(field string, raw, unified cue.Value) ([]ir.CaseSpec, error) {
	rawIter, err := raw.List()
	if err != nil {
		return nil, formatCUEError(field+".cases", err)
	}
	iter, err := unified.List()
	if err != nil {
		return nil, formatCUEError(field+".cases", err)
	}

	cases := []ir.CaseSpec{}
	for i := 0; iter.Next(); i++ {
		line := 0
		if rawIter.Next() {
			if pos := rawIter.Value().Pos(); pos.IsValid() {
				line = pos.Line()
			}
		}

		var doc caseDoc
		if err := iter.Value().Decode(&doc); err != nil {
			return nil, formatCUEError(fmt.Sprintf("%s.cases[%d]", field, i), err)
		}
		cases = append(cases, ir.CaseSpec{
			Op:    doc.Op,
			Lhs:   doc.Lhs,
			Rhs:   doc.Rhs,
			Want:  doc.Want,
			Fails: doc.Fails,
			Line:  line,
		})
	}
	return cases, nil
}

// CompileSuites compiles every suite declared under the top-level "suite"
// field, in declaration order.
func CompileSuites(v cue.Value) ([]ir.SuiteSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError("cue", err)
	}

	suitesVal := v.LookupPath(cue.ParsePath("suite"))
	if !suitesVal.Exists() {
		return nil, &CompileError{
			Field:   "suite",
			Message: "no suites defined",
			Pos:     v.Pos(),
		}
	}

	iter, err := suitesVal.Fields()
	if err != nil {
		return nil, formatCUEError("suite", err)
	}

	var suites []ir.SuiteSpec
	for iter.Next() {
		spec, err := CompileSuite(iter.Value())
		if err != nil {
			return nil, err
		}
		suites = append(suites, *spec)
	}
	return suites, nil
}

// CompileSource compiles suites from CUE source text. filename is used in
// error positions.
func CompileSource(filename string, src []byte) ([]ir.SuiteSpec, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError("cue", err)
	}
	return CompileSuites(v)
}
