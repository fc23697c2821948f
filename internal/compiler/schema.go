package compiler

import "cuelang.org/go/cue"

// suiteSchema constrains every suite before it is decoded. Operand and
// result types are CUE's int32 so out-of-range literals are rejected at
// compile time.
const suiteSchema = `
#FailureCase: "DivideByZero" | "ShiftOutOfRange"

#Case: {
	op:     string
	lhs:    int32
	rhs:    int32
	want?:  int32
	fails?: #FailureCase
}

#Suite: {
	description?: string
	flow_token?: string
	cases: [...#Case]
}
`

// suiteDefinition compiles the schema in ctx. Values from different
// contexts cannot be unified, so the schema is built per context.
func suiteDefinition(ctx *cue.Context) (cue.Value, error) {
	schema := ctx.CompileString(suiteSchema, cue.Filename("primops-suite-schema.cue"))
	if err := schema.Err(); err != nil {
		return cue.Value{}, err
	}
	def := schema.LookupPath(cue.ParsePath("#Suite"))
	return def, def.Err()
}
