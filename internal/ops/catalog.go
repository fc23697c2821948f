package ops

import (
	"fmt"
	"strings"
)

// Op identifies one entry of the operation catalog.
// The zero value is not a valid operation.
type Op uint8

// Catalog entries in declaration order.
const (
	OpInvalid Op = iota
	OpEq
	OpNeq
	OpLt
	OpGt
	OpLte
	OpGte
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpAnd
	OpOr
	OpShl
	OpShr

	opCount
)

// Kind groups operations by family.
type Kind string

const (
	KindComparison Kind = "comparison"
	KindArithmetic Kind = "arithmetic"
	KindBitwise    Kind = "bitwise"
	KindShift      Kind = "shift"
)

// BinaryFunc is the uniform signature used for dispatch. Total operations
// never return an error.
type BinaryFunc func(lhs, rhs int32) (int32, error)

type entry struct {
	name    string
	alias   string
	kind    Kind
	partial bool
	fn      BinaryFunc
}

func total(f func(lhs, rhs int32) int32) BinaryFunc {
	return func(lhs, rhs int32) (int32, error) {
		return f(lhs, rhs), nil
	}
}

var catalog = [opCount]entry{
	OpEq:  {name: "eq", alias: "equal", kind: KindComparison, fn: total(Eq)},
	OpNeq: {name: "neq", alias: "not-equal", kind: KindComparison, fn: total(Neq)},
	OpLt:  {name: "lt", alias: "less-than", kind: KindComparison, fn: total(Lt)},
	OpGt:  {name: "gt", alias: "greater-than", kind: KindComparison, fn: total(Gt)},
	OpLte: {name: "lte", alias: "less-or-equal", kind: KindComparison, fn: total(Lte)},
	OpGte: {name: "gte", alias: "greater-or-equal", kind: KindComparison, fn: total(Gte)},
	OpAdd: {name: "add", alias: "add", kind: KindArithmetic, fn: total(Add)},
	OpSub: {name: "sub", alias: "subtract", kind: KindArithmetic, fn: total(Sub)},
	OpMul: {name: "mul", alias: "multiply", kind: KindArithmetic, fn: total(Mul)},
	OpDiv: {name: "div", alias: "divide", kind: KindArithmetic, partial: true, fn: Div},
	OpAnd: {name: "and", alias: "bitwise-and", kind: KindBitwise, fn: total(And)},
	OpOr:  {name: "or", alias: "bitwise-or", kind: KindBitwise, fn: total(Or)},
	OpShl: {name: "shl", alias: "shift-left", kind: KindShift, partial: true, fn: Shl},
	OpShr: {name: "shr", alias: "shift-right", kind: KindShift, partial: true, fn: Shr},
}

// byName indexes catalog names and aliases. Built once, never mutated.
var byName = func() map[string]Op {
	m := make(map[string]Op, 2*int(opCount))
	for op := OpEq; op < opCount; op++ {
		m[catalog[op].name] = op
		m[catalog[op].alias] = op
	}
	return m
}()

// Catalog returns every operation in declaration order.
// The returned slice is a fresh copy.
func Catalog() []Op {
	out := make([]Op, 0, opCount-1)
	for op := OpEq; op < opCount; op++ {
		out = append(out, op)
	}
	return out
}

// Names returns the catalog names in declaration order.
func Names() []string {
	out := make([]string, 0, opCount-1)
	for op := OpEq; op < opCount; op++ {
		out = append(out, catalog[op].name)
	}
	return out
}

// Lookup resolves a catalog name or alias, ignoring case and surrounding
// whitespace.
func Lookup(name string) (Op, bool) {
	op, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	return op, ok
}

// MustLookup is like Lookup but panics if the name is unknown.
// Use only with literal names.
func MustLookup(name string) Op {
	op, ok := Lookup(name)
	if !ok {
		panic(fmt.Sprintf("ops: unknown operation %q", name))
	}
	return op
}

// Valid reports whether op is a catalog entry.
func (op Op) Valid() bool {
	return op > OpInvalid && op < opCount
}

// String returns the catalog name.
func (op Op) String() string {
	if !op.Valid() {
		return fmt.Sprintf("Op(%d)", uint8(op))
	}
	return catalog[op].name
}

// Alias returns the long-form name, e.g. "less-than" for OpLt.
func (op Op) Alias() string {
	if !op.Valid() {
		return ""
	}
	return catalog[op].alias
}

// Kind returns the operation family.
func (op Op) Kind() Kind {
	if !op.Valid() {
		return ""
	}
	return catalog[op].kind
}

// Partial reports whether the operation has domain violations.
func (op Op) Partial() bool {
	return op.Valid() && catalog[op].partial
}

// MarshalText encodes op as its catalog name.
func (op Op) MarshalText() ([]byte, error) {
	if !op.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOp, op)
	}
	return []byte(catalog[op].name), nil
}

// UnmarshalText decodes a catalog name or alias.
func (op *Op) UnmarshalText(text []byte) error {
	found, ok := Lookup(string(text))
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOp, string(text))
	}
	*op = found
	return nil
}

// Func returns the dispatch function for op.
func Func(op Op) (BinaryFunc, bool) {
	if !op.Valid() {
		return nil, false
	}
	return catalog[op].fn, true
}

// Apply evaluates op on (lhs, rhs).
func Apply(op Op, lhs, rhs int32) (int32, error) {
	if !op.Valid() {
		return 0, fmt.Errorf("%w: %s", ErrUnknownOp, op)
	}
	return catalog[op].fn(lhs, rhs)
}
