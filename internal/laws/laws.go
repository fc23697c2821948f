package laws

import (
	"fmt"

	"github.com/roach88/primops/internal/ops"
)

// Law is one algebraic property. Check returns nil when the property holds
// for the given operands. Only the first Arity operands are meaningful.
type Law struct {
	Name        string
	Description string
	Arity       int
	Check       func(a, b, c int32) error
}

func expectEqual(what string, got, want int32) error {
	if got != want {
		return fmt.Errorf("%s: got %d, want %d", what, got, want)
	}
	return nil
}

var all = []Law{
	{
		Name:        "trichotomy",
		Description: "exactly one of lt, eq, gt holds",
		Arity:       2,
		Check: func(a, b, _ int32) error {
			lt, eq, gt := ops.Lt(a, b), ops.Eq(a, b), ops.Gt(a, b)
			if lt+eq+gt != 1 {
				return fmt.Errorf("lt=%d eq=%d gt=%d", lt, eq, gt)
			}
			return nil
		},
	},
	{
		Name:        "comparison_range",
		Description: "comparisons return 0 or 1",
		Arity:       2,
		Check: func(a, b, _ int32) error {
			for _, op := range []ops.Op{ops.OpEq, ops.OpNeq, ops.OpLt, ops.OpGt, ops.OpLte, ops.OpGte} {
				if v, _ := ops.Apply(op, a, b); v != 0 && v != 1 {
					return fmt.Errorf("%s returned %d", op, v)
				}
			}
			return nil
		},
	},
	{
		Name:        "neq_complement",
		Description: "neq(a,b) = 1 - eq(a,b)",
		Arity:       2,
		Check: func(a, b, _ int32) error {
			return expectEqual("neq", ops.Neq(a, b), 1-ops.Eq(a, b))
		},
	},
	{
		Name:        "lte_definition",
		Description: "lte(a,b) = lt(a,b) | eq(a,b)",
		Arity:       2,
		Check: func(a, b, _ int32) error {
			return expectEqual("lte", ops.Lte(a, b), ops.Lt(a, b)|ops.Eq(a, b))
		},
	},
	{
		Name:        "gte_definition",
		Description: "gte(a,b) = gt(a,b) | eq(a,b)",
		Arity:       2,
		Check: func(a, b, _ int32) error {
			return expectEqual("gte", ops.Gte(a, b), ops.Gt(a, b)|ops.Eq(a, b))
		},
	},
	{
		Name:        "add_commutative",
		Description: "add(a,b) = add(b,a)",
		Arity:       2,
		Check: func(a, b, _ int32) error {
			return expectEqual("add", ops.Add(a, b), ops.Add(b, a))
		},
	},
	{
		Name:        "mul_commutative",
		Description: "mul(a,b) = mul(b,a)",
		Arity:       2,
		Check: func(a, b, _ int32) error {
			return expectEqual("mul", ops.Mul(a, b), ops.Mul(b, a))
		},
	},
	{
		Name:        "add_associative",
		Description: "add(add(a,b),c) = add(a,add(b,c)) under wraparound",
		Arity:       3,
		Check: func(a, b, c int32) error {
			return expectEqual("add", ops.Add(ops.Add(a, b), c), ops.Add(a, ops.Add(b, c)))
		},
	},
	{
		Name:        "identities",
		Description: "add(a,0) = a, mul(a,1) = a, mul(a,0) = 0",
		Arity:       1,
		Check: func(a, _, _ int32) error {
			if err := expectEqual("add(a,0)", ops.Add(a, 0), a); err != nil {
				return err
			}
			if err := expectEqual("mul(a,1)", ops.Mul(a, 1), a); err != nil {
				return err
			}
			return expectEqual("mul(a,0)", ops.Mul(a, 0), 0)
		},
	},
	{
		Name:        "sub_inverse",
		Description: "add(sub(a,b),b) = a",
		Arity:       2,
		Check: func(a, b, _ int32) error {
			return expectEqual("add(sub(a,b),b)", ops.Add(ops.Sub(a, b), b), a)
		},
	},
	{
		Name:        "wraparound",
		Description: "add, sub and mul agree with 64-bit arithmetic truncated to 32 bits",
		Arity:       2,
		Check: func(a, b, _ int32) error {
			wide, narrow := int64(a), int64(b)
			if err := expectEqual("add", ops.Add(a, b), int32(wide+narrow)); err != nil {
				return err
			}
			if err := expectEqual("sub", ops.Sub(a, b), int32(wide-narrow)); err != nil {
				return err
			}
			return expectEqual("mul", ops.Mul(a, b), int32(wide*narrow))
		},
	},
	{
		Name:        "div_truncates",
		Description: "div(a,b) truncates toward zero; MinInt32 / -1 wraps",
		Arity:       2,
		Check: func(a, b, _ int32) error {
			if b == 0 {
				return nil
			}
			q, err := ops.Div(a, b)
			if err != nil {
				return err
			}
			return expectEqual("div", q, int32(int64(a)/int64(b)))
		},
	},
	{
		Name:        "div_by_zero",
		Description: "div(a,0) fails for every a",
		Arity:       1,
		Check: func(a, _, _ int32) error {
			if _, err := ops.Div(a, 0); !ops.IsDivideByZero(err) {
				return fmt.Errorf("div(%d, 0): got %v, want divide by zero", a, err)
			}
			return nil
		},
	},
	{
		Name:        "shift_domain",
		Description: "shl and shr fail exactly when the count is outside [0, 32)",
		Arity:       2,
		Check: func(a, count, _ int32) error {
			inRange := count >= 0 && count < 32
			for _, op := range []ops.Op{ops.OpShl, ops.OpShr} {
				_, err := ops.Apply(op, a, count)
				if inRange && err != nil {
					return fmt.Errorf("%s(%d, %d) failed: %v", op, a, count, err)
				}
				if !inRange && !ops.IsShiftOutOfRange(err) {
					return fmt.Errorf("%s(%d, %d): got %v, want shift out of range", op, a, count, err)
				}
			}
			return nil
		},
	},
	{
		Name:        "shift_semantics",
		Description: "shl drops high bits; shr is arithmetic",
		Arity:       2,
		Check: func(a, count, _ int32) error {
			if count < 0 || count >= 32 {
				return nil
			}
			left, err := ops.Shl(a, count)
			if err != nil {
				return err
			}
			right, err := ops.Shr(a, count)
			if err != nil {
				return err
			}
			if err := expectEqual("shl", left, int32(int64(a)<<count)); err != nil {
				return err
			}
			return expectEqual("shr", right, int32(int64(a)>>count))
		},
	},
	{
		Name:        "absorption",
		Description: "and(a, or(a,b)) = a and or(a, and(a,b)) = a",
		Arity:       2,
		Check: func(a, b, _ int32) error {
			if err := expectEqual("and(a,or(a,b))", ops.And(a, ops.Or(a, b)), a); err != nil {
				return err
			}
			return expectEqual("or(a,and(a,b))", ops.Or(a, ops.And(a, b)), a)
		},
	},
}

// All returns every law in a stable order.
func All() []Law {
	out := make([]Law, len(all))
	copy(out, all)
	return out
}

// Lookup returns the law with the given name.
func Lookup(name string) (Law, bool) {
	for _, l := range all {
		if l.Name == name {
			return l, true
		}
	}
	return Law{}, false
}
