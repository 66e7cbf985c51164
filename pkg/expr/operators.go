package expr

import (
	"fmt"
	"math"
	"strconv"

	"loom/pkg/expr/syntax"
	"loom/pkg/types"
)

type number interface {
	~int | ~float32 | ~float64
}

// Arithmetic applies + - * / % to two operands of the same numeric type.
type Arithmetic[T number] struct {
	op          syntax.Op
	left, right Typed[T]
	typ         *types.Type
}

func (a *Arithmetic[T]) Type() *types.Type { return a.typ }
func (a *Arithmetic[T]) IsConstant() bool { return a.left.IsConstant() && a.right.IsConstant() }
func (a *Arithmetic[T]) Eval(ctx *Context) any {
	return a.Evaluate(ctx)
}

func (a *Arithmetic[T]) Evaluate(ctx *Context) T {
	l := a.left.Evaluate(ctx)
	r := a.right.Evaluate(ctx)
	switch a.op {
	case syntax.OpAdd:
		return l + r
	case syntax.OpSub:
		return l - r
	case syntax.OpMul:
		return l * r
	case syntax.OpDiv:
		if a.typ.Kind == types.Int && r == 0 {
			runtimeErrorf("integer division by zero")
		}
		return l / r
	case syntax.OpMod:
		if a.typ.Kind == types.Int {
			if r == 0 {
				runtimeErrorf("integer division by zero")
			}
			return T(int(l) % int(r))
		}
		return T(math.Mod(float64(l), float64(r)))
	}
	panic("expr: bad arithmetic operator " + a.op.String())
}

// Comparison applies > >= < <= to two operands of the same numeric type.
type Comparison[T number] struct {
	op          syntax.Op
	left, right Typed[T]
}

func (c *Comparison[T]) Type() *types.Type { return types.BoolType }
func (c *Comparison[T]) IsConstant() bool { return c.left.IsConstant() && c.right.IsConstant() }
func (c *Comparison[T]) Eval(ctx *Context) any {
	return c.Evaluate(ctx)
}

func (c *Comparison[T]) Evaluate(ctx *Context) bool {
	l := c.left.Evaluate(ctx)
	r := c.right.Evaluate(ctx)
	switch c.op {
	case syntax.OpGt:
		return l > r
	case syntax.OpGe:
		return l >= r
	case syntax.OpLt:
		return l < r
	case syntax.OpLe:
		return l <= r
	}
	panic("expr: bad comparison operator " + c.op.String())
}

// Equality compares two values of the same type with ==.
type Equality struct {
	op          syntax.Op
	left, right Expression
}

func (e *Equality) Type() *types.Type { return types.BoolType }
func (e *Equality) IsConstant() bool { return e.left.IsConstant() && e.right.IsConstant() }
func (e *Equality) Eval(ctx *Context) any {
	return e.Evaluate(ctx)
}

func (e *Equality) Evaluate(ctx *Context) bool {
	eq := e.left.Eval(ctx) == e.right.Eval(ctx)
	if e.op == syntax.OpNe {
		return !eq
	}
	return eq
}

// Logical is a short-circuiting && or ||.
type Logical struct {
	op          syntax.Op
	left, right Typed[bool]
}

func (l *Logical) Type() *types.Type { return types.BoolType }
func (l *Logical) IsConstant() bool { return l.left.IsConstant() && l.right.IsConstant() }
func (l *Logical) Eval(ctx *Context) any {
	return l.Evaluate(ctx)
}

func (l *Logical) Evaluate(ctx *Context) bool {
	if l.op == syntax.OpAnd {
		return l.left.Evaluate(ctx) && l.right.Evaluate(ctx)
	}
	return l.left.Evaluate(ctx) || l.right.Evaluate(ctx)
}

// Concat joins the string forms of two values.
type Concat struct {
	left, right Expression
}

func (c *Concat) Type() *types.Type { return types.StringType }
func (c *Concat) IsConstant() bool { return c.left.IsConstant() && c.right.IsConstant() }
func (c *Concat) Eval(ctx *Context) any {
	return c.Evaluate(ctx)
}

func (c *Concat) Evaluate(ctx *Context) string {
	return ToString(c.left.Eval(ctx)) + ToString(c.right.Eval(ctx))
}

// ToString formats a value the way string concatenation does.
func ToString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

// Not negates a boolean.
type Not struct {
	operand Typed[bool]
}

func (n *Not) Type() *types.Type { return types.BoolType }
func (n *Not) IsConstant() bool { return n.operand.IsConstant() }
func (n *Not) Eval(ctx *Context) any {
	return n.Evaluate(ctx)
}

func (n *Not) Evaluate(ctx *Context) bool {
	return !n.operand.Evaluate(ctx)
}

// Sign is unary + or - on a number.
type Sign[T number] struct {
	negate  bool
	operand Typed[T]
}

func (s *Sign[T]) Type() *types.Type { return s.operand.Type() }
func (s *Sign[T]) IsConstant() bool { return s.operand.IsConstant() }
func (s *Sign[T]) Eval(ctx *Context) any {
	return s.Evaluate(ctx)
}

func (s *Sign[T]) Evaluate(ctx *Context) T {
	v := s.operand.Evaluate(ctx)
	if s.negate {
		return -v
	}
	return v
}

// Ternary is cond ? then : else with both branches of type T.
type Ternary[T any] struct {
	cond      Typed[bool]
	then, els Typed[T]
	typ       *types.Type
}

func (t *Ternary[T]) Type() *types.Type { return t.typ }
func (t *Ternary[T]) IsConstant() bool {
	return t.cond.IsConstant() && t.then.IsConstant() && t.els.IsConstant()
}
func (t *Ternary[T]) Eval(ctx *Context) any {
	return t.Evaluate(ctx)
}

func (t *Ternary[T]) Evaluate(ctx *Context) T {
	if t.cond.Evaluate(ctx) {
		return t.then.Evaluate(ctx)
	}
	return t.els.Evaluate(ctx)
}

// UntypedTernary is the fallback for branches that are not both the same
// primitive. It yields object unless both branches share a type.
type UntypedTernary struct {
	cond      Typed[bool]
	then, els Expression
	typ       *types.Type
}

func (t *UntypedTernary) Type() *types.Type { return t.typ }
func (t *UntypedTernary) IsConstant() bool {
	return t.cond.IsConstant() && t.then.IsConstant() && t.els.IsConstant()
}
func (t *UntypedTernary) Eval(ctx *Context) any {
	if t.cond.Evaluate(ctx) {
		return t.then.Eval(ctx)
	}
	return t.els.Eval(ctx)
}
