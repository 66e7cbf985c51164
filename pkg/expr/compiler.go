package expr

import (
	"errors"
	"fmt"

	"loom/pkg/expr/syntax"
	"loom/pkg/types"
)

type AliasKind uint8

const (
	AliasConstant AliasKind = iota
	AliasVariable
	AliasMethod
)

// Alias is a name visible to expressions besides the root fields: a constant,
// a context variable slot or a free function.
type Alias struct {
	Name   string
	Kind   AliasKind
	Type   *types.Type
	Value  any
	ID     int
	Method *types.Method
}

type AliasResolver interface {
	ResolveAlias(name string) (Alias, bool)
}

// EnumResolver finds enum types by name; *types.Registry implements it.
type EnumResolver interface {
	Enum(name string) (*types.Type, bool)
}

// Env describes what an expression may refer to.
type Env struct {
	Root    *types.Type
	Element *types.Type
	Parent  *types.Type
	Event   *types.Type
	Aliases AliasResolver
	Enums   EnumResolver
}

// Compiler builds expressions from syntax trees. User cast handlers are tried
// before the built-in ones.
type Compiler struct {
	casts []CastHandler
}

func NewCompiler() *Compiler {
	return &Compiler{}
}

func (c *Compiler) AddCastHandler(h CastHandler) {
	c.casts = append(c.casts, h)
}

// CompileString parses and compiles src. A nil required type accepts any
// result type.
func (c *Compiler) CompileString(env *Env, src string, required *types.Type) (Expression, error) {
	n, err := syntax.Parse(src)
	if err != nil {
		var se *syntax.Error
		if errors.As(err, &se) {
			return nil, &CompileError{Src: src, Pos: se.Offset, Msg: se.Msg, Err: err}
		}
		return nil, &CompileError{Src: src, Msg: err.Error(), Err: err}
	}
	return c.Compile(env, src, n, required)
}

// Compile compiles a parsed node. src is used for error messages.
func (c *Compiler) Compile(env *Env, src string, n syntax.Node, required *types.Type) (Expression, error) {
	u := &unit{c: c, env: env, src: src}
	return u.compileAs(n, required)
}

type unit struct {
	c   *Compiler
	env *Env
	src string
}

func (u *unit) errorf(n syntax.Node, format string, args ...any) error {
	return &CompileError{Src: u.src, Pos: n.Pos(), Msg: fmt.Sprintf(format, args...)}
}

// compileAs compiles n and converts it to required, failing when the result
// is still not assignable.
func (u *unit) compileAs(n syntax.Node, required *types.Type) (Expression, error) {
	e, err := u.compile(n, required)
	if err != nil {
		return nil, err
	}
	if required == nil {
		return e, nil
	}
	e = u.c.castTo(e, required)
	if !e.Type().AssignableTo(required) {
		return nil, u.errorf(n, "cannot convert %s to %s", e.Type(), required)
	}
	return e, nil
}

func (u *unit) compile(n syntax.Node, required *types.Type) (Expression, error) {
	switch n := n.(type) {
	case *syntax.Literal:
		return u.literal(n), nil
	case *syntax.Access:
		return u.access(n)
	case *syntax.Unary:
		return u.unary(n)
	case *syntax.Binary:
		return u.binary(n)
	case *syntax.Ternary:
		return u.ternary(n, required)
	case *syntax.Call:
		return u.call(n)
	}
	return nil, u.errorf(n, "unsupported expression %s", n)
}

func (u *unit) literal(n *syntax.Literal) Expression {
	switch n.Kind {
	case syntax.IntLiteral:
		return NewLiteral(types.IntType, n.Value.(int))
	case syntax.FloatLiteral:
		return NewLiteral(types.FloatType, n.Value.(float32))
	case syntax.DoubleLiteral:
		return NewLiteral(types.DoubleType, n.Value.(float64))
	case syntax.StringLiteral:
		return NewLiteral(types.StringType, n.Value.(string))
	case syntax.BoolLiteral:
		return NewLiteral(types.BoolType, n.Value.(bool))
	}
	return NewLiteral[any](types.NullType, nil)
}

var reservedNames = map[string]reservedKind{
	"root":    reservedRoot,
	"element": reservedElement,
	"parent":  reservedParent,
	"evt":     reservedEvent,
}

func orObject(t *types.Type) *types.Type {
	if t == nil {
		return types.ObjectType
	}
	return t
}

// head resolves the leading identifier of an access chain and returns how
// many parts it consumed.
func (u *unit) head(n *syntax.Access) (Expression, int, error) {
	if kind, ok := reservedNames[n.Head]; ok {
		var t *types.Type
		switch kind {
		case reservedRoot:
			t = u.env.Root
		case reservedElement:
			t = u.env.Element
		case reservedParent:
			t = u.env.Parent
		case reservedEvent:
			t = u.env.Event
		}
		return &Reserved{kind: kind, typ: orObject(t)}, 0, nil
	}
	if u.env.Aliases != nil {
		if a, ok := u.env.Aliases.ResolveAlias(n.Head); ok {
			switch a.Kind {
			case AliasConstant:
				return constant(a.Type, a.Value), 0, nil
			case AliasVariable:
				return &Variable{ID: a.ID, Name: a.Name, typ: orObject(a.Type)}, 0, nil
			}
			return nil, 0, u.errorf(n, "%s is a function and must be called", n.Head)
		}
	}
	if u.env.Enums != nil {
		if et, ok := u.env.Enums.Enum(n.Head); ok {
			if len(n.Parts) == 0 || n.Parts[0].Field == "" {
				return nil, 0, u.errorf(n, "enum %s must be followed by a member name", n.Head)
			}
			v, ok := et.EnumValue(n.Parts[0].Field)
			if !ok {
				return nil, 0, u.errorf(n, "enum %s has no member %s", n.Head, n.Parts[0].Field)
			}
			return constant(et, v), 1, nil
		}
	}
	if u.env.Root != nil && !u.env.Root.IsPrimitive() {
		if f, ok := u.env.Root.Field(n.Head); ok {
			return &RootField{field: f}, 0, nil
		}
	}
	return nil, 0, &CompileError{
		Src:  u.src,
		Pos:  n.Pos(),
		Msg:  fmt.Sprintf("unknown alias %q: not a context variable or a field on %s", n.Head, orObject(u.env.Root)),
		Err:  ErrUnknownAlias,
		Name: n.Head,
	}
}

func (u *unit) access(n *syntax.Access) (Expression, error) {
	head, consumed, err := u.head(n)
	if err != nil {
		return nil, err
	}
	parts := n.Parts[consumed:]
	if len(parts) == 0 {
		return head, nil
	}
	chain := &Chain{head: head, src: n.String()}
	cur := head.Type()
	for _, p := range parts {
		if p.Index != nil {
			if cur.Kind != types.List {
				return nil, u.errorf(n, "type %s cannot be indexed", cur)
			}
			idx, err := u.compileAs(p.Index, types.IntType)
			if err != nil {
				return nil, err
			}
			chain.parts = append(chain.parts, chainPart{index: As[int](idx), listType: cur})
			cur = cur.Elem
			continue
		}
		if cur.IsPrimitive() {
			return nil, u.errorf(n, "cannot access field %s on primitive type %s", p.Field, cur)
		}
		if cur.Kind != types.Struct {
			return nil, u.errorf(n, "cannot access field %s on %s", p.Field, cur)
		}
		f, ok := cur.Field(p.Field)
		if !ok {
			return nil, u.errorf(n, "%s is not a field or property on type %s", p.Field, cur)
		}
		chain.parts = append(chain.parts, chainPart{field: f})
		cur = f.Type
	}
	chain.typ = cur
	return chain, nil
}

func (u *unit) unary(n *syntax.Unary) (Expression, error) {
	operand, err := u.compile(n.Operand, nil)
	if err != nil {
		return nil, err
	}
	t := operand.Type()
	if n.Op == syntax.OpNot {
		if t.Kind != types.Bool {
			return nil, u.errorf(n, "operator ! requires a bool operand, got %s", t)
		}
		return &Not{operand: As[bool](operand)}, nil
	}
	negate := n.Op == syntax.OpMinus
	switch t.Kind {
	case types.Int:
		return &Sign[int]{negate: negate, operand: As[int](operand)}, nil
	case types.Float:
		return &Sign[float32]{negate: negate, operand: As[float32](operand)}, nil
	case types.Double:
		return &Sign[float64]{negate: negate, operand: As[float64](operand)}, nil
	}
	return nil, u.errorf(n, "operator %s requires a numeric operand, got %s", n.Op, t)
}

// wider returns the built-in numeric type covering both operands.
func wider(a, b *types.Type) *types.Type {
	switch max(a.NumericRank(), b.NumericRank()) {
	case 1:
		return types.IntType
	case 2:
		return types.FloatType
	}
	return types.DoubleType
}

func (u *unit) binary(n *syntax.Binary) (Expression, error) {
	left, err := u.compile(n.Left, nil)
	if err != nil {
		return nil, err
	}
	right, err := u.compile(n.Right, nil)
	if err != nil {
		return nil, err
	}
	lt, rt := left.Type(), right.Type()
	numeric := lt.IsNumeric() && rt.IsNumeric()

	switch {
	case n.Op.IsArithmetic():
		if n.Op == syntax.OpAdd && (lt.Kind == types.String || rt.Kind == types.String) {
			return &Concat{left: left, right: right}, nil
		}
		if !numeric {
			return nil, u.errorf(n, "operator %s cannot be applied to %s and %s", n.Op, lt, rt)
		}
		t := wider(lt, rt)
		return arithmetic(n.Op, u.c.castTo(left, t), u.c.castTo(right, t), t), nil

	case n.Op.IsComparison():
		if !numeric {
			return nil, u.errorf(n, "operator %s cannot be applied to %s and %s", n.Op, lt, rt)
		}
		t := wider(lt, rt)
		return comparison(n.Op, u.c.castTo(left, t), u.c.castTo(right, t), t), nil

	case n.Op.IsEquality():
		if numeric {
			t := wider(lt, rt)
			return &Equality{op: n.Op, left: u.c.castTo(left, t), right: u.c.castTo(right, t)}, nil
		}
		if !lt.AssignableTo(rt) && !rt.AssignableTo(lt) {
			return nil, u.errorf(n, "cannot compare %s and %s", lt, rt)
		}
		return &Equality{op: n.Op, left: left, right: right}, nil

	case n.Op.IsLogical():
		if lt.Kind != types.Bool || rt.Kind != types.Bool {
			return nil, u.errorf(n, "operator %s requires bool operands, got %s and %s", n.Op, lt, rt)
		}
		return &Logical{op: n.Op, left: As[bool](left), right: As[bool](right)}, nil
	}
	return nil, u.errorf(n, "unsupported operator %s", n.Op)
}

func arithmetic(op syntax.Op, l, r Expression, t *types.Type) Expression {
	switch t.Kind {
	case types.Int:
		return &Arithmetic[int]{op: op, left: As[int](l), right: As[int](r), typ: t}
	case types.Float:
		return &Arithmetic[float32]{op: op, left: As[float32](l), right: As[float32](r), typ: t}
	}
	return &Arithmetic[float64]{op: op, left: As[float64](l), right: As[float64](r), typ: t}
}

func comparison(op syntax.Op, l, r Expression, t *types.Type) Expression {
	switch t.Kind {
	case types.Int:
		return &Comparison[int]{op: op, left: As[int](l), right: As[int](r)}
	case types.Float:
		return &Comparison[float32]{op: op, left: As[float32](l), right: As[float32](r)}
	}
	return &Comparison[float64]{op: op, left: As[float64](l), right: As[float64](r)}
}

func (u *unit) ternary(n *syntax.Ternary, required *types.Type) (Expression, error) {
	cond, err := u.compileAs(n.Cond, types.BoolType)
	if err != nil {
		return nil, err
	}
	then, err := u.compile(n.Then, required)
	if err != nil {
		return nil, err
	}
	els, err := u.compile(n.Else, required)
	if err != nil {
		return nil, err
	}
	if required != nil {
		then, els = u.c.castTo(then, required), u.c.castTo(els, required)
	}
	c := As[bool](cond)
	tt, et := then.Type(), els.Type()
	if tt == et {
		switch tt.Kind {
		case types.Int:
			return &Ternary[int]{cond: c, then: As[int](then), els: As[int](els), typ: tt}, nil
		case types.Float:
			return &Ternary[float32]{cond: c, then: As[float32](then), els: As[float32](els), typ: tt}, nil
		case types.Double:
			return &Ternary[float64]{cond: c, then: As[float64](then), els: As[float64](els), typ: tt}, nil
		case types.String:
			return &Ternary[string]{cond: c, then: As[string](then), els: As[string](els), typ: tt}, nil
		case types.Bool:
			return &Ternary[bool]{cond: c, then: As[bool](then), els: As[bool](els), typ: tt}, nil
		}
		return &UntypedTernary{cond: c, then: then, els: els, typ: tt}, nil
	}
	return &UntypedTernary{cond: c, then: then, els: els, typ: types.ObjectType}, nil
}

func (u *unit) call(n *syntax.Call) (Expression, error) {
	if len(n.Args) > MaxArguments {
		return nil, u.errorf(n, "expressions only support functions with up to %d arguments", MaxArguments)
	}
	var (
		method   *types.Method
		receiver Expression
	)
	if n.Target == nil {
		if u.env.Root != nil && !u.env.Root.IsPrimitive() {
			if m, ok := u.env.Root.Method(n.Name); ok {
				method = m
				receiver = &Reserved{kind: reservedRoot, typ: u.env.Root}
			}
		}
		if method == nil && u.env.Aliases != nil {
			if a, ok := u.env.Aliases.ResolveAlias(n.Name); ok && a.Kind == AliasMethod {
				method = a.Method
			}
		}
		if method == nil {
			return nil, u.errorf(n, "unknown method %s on %s", n.Name, orObject(u.env.Root))
		}
	} else {
		target, err := u.compile(n.Target, nil)
		if err != nil {
			return nil, err
		}
		t := target.Type()
		if t.Kind != types.Struct {
			return nil, u.errorf(n, "cannot call %s on %s", n.Name, t)
		}
		m, ok := t.Method(n.Name)
		if !ok {
			return nil, u.errorf(n, "unknown method %s on %s", n.Name, t)
		}
		method, receiver = m, target
	}

	if len(n.Args) != len(method.Params) {
		return nil, u.errorf(n, "argument count is wrong: %s expects %d, got %d", method.Name, len(method.Params), len(n.Args))
	}
	args := make([]Expression, len(n.Args))
	for i, a := range n.Args {
		arg, err := u.compile(a, method.Params[i])
		if err != nil {
			return nil, err
		}
		arg = u.c.castTo(arg, method.Params[i])
		if !arg.Type().AssignableTo(method.Params[i]) {
			return nil, u.errorf(a, "argument %d of %s: cannot use %s as %s", i+1, method.Name, arg.Type(), method.Params[i])
		}
		args[i] = arg
	}
	if method.Static {
		return &StaticCall{method: method, args: args}, nil
	}
	return &InstanceCall{method: method, receiver: receiver, args: args}, nil
}
