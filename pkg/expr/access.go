package expr

import "loom/pkg/types"

// reservedKind names the context slots reachable through reserved aliases.
type reservedKind uint8

const (
	reservedRoot reservedKind = iota
	reservedElement
	reservedParent
	reservedEvent
)

// Reserved reads root, element, parent or evt from the context.
type Reserved struct {
	kind reservedKind
	typ  *types.Type
}

func (r *Reserved) Type() *types.Type { return r.typ }
func (r *Reserved) IsConstant() bool { return false }

func (r *Reserved) Eval(ctx *Context) any {
	switch r.kind {
	case reservedElement:
		return ctx.Element
	case reservedParent:
		return ctx.Parent
	case reservedEvent:
		return ctx.Event
	}
	return ctx.Root
}

// Variable reads a context variable declared by an enclosing binding node.
type Variable struct {
	ID   int
	Name string
	typ  *types.Type
}

func (v *Variable) Type() *types.Type { return v.typ }
func (v *Variable) IsConstant() bool { return false }

func (v *Variable) Eval(ctx *Context) any {
	if ctx.Scope == nil {
		runtimeErrorf("context variable %s is not available", v.Name)
	}
	val, ok := ctx.Scope.Variable(v.ID)
	if !ok {
		runtimeErrorf("context variable %s (id %d) is not in scope", v.Name, v.ID)
	}
	return val
}

// RootField reads a field of the root context object.
type RootField struct {
	field *types.Field
}

func (f *RootField) Type() *types.Type { return f.field.Type }
func (f *RootField) IsConstant() bool { return false }

func (f *RootField) Eval(ctx *Context) any {
	return f.field.Get(ctx.Root)
}

type chainPart struct {
	field    *types.Field
	index    Typed[int]
	listType *types.Type
}

// Chain walks field and index parts starting from a head expression.
type Chain struct {
	head  Expression
	parts []chainPart
	typ   *types.Type
	src   string
}

func (c *Chain) Type() *types.Type { return c.typ }
func (c *Chain) IsConstant() bool { return false }

func (c *Chain) Eval(ctx *Context) any {
	v := c.head.Eval(ctx)
	for _, p := range c.parts {
		if v == nil {
			panic(&RuntimeError{Expr: c.src, Msg: "nil value in access chain"})
		}
		if p.field != nil {
			v = p.field.Get(v)
			continue
		}
		i := p.index.Evaluate(ctx)
		n := p.listType.Len(v)
		if i < 0 || i >= n {
			panic(&RuntimeError{Expr: c.src, Msg: "index out of range"})
		}
		v = p.listType.Index(v, i)
	}
	return v
}

func (c *Chain) String() string {
	return c.src
}
