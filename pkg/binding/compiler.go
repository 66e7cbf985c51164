package binding

import (
	"errors"
	"fmt"
	"strings"

	"loom/pkg/expr"
	"loom/pkg/markup"
	"loom/pkg/types"
)

// Env is the compile environment of one template element.
type Env struct {
	File    string
	Root    *types.Type
	Element *types.Type
	Parent  *types.Type
	Scope   *Scope
	Enums   expr.EnumResolver
}

func (e Env) exprEnv(event *types.Type) *expr.Env {
	env := &expr.Env{
		Root:    e.Root,
		Element: e.Element,
		Parent:  e.Parent,
		Event:   event,
		Enums:   e.Enums,
	}
	if e.Scope != nil {
		env.Aliases = e.Scope
	}
	return env
}

type Compiler struct {
	Expr *expr.Compiler
}

func NewCompiler(ec *expr.Compiler) *Compiler {
	if ec == nil {
		ec = expr.NewCompiler()
	}
	return &Compiler{Expr: ec}
}

var modifiers = map[string]Type{
	"enable":  OnEnable,
	"enabled": OnEnable,
	"read":    Update,
	"write":   Write,
}

// CompileAttribute turns one property attribute into bindings. A key may
// carry modifiers, e.g. value.read.write; each distinct modifier yields one
// binding compiled from the same value.
func (c *Compiler) CompileAttribute(env Env, attr markup.Attribute) ([]Binding, error) {
	bs, err := c.compileAttribute(env, attr)
	if err != nil {
		return nil, &CompileError{File: env.File, Line: attr.Line, Column: attr.Column, Key: attr.Key, Err: c.explain(env, err)}
	}
	return bs, nil
}

// explain replaces an unknown alias error with a scope error when the name
// exists but is hidden by a template boundary.
func (c *Compiler) explain(env Env, err error) error {
	var ce *expr.CompileError
	if env.Scope == nil || !errors.As(err, &ce) || ce.Name == "" {
		return err
	}
	if _, lerr := env.Scope.Lookup(ce.Name); errors.Is(lerr, ErrOutOfScope) {
		return fmt.Errorf("%v: %w", ce, lerr)
	}
	return err
}

func (c *Compiler) compileAttribute(env Env, attr markup.Attribute) ([]Binding, error) {
	parts := strings.Split(attr.Key, ".")
	name := parts[0]
	if len(parts) == 1 {
		b, err := c.compileUnmodified(env, name, attr)
		if err != nil {
			return nil, err
		}
		return []Binding{b}, nil
	}

	// Events may be registered under a dotted key, e.g. onMouseDown.capture.
	if ev, ok := env.Element.Event(attr.Key); ok {
		b, err := c.compileEvent(env, ev, attr)
		if err != nil {
			return nil, err
		}
		return []Binding{b}, nil
	}

	var kinds []Type
	for _, m := range parts[1:] {
		k, ok := modifiers[m]
		if !ok {
			return nil, fmt.Errorf("unknown modifier %q", m)
		}
		dup := false
		for _, seen := range kinds {
			dup = dup || seen == k
		}
		if !dup {
			kinds = append(kinds, k)
		}
	}
	field, ok := env.Element.Field(name)
	if !ok {
		return nil, fmt.Errorf("%s is not a field or property on type %s", name, env.Element)
	}
	out := make([]Binding, 0, len(kinds))
	for _, k := range kinds {
		var (
			b   Binding
			err error
		)
		if k == Write {
			b, err = c.compileWrite(env, field, attr)
		} else {
			b, err = c.compileSetter(env, field, attr, k)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (c *Compiler) compileUnmodified(env Env, name string, attr markup.Attribute) (Binding, error) {
	if ev, ok := env.Element.Event(name); ok {
		return c.compileEvent(env, ev, attr)
	}
	if f, ok := env.Element.Field(name); ok {
		return c.compileSetter(env, f, attr, Update)
	}
	if name == "if" {
		e, err := c.compileValue(env, attr, types.BoolType)
		if err != nil {
			return nil, err
		}
		return NewEnabled(e), nil
	}
	return nil, fmt.Errorf("%s is not a field or property on type %s", name, env.Element)
}

// compileValue compiles a {bound} value as an expression or an unbound value
// as a literal of the required type.
func (c *Compiler) compileValue(env Env, attr markup.Attribute, required *types.Type) (expr.Expression, error) {
	if attr.Flags&markup.FlagBound == 0 {
		v, err := ParseLiteral(required, attr.Value)
		if err != nil {
			return nil, err
		}
		return expr.NewLiteral[any](required, v), nil
	}
	src := strings.TrimSpace(attr.Value[1 : len(attr.Value)-1])
	return c.Expr.CompileString(env.exprEnv(nil), src, required)
}

func (c *Compiler) compileSetter(env Env, f *types.Field, attr markup.Attribute, k Type) (Binding, error) {
	if !f.Writable() {
		return nil, fmt.Errorf("%s on type %s is read-only", f.Name, env.Element)
	}
	e, err := c.compileValue(env, attr, f.Type)
	if err != nil {
		return nil, err
	}
	if k == Update && e.IsConstant() {
		k = Constant
	}
	return NewSetter(attr.Key, k, f, e), nil
}

func (c *Compiler) compileWrite(env Env, f *types.Field, attr markup.Attribute) (Binding, error) {
	if attr.Flags&markup.FlagBound == 0 {
		return nil, fmt.Errorf("write binding needs a {binding} target")
	}
	src := strings.TrimSpace(attr.Value[1 : len(attr.Value)-1])
	target, err := c.Expr.CompileWriteTarget(env.exprEnv(nil), src)
	if err != nil {
		return nil, err
	}
	if !f.Type.AssignableTo(target.Type()) {
		return nil, fmt.Errorf("cannot write %s %s to %s", f.Type, f.Name, target.Type())
	}
	return NewWrite(attr.Key, f, target), nil
}

func (c *Compiler) compileEvent(env Env, ev *types.Event, attr markup.Attribute) (Binding, error) {
	if attr.Flags&markup.FlagBound == 0 {
		return nil, fmt.Errorf("event %s needs a {handler} expression", ev.Name)
	}
	var evt *types.Type
	if len(ev.Params) > 0 {
		evt = ev.Params[0]
	}
	src := strings.TrimSpace(attr.Value[1 : len(attr.Value)-1])
	e, err := c.Expr.CompileString(env.exprEnv(evt), src, nil)
	if err != nil {
		return nil, err
	}
	return NewEvent(attr.Key, ev, e), nil
}

// CompileExpression compiles a bound value outside of an attribute, e.g. the
// list of a Repeat.
func (c *Compiler) CompileExpression(env Env, attr markup.Attribute, required *types.Type) (expr.Expression, error) {
	e, err := c.compileValue(env, attr, required)
	if err != nil {
		return nil, &CompileError{File: env.File, Line: attr.Line, Column: attr.Column, Key: attr.Key, Err: c.explain(env, err)}
	}
	return e, nil
}
