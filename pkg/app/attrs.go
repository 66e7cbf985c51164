package app

import (
	"fmt"
	"strings"

	"loom/pkg/binding"
	"loom/pkg/element"
	"loom/pkg/markup"
	"loom/pkg/style"
	"loom/pkg/types"
)

type localVar struct {
	id   int
	name string
	typ  *types.Type
}

// bind applies the attributes of a template node to el. Literal styles and
// attributes are applied directly; everything else becomes a binding on the
// element's node, which is attached and created here. Context variables are
// declared first so the element's own expressions can use them. A node is
// only attached when there is something to run, unless force is set, and
// never while a Repeat body is being checked.
func (a *Application) bind(el *element.Element, attrs []markup.Attribute, env binding.Env, root any, force bool, extra ...binding.Binding) (*binding.Node, error) {
	var (
		vars []localVar
		bs   []binding.Binding
	)
	for _, at := range attrs {
		if at.Type != markup.AttributeContext {
			continue
		}
		e, err := a.compiler.CompileExpression(env, at, nil)
		if err != nil {
			return nil, err
		}
		name := at.Name()
		id := env.Scope.Declare(name, e.Type())
		vars = append(vars, localVar{id: id, name: name, typ: e.Type()})
		bs = append(bs, &contextBinding{key: at.Key, id: id, typ: binding.Constant, val: e})
		if !e.IsConstant() {
			bs = append(bs, &contextBinding{key: at.Key, id: id, typ: binding.Update, val: e})
		}
	}

	for _, at := range attrs {
		if at.Type == markup.AttributeContext {
			continue
		}
		if at.Type != markup.AttributeProperty && at.Flags&markup.FlagBound == 0 {
			if err := a.applyStatic(el, at, env.File); err != nil {
				return nil, err
			}
			continue
		}
		switch at.Type {
		case markup.AttributeProperty:
			pb, err := a.compiler.CompileAttribute(env, at)
			if err != nil {
				return nil, err
			}
			bs = append(bs, pb...)
		case markup.AttributeAttribute:
			e, err := a.compiler.CompileExpression(env, at, nil)
			if err != nil {
				return nil, err
			}
			bs = append(bs, &attrBinding{key: at.Key, name: at.Name(), typ: updateType(e.IsConstant()), val: e})
		case markup.AttributeInstanceStyle:
			p, ok := style.LookupProperty(at.Name())
			if !ok {
				return nil, attrErrorf(env.File, at, "unknown style property %s", at.Name())
			}
			e, err := a.compiler.CompileExpression(env, at, nil)
			if err != nil {
				return nil, err
			}
			bs = append(bs, &styleBinding{key: at.Key, prop: p, typ: updateType(e.IsConstant()), val: e})
		case markup.AttributeStyle:
			return nil, attrErrorf(env.File, at, "style lists cannot be bound; use style.<Property>")
		}
	}
	bs = append(bs, extra...)

	if (len(bs) == 0 && !force) || a.checking > 0 {
		return nil, nil
	}
	n := a.graph.Attach(el, root, bs...)
	for _, v := range vars {
		n.CreateLocalVariable(v.id, v.name, v.typ, nil)
	}
	if err := a.graph.Created(n); err != nil {
		return nil, err
	}
	return n, nil
}

func updateType(constant bool) binding.Type {
	if constant {
		return binding.Constant
	}
	return binding.Update
}

// applyStatic applies an unbound style list, attribute or instance style.
func (a *Application) applyStatic(el *element.Element, at markup.Attribute, file string) error {
	switch at.Type {
	case markup.AttributeStyle:
		names := strings.Fields(at.Value)
		containers := make([]*style.Container, 0, len(names))
		for _, name := range names {
			c, ok := a.sheet.Get(name)
			if !ok {
				return attrErrorf(file, at, "unknown style %s", name)
			}
			containers = append(containers, c)
		}
		el.Style.SetContainers(containers)
	case markup.AttributeAttribute:
		el.SetAttribute(at.Name(), at.Value)
	case markup.AttributeInstanceStyle:
		p, ok := style.LookupProperty(at.Name())
		if !ok {
			return attrErrorf(file, at, "unknown style property %s", at.Name())
		}
		v, err := style.ParseValue(p, at.Value)
		if err != nil {
			return attrErrorf(file, at, "%s: %v", at.Key, err)
		}
		el.Style.SetInstance(p, v)
	default:
		return attrErrorf(file, at, "%s cannot be applied without a binding", at.Key)
	}
	return nil
}

func attrErrorf(file string, at markup.Attribute, format string, args ...any) error {
	return &TemplateError{File: file, Line: at.Line, Column: at.Column, Msg: fmt.Sprintf(format, args...)}
}
