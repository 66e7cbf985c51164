package expr

import (
	"loom/pkg/expr/syntax"
	"loom/pkg/types"
)

// WriteTarget is an assignable access chain, the source side of a write-back
// binding.
type WriteTarget struct {
	receiver Expression
	field    *types.Field
	src      string
}

func (w *WriteTarget) Type() *types.Type {
	return w.field.Type
}

// Get reads the current value at the target.
func (w *WriteTarget) Get(ctx *Context) any {
	return w.field.Get(w.resolve(ctx))
}

// Assign stores v at the target. A nil value anywhere in the chain is a
// RuntimeError panic; callers run it under Guard.
func (w *WriteTarget) Assign(ctx *Context, v any) {
	w.field.Set(w.resolve(ctx), v)
}

func (w *WriteTarget) resolve(ctx *Context) any {
	recv := w.receiver.Eval(ctx)
	if recv == nil {
		panic(&RuntimeError{Expr: w.src, Msg: "nil target in write-back chain"})
	}
	return recv
}

func (w *WriteTarget) String() string {
	return w.src
}

// CompileWriteTarget compiles src as something that can be assigned to: a
// root field or a field at the end of an access chain.
func (c *Compiler) CompileWriteTarget(env *Env, src string) (*WriteTarget, error) {
	n, err := syntax.Parse(src)
	if err != nil {
		return nil, &CompileError{Src: src, Msg: err.Error(), Err: err}
	}
	u := &unit{c: c, env: env, src: src}
	acc, ok := n.(*syntax.Access)
	if !ok {
		return nil, u.errorf(n, "expression is not assignable")
	}
	var (
		receiver Expression
		field    *types.Field
	)
	if len(acc.Parts) == 0 {
		if env.Aliases != nil {
			if _, ok := env.Aliases.ResolveAlias(acc.Head); ok {
				return nil, u.errorf(n, "cannot assign to alias %s", acc.Head)
			}
		}
		if env.Root == nil || env.Root.Kind != types.Struct {
			return nil, u.errorf(n, "%s is not a field on the root type", acc.Head)
		}
		f, ok := env.Root.Field(acc.Head)
		if !ok {
			return nil, u.errorf(n, "%s is not a field or property on type %s", acc.Head, env.Root)
		}
		receiver, field = &Reserved{kind: reservedRoot, typ: env.Root}, f
	} else {
		last := acc.Parts[len(acc.Parts)-1]
		if last.Index != nil {
			return nil, u.errorf(n, "cannot assign to a list element")
		}
		recvNode := &syntax.Access{Head: acc.Head, Parts: acc.Parts[:len(acc.Parts)-1], At: acc.At}
		recv, err := u.access(recvNode)
		if err != nil {
			return nil, err
		}
		t := recv.Type()
		if t.Kind != types.Struct {
			return nil, u.errorf(n, "cannot assign field %s on %s", last.Field, t)
		}
		f, ok := t.Field(last.Field)
		if !ok {
			return nil, u.errorf(n, "%s is not a field or property on type %s", last.Field, t)
		}
		receiver, field = recv, f
	}
	if !field.Writable() {
		return nil, u.errorf(n, "%s is read-only", field.Name)
	}
	return &WriteTarget{receiver: receiver, field: field, src: src}, nil
}
