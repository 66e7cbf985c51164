// Package expr holds the typed expression model and the compiler that builds
// it from binding strings.
package expr

import (
	"errors"
	"fmt"
	"runtime"

	"loom/pkg/types"
)

// Expression is an immutable compiled node.
type Expression interface {
	// Type is the type of the value Eval produces.
	Type() *types.Type
	IsConstant() bool
	Eval(ctx *Context) any
}

// Typed is an expression whose result is statically a T.
type Typed[T any] interface {
	Expression
	Evaluate(ctx *Context) T
}

// VariableScope resolves context variables by id at runtime.
type VariableScope interface {
	Variable(id int) (any, bool)
}

// Context is what expressions evaluate against.
type Context struct {
	Root    any
	Element any
	Parent  any
	Event   any
	Scope   VariableScope
}

// As adapts e to a Typed[T]. The adapter trusts e.Type(); a mismatch is a
// compiler bug and panics.
func As[T any](e Expression) Typed[T] {
	if t, ok := e.(Typed[T]); ok {
		return t
	}
	return adapter[T]{e}
}

type adapter[T any] struct {
	Expression
}

func (a adapter[T]) Evaluate(ctx *Context) T {
	v := a.Eval(ctx)
	if v == nil {
		var zero T
		return zero
	}
	return v.(T)
}

// RuntimeError is raised while evaluating, e.g. an index out of range or a
// missing context variable.
type RuntimeError struct {
	Expr string
	Msg  string
}

func (e *RuntimeError) Error() string {
	if e.Expr == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s (in %s)", e.Msg, e.Expr)
}

func runtimeErrorf(format string, args ...any) {
	panic(&RuntimeError{Msg: fmt.Sprintf(format, args...)})
}

// Guard runs fn and turns evaluation panics (runtime errors, nil member
// access, Go runtime faults) into an error. Other panics propagate.
func Guard(fn func()) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		e, ok := r.(error)
		if !ok {
			panic(r)
		}
		var re *RuntimeError
		var ae *types.AccessError
		var rt runtime.Error
		if errors.As(e, &re) || errors.As(e, &ae) || errors.As(e, &rt) {
			err = e
			return
		}
		panic(r)
	}()
	fn()
	return nil
}

// Run evaluates e and reports evaluation failures as errors.
func Run(ctx *Context, e Expression) (v any, err error) {
	err = Guard(func() { v = e.Eval(ctx) })
	return v, err
}
