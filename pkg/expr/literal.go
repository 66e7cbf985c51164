package expr

import "loom/pkg/types"

// Literal is a constant value.
type Literal[T any] struct {
	typ   *types.Type
	value T
}

func NewLiteral[T any](t *types.Type, v T) *Literal[T] {
	return &Literal[T]{typ: t, value: v}
}

func (l *Literal[T]) Type() *types.Type { return l.typ }
func (l *Literal[T]) IsConstant() bool { return true }
func (l *Literal[T]) Eval(*Context) any { return l.value }
func (l *Literal[T]) Evaluate(*Context) T { return l.value }
func (l *Literal[T]) Value() T { return l.value }

// constant builds a literal of the Go type that matches t.
func constant(t *types.Type, v any) Expression {
	switch t.Kind {
	case types.Int:
		return NewLiteral(t, v.(int))
	case types.Float:
		return NewLiteral(t, v.(float32))
	case types.Double:
		return NewLiteral(t, v.(float64))
	case types.Bool:
		return NewLiteral(t, v.(bool))
	case types.String:
		return NewLiteral(t, v.(string))
	}
	return NewLiteral[any](t, v)
}
