package expr

import "loom/pkg/types"

// MaxArguments is the largest arity a method call may have.
const MaxArguments = 4

// StaticCall invokes a method that needs no receiver.
type StaticCall struct {
	method *types.Method
	args   []Expression
}

func (c *StaticCall) Type() *types.Type { return c.method.Return }
func (c *StaticCall) IsConstant() bool { return false }

func (c *StaticCall) Eval(ctx *Context) any {
	var buf [MaxArguments]any
	return c.method.Call(nil, evalArgs(ctx, c.args, buf[:0]))
}

// InstanceCall invokes a method on the value of a receiver expression.
type InstanceCall struct {
	method   *types.Method
	receiver Expression
	args     []Expression
}

func (c *InstanceCall) Type() *types.Type { return c.method.Return }
func (c *InstanceCall) IsConstant() bool { return false }

func (c *InstanceCall) Eval(ctx *Context) any {
	recv := c.receiver.Eval(ctx)
	if recv == nil {
		runtimeErrorf("cannot call %s on a nil value", c.method.Name)
	}
	var buf [MaxArguments]any
	return c.method.Call(recv, evalArgs(ctx, c.args, buf[:0]))
}

func evalArgs(ctx *Context, args []Expression, out []any) []any {
	for _, a := range args {
		out = append(out, a.Eval(ctx))
	}
	return out
}
