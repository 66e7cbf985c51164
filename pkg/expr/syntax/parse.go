package syntax

import (
	"fmt"
	"strings"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"
	"github.com/dop251/goja/token"
)

// Error is a parse failure at a byte offset of the source.
type Error struct {
	Src    string
	Offset int
	Msg    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s in %q at offset %d", e.Msg, e.Src, e.Offset)
}

// Parse parses a single expression. A numeric literal followed by f (1.5f)
// is a float; other decimal literals are doubles.
func Parse(src string) (Node, error) {
	clean, floats := stripFloatSuffixes(src)
	prog, err := parser.ParseFile(nil, "", clean, 0)
	if err != nil {
		return nil, &Error{Src: src, Msg: strings.TrimSpace(err.Error())}
	}
	if len(prog.Body) != 1 {
		return nil, &Error{Src: src, Msg: "expected exactly one expression"}
	}
	stmt, ok := prog.Body[0].(*ast.ExpressionStatement)
	if !ok {
		return nil, &Error{Src: src, Msg: "expected an expression"}
	}
	c := converter{src: src, floats: floats}
	return c.convert(stmt.Expression)
}

type converter struct {
	src    string
	floats map[int]bool
}

// offset converts a goja index (1-based) into a byte offset.
func offset(n ast.Node) int {
	return int(n.Idx0()) - 1
}

func (c *converter) errorf(n ast.Node, format string, args ...any) error {
	return &Error{Src: c.src, Offset: offset(n), Msg: fmt.Sprintf(format, args...)}
}

func (c *converter) convert(e ast.Expression) (Node, error) {
	switch n := e.(type) {
	case *ast.NumberLiteral:
		return c.number(n)
	case *ast.StringLiteral:
		return &Literal{Kind: StringLiteral, Value: n.Value.String(), Raw: n.Literal, At: offset(n)}, nil
	case *ast.BooleanLiteral:
		return &Literal{Kind: BoolLiteral, Value: n.Value, Raw: n.Literal, At: offset(n)}, nil
	case *ast.NullLiteral:
		return &Literal{Kind: NullLiteral, Raw: "null", At: offset(n)}, nil
	case *ast.Identifier:
		return &Access{Head: n.Name.String(), At: offset(n)}, nil
	case *ast.DotExpression, *ast.BracketExpression:
		return c.access(e)
	case *ast.UnaryExpression:
		return c.unary(n)
	case *ast.BinaryExpression:
		op, ok := binaryOps[n.Operator]
		if !ok {
			return nil, c.errorf(n, "unsupported operator %s", n.Operator)
		}
		left, err := c.convert(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := c.convert(n.Right)
		if err != nil {
			return nil, err
		}
		return &Binary{Op: op, Left: left, Right: right, At: offset(n)}, nil
	case *ast.ConditionalExpression:
		cond, err := c.convert(n.Test)
		if err != nil {
			return nil, err
		}
		then, err := c.convert(n.Consequent)
		if err != nil {
			return nil, err
		}
		els, err := c.convert(n.Alternate)
		if err != nil {
			return nil, err
		}
		return &Ternary{Cond: cond, Then: then, Else: els, At: offset(n)}, nil
	case *ast.CallExpression:
		return c.call(n)
	}
	return nil, c.errorf(e, "unsupported expression %T", e)
}

var binaryOps = map[token.Token]Op{
	token.PLUS:             OpAdd,
	token.MINUS:            OpSub,
	token.MULTIPLY:         OpMul,
	token.SLASH:            OpDiv,
	token.REMAINDER:        OpMod,
	token.LOGICAL_AND:      OpAnd,
	token.LOGICAL_OR:       OpOr,
	token.EQUAL:            OpEq,
	token.STRICT_EQUAL:     OpEq,
	token.NOT_EQUAL:        OpNe,
	token.STRICT_NOT_EQUAL: OpNe,
	token.GREATER:          OpGt,
	token.GREATER_OR_EQUAL: OpGe,
	token.LESS:             OpLt,
	token.LESS_OR_EQUAL:    OpLe,
}

func (c *converter) number(n *ast.NumberLiteral) (Node, error) {
	at := offset(n)
	lit := &Literal{Raw: n.Literal, At: at}
	switch v := n.Value.(type) {
	case int64:
		if c.floats[at] {
			lit.Kind, lit.Value = FloatLiteral, float32(v)
		} else {
			lit.Kind, lit.Value = IntLiteral, int(v)
		}
	case float64:
		if c.floats[at] {
			lit.Kind, lit.Value = FloatLiteral, float32(v)
		} else {
			lit.Kind, lit.Value = DoubleLiteral, v
		}
	default:
		return nil, c.errorf(n, "unsupported number literal %s", n.Literal)
	}
	return lit, nil
}

func (c *converter) unary(n *ast.UnaryExpression) (Node, error) {
	var op Op
	switch n.Operator {
	case token.NOT:
		op = OpNot
	case token.PLUS:
		op = OpPlus
	case token.MINUS:
		op = OpMinus
	default:
		return nil, c.errorf(n, "unsupported unary operator %s", n.Operator)
	}
	operand, err := c.convert(n.Operand)
	if err != nil {
		return nil, err
	}
	return &Unary{Op: op, Operand: operand, At: offset(n)}, nil
}

// access flattens a.b[c].d into one chain rooted at an identifier.
func (c *converter) access(e ast.Expression) (Node, error) {
	var parts []Part
	cur := e
	for {
		switch n := cur.(type) {
		case *ast.DotExpression:
			parts = append(parts, Part{Field: n.Identifier.Name.String()})
			cur = n.Left
			continue
		case *ast.BracketExpression:
			idx, err := c.convert(n.Member)
			if err != nil {
				return nil, err
			}
			parts = append(parts, Part{Index: idx})
			cur = n.Left
			continue
		case *ast.Identifier:
			for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
				parts[i], parts[j] = parts[j], parts[i]
			}
			return &Access{Head: n.Name.String(), Parts: parts, At: offset(n)}, nil
		}
		return nil, c.errorf(cur, "member access must start with an identifier")
	}
}

func (c *converter) call(n *ast.CallExpression) (Node, error) {
	call := &Call{At: offset(n)}
	switch callee := n.Callee.(type) {
	case *ast.Identifier:
		call.Name = callee.Name.String()
	case *ast.DotExpression:
		target, err := c.convert(callee.Left)
		if err != nil {
			return nil, err
		}
		call.Target = target
		call.Name = callee.Identifier.Name.String()
	default:
		return nil, c.errorf(n, "unsupported call target")
	}
	for _, a := range n.ArgumentList {
		arg, err := c.convert(a)
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
	}
	return call, nil
}

// stripFloatSuffixes blanks the f in literals like 1.5f so the source parses
// as JavaScript, keeping every other byte offset unchanged. It returns the
// offsets of the affected literals.
func stripFloatSuffixes(src string) (string, map[int]bool) {
	var floats map[int]bool
	b := []byte(src)
	var quote byte
	for i := 0; i < len(b); i++ {
		ch := b[i]
		if quote != 0 {
			if ch == '\\' {
				i++
			} else if ch == quote {
				quote = 0
			}
			continue
		}
		if ch == '\'' || ch == '"' {
			quote = ch
			continue
		}
		if !isDigit(ch) || (i > 0 && isIdentByte(b[i-1])) {
			continue
		}
		start := i
		for i < len(b) && (isDigit(b[i]) || b[i] == '.') {
			i++
		}
		if i < len(b) && (b[i] == 'f' || b[i] == 'F') && (i+1 == len(b) || !isIdentByte(b[i+1])) {
			b[i] = ' '
			if floats == nil {
				floats = make(map[int]bool)
			}
			floats[start] = true
		}
		i--
	}
	return string(b), floats
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentByte(ch byte) bool {
	return ch == '_' || ch == '$' || isDigit(ch) || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
