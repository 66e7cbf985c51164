// Package syntax turns binding expression strings into a small syntax tree.
// Tokenizing and parsing are done by the goja JavaScript parser; this package
// accepts the expression subset the compiler understands and converts it.
package syntax

import "strings"

type Op uint8

const (
	OpInvalid Op = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAnd
	OpOr
	OpEq
	OpNe
	OpGt
	OpGe
	OpLt
	OpLe
	OpNot
	OpPlus
	OpMinus
)

var opNames = []string{"?", "+", "-", "*", "/", "%", "&&", "||", "==", "!=", ">", ">=", "<", "<=", "!", "+", "-"}

func (o Op) String() string { return opNames[o] }

func (o Op) IsArithmetic() bool { return o >= OpAdd && o <= OpMod }
func (o Op) IsLogical() bool { return o == OpAnd || o == OpOr }
func (o Op) IsEquality() bool { return o == OpEq || o == OpNe }
func (o Op) IsComparison() bool { return o >= OpGt && o <= OpLe }

// Node is a syntax tree node. Pos is the byte offset in the source.
type Node interface {
	Pos() int
	String() string
}

type LiteralKind uint8

const (
	IntLiteral LiteralKind = iota
	FloatLiteral
	DoubleLiteral
	StringLiteral
	BoolLiteral
	NullLiteral
)

// Literal values are int, float32, float64, string, bool or nil.
type Literal struct {
	Kind  LiteralKind
	Value any
	Raw   string
	At    int
}

// Part is one step of an access chain: a field name or an index expression.
type Part struct {
	Field string
	Index Node
}

// Access is an identifier followed by zero or more field or index parts.
type Access struct {
	Head  string
	Parts []Part
	At    int
}

type Unary struct {
	Op      Op
	Operand Node
	At      int
}

type Binary struct {
	Op          Op
	Left, Right Node
	At          int
}

type Ternary struct {
	Cond, Then, Else Node
	At               int
}

// Call is name(args) or target.name(args).
type Call struct {
	Target Node
	Name   string
	Args   []Node
	At     int
}

func (n *Literal) Pos() int { return n.At }
func (n *Access) Pos() int { return n.At }
func (n *Unary) Pos() int { return n.At }
func (n *Binary) Pos() int { return n.At }
func (n *Ternary) Pos() int { return n.At }
func (n *Call) Pos() int { return n.At }

func (n *Literal) String() string {
	if n.Kind == StringLiteral {
		return "'" + n.Value.(string) + "'"
	}
	return n.Raw
}

func (n *Access) String() string {
	var sb strings.Builder
	sb.WriteString(n.Head)
	for _, p := range n.Parts {
		if p.Index != nil {
			sb.WriteString("[" + p.Index.String() + "]")
		} else {
			sb.WriteString("." + p.Field)
		}
	}
	return sb.String()
}

func (n *Unary) String() string { return n.Op.String() + n.Operand.String() }

func (n *Binary) String() string {
	return "(" + n.Left.String() + " " + n.Op.String() + " " + n.Right.String() + ")"
}

func (n *Ternary) String() string {
	return "(" + n.Cond.String() + " ? " + n.Then.String() + " : " + n.Else.String() + ")"
}

func (n *Call) String() string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.String()
	}
	name := n.Name
	if n.Target != nil {
		name = n.Target.String() + "." + name
	}
	return name + "(" + strings.Join(args, ", ") + ")"
}
