package syntax

import "testing"

func TestParseShapes(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2", "(1 + 2)"},
		{"a.b[3].c", "a.b[3].c"},
		{"!flag", "!flag"},
		{"x > 1 ? 'yes' : 'no'", "((x > 1) ? 'yes' : 'no')"},
		{"Add(1, item.value)", "Add(1, item.value)"},
		{"element.Focus()", "element.Focus()"},
		{"a === b", "(a == b)"},
	}
	for _, tt := range tests {
		n, err := Parse(tt.src)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.src, err)
			continue
		}
		if got := n.String(); got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.src, tt.want, got)
		}
	}
}

func TestParseNumberKinds(t *testing.T) {
	tests := []struct {
		src  string
		kind LiteralKind
		val  any
	}{
		{"12", IntLiteral, 12},
		{"1.5", DoubleLiteral, 1.5},
		{"1.5f", FloatLiteral, float32(1.5)},
		{"2f", FloatLiteral, float32(2)},
	}
	for _, tt := range tests {
		n, err := Parse(tt.src)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.src, err)
		}
		lit, ok := n.(*Literal)
		if !ok {
			t.Fatalf("%s: expected literal, got %T", tt.src, n)
		}
		if lit.Kind != tt.kind || lit.Value != tt.val {
			t.Errorf("%s: expected %v %v, got %v %v", tt.src, tt.kind, tt.val, lit.Kind, lit.Value)
		}
	}
}

func TestFloatSuffixInsideStringIsKept(t *testing.T) {
	n, err := Parse("'1f' + x1f")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b := n.(*Binary)
	if s := b.Left.(*Literal).Value; s != "1f" {
		t.Errorf("expected string 1f, got %v", s)
	}
	if h := b.Right.(*Access).Head; h != "x1f" {
		t.Errorf("expected identifier x1f, got %v", h)
	}
}

func TestParseErrors(t *testing.T) {
	for _, src := range []string{"a +", "function() {}", "a = 1", "foo()()"} {
		if _, err := Parse(src); err == nil {
			t.Errorf("%s: expected an error", src)
		}
	}
}
