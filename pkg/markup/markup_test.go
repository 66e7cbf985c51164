package markup

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseTemplate(t *testing.T) {
	src := `<Template>
    <Group x-id="child0" style="w100h100" value.write="count" attr:kind="primary">
        <Text>Hello {name}!</Text>
    </Group>
    <Repeat list="items" as="item"/>
</Template>`
	tmpl, err := Parse("test.xml", src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tmpl.Root.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(tmpl.Root.Children))
	}
	group := tmpl.Root.Children[0]
	if group.Tag != "Group" || group.Line != 2 || group.Column != 5 {
		t.Errorf("expected Group at 2:5, got %s at %d:%d", group.Tag, group.Line, group.Column)
	}
	want := []Attribute{
		{Key: "x-id", Value: "child0", Type: AttributeAttribute, Line: 2, Column: 12},
		{Key: "style", Value: "w100h100", Type: AttributeStyle, Line: 2, Column: 26},
		{Key: "value.write", Value: "count", Type: AttributeProperty, Flags: FlagModified, Line: 2, Column: 43},
		{Key: "attr:kind", Value: "primary", Type: AttributeAttribute, Line: 2, Column: 63},
	}
	if diff := cmp.Diff(want, group.Attributes); diff != "" {
		t.Errorf("attributes mismatch (-want +got):\n%s", diff)
	}
	text := group.Children[0].Children[0]
	if text.Type != TextNode || text.Text != "Hello {name}!" {
		t.Errorf("expected text node, got %+v", text)
	}
	if names := tmpl.AttributeNames(); !cmp.Equal(names, []string{"x-id", "kind"}) {
		t.Errorf("unexpected attribute names %v", names)
	}
}

func TestSplitText(t *testing.T) {
	got := SplitText("Hello {name}, you have { count } items")
	want := []TextPart{
		{Text: "Hello "},
		{Text: "name", Expr: true},
		{Text: ", you have "},
		{Text: "count", Expr: true},
		{Text: " items"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parts mismatch (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"mismatched", "<Template>\n  <Group>\n  </Text>\n</Template>", 3},
		{"unclosed", "<Template>\n  <Group>\n</Template>", 3},
		{"unquoted", "<Template>\n\n  <Group a=b/>\n</Template>", 3},
		{"wrong root", "<Group/>", 1},
	}
	for _, tt := range tests {
		_, err := Parse("bad.xml", tt.src)
		var me *Error
		if !errors.As(err, &me) {
			t.Errorf("%s: expected markup error, got %v", tt.name, err)
			continue
		}
		if me.Line != tt.line {
			t.Errorf("%s: expected line %d, got %d (%v)", tt.name, tt.line, me.Line, me)
		}
	}
}
