package inspect

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"loom/pkg/element"
	"loom/pkg/geom"
	"loom/pkg/layout"
	"loom/pkg/style"
)

type measurer struct{}

func (measurer) MeasureText(text string, fontSize, maxWidth float32) (float32, float32) {
	return float32(len(text)) * 10, fontSize
}

func TestFprint(t *testing.T) {
	tree := element.NewTree()
	view := tree.Create("View", nil, nil)
	view.Style.SetInstance(style.LayoutTypeProperty, style.LayoutNormal)
	list := tree.Create("Group", nil, nil)
	list.SetAttribute("x-id", "list")
	tree.AppendChild(view, list)
	label := tree.Create("Text", nil, nil)
	label.TextContent = "Hi"
	label.Style.SetState(style.StateHover, true)
	tree.AppendChild(list, label)
	off := tree.Create("Group", nil, nil)
	tree.AppendChild(list, off)
	tree.SetEnabled(off, false)

	runner := layout.NewRunner(tree, view, measurer{})
	element.Walk(view, func(el *element.Element) bool {
		el.Style.Compute()
		el.Style.DrainChanges(func(p style.PropertyID) { runner.StyleChanged(el, p) })
		return true
	})
	runner.RunLayout(geom.Rect{Width: 100, Height: 100}, 1)

	var buf bytes.Buffer
	if err := Fprint(&buf, view, runner); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), out)
	}
	for i, want := range []string{
		"View#",
		"Group#",
		`Text#`,
		"Group#",
	} {
		if !strings.Contains(lines[i], want) {
			t.Errorf("line %d = %q, expected it to contain %q", i, lines[i], want)
		}
	}
	for _, want := range []string{"(list)", `"Hi"`, "[hover]", "0,0 20x18", "disabled"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q:\n%s", want, out)
		}
	}
}

func TestLabelWithoutLayout(t *testing.T) {
	tree := element.NewTree()
	el := tree.Create("Group", nil, nil)
	var buf bytes.Buffer
	got := NewPrinter(&buf).Label(el, nil)
	if got != "Group#"+strconv.Itoa(int(el.ID)) {
		t.Errorf("expected a bare tag and id, got %q", got)
	}
}
