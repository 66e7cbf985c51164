// Package inspect prints the element hierarchy with the layout result of
// each element, for debugging templates and layout from a terminal.
package inspect

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"loom/pkg/element"
	"loom/pkg/layout"
)

// Printer renders hierarchies. Colors follow the terminal behind the
// writer it was created for; plain writers get plain text.
type Printer struct {
	tag    lipgloss.Style
	id     lipgloss.Style
	rect   lipgloss.Style
	note   lipgloss.Style
	text   lipgloss.Style
	branch lipgloss.Style
}

func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		tag:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		id:     r.NewStyle().Foreground(lipgloss.Color("8")),
		rect:   r.NewStyle().Foreground(lipgloss.Color("10")),
		note:   r.NewStyle().Foreground(lipgloss.Color("9")),
		text:   r.NewStyle().Italic(true),
		branch: r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// Fprint writes the hierarchy under root. runner may be nil to print the
// element tree alone.
func Fprint(w io.Writer, root *element.Element, runner *layout.Runner) error {
	_, err := io.WriteString(w, NewPrinter(w).Tree(root, runner).String()+"\n")
	return err
}

// Tree builds the lipgloss tree for root and its descendants.
func (p *Printer) Tree(root *element.Element, runner *layout.Runner) *tree.Tree {
	t := tree.Root(p.Label(root, runner)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(p.branch)
	for _, c := range root.Children {
		if len(c.Children) == 0 {
			t.Child(p.Label(c, runner))
		} else {
			t.Child(p.Tree(c, runner))
		}
	}
	return t
}

// Label is one line describing el:
//
//	Group#4 row [hover] 0,18 100x20 "0: Write"
func (p *Printer) Label(el *element.Element, runner *layout.Runner) string {
	var b strings.Builder
	b.WriteString(p.tag.Render(el.Tag))
	b.WriteString(p.id.Render("#" + strconv.Itoa(int(el.ID))))
	if v, ok := el.Attribute("x-id"); ok {
		b.WriteString(" " + p.id.Render("("+v+")"))
	}
	if el.Style != nil {
		for _, c := range el.Style.Containers() {
			b.WriteString(" " + c.Name)
		}
		if st := el.Style.State(); st != 0 {
			b.WriteString(" " + p.note.Render("["+st.String()+"]"))
		}
	}
	if !el.SelfEnabled() {
		b.WriteString(" " + p.note.Render("disabled"))
	}
	if runner != nil {
		if res := runner.Result(el); res != nil {
			r := res.ScreenRect()
			b.WriteString(" " + p.rect.Render(fmt.Sprintf("%g,%g %gx%g", r.X, r.Y, r.Width, r.Height)))
			if res.Culled {
				b.WriteString(" " + p.note.Render("culled"))
			}
		}
	}
	if el.TextContent != "" {
		b.WriteString(" " + p.text.Render(strconv.Quote(el.TextContent)))
	}
	return b.String()
}
