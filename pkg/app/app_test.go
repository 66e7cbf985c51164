package app

import (
	"bytes"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"loom/pkg/binding"
	"loom/pkg/element"
	"loom/pkg/geom"
	"loom/pkg/style"
	"loom/pkg/types"
)

type todo struct {
	ID    int
	Title string
	Done  bool
}

type page struct {
	Handlers
	Title    string
	Todos    []*todo
	Owner    *todo
	Selected *todo
	Keys     string
	Calls    []string
	Stop     bool
}

func registry() *types.Registry {
	td := types.NewStruct[todo]("Todo")
	types.AddField(td, "ID", types.IntType, func(x *todo) int { return x.ID }, nil)
	types.AddField(td, "Title", types.StringType, func(x *todo) string { return x.Title }, nil)
	types.AddField(td, "Done", types.BoolType, func(x *todo) bool { return x.Done }, nil)

	p := types.NewStruct[page]("Page")
	types.AddField(p, "Title", types.StringType, func(x *page) string { return x.Title }, nil)
	types.AddField(p, "Todos", types.ListOf[*todo](td), func(x *page) []*todo { return x.Todos }, nil)
	types.AddField(p, "Owner", td, func(x *page) *todo { return x.Owner }, nil)
	types.AddMethod(p, "Select", nil, []*types.Type{td}, func(x *page, args []any) any {
		x.Selected = args[0].(*todo)
		return nil
	})
	types.AddMethod(p, "Key", nil, []*types.Type{types.StringType}, func(x *page, args []any) any {
		x.Keys += args[0].(string)
		return nil
	})
	types.AddMethod(p, "Log", nil, []*types.Type{MouseEventType, types.StringType}, func(x *page, args []any) any {
		x.Calls = append(x.Calls, args[1].(string))
		if x.Stop {
			args[0].(*MouseEvent).StopPropagation()
		}
		return nil
	})
	AddPointerEvents(p, (*page).Events)

	r := types.NewRegistry()
	r.RegisterElement("Page", p, func() any { return &page{} })
	return r
}

// fixedMeasurer makes every glyph 10px wide and a line one font size tall.
type fixedMeasurer struct{}

func (fixedMeasurer) MeasureText(text string, fontSize, maxWidth float32) (float32, float32) {
	return float32(len(text)) * 10, fontSize
}

const sheet = `
style page {
    FlexLayoutDirection = Row;
    PreferredWidth = 400px;
    PreferredHeight = 300px;
}
style row {
    PreferredWidth = 100px;
    PreferredHeight = 20px;
    BackgroundColor = #ffffff;
    [hover] { BackgroundColor = #ff0000; }
    [attr:done="true"] { TextColor = #808080; }
}
`

const pageTemplate = `<Template type="Page" style="page">
    <Text x-id="title">{Title}</Text>
    <Group x-id="list" style.FlexLayoutDirection="Row" onKeyDown="{Key(evt.Key)}">
        <Repeat list="{Todos}" as="todo" index="i" key="{todo.ID}">
            <Group x-id="row" style="row" attr:done="{todo.Done}" onClick="{Select(todo)}">
                <Text>{i}: {todo.Title}</Text>
            </Group>
        </Repeat>
    </Group>
</Template>`

type fixture struct {
	t     *testing.T
	app   *Application
	data  *page
	logs  *bytes.Buffer
	frame int
}

func newFixture(t *testing.T, templates map[string]string) *fixture {
	t.Helper()
	logs := &bytes.Buffer{}
	a := New(
		WithViewport(800, 600),
		WithLogger(log.New(logs, "", 0)),
		WithTextMeasurer(fixedMeasurer{}),
		WithRegistry(registry()),
	)
	if err := a.AddStyleSheet("test.style", sheet); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for file, src := range templates {
		if err := a.AddTemplate(file, src); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	data := &page{
		Title: "Todos",
		Todos: []*todo{{ID: 1, Title: "a"}, {ID: 2, Title: "b", Done: true}, {ID: 3, Title: "c"}},
	}
	return &fixture{t: t, app: a, data: data, logs: logs}
}

func (f *fixture) mount(tag string) {
	f.t.Helper()
	if err := f.app.Mount(tag, f.data); err != nil {
		f.t.Fatalf("unexpected error: %v", err)
	}
	f.update()
}

func (f *fixture) update() int {
	f.frame++
	return f.app.Update(f.frame)
}

// find returns the elements with the given x-id in tree order.
func (f *fixture) find(id string) []*element.Element {
	var out []*element.Element
	element.Walk(f.app.View(), func(el *element.Element) bool {
		if v, ok := el.Attribute("x-id"); ok && v == id {
			out = append(out, el)
		}
		return true
	})
	return out
}

func (f *fixture) one(id string) *element.Element {
	f.t.Helper()
	els := f.find(id)
	if len(els) != 1 {
		f.t.Fatalf("expected one %s, got %d", id, len(els))
	}
	return els[0]
}

func rowTexts(rows []*element.Element) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Children[0].TextContent
	}
	return out
}

func TestMountAndLayout(t *testing.T) {
	f := newFixture(t, map[string]string{"Page.xml": pageTemplate})
	f.mount("Page")

	if got := f.one("title").TextContent; got != "Todos" {
		t.Errorf("expected title Todos, got %q", got)
	}
	rows := f.find("row")
	if diff := cmp.Diff([]string{"0: a", "1: b", "2: c"}, rowTexts(rows)); diff != "" {
		t.Errorf("row text mismatch (-want +got):\n%s", diff)
	}
	var ys []float32
	for _, r := range rows {
		ys = append(ys, f.app.Layout().Result(r).ScreenRect().Y)
	}
	if diff := cmp.Diff([]float32{18, 38, 58}, ys); diff != "" {
		t.Errorf("row positions mismatch (-want +got):\n%s", diff)
	}
	root := f.app.Layout().Result(f.app.Root()).ScreenRect()
	if root != (geom.Rect{Width: 400, Height: 300}) {
		t.Errorf("expected a 400x300 root, got %v", root)
	}
}

func TestBindingsFollowData(t *testing.T) {
	f := newFixture(t, map[string]string{"Page.xml": pageTemplate})
	f.mount("Page")
	first := f.find("row")

	f.data.Title = "Changed"
	f.data.Todos = []*todo{f.data.Todos[2], f.data.Todos[0], {ID: 4, Title: "d"}}
	f.update()

	if got := f.one("title").TextContent; got != "Changed" {
		t.Errorf("expected title Changed, got %q", got)
	}
	rows := f.find("row")
	if diff := cmp.Diff([]string{"0: c", "1: a", "2: d"}, rowTexts(rows)); diff != "" {
		t.Errorf("row text mismatch (-want +got):\n%s", diff)
	}
	if rows[0] != first[2] || rows[1] != first[0] {
		t.Error("expected keyed rows to keep their elements")
	}
	if !first[1].Destroyed() {
		t.Error("expected the row of the removed item to be destroyed")
	}
	if res := f.app.Layout().Result(first[1]); res != nil {
		t.Error("expected no layout result for a destroyed row")
	}
}

func TestAttributeStylesAndHover(t *testing.T) {
	f := newFixture(t, map[string]string{"Page.xml": pageTemplate})
	f.mount("Page")
	rows := f.find("row")

	if v, _ := rows[1].Attribute("done"); v != "true" {
		t.Errorf("expected done=true, got %q", v)
	}
	gray := style.Color{R: 128, G: 128, B: 128, A: 255}
	if got := rows[1].Style.Computed().TextColor; got != gray {
		t.Errorf("expected the done row to be gray, got %v", got)
	}
	if got := rows[0].Style.Computed().TextColor; got == gray {
		t.Error("expected only done rows to be gray")
	}

	f.app.MouseMove(geom.Vector2{X: 5, Y: 23})
	f.update()
	red := style.Color{R: 255, A: 255}
	if got := rows[0].Style.Computed().BackgroundColor; got != red {
		t.Errorf("expected the hovered row to be red, got %v", got)
	}
	if got := rows[1].Style.Computed().BackgroundColor; got == red {
		t.Error("expected other rows not to be hovered")
	}

	f.app.MouseMove(geom.Vector2{X: 5, Y: 43})
	f.update()
	if got := rows[0].Style.Computed().BackgroundColor; got == red {
		t.Error("expected hover to leave the first row")
	}
	if got := rows[1].Style.Computed().BackgroundColor; got != red {
		t.Errorf("expected the second row to be red, got %v", got)
	}
}

func TestClickAndKeyRouting(t *testing.T) {
	f := newFixture(t, map[string]string{"Page.xml": pageTemplate})
	f.mount("Page")

	p := geom.Vector2{X: 5, Y: 43}
	f.app.MouseDown(p, 0)
	f.app.MouseUp(p, 0)
	if f.data.Selected != f.data.Todos[1] {
		t.Errorf("expected the second todo to be selected, got %+v", f.data.Selected)
	}
	if focus := f.app.Focused(); focus == nil || focus.Tag != TagText {
		t.Errorf("expected the row text to have focus, got %v", focus)
	}
	if !f.app.KeyDown("x") || f.data.Keys != "x" {
		t.Errorf("expected the list to handle the key, got %q", f.data.Keys)
	}

	f.data.Selected = nil
	f.app.MouseDown(p, 0)
	f.app.MouseUp(geom.Vector2{X: 5, Y: 63}, 0)
	if f.data.Selected != nil {
		t.Error("expected no click when released over another row")
	}

	f.app.MouseDown(geom.Vector2{X: 790, Y: 590}, 0)
	if f.app.Focused() != nil || f.app.KeyDown("y") {
		t.Error("expected a press outside every element to clear focus")
	}
}

func TestBindingFailureIsLogged(t *testing.T) {
	f := newFixture(t, map[string]string{"Page.xml": `<Template type="Page">
    <Text x-id="owner">{Owner.Title}</Text>
    <Text x-id="title">{Title}</Text>
</Template>`})
	if err := f.app.Mount("Page", f.data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if failed := f.update(); failed != 1 {
		t.Errorf("expected 1 failure, got %d", failed)
	}
	if !strings.Contains(f.logs.String(), "binding text: nil value in access chain") {
		t.Errorf("unexpected log %q", f.logs.String())
	}
	if got := f.one("title").TextContent; got != "Todos" {
		t.Errorf("expected siblings of a failed binding to update, got %q", got)
	}
}

func TestTemplateErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"unknown tag", "<Template type=\"Page\">\n  <Bogus/>\n</Template>", 2},
		{"unknown style", "<Template type=\"Page\">\n  <Group style=\"nope\"/>\n</Template>", 2},
		{"unknown property", "<Template type=\"Page\">\n\n  <Group style.Wobble=\"1\"/>\n</Template>", 3},
		{"unbound list", "<Template type=\"Page\">\n  <Repeat list=\"Todos\"/>\n</Template>", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, map[string]string{"Page.xml": tt.src})
			err := f.app.Mount("Page", f.data)
			var te *TemplateError
			if !errors.As(err, &te) {
				t.Fatalf("expected a TemplateError, got %v", err)
			}
			if te.File != "Page.xml" || te.Line != tt.line {
				t.Errorf("expected Page.xml:%d, got %s:%d", tt.line, te.File, te.Line)
			}
			if f.app.Root() != nil || len(f.app.View().Children) != 0 {
				t.Error("expected a failed mount to leave nothing behind")
			}
		})
	}
}

func TestRepeatBodyIsCheckedAtMount(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown field", "<Text>{todo.NoSuchField}</Text>", "NoSuchField is not a field or property on type Todo"},
		{"unknown name", "<Text>{item.Title}</Text>", "item"},
		{"nested", "<Group><Group attr:x=\"{todo.Nope}\"/></Group>", "Nope is not a field or property on type Todo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, map[string]string{
				"Page.xml": `<Template type="Page"><Repeat list="{Todos}" as="todo">` + tt.body + `</Repeat></Template>`,
			})
			f.data.Todos = nil
			err := f.app.Mount("Page", f.data)
			if err == nil {
				t.Fatal("expected the mount to fail")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected an error mentioning %q, got %v", tt.want, err)
			}
			if f.app.Root() != nil || len(f.app.View().Children) != 0 {
				t.Error("expected a failed mount to leave nothing behind")
			}
		})
	}
}

func TestRepeatBodyCheckLeavesNothingBehind(t *testing.T) {
	f := newFixture(t, map[string]string{"Page.xml": pageTemplate})
	todos := f.data.Todos
	f.data.Todos = nil
	f.mount("Page")
	if rows := f.find("row"); len(rows) != 0 {
		t.Fatalf("expected no rows for an empty list, got %d", len(rows))
	}
	var leftovers int
	element.Walk(f.app.View(), func(el *element.Element) bool {
		if el.Tag == "RepeatItem" {
			leftovers++
		}
		return true
	})
	if leftovers != 0 {
		t.Errorf("expected no checked body in the tree, got %d", leftovers)
	}

	f.data.Todos = todos
	f.update()
	if rows := f.find("row"); len(rows) != len(todos) {
		t.Fatalf("expected %d rows after the list fills, got %d", len(todos), len(rows))
	}
	if got := rowTexts(f.find("row")); !cmp.Equal(got, []string{"0: a", "1: b", "2: c"}) {
		t.Errorf("unexpected rows %v", got)
	}
}

func TestComponentsAndSlots(t *testing.T) {
	f := newFixture(t, map[string]string{
		"Page.xml": `<Template type="Page">
    <Group ctx:label="{Title + '!'}">
        <Card x-id="card"><Text x-id="inside">{label}</Text></Card>
    </Group>
</Template>`,
		"card.xml": `<Template name="Card">
    <Group x-id="frame"><Children/></Group>
</Template>`,
	})
	f.mount("Page")

	inside := f.one("inside")
	if inside.TextContent != "Todos!" {
		t.Errorf("expected slot content bound in the page scope, got %q", inside.TextContent)
	}
	frame := f.one("frame")
	if !within(inside, frame) || !within(frame, f.one("card")) {
		t.Error("expected the slot content inside the card's frame")
	}

	f.data.Title = "Done"
	f.update()
	if inside.TextContent != "Done!" {
		t.Errorf("expected the context variable to follow the data, got %q", inside.TextContent)
	}
}

func TestTemplateBoundaryHidesOuterVariables(t *testing.T) {
	f := newFixture(t, map[string]string{
		"Page.xml": `<Template type="Page">
    <Group ctx:secret="{Title}"><Leaky/></Group>
</Template>`,
		"Leaky.xml": `<Template>
    <Text>{secret}</Text>
</Template>`,
	})
	err := f.app.Mount("Page", f.data)
	var ce *binding.CompileError
	if !errors.As(err, &ce) || !errors.Is(err, binding.ErrOutOfScope) {
		t.Fatalf("expected an out of scope compile error, got %v", err)
	}
	if ce.File != "Leaky.xml" {
		t.Errorf("expected the error in Leaky.xml, got %s", ce.File)
	}
}

func TestReset(t *testing.T) {
	f := newFixture(t, map[string]string{"Page.xml": pageTemplate})
	f.mount("Page")
	if _, ok := f.app.Template("Page.xml"); !ok {
		t.Fatal("expected the template to be cached")
	}
	f.app.Reset()
	if f.app.Root() != nil || f.app.Tree().Len() != 1 {
		t.Errorf("expected only the view to survive, got %d elements", f.app.Tree().Len())
	}
	if f.app.Graph().Len() != 0 {
		t.Errorf("expected no binding nodes, got %d", f.app.Graph().Len())
	}
	if err := f.app.Mount("Page", f.data); err == nil {
		t.Error("expected Mount to fail after Reset")
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"loom.yaml":   "viewport: {width: 320, height: 240}\nstyles: [theme.style]\ntemplates: [Page.xml]\noutput: out.png\n",
		"theme.style": sheet,
		"Page.xml":    pageTemplate,
	}
	for name, src := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	cfg, err := LoadConfig(filepath.Join(dir, "loom.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Root != "Page" || cfg.Frames != 1 || cfg.Path(cfg.Output) != filepath.Join(dir, "out.png") {
		t.Errorf("unexpected config %+v", cfg)
	}
	a, err := cfg.Open(WithRegistry(registry()), WithTextMeasurer(fixedMeasurer{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a.Update(1)
	if got := a.Layout().Viewport(); got != (geom.Rect{Width: 320, Height: 240}) {
		t.Errorf("expected a 320x240 viewport, got %v", got)
	}
}
