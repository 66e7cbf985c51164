package binding

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"loom/pkg/element"
	"loom/pkg/markup"
	"loom/pkg/types"
)

type holder struct {
	Value string
}

type row struct {
	ID   int
	Name string
}

type model struct {
	Title   string
	Count   int
	Visible bool
	Home    *holder
	Items   []string
	Rows    []*row
}

type widget struct {
	Text    string
	Value   string
	changed int
	clicks  []func(args []any)
}

func modelType() *types.Type {
	h := types.NewStruct[holder]("Holder")
	types.AddField(h, "Value", types.StringType, func(x *holder) string { return x.Value }, func(x *holder, v string) { x.Value = v })

	r := types.NewStruct[row]("Row")
	types.AddField(r, "ID", types.IntType, func(x *row) int { return x.ID }, nil)
	types.AddField(r, "Name", types.StringType, func(x *row) string { return x.Name }, nil)

	m := types.NewStruct[model]("Model")
	types.AddField(m, "Title", types.StringType, func(x *model) string { return x.Title }, func(x *model, v string) { x.Title = v })
	types.AddField(m, "Count", types.IntType, func(x *model) int { return x.Count }, nil)
	types.AddField(m, "Visible", types.BoolType, func(x *model) bool { return x.Visible }, nil)
	types.AddField(m, "Home", h, func(x *model) *holder { return x.Home }, nil)
	types.AddField(m, "Items", types.ListOf[string](types.StringType), func(x *model) []string { return x.Items }, nil)
	types.AddField(m, "Rows", types.ListOf[*row](r), func(x *model) []*row { return x.Rows }, nil)
	types.AddMethod(m, "Bump", nil, nil, func(x *model, _ []any) any {
		x.Count++
		return nil
	})
	return m
}

func widgetType() *types.Type {
	w := types.NewStruct[widget]("Widget")
	types.AddField(w, "Text", types.StringType, func(x *widget) string { return x.Text }, func(x *widget, v string) { x.Text = v })
	types.AddField(w, "Value", types.StringType, func(x *widget) string { return x.Value }, func(x *widget, v string) { x.Value = v })
	types.AddProperty(w, "Size", types.IntType, func(x *widget) int { return len(x.Text) }, nil)
	types.AddEvent(w, "onClick", nil, func(x *widget, handler func([]any)) {
		x.clicks = append(x.clicks, handler)
	})
	w.OnPropertyChanged(func(obj any, _ string) { obj.(*widget).changed++ }, "Text")
	return w
}

func attr(key, value string) markup.Attribute {
	a := markup.Attribute{Key: key, Value: value, Line: 3, Column: 7}
	if strings.HasPrefix(value, "{") && strings.HasSuffix(value, "}") {
		a.Flags |= markup.FlagBound
	}
	if strings.Contains(key, ".") {
		a.Flags |= markup.FlagModified
	}
	return a
}

type fixture struct {
	t      *testing.T
	tree   *element.Tree
	graph  *Graph
	comp   *Compiler
	data   *model
	env    Env
	widget *types.Type
	logs   *bytes.Buffer
	top    *element.Element
}

func newFixture(t *testing.T) *fixture {
	logs := &bytes.Buffer{}
	tree := element.NewTree()
	f := &fixture{
		t:      t,
		tree:   tree,
		graph:  NewGraph(tree, log.New(logs, "", 0)),
		comp:   NewCompiler(nil),
		data:   &model{Title: "hello", Home: &holder{Value: "init"}},
		widget: widgetType(),
		logs:   logs,
	}
	f.env = Env{File: "test.xml", Root: modelType(), Element: f.widget, Scope: NewScope()}
	f.top = tree.Create("Group", nil, nil)
	return f
}

// add creates a widget under parent bound with the given attributes.
func (f *fixture) add(parent *element.Element, env Env, attrs ...markup.Attribute) (*element.Element, *Node) {
	f.t.Helper()
	el := f.tree.Create("Widget", f.widget, &widget{})
	f.tree.AppendChild(parent, el)
	var bs []Binding
	for _, a := range attrs {
		b, err := f.comp.CompileAttribute(env, a)
		if err != nil {
			f.t.Fatalf("compile %s: %v", a.Key, err)
		}
		bs = append(bs, b...)
	}
	n := f.graph.Attach(el, f.data, bs...)
	if err := f.graph.Created(n); err != nil {
		f.t.Fatalf("created: %v", err)
	}
	return el, n
}

func text(el *element.Element) string {
	return el.Instance.(*widget).Text
}

func TestCompileAttributeModifiers(t *testing.T) {
	f := newFixture(t)
	bs, err := f.comp.CompileAttribute(f.env, attr("Value.read.read.write", "{Home.Value}"))
	if err != nil {
		t.Fatal(err)
	}
	var kinds []Type
	for _, b := range bs {
		kinds = append(kinds, b.BindingType())
	}
	if diff := cmp.Diff([]Type{Update, Write}, kinds); diff != "" {
		t.Errorf("binding types (-want +got):\n%s", diff)
	}

	bs, _ = f.comp.CompileAttribute(f.env, attr("Text", "plain"))
	if bs[0].BindingType() != Constant {
		t.Errorf("expected constant literal, got %s", bs[0].BindingType())
	}
	bs, _ = f.comp.CompileAttribute(f.env, attr("Text", "{'a' + 'b'}"))
	if bs[0].BindingType() != Constant {
		t.Errorf("expected constant expression, got %s", bs[0].BindingType())
	}
	bs, _ = f.comp.CompileAttribute(f.env, attr("onClick", "{Bump()}"))
	if _, ok := bs[0].(*EventBinding); !ok {
		t.Errorf("expected event binding, got %T", bs[0])
	}
	bs, _ = f.comp.CompileAttribute(f.env, attr("if", "{Visible}"))
	if _, ok := bs[0].(*EnabledBinding); !ok || bs[0].BindingType() != Update {
		t.Errorf("expected per-frame enabled binding, got %T %s", bs[0], bs[0].BindingType())
	}
	bs, _ = f.comp.CompileAttribute(f.env, attr("if", "{1 > 2}"))
	if _, ok := bs[0].(*EnabledBinding); !ok || bs[0].BindingType() != Constant {
		t.Errorf("expected constant enabled binding, got %T %s", bs[0], bs[0].BindingType())
	}
}

func TestConstantIfAppliesAtCreation(t *testing.T) {
	f := newFixture(t)
	off, n := f.add(f.top, f.env, attr("if", "{false}"))
	child, _ := f.add(off, f.env, attr("Text", "{Title}"))
	if off.SelfEnabled() {
		t.Fatal("expected a constant false condition to disable the element at creation")
	}
	if len(n.ifs) != 0 || len(n.created) != 1 {
		t.Errorf("expected the condition in the created list, got %d ifs %d created", len(n.ifs), len(n.created))
	}
	f.graph.Update(1)
	if off.SelfEnabled() || text(child) != "" {
		t.Errorf("expected the subtree to stay disabled, got enabled=%v text=%q", off.SelfEnabled(), text(child))
	}

	on, _ := f.add(f.top, f.env, attr("if", "{true}"), attr("Text", "{Title}"))
	f.graph.Update(2)
	if !on.Enabled() || text(on) != "hello" {
		t.Errorf("expected constant true to keep the element running, got enabled=%v text=%q", on.Enabled(), text(on))
	}
}

func TestEventFailuresReachLoggerOnEveryDispatch(t *testing.T) {
	f := newFixture(t)
	f.data.Home = nil
	el, _ := f.add(f.top, f.env, attr("onClick", "{Home.Value}"))
	w := el.Instance.(*widget)
	for i := 0; i < 2; i++ {
		w.clicks[0](nil)
	}
	if got := strings.Count(f.logs.String(), "binding onClick"); got != 2 {
		t.Errorf("expected 2 logged handler failures, got %d:\n%s", got, f.logs.String())
	}
}

func TestCompileAttributeErrors(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		key, value, want string
	}{
		{"Missing", "{Title}", "Missing is not a field or property on type Widget"},
		{"Text.bogus", "{Title}", `unknown modifier "bogus"`},
		{"Size", "{Count}", "read-only"},
		{"Text", "{Nope}", "unknown alias"},
		{"Text.write", "{Count + 1}", "not assignable"},
		{"Text.write", "{Count}", "Count is read-only"},
		{"onClick", "Bump()", "needs a {handler}"},
	}
	for _, tt := range tests {
		_, err := f.comp.CompileAttribute(f.env, attr(tt.key, tt.value))
		if err == nil {
			t.Errorf("%s: expected an error", tt.key)
			continue
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: expected %q in %v", tt.key, tt.want, err)
		}
		var ce *CompileError
		if !errors.As(err, &ce) || ce.File != "test.xml" || ce.Line != 3 || ce.Column != 7 {
			t.Errorf("%s: expected located CompileError, got %#v", tt.key, err)
		}
	}
}

func TestScopeBoundaries(t *testing.T) {
	outer := NewScope()
	id := outer.Declare("item", types.StringType)

	if a, err := outer.Child().Lookup("item"); err != nil || a.ID != id {
		t.Errorf("expected item %d, got %+v %v", id, a, err)
	}
	hidden := outer.Boundary()
	if _, err := hidden.Child().Lookup("item"); !errors.Is(err, ErrOutOfScope) {
		t.Errorf("expected ErrOutOfScope, got %v", err)
	}
	exposed := outer.Boundary("item")
	if _, err := exposed.Lookup("item"); err != nil {
		t.Errorf("expected exposed item, got %v", err)
	}
	if id2 := hidden.Declare("other", types.IntType); id2 == id {
		t.Error("expected unique ids across scopes")
	}

	f := newFixture(t)
	env := f.env
	env.Scope = hidden
	_, err := f.comp.CompileAttribute(env, attr("Text", "{item}"))
	if !errors.Is(err, ErrOutOfScope) {
		t.Errorf("expected scope violation, got %v", err)
	}
}

func TestNodeVariables(t *testing.T) {
	f := newFixture(t)
	_, parent := f.add(f.top, f.env)
	parent.CreateLocalVariable(1, "item", types.StringType, "outer")
	parent.CreateLocalVariable(2, "index", types.IntType, 4)
	_, child := f.add(parent.Element, f.env)
	child.CreateLocalVariable(3, "item", types.StringType, "inner")

	if child.Parent() != parent {
		t.Fatal("expected child node linked to parent node")
	}
	if v, ok := child.VariableByName("item"); !ok || v.Value != "inner" {
		t.Errorf("expected nearest item, got %+v", v)
	}
	if v, ok := child.Variable(2); !ok || v != 4 {
		t.Errorf("expected parent index 4, got %v", v)
	}
	if _, ok := child.Variable(9); ok {
		t.Error("expected unknown id to miss")
	}
}

func TestUpdateAppliesSettersAndCallbacks(t *testing.T) {
	f := newFixture(t)
	el, _ := f.add(f.top, f.env, attr("Text", "{Title + '!'}"))

	f.graph.Update(1)
	f.graph.Update(2)
	if got := text(el); got != "hello!" {
		t.Errorf("expected hello!, got %q", got)
	}
	if got := el.Instance.(*widget).changed; got != 1 {
		t.Errorf("expected one change callback, got %d", got)
	}
	f.data.Title = "bye"
	f.graph.Update(3)
	if got := text(el); got != "bye!" {
		t.Errorf("expected bye!, got %q", got)
	}
}

func TestFailureAbortsOnlySubtree(t *testing.T) {
	f := newFixture(t)
	a, _ := f.add(f.top, f.env, attr("Text", "{Home.Value}"))
	c, _ := f.add(a, f.env, attr("Text", "{Title}"))
	b, _ := f.add(f.top, f.env, attr("Text", "{Title}"))

	f.data.Home = nil
	if failed := f.graph.Update(1); failed != 1 {
		t.Errorf("expected 1 failure, got %d", failed)
	}
	if text(c) != "" {
		t.Errorf("expected child of failing node skipped, got %q", text(c))
	}
	if text(b) != "hello" {
		t.Errorf("expected sibling updated, got %q", text(b))
	}
	if !strings.Contains(f.logs.String(), "binding Text") {
		t.Errorf("expected failure logged, got %q", f.logs.String())
	}
}

func TestTwoWayBinding(t *testing.T) {
	f := newFixture(t)
	el, _ := f.add(f.top, f.env, attr("Value.read.write", "{Home.Value}"))
	w := el.Instance.(*widget)

	f.graph.Update(1)
	if w.Value != "init" {
		t.Fatalf("expected init, got %q", w.Value)
	}
	w.Value = "typed"
	f.graph.Update(2)
	if f.data.Home.Value != "typed" {
		t.Errorf("expected write-back, got %q", f.data.Home.Value)
	}
	f.data.Home.Value = "remote"
	f.graph.Update(3)
	if w.Value != "remote" || f.data.Home.Value != "remote" {
		t.Errorf("expected remote on both sides, got %q / %q", w.Value, f.data.Home.Value)
	}
	f.graph.Update(4)
	if f.data.Home.Value != "remote" {
		t.Errorf("expected no echo, got %q", f.data.Home.Value)
	}
}

func TestEventsAndEnable(t *testing.T) {
	f := newFixture(t)
	el, _ := f.add(f.top, f.env, attr("onClick", "{Bump()}"), attr("if", "{Visible}"), attr("Text.enable", "{Title}"))
	child, _ := f.add(el, f.env, attr("Text", "{Title}"))
	w := el.Instance.(*widget)

	if len(w.clicks) != 1 {
		t.Fatalf("expected a subscription, got %d", len(w.clicks))
	}
	w.clicks[0](nil)
	if f.data.Count != 1 {
		t.Errorf("expected Bump to run, got %d", f.data.Count)
	}

	f.data.Title = "changed"
	f.graph.Update(1)
	if el.Enabled() || text(child) != "" {
		t.Errorf("expected disabled subtree, got enabled=%v text=%q", el.Enabled(), text(child))
	}
	w.clicks[0](nil)
	if f.data.Count != 1 {
		t.Error("expected disabled element to ignore events")
	}

	f.data.Visible = true
	f.graph.Update(2)
	if !el.Enabled() || text(el) != "changed" || text(child) != "changed" {
		t.Errorf("expected enable binding and child update, got %q %q", text(el), text(child))
	}
}

type testFactory struct {
	f         *fixture
	env       Env
	created   int
	destroyed int
}

func (tf *testFactory) NewChild(parent *element.Element, init func(*Node)) (*Node, error) {
	tf.created++
	el := tf.f.tree.Create("Widget", tf.f.widget, &widget{})
	tf.f.tree.AppendChild(parent, el)
	bs, err := tf.f.comp.CompileAttribute(tf.env, attr("Text", "{label}"))
	if err != nil {
		return nil, err
	}
	n := tf.f.graph.Attach(el, tf.f.data, bs...)
	init(n)
	return n, tf.f.graph.Created(n)
}

func (tf *testFactory) DestroyChild(n *Node) {
	tf.destroyed++
	tf.f.tree.Destroy(n.Element)
}

func texts(el *element.Element) []string {
	var out []string
	for _, c := range el.Children {
		out = append(out, text(c))
	}
	return out
}

func TestRepeatKeepsIdentityOnGrowth(t *testing.T) {
	f := newFixture(t)
	list, err := f.comp.CompileExpression(f.env, attr("list", "{Items}"), nil)
	if err != nil {
		t.Fatal(err)
	}
	scope := f.env.Scope.Child()
	vars := RepeatVars{Item: "label", ItemID: scope.Declare("label", types.StringType)}
	factory := &testFactory{f: f, env: f.env}
	factory.env.Scope = scope
	rep, err := NewRepeat(list, vars, factory)
	if err != nil {
		t.Fatal(err)
	}
	host := f.tree.Create("Repeat", nil, nil)
	f.tree.AppendChild(f.top, host)
	f.graph.Attach(host, f.data).SetReconciler(rep)

	f.data.Items = []string{"a", "b"}
	f.graph.Update(1)
	before := append([]*element.Element(nil), host.Children...)

	f.data.Items = []string{"a", "b", "c", "d"}
	f.graph.Update(2)
	if diff := cmp.Diff([]string{"a", "b", "c", "d"}, texts(host)); diff != "" {
		t.Errorf("after growth (-want +got):\n%s", diff)
	}
	for i := range before {
		if host.Children[i] != before[i] {
			t.Errorf("child %d was recreated", i)
		}
	}

	f.data.Items = []string{"x"}
	f.graph.Update(3)
	if diff := cmp.Diff([]string{"x"}, texts(host)); diff != "" {
		t.Errorf("after shrink (-want +got):\n%s", diff)
	}
	if host.Children[0] != before[0] {
		t.Error("first child was recreated on shrink")
	}

	f.data.Items = nil
	f.graph.Update(4)
	if len(host.Children) != 0 || factory.created != 4 || factory.destroyed != 4 {
		t.Errorf("expected all destroyed, got %d children, %d created, %d destroyed",
			len(host.Children), factory.created, factory.destroyed)
	}
}

func TestKeyedRepeatReordersWithoutRecreating(t *testing.T) {
	f := newFixture(t)
	list, err := f.comp.CompileExpression(f.env, attr("list", "{Rows}"), nil)
	if err != nil {
		t.Fatal(err)
	}
	scope := f.env.Scope.Child()
	vars := RepeatVars{Item: "r", ItemID: scope.Declare("r", list.Type().Elem)}
	keyEnv := f.env
	keyEnv.Scope = scope
	key, err := f.comp.CompileExpression(keyEnv, attr("key", "{r.ID}"), nil)
	if err != nil {
		t.Fatal(err)
	}
	factory := &testFactory{f: f, env: keyEnv}
	rep, err := NewKeyedRepeat(list, key, vars, &rowFactory{testFactory: factory})
	if err != nil {
		t.Fatal(err)
	}
	host := f.tree.Create("Repeat", nil, nil)
	f.tree.AppendChild(f.top, host)
	f.graph.Attach(host, f.data).SetReconciler(rep)

	r1, r2, r3 := &row{ID: 1, Name: "one"}, &row{ID: 2, Name: "two"}, &row{ID: 3, Name: "three"}
	f.data.Rows = []*row{r1, r2, r3}
	f.graph.Update(1)
	byID := map[int]*element.Element{}
	for i, r := range f.data.Rows {
		byID[r.ID] = host.Children[i]
	}

	f.data.Rows = []*row{r3, r1, r2}
	f.graph.Update(2)
	for i, r := range f.data.Rows {
		if host.Children[i] != byID[r.ID] {
			t.Errorf("row %d: child was not reused at index %d", r.ID, i)
		}
	}
	if factory.created != 3 || factory.destroyed != 0 {
		t.Errorf("expected 3 created 0 destroyed, got %d/%d", factory.created, factory.destroyed)
	}
	if diff := cmp.Diff([]string{"three", "one", "two"}, texts(host)); diff != "" {
		t.Errorf("texts (-want +got):\n%s", diff)
	}

	f.data.Rows = []*row{r2, {ID: 4, Name: "four"}}
	f.graph.Update(3)
	if host.Children[0] != byID[2] || factory.created != 4 || factory.destroyed != 2 {
		t.Errorf("unexpected reconcile: created %d destroyed %d", factory.created, factory.destroyed)
	}

	f.data.Rows = []*row{r2, r2}
	if failed := f.graph.Update(4); failed != 1 {
		t.Errorf("expected duplicate key failure, got %d", failed)
	}
}

func TestKeyedRepeatDuplicateKeyDropsNewChildren(t *testing.T) {
	f := newFixture(t)
	list, err := f.comp.CompileExpression(f.env, attr("list", "{Rows}"), nil)
	if err != nil {
		t.Fatal(err)
	}
	scope := f.env.Scope.Child()
	vars := RepeatVars{Item: "r", ItemID: scope.Declare("r", list.Type().Elem)}
	keyEnv := f.env
	keyEnv.Scope = scope
	key, err := f.comp.CompileExpression(keyEnv, attr("key", "{r.ID}"), nil)
	if err != nil {
		t.Fatal(err)
	}
	factory := &testFactory{f: f, env: keyEnv}
	rep, err := NewKeyedRepeat(list, key, vars, &rowFactory{testFactory: factory})
	if err != nil {
		t.Fatal(err)
	}
	host := f.tree.Create("Repeat", nil, nil)
	f.tree.AppendChild(f.top, host)
	f.graph.Attach(host, f.data).SetReconciler(rep)

	r1 := &row{ID: 1, Name: "one"}
	f.data.Rows = []*row{r1}
	f.graph.Update(1)
	nodes := f.graph.Len()

	f.data.Rows = []*row{r1, {ID: 2, Name: "two"}, r1}
	if failed := f.graph.Update(2); failed != 1 {
		t.Fatalf("expected duplicate key failure, got %d", failed)
	}
	if factory.created != 2 || factory.destroyed != 1 {
		t.Errorf("expected the new child to be destroyed, got %d created %d destroyed", factory.created, factory.destroyed)
	}
	if len(host.Children) != 1 || f.graph.Len() != nodes {
		t.Errorf("expected 1 child and %d nodes, got %d children and %d nodes", nodes, len(host.Children), f.graph.Len())
	}

	f.data.Rows = []*row{r1, {ID: 2, Name: "two"}}
	if failed := f.graph.Update(3); failed != 0 {
		t.Fatalf("expected no failures, got %d", failed)
	}
	if diff := cmp.Diff([]string{"one", "two"}, texts(host)); diff != "" {
		t.Errorf("texts (-want +got):\n%s", diff)
	}
	for i, c := range rep.Children() {
		if c.Element != host.Children[i] {
			t.Errorf("child %d out of order", i)
		}
	}
}

// rowFactory binds each child's Text to the row name.
type rowFactory struct {
	*testFactory
}

func (rf *rowFactory) NewChild(parent *element.Element, init func(*Node)) (*Node, error) {
	tf := rf.testFactory
	tf.created++
	el := tf.f.tree.Create("Widget", tf.f.widget, &widget{})
	tf.f.tree.AppendChild(parent, el)
	bs, err := tf.f.comp.CompileAttribute(tf.env, attr("Text", "{r.Name}"))
	if err != nil {
		return nil, err
	}
	n := tf.f.graph.Attach(el, tf.f.data, bs...)
	init(n)
	return n, tf.f.graph.Created(n)
}
