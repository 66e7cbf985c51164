package app

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"loom/pkg/binding"
	"loom/pkg/element"
	"loom/pkg/markup"
	"loom/pkg/style"
	"loom/pkg/types"
)

// component is a template usable as a tag. Its element instance comes from
// the registry entry named by the template's type attribute, or is a Group.
type component struct {
	name string
	tmpl *markup.Template
	et   *types.ElementType
}

// slot is the content a component use site passes to <Children/>. It is
// compiled in the use site's scope.
type slot struct {
	nodes  []*markup.Node
	env    binding.Env
	root   any
	parent *slot
}

// TemplateError reports a template that could not be instantiated.
type TemplateError struct {
	File   string
	Line   int
	Column int
	Msg    string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Msg)
}

func templateErrorf(file string, n *markup.Node, format string, args ...any) error {
	return &TemplateError{File: file, Line: n.Line, Column: n.Column, Msg: fmt.Sprintf(format, args...)}
}

// AddTemplate parses a template and registers it under its name attribute,
// or the file's base name without extension. Adding the same file again
// replaces it.
func (a *Application) AddTemplate(file, src string) error {
	tmpl, err := markup.Parse(file, src)
	if err != nil {
		return err
	}
	name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	if attr, ok := tmpl.Root.Attribute("name"); ok {
		name = attr.Value
	}
	if c, ok := a.components[name]; ok && c.tmpl.File != file {
		return fmt.Errorf("template %s in %s is already defined in %s", name, file, c.tmpl.File)
	}
	et, _ := a.registry.Element(TagGroup)
	if attr, ok := tmpl.Root.Attribute("type"); ok {
		if et, ok = a.registry.Element(attr.Value); !ok {
			return templateErrorf(file, tmpl.Root, "unknown element type %q", attr.Value)
		}
	}
	if old, ok := a.templates[file]; ok {
		for n, c := range a.components {
			if c.tmpl == old {
				delete(a.components, n)
			}
		}
	}
	a.templates[file] = tmpl
	a.components[name] = &component{name: name, tmpl: tmpl, et: et}
	return nil
}

// Template returns a parsed template by file name.
func (a *Application) Template(file string) (*markup.Template, bool) {
	t, ok := a.templates[file]
	return t, ok
}

// AddStyleSheet compiles a style sheet and makes its styles available to
// style attributes. Adding the same file again replaces it.
func (a *Application) AddStyleSheet(file, src string) error {
	s, err := style.Compile(file, src)
	if err != nil {
		return err
	}
	a.sheets[file] = s
	merged := style.NewSheet("")
	for _, f := range sortedKeys(a.sheets) {
		if err := merged.Merge(a.sheets[f]); err != nil {
			delete(a.sheets, file)
			return err
		}
	}
	a.sheet = merged
	return nil
}

// Mount replaces the current tree with an instance of the named template.
// root is the element instance of the template and the data context of its
// expressions; nil makes a fresh instance.
func (a *Application) Mount(rootTag string, root any) error {
	a.unmount()
	c, ok := a.components[rootTag]
	if !ok {
		return fmt.Errorf("no template named %s", rootTag)
	}
	if root == nil {
		root = c.et.New()
	}
	el := a.tree.Create(c.name, c.et.Type, root)
	a.tree.AppendChild(a.view, el)
	a.root = el
	env := binding.Env{File: c.tmpl.File, Root: c.et.Type, Element: c.et.Type, Scope: binding.NewScope(), Enums: a.registry}
	if err := a.expand(el, c, env, root, nil); err != nil {
		a.unmount()
		return err
	}
	return nil
}

// expand fills el with the content of component c.
func (a *Application) expand(el *element.Element, c *component, env binding.Env, root any, s *slot) error {
	if a.expanding[c.name] {
		return templateErrorf(c.tmpl.File, c.tmpl.Root, "template %s includes itself", c.name)
	}
	a.expanding[c.name] = true
	defer delete(a.expanding, c.name)

	if err := a.applyTemplateAttributes(el, c); err != nil {
		return err
	}
	inner := binding.Env{File: c.tmpl.File, Root: c.et.Type, Parent: c.et.Type, Scope: env.Scope.Boundary(), Enums: a.registry}
	for _, n := range c.tmpl.Root.Children {
		if err := a.instantiate(el, n, inner, root, s); err != nil {
			return err
		}
	}
	return nil
}

// applyTemplateAttributes applies the style and attribute declarations of
// the <Template> element itself to the component's element. They may not be
// bound; the element's node belongs to the use site.
func (a *Application) applyTemplateAttributes(el *element.Element, c *component) error {
	for _, at := range c.tmpl.Root.Attributes {
		if at.Type == markup.AttributeProperty {
			continue
		}
		if at.Flags&markup.FlagBound != 0 {
			return &TemplateError{File: c.tmpl.File, Line: at.Line, Column: at.Column, Msg: fmt.Sprintf("%s on <Template> cannot be bound", at.Key)}
		}
		if err := a.applyStatic(el, at, c.tmpl.File); err != nil {
			return err
		}
	}
	return nil
}

func (a *Application) instantiate(parent *element.Element, n *markup.Node, env binding.Env, root any, s *slot) error {
	if n.Type == markup.TextNode {
		if strings.TrimSpace(n.Text) == "" {
			return nil
		}
		return a.newText(parent, n, env, root)
	}
	switch n.Tag {
	case TagRepeat:
		return a.newRepeat(parent, n, env, root, s)
	case TagChildren:
		return a.newSlot(parent, n, env, root, s)
	case TagText:
		return a.newTextElement(parent, n, env, root)
	}
	if c, ok := a.components[n.Tag]; ok {
		el, cenv, err := a.newElement(parent, n, c.et, env, root)
		if err != nil {
			return err
		}
		var inner *slot
		if len(n.Children) > 0 {
			inner = &slot{nodes: n.Children, env: cenv, root: root, parent: s}
		}
		return a.expand(el, c, cenv, el.Instance, inner)
	}
	et, ok := a.registry.Element(n.Tag)
	if !ok {
		return templateErrorf(env.File, n, "unknown tag <%s>", n.Tag)
	}
	el, cenv, err := a.newElement(parent, n, et, env, root)
	if err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := a.instantiate(el, c, cenv, root, s); err != nil {
			return err
		}
	}
	return nil
}

// newElement creates and binds one element. The returned env is the one its
// children compile against.
func (a *Application) newElement(parent *element.Element, n *markup.Node, et *types.ElementType, env binding.Env, root any, extra ...binding.Binding) (*element.Element, binding.Env, error) {
	inst := et.New()
	el := a.tree.Create(n.Tag, et.Type, inst)
	a.tree.AppendChild(parent, el)
	if t, ok := inst.(*Text); ok {
		t.app, t.el = a, el
	}
	env.Parent = parent.Type
	env.Element = et.Type
	env.Scope = env.Scope.Child()
	if _, err := a.bind(el, n.Attributes, env, root, false, extra...); err != nil {
		return nil, env, err
	}
	env.Parent = et.Type
	return el, env, nil
}

func (a *Application) newText(parent *element.Element, n *markup.Node, env binding.Env, root any) error {
	el := a.tree.Create(TagText, TextType, &Text{app: a})
	el.Instance.(*Text).el = el
	a.tree.AppendChild(parent, el)
	env.Parent, env.Element = parent.Type, TextType
	b, err := a.compileText(n.Text, n, env)
	if err != nil {
		return err
	}
	if s, ok := b.literal(); ok {
		a.setText(el, s)
		return nil
	}
	_, err = a.bind(el, nil, env, root, false, b)
	return err
}

// newTextElement handles an explicit <Text>: its attributes apply to the
// element and its text children become its content.
func (a *Application) newTextElement(parent *element.Element, n *markup.Node, env binding.Env, root any) error {
	var text strings.Builder
	for _, c := range n.Children {
		if c.Type != markup.TextNode {
			return templateErrorf(env.File, c, "<Text> may only contain text")
		}
		text.WriteString(c.Text)
	}
	et, _ := a.registry.Element(TagText)
	tenv := env
	tenv.Parent, tenv.Element = parent.Type, et.Type
	b, err := a.compileText(text.String(), n, tenv)
	if err != nil {
		return err
	}
	if s, ok := b.literal(); ok {
		el, _, err := a.newElement(parent, n, et, env, root)
		if err == nil {
			a.setText(el, s)
		}
		return err
	}
	_, _, err = a.newElement(parent, n, et, env, root, b)
	return err
}

// compileText compiles text content with {expressions} into a binding.
func (a *Application) compileText(src string, n *markup.Node, env binding.Env) (*textBinding, error) {
	parts := markup.SplitText(strings.TrimSpace(src))
	b := &textBinding{app: a, typ: binding.Constant}
	for _, p := range parts {
		if !p.Expr {
			b.parts = append(b.parts, textPart{text: p.Text})
			continue
		}
		attr := markup.Attribute{Key: "text", Value: "{" + p.Text + "}", Flags: markup.FlagBound, Line: n.Line, Column: n.Column}
		e, err := a.compiler.CompileExpression(env, attr, nil)
		if err != nil {
			return nil, err
		}
		if !e.IsConstant() {
			b.typ = binding.Update
		}
		b.parts = append(b.parts, textPart{expr: e})
	}
	return b, nil
}

// newSlot places the use site's child content where <Children/> appears.
func (a *Application) newSlot(parent *element.Element, n *markup.Node, env binding.Env, root any, s *slot) error {
	et, _ := a.registry.Element(TagChildren)
	el, _, err := a.newElement(parent, n, et, env, root)
	if err != nil {
		return err
	}
	el.Style.SetInstance(style.LayoutBehaviorProperty, style.BehaviorTranscludeChildren)
	if s == nil {
		return nil
	}
	for _, c := range s.nodes {
		if err := a.instantiate(el, c, s.env, s.root, s.parent); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
