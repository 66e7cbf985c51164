package app

import (
	"loom/pkg/binding"
	"loom/pkg/element"
	"loom/pkg/markup"
	"loom/pkg/style"
	"loom/pkg/types"
)

// newRepeat creates a list binding:
//
//	<Repeat list="{Rows}" as="row" index="i" key="{row.ID}">...</Repeat>
//
// Each item gets a transcluded group holding one copy of the children, so
// the items join the Repeat's parent flow. With a key, children follow
// their item when the list is reordered.
func (a *Application) newRepeat(parent *element.Element, n *markup.Node, env binding.Env, root any, s *slot) error {
	var (
		list, key *markup.Attribute
		rest      []markup.Attribute
	)
	as, index := "item", ""
	for i := range n.Attributes {
		at := &n.Attributes[i]
		switch at.Key {
		case "list":
			list = at
		case "key":
			key = at
		case "as":
			as = at.Value
		case "index":
			index = at.Value
		default:
			rest = append(rest, *at)
		}
	}
	if list == nil || list.Flags&markup.FlagBound == 0 {
		return templateErrorf(env.File, n, "<Repeat> needs a bound list, e.g. list=\"{items}\"")
	}

	el := a.tree.Create(TagRepeat, RepeatType, &Repeat{})
	el.Style.SetInstance(style.LayoutBehaviorProperty, style.BehaviorTranscludeChildren)
	a.tree.AppendChild(parent, el)
	env.Parent, env.Element = parent.Type, RepeatType
	env.Scope = env.Scope.Child()

	le, err := a.compiler.CompileExpression(env, *list, nil)
	if err != nil {
		return err
	}
	if le.Type().Kind != types.List {
		return attrErrorf(env.File, *list, "list must be a list, got %s", le.Type())
	}
	items := env
	items.Parent, items.Element = GroupType, GroupType
	items.Scope = env.Scope.Child()
	vars := binding.RepeatVars{Item: as, ItemID: items.Scope.Declare(as, le.Type().Elem)}
	if index != "" {
		vars.Index, vars.IndexID = index, items.Scope.Declare(index, types.IntType)
	}
	if err := a.checkBody(n.Children, items, root, s); err != nil {
		return err
	}
	factory := &repeatFactory{app: a, nodes: n.Children, env: items, root: root, slot: s}

	var rec binding.Reconciler
	if key != nil {
		ke, err := a.compiler.CompileExpression(items, *key, nil)
		if err != nil {
			return err
		}
		rec, err = binding.NewKeyedRepeat(le, ke, vars, factory)
		if err != nil {
			return attrErrorf(env.File, *key, "%v", err)
		}
	} else {
		rec, err = binding.NewRepeat(le, vars, factory)
		if err != nil {
			return attrErrorf(env.File, *list, "%v", err)
		}
	}
	node, err := a.bind(el, rest, env, root, true)
	if err != nil {
		return err
	}
	if node != nil {
		node.SetReconciler(rec)
	}
	return nil
}

// checkBody compiles the children of a Repeat against the item scope, so a
// bad reference fails the mount even while the list is empty. The body is
// built under a detached, disabled element without binding nodes and then
// destroyed.
func (a *Application) checkBody(nodes []*markup.Node, env binding.Env, root any, s *slot) error {
	scratch := a.tree.Create("RepeatItem", GroupType, &Group{})
	a.tree.SetEnabled(scratch, false)
	a.checking++
	defer func() {
		a.checking--
		a.tree.Destroy(scratch)
	}()
	for _, c := range nodes {
		if err := a.instantiate(scratch, c, env, root, s); err != nil {
			return err
		}
	}
	return nil
}

// repeatFactory instantiates the children of a Repeat once per item.
type repeatFactory struct {
	app   *Application
	nodes []*markup.Node
	env   binding.Env
	root  any
	slot  *slot
}

func (f *repeatFactory) NewChild(parent *element.Element, init func(*binding.Node)) (*binding.Node, error) {
	a := f.app
	el := a.tree.Create("RepeatItem", GroupType, &Group{})
	el.Style.SetInstance(style.LayoutBehaviorProperty, style.BehaviorTranscludeChildren)
	a.tree.AppendChild(parent, el)
	n := a.graph.Attach(el, f.root)
	init(n)
	for _, c := range f.nodes {
		if err := a.instantiate(el, c, f.env, f.root, f.slot); err != nil {
			a.tree.Destroy(el)
			return nil, err
		}
	}
	return n, nil
}

func (f *repeatFactory) DestroyChild(n *binding.Node) {
	f.app.tree.Destroy(n.Element)
}
