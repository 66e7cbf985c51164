package binding

import (
	"fmt"

	"loom/pkg/element"
	"loom/pkg/expr"
	"loom/pkg/types"
)

// ChildFactory instantiates and destroys repeated children. NewChild must
// create the child element under parent, attach its node, call init on that
// node before any of the child's bindings run, and return the node.
type ChildFactory interface {
	NewChild(parent *element.Element, init func(*Node)) (*Node, error)
	DestroyChild(n *Node)
}

// RepeatVars names the per-item context variables.
type RepeatVars struct {
	Item     string
	ItemID   int
	ItemType *types.Type
	Index    string
	IndexID  int
}

func (v RepeatVars) init(item any, index int) func(*Node) {
	return func(n *Node) {
		n.CreateLocalVariable(v.ItemID, v.Item, v.ItemType, item)
		if v.IndexID != 0 {
			n.CreateLocalVariable(v.IndexID, v.Index, types.IntType, index)
		}
	}
}

func (v RepeatVars) refresh(n *Node, item any, index int) {
	n.SetVariable(v.ItemID, item)
	if v.IndexID != 0 {
		n.SetVariable(v.IndexID, index)
	}
}

// Repeat keeps one child per list item by position. Growth appends at the
// tail, shrinking removes from the tail and existing children keep their
// identity; item and index variables are refreshed every frame.
type Repeat struct {
	list     expr.Expression
	listType *types.Type
	vars     RepeatVars
	factory  ChildFactory

	shadow   []any
	children []*Node
}

func NewRepeat(list expr.Expression, vars RepeatVars, factory ChildFactory) (*Repeat, error) {
	t := list.Type()
	if t.Kind != types.List {
		return nil, fmt.Errorf("repeat list must be a list, got %s", t)
	}
	if vars.ItemType == nil {
		vars.ItemType = t.Elem
	}
	return &Repeat{list: list, listType: t, vars: vars, factory: factory}, nil
}

func (r *Repeat) Children() []*Node {
	return r.children
}

func (r *Repeat) Reconcile(g *Graph, n *Node, ctx *expr.Context) error {
	base := *ctx
	v := r.list.Eval(&base)
	count := r.listType.Len(v)

	for len(r.children) > count {
		last := len(r.children) - 1
		r.factory.DestroyChild(r.children[last])
		r.children[last] = nil
		r.children = r.children[:last]
	}
	r.shadow = r.shadow[:0]
	for i := 0; i < count; i++ {
		item := r.listType.Index(v, i)
		r.shadow = append(r.shadow, item)
		if i < len(r.children) {
			r.vars.refresh(r.children[i], item, i)
			continue
		}
		child, err := r.factory.NewChild(n.Element, r.vars.init(item, i))
		if err != nil {
			return err
		}
		r.children = append(r.children, child)
	}
	return nil
}

// keyScope exposes the item being keyed on top of the repeat node's scope.
type keyScope struct {
	parent expr.VariableScope
	vars   *RepeatVars
	item   any
	index  int
}

func (s *keyScope) Variable(id int) (any, bool) {
	if id == s.vars.ItemID {
		return s.item, true
	}
	if id == s.vars.IndexID && id != 0 {
		return s.index, true
	}
	return s.parent.Variable(id)
}

type keyedChild struct {
	node *Node
	key  any
	gen  uint32
}

// KeyedRepeat matches children to items by key. Reordering the list moves
// existing children, new keys create children and missing keys destroy them.
type KeyedRepeat struct {
	list     expr.Expression
	listType *types.Type
	key      expr.Expression
	vars     RepeatVars
	factory  ChildFactory

	byKey map[any]*keyedChild
	order []*keyedChild
	next  []*keyedChild
	gen   uint32
}

func NewKeyedRepeat(list, key expr.Expression, vars RepeatVars, factory ChildFactory) (*KeyedRepeat, error) {
	t := list.Type()
	if t.Kind != types.List {
		return nil, fmt.Errorf("repeat list must be a list, got %s", t)
	}
	if vars.ItemType == nil {
		vars.ItemType = t.Elem
	}
	return &KeyedRepeat{
		list:     list,
		listType: t,
		key:      key,
		vars:     vars,
		factory:  factory,
		byKey:    make(map[any]*keyedChild),
	}, nil
}

func (r *KeyedRepeat) Children() []*Node {
	out := make([]*Node, len(r.order))
	for i, c := range r.order {
		out[i] = c.node
	}
	return out
}

func (r *KeyedRepeat) Reconcile(g *Graph, n *Node, ctx *expr.Context) error {
	base := *ctx
	v := r.list.Eval(&base)
	count := r.listType.Len(v)
	r.gen++

	scope := &keyScope{parent: n, vars: &r.vars}
	keyCtx := base
	keyCtx.Scope = scope

	// Children created by this pass are only committed to byKey once every
	// key has been seen.
	var fresh map[any]*keyedChild
	abort := func(err error) error {
		for _, c := range fresh {
			r.factory.DestroyChild(c.node)
		}
		return err
	}
	r.next = r.next[:0]
	for i := 0; i < count; i++ {
		item := r.listType.Index(v, i)
		scope.item, scope.index = item, i
		k := r.key.Eval(&keyCtx)
		c, ok := r.byKey[k]
		if !ok {
			c, ok = fresh[k]
		}
		if ok && c.gen == r.gen {
			return abort(fmt.Errorf("duplicate repeat key %v at index %d", k, i))
		}
		if !ok {
			node, err := r.factory.NewChild(n.Element, r.vars.init(item, i))
			if err != nil {
				return abort(err)
			}
			c = &keyedChild{node: node, key: k}
			if fresh == nil {
				fresh = make(map[any]*keyedChild)
			}
			fresh[k] = c
		} else {
			r.vars.refresh(c.node, item, i)
		}
		c.gen = r.gen
		r.next = append(r.next, c)
	}

	for _, c := range r.order {
		if c.gen != r.gen {
			delete(r.byKey, c.key)
			r.factory.DestroyChild(c.node)
		}
	}
	for k, c := range fresh {
		r.byKey[k] = c
	}

	tree := g.Tree()
	for i, c := range r.next {
		el := c.node.Element
		if i >= len(n.Element.Children) || n.Element.Children[i] != el {
			tree.MoveChild(n.Element, el, i)
		}
	}
	r.order, r.next = r.next, r.order
	return nil
}
