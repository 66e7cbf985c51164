package binding

import (
	"fmt"
	"log"

	"loom/pkg/element"
	"loom/pkg/expr"
	"loom/pkg/types"
)

// ContextVariable is a runtime slot declared by a node, e.g. a repeat item.
type ContextVariable struct {
	ID    int
	Name  string
	Type  *types.Type
	Value any
	next  *ContextVariable
}

// Reconciler adjusts a node's element children to match data each frame.
type Reconciler interface {
	Reconcile(g *Graph, n *Node, ctx *expr.Context) error
}

// Node holds the bindings and local variables of one bound element.
type Node struct {
	Element *element.Element
	// Root is the data context object expressions see as root.
	Root any

	parent *Node

	created []Binding
	enabled []Binding
	updated []Binding
	writes  []*WriteBinding
	ifs     []Binding

	vars, varsTail *ContextVariable
	repeat         Reconciler
}

func (n *Node) Parent() *Node {
	return n.parent
}

// CreateLocalVariable appends a variable to the node's list.
func (n *Node) CreateLocalVariable(id int, name string, t *types.Type, value any) *ContextVariable {
	v := &ContextVariable{ID: id, Name: name, Type: t, Value: value}
	if n.varsTail == nil {
		n.vars = v
	} else {
		n.varsTail.next = v
	}
	n.varsTail = v
	return v
}

// SetVariable updates a local variable by id.
func (n *Node) SetVariable(id int, value any) bool {
	for v := n.vars; v != nil; v = v.next {
		if v.ID == id {
			v.Value = value
			return true
		}
	}
	return false
}

// Variable implements expr.VariableScope: locals first, then the parent
// chain, nearest declaration wins.
func (n *Node) Variable(id int) (any, bool) {
	for c := n; c != nil; c = c.parent {
		for v := c.vars; v != nil; v = v.next {
			if v.ID == id {
				return v.Value, true
			}
		}
	}
	return nil, false
}

func (n *Node) VariableByName(name string) (*ContextVariable, bool) {
	for c := n; c != nil; c = c.parent {
		for v := c.vars; v != nil; v = v.next {
			if v.Name == name {
				return v, true
			}
		}
	}
	return nil, false
}

// AddBindings sorts bindings into the created, enabled and updated lists.
// Within a frame write bindings run before the update list.
func (n *Node) AddBindings(bs ...Binding) {
	for _, b := range bs {
		switch b.BindingType() {
		case Constant:
			n.created = append(n.created, b)
		case OnEnable:
			n.enabled = append(n.enabled, b)
		case Write:
			n.writes = append(n.writes, b.(*WriteBinding))
		default:
			if _, ok := b.(*EnabledBinding); ok {
				n.ifs = append(n.ifs, b)
			} else {
				n.updated = append(n.updated, b)
			}
		}
	}
}

func (n *Node) SetReconciler(r Reconciler) {
	n.repeat = r
}

// Graph owns the binding nodes of one element tree.
type Graph struct {
	tree   *element.Tree
	logger *log.Logger
	nodes  map[element.ID]*Node
	roots  []*Node

	target Target
	ctx    expr.Context
	failed int
}

func NewGraph(tree *element.Tree, logger *log.Logger) *Graph {
	g := &Graph{tree: tree, logger: logger, nodes: make(map[element.ID]*Node)}
	g.target.Tree = tree
	g.target.Ctx = &g.ctx
	g.target.Report = g.report
	tree.OnDestroy(g.detach)
	return g
}

func (g *Graph) Tree() *element.Tree {
	return g.tree
}

// Attach creates the node of el, linked to the node of its nearest bound
// ancestor.
func (g *Graph) Attach(el *element.Element, root any, bs ...Binding) *Node {
	n := &Node{Element: el, Root: root}
	for p := el.Parent; p != nil; p = p.Parent {
		if pn, ok := g.nodes[p.ID]; ok {
			n.parent = pn
			break
		}
	}
	if n.parent == nil {
		g.roots = append(g.roots, n)
	}
	n.AddBindings(bs...)
	g.nodes[el.ID] = n
	return n
}

func (g *Graph) Node(id element.ID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// NodeFor returns the node of el or of its nearest bound ancestor.
func (g *Graph) NodeFor(el *element.Element) *Node {
	for p := el; p != nil; p = p.Parent {
		if n, ok := g.nodes[p.ID]; ok {
			return n
		}
	}
	return nil
}

func (g *Graph) Len() int {
	return len(g.nodes)
}

func (g *Graph) detach(el *element.Element) {
	n, ok := g.nodes[el.ID]
	if !ok {
		return
	}
	delete(g.nodes, el.ID)
	if n.parent == nil {
		for i, r := range g.roots {
			if r == n {
				g.roots = append(g.roots[:i], g.roots[i+1:]...)
				break
			}
		}
	}
}

func (g *Graph) prepare(n *Node) *Target {
	el := n.Element
	g.ctx = expr.Context{Root: n.Root, Element: el.Instance, Scope: n}
	if el.Parent != nil {
		g.ctx.Parent = el.Parent.Instance
	}
	g.target.Element = el
	return &g.target
}

func (g *Graph) run(n *Node, list []Binding) error {
	t := g.prepare(n)
	for _, b := range list {
		if err := expr.Guard(func() { b.Execute(t) }); err != nil {
			return g.fail(n, b.Key(), err)
		}
	}
	return nil
}

func (g *Graph) fail(n *Node, key string, err error) error {
	g.failed++
	err = fmt.Errorf("element %s binding %s: %w", n.Element, key, err)
	if g.logger != nil {
		g.logger.Printf("%v", err)
	}
	return err
}

func (g *Graph) report(el *element.Element, key string, err error) {
	if g.logger != nil {
		g.logger.Printf("element %s binding %s: %v", el, key, err)
	}
}

// Created runs the node's creation bindings once. It is called after the
// element is instantiated and before its children are attached. Event
// failures reported later go to the graph's logger.
func (g *Graph) Created(n *Node) error {
	if err := g.run(n, n.created); err != nil {
		return err
	}
	if n.Element.Enabled() {
		return g.run(n, n.enabled)
	}
	return nil
}

// Update runs every enabled node once in tree order and returns the number
// of nodes whose bindings failed. A failure skips only the failing node's
// subtree for this frame.
func (g *Graph) Update(frame int) int {
	g.failed = 0
	for i := 0; i < len(g.roots); i++ {
		r := g.roots[i]
		if r.Element.Parent != nil && !r.Element.Parent.Enabled() {
			continue
		}
		g.visit(r.Element)
	}
	return g.failed
}

func (g *Graph) visit(el *element.Element) {
	if n, ok := g.nodes[el.ID]; ok {
		if !g.updateNode(n) {
			return
		}
	} else if !el.SelfEnabled() {
		return
	}
	for i := 0; i < len(el.Children); i++ {
		g.visit(el.Children[i])
	}
}

// updateNode reports whether the element's children should be visited.
func (g *Graph) updateNode(n *Node) bool {
	el := n.Element
	wasEnabled := el.SelfEnabled()
	if g.run(n, n.ifs) != nil {
		return false
	}
	if !el.SelfEnabled() {
		return false
	}
	if !wasEnabled && g.run(n, n.enabled) != nil {
		return false
	}

	t := g.prepare(n)
	for _, w := range n.writes {
		if err := expr.Guard(func() { w.Execute(t) }); err != nil {
			g.fail(n, w.Key(), err)
			return false
		}
	}
	if g.run(n, n.updated) != nil {
		return false
	}
	if n.repeat != nil {
		t = g.prepare(n)
		var err error
		if gerr := expr.Guard(func() { err = n.repeat.Reconcile(g, n, t.Ctx) }); gerr != nil {
			err = gerr
		}
		if err != nil {
			g.fail(n, "list", err)
			return false
		}
	}
	t = g.prepare(n)
	for _, w := range n.writes {
		w.Observe(t)
	}
	return true
}
