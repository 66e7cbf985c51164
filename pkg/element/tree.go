package element

import (
	"loom/pkg/style"
	"loom/pkg/types"
)

// Tree allocates elements and tracks structural changes. It is not safe for
// concurrent use; the application drives it from a single goroutine.
type Tree struct {
	nextID   ID
	elements map[ID]*Element

	changed    []*Element
	changedSet map[ID]struct{}

	childPool [][]*Element

	onDestroy []func(*Element)
	onEnable  []func(*Element, bool)
}

func NewTree() *Tree {
	return &Tree{
		elements:   make(map[ID]*Element),
		changedSet: make(map[ID]struct{}),
	}
}

// Create allocates a detached element with an empty style set.
func (t *Tree) Create(tag string, typ *types.Type, instance any) *Element {
	t.nextID++
	e := &Element{ID: t.nextID, Tag: tag, Type: typ, Instance: instance}
	e.Style = style.NewSet(e)
	e.Children = t.takeChildren()
	t.elements[e.ID] = e
	return e
}

func (t *Tree) Get(id ID) (*Element, bool) {
	e, ok := t.elements[id]
	return e, ok
}

// Len is the number of live elements.
func (t *Tree) Len() int {
	return len(t.elements)
}

func (t *Tree) takeChildren() []*Element {
	if n := len(t.childPool); n > 0 {
		c := t.childPool[n-1]
		t.childPool = t.childPool[:n-1]
		return c
	}
	return nil
}

func (t *Tree) releaseChildren(c []*Element) {
	if cap(c) == 0 {
		return
	}
	clear(c)
	t.childPool = append(t.childPool, c[:0])
}

// AppendChild attaches child as the last child of parent, detaching it from
// any previous parent first.
func (t *Tree) AppendChild(parent, child *Element) {
	t.InsertChild(parent, child, len(parent.Children))
}

// InsertChild attaches child at index, clamped to the valid range.
func (t *Tree) InsertChild(parent, child *Element, index int) {
	if child.Parent != nil {
		t.Detach(child)
	}
	index = min(max(index, 0), len(parent.Children))
	parent.Children = append(parent.Children, nil)
	copy(parent.Children[index+1:], parent.Children[index:])
	parent.Children[index] = child
	child.Parent = parent
	t.MarkChildrenChanged(parent)
}

// MoveChild moves an existing child of parent to index.
func (t *Tree) MoveChild(parent, child *Element, index int) {
	from := child.Index()
	if child.Parent != parent || from < 0 {
		t.InsertChild(parent, child, index)
		return
	}
	index = min(max(index, 0), len(parent.Children)-1)
	if from == index {
		return
	}
	c := parent.Children
	if from < index {
		copy(c[from:index], c[from+1:index+1])
	} else {
		copy(c[index+1:from+1], c[index:from])
	}
	c[index] = child
	t.MarkChildrenChanged(parent)
}

// Detach removes e from its parent's child list without destroying it.
func (t *Tree) Detach(e *Element) {
	p := e.Parent
	if p == nil {
		return
	}
	if i := e.Index(); i >= 0 {
		copy(p.Children[i:], p.Children[i+1:])
		p.Children[len(p.Children)-1] = nil
		p.Children = p.Children[:len(p.Children)-1]
	}
	e.Parent = nil
	t.MarkChildrenChanged(p)
}

// Destroy detaches e and releases it and its whole subtree. Destroy hooks run
// children first.
func (t *Tree) Destroy(e *Element) {
	if e.destroyed {
		return
	}
	t.Detach(e)
	t.destroy(e)
}

func (t *Tree) destroy(e *Element) {
	for _, c := range e.Children {
		c.Parent = nil
		t.destroy(c)
	}
	for _, fn := range t.onDestroy {
		fn(e)
	}
	e.destroyed = true
	t.releaseChildren(e.Children)
	e.Children = nil
	delete(t.elements, e.ID)
	delete(t.changedSet, e.ID)
}

// OnDestroy registers a hook run for every destroyed element.
func (t *Tree) OnDestroy(fn func(*Element)) {
	t.onDestroy = append(t.onDestroy, fn)
}

// OnEnableChanged registers a hook run when an element's own enabled flag
// flips.
func (t *Tree) OnEnableChanged(fn func(*Element, bool)) {
	t.onEnable = append(t.onEnable, fn)
}

func (t *Tree) SetEnabled(e *Element, enabled bool) {
	if e.disabled == !enabled {
		return
	}
	e.disabled = !enabled
	for _, fn := range t.onEnable {
		fn(e, enabled)
	}
	if e.Parent != nil {
		t.MarkChildrenChanged(e.Parent)
	}
}

// MarkChildrenChanged queues e for a child rebuild; repeated marks within a
// tick are collapsed.
func (t *Tree) MarkChildrenChanged(e *Element) {
	if _, ok := t.changedSet[e.ID]; ok {
		return
	}
	t.changedSet[e.ID] = struct{}{}
	t.changed = append(t.changed, e)
}

// DrainChildChanges delivers each queued element once and empties the queue.
func (t *Tree) DrainChildChanges(fn func(*Element)) {
	for i := 0; i < len(t.changed); i++ {
		e := t.changed[i]
		if e.destroyed {
			continue
		}
		if _, ok := t.changedSet[e.ID]; !ok {
			continue
		}
		delete(t.changedSet, e.ID)
		fn(e)
	}
	clear(t.changed)
	t.changed = t.changed[:0]
}

// Walk visits e and its descendants depth first, parents before children.
// Returning false from fn skips the element's subtree.
func Walk(e *Element, fn func(*Element) bool) {
	if !fn(e) {
		return
	}
	for _, c := range e.Children {
		Walk(c, fn)
	}
}
