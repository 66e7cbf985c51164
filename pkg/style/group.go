package style

import (
	"sort"
	"strings"
)

// State is a set of interaction states.
type State uint8

const (
	StateNormal State = 0
	StateHover  State = 1 << iota
	StateFocus
	StateActive
)

func (s State) String() string {
	if s == StateNormal {
		return "normal"
	}
	var names []string
	for _, n := range []struct {
		st   State
		name string
	}{{StateHover, "hover"}, {StateFocus, "focus"}, {StateActive, "active"}} {
		if s&n.st != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, " ")
}

// Block is one set of property assignments.
type Block struct {
	values map[PropertyID]any
	order  []PropertyID
}

func NewBlock() *Block {
	return &Block{values: make(map[PropertyID]any)}
}

func (b *Block) Get(p PropertyID) (any, bool) {
	if b == nil {
		return nil, false
	}
	v, ok := b.values[p]
	return v, ok
}

func (b *Block) Set(p PropertyID, v any) {
	if _, ok := b.values[p]; !ok {
		b.order = append(b.order, p)
	}
	b.values[p] = v
}

func (b *Block) Remove(p PropertyID) {
	if _, ok := b.values[p]; !ok {
		return
	}
	delete(b.values, p)
	for i, id := range b.order {
		if id == p {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// Properties returns the assigned properties in declaration order.
func (b *Block) Properties() []PropertyID {
	if b == nil {
		return nil
	}
	return b.order
}

func (b *Block) Len() int {
	if b == nil {
		return 0
	}
	return len(b.values)
}

// AttributeSource exposes element attributes to attribute groups.
type AttributeSource interface {
	Attribute(name string) (string, bool)
}

// AttributeRule is the predicate of an attribute group: the attribute must be
// present and, when HasValue is set, equal Value.
type AttributeRule struct {
	Name     string
	Value    string
	HasValue bool
}

func (r *AttributeRule) Matches(attrs AttributeSource) bool {
	if r == nil {
		return true
	}
	if attrs == nil {
		return false
	}
	v, ok := attrs.Attribute(r.Name)
	if !ok {
		return false
	}
	return !r.HasValue || v == r.Value
}

// Group is one conditional slice of a named style: a rule (nil for the
// unconditional group) plus normal and state blocks.
type Group struct {
	Rule   *AttributeRule
	Normal *Block
	Hover  *Block
	Focus  *Block
	Active *Block
}

func newGroup(rule *AttributeRule) *Group {
	return &Group{Rule: rule, Normal: NewBlock()}
}

func (g *Group) block(s State) *Block {
	switch s {
	case StateHover:
		if g.Hover == nil {
			g.Hover = NewBlock()
		}
		return g.Hover
	case StateFocus:
		if g.Focus == nil {
			g.Focus = NewBlock()
		}
		return g.Focus
	case StateActive:
		if g.Active == nil {
			g.Active = NewBlock()
		}
		return g.Active
	}
	return g.Normal
}

// lookup returns the winning value inside the group for the given state:
// normal first, then hover, focus and active overlays when active.
func (g *Group) lookup(p PropertyID, state State) (any, bool) {
	v, found := g.Normal.Get(p)
	if state&StateHover != 0 {
		if hv, ok := g.Hover.Get(p); ok {
			v, found = hv, true
		}
	}
	if state&StateFocus != 0 {
		if fv, ok := g.Focus.Get(p); ok {
			v, found = fv, true
		}
	}
	if state&StateActive != 0 {
		if av, ok := g.Active.Get(p); ok {
			v, found = av, true
		}
	}
	return v, found
}

// Container is a named style: its unconditional group followed by any
// attribute groups, in source order.
type Container struct {
	Name   string
	File   string
	Line   int
	Column int
	Groups []*Group
}

func NewContainer(name string) *Container {
	return &Container{Name: name, Groups: []*Group{newGroup(nil)}}
}

// Default is the unconditional group.
func (c *Container) Default() *Group {
	return c.Groups[0]
}

// Sheet is a compiled style file.
type Sheet struct {
	File       string
	containers map[string]*Container
}

func (s *Sheet) Get(name string) (*Container, bool) {
	c, ok := s.containers[name]
	return c, ok
}

// Names returns every style name in the sheet, sorted.
func (s *Sheet) Names() []string {
	names := make([]string, 0, len(s.containers))
	for n := range s.containers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
