// Package element holds the live element tree. Elements carry identity,
// attributes, style state and their bound instance; layout boxes and binding
// nodes live in tables owned by those subsystems, keyed by element ID.
package element

import (
	"fmt"

	"loom/pkg/style"
	"loom/pkg/types"
)

type ID int32

// Invalid is never allocated.
const Invalid ID = 0

type Attr struct {
	Name  string
	Value string
}

type Element struct {
	ID       ID
	Tag      string
	Type     *types.Type
	Instance any
	Parent   *Element
	Children []*Element
	Style    *style.Set

	// TextContent is the display text of Text elements.
	TextContent string

	attrs     []Attr
	disabled  bool
	destroyed bool
}

func (e *Element) String() string {
	return fmt.Sprintf("%s#%d", e.Tag, e.ID)
}

// Attribute implements style.AttributeSource.
func (e *Element) Attribute(name string) (string, bool) {
	for _, a := range e.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

func (e *Element) Attributes() []Attr {
	return e.attrs
}

// SetAttribute adds or replaces an attribute. Attribute style groups may
// match differently afterwards, so the style set is invalidated.
func (e *Element) SetAttribute(name, value string) {
	for i := range e.attrs {
		if e.attrs[i].Name == name {
			if e.attrs[i].Value == value {
				return
			}
			e.attrs[i].Value = value
			e.Style.Invalidate()
			return
		}
	}
	e.attrs = append(e.attrs, Attr{Name: name, Value: value})
	e.Style.Invalidate()
}

func (e *Element) RemoveAttribute(name string) {
	for i := range e.attrs {
		if e.attrs[i].Name == name {
			e.attrs = append(e.attrs[:i], e.attrs[i+1:]...)
			e.Style.Invalidate()
			return
		}
	}
}

// Enabled reports whether the element and all its ancestors are enabled.
func (e *Element) Enabled() bool {
	for p := e; p != nil; p = p.Parent {
		if p.disabled {
			return false
		}
	}
	return true
}

func (e *Element) SelfEnabled() bool {
	return !e.disabled
}

func (e *Element) Destroyed() bool {
	return e.destroyed
}

// Index returns the position of e among its siblings, or -1.
func (e *Element) Index() int {
	if e.Parent == nil {
		return -1
	}
	for i, c := range e.Parent.Children {
		if c == e {
			return i
		}
	}
	return -1
}

// Depth is the number of ancestors.
func (e *Element) Depth() int {
	d := 0
	for p := e.Parent; p != nil; p = p.Parent {
		d++
	}
	return d
}
