package markup

import "strings"

type AttributeType uint8

const (
	AttributeProperty AttributeType = iota
	AttributeStyle
	AttributeInstanceStyle
	AttributeAttribute
	AttributeContext
)

var attributeTypeNames = []string{"Property", "Style", "InstanceStyle", "Attribute", "Context"}

func (t AttributeType) String() string { return attributeTypeNames[t] }

type AttributeFlags uint8

const (
	// FlagBound marks a value written as {expression}.
	FlagBound AttributeFlags = 1 << iota
	// FlagModified marks a key with dotted modifiers, e.g. value.write.
	FlagModified
)

// Attribute is one key/value pair on a template node, in source order with
// its original case and location.
type Attribute struct {
	Key    string
	Value  string
	Type   AttributeType
	Flags  AttributeFlags
	Line   int
	Column int
}

// Name strips the type prefix: "attr:kind" -> "kind", "style.PreferredWidth" -> "PreferredWidth".
func (a Attribute) Name() string {
	switch a.Type {
	case AttributeAttribute:
		return strings.TrimPrefix(a.Key, "attr:")
	case AttributeInstanceStyle:
		return strings.TrimPrefix(a.Key, "style.")
	case AttributeContext:
		return strings.TrimPrefix(a.Key, "ctx:")
	}
	return a.Key
}

func classifyAttribute(key, value string) (AttributeType, AttributeFlags) {
	var flags AttributeFlags
	if len(value) >= 2 && value[0] == '{' && value[len(value)-1] == '}' {
		flags |= FlagBound
	}
	switch {
	case key == "style":
		return AttributeStyle, flags
	case strings.HasPrefix(key, "style."):
		return AttributeInstanceStyle, flags
	case strings.HasPrefix(key, "attr:"):
		return AttributeAttribute, flags
	case key == "x-id":
		return AttributeAttribute, flags
	case strings.HasPrefix(key, "ctx:"):
		return AttributeContext, flags
	}
	if strings.Contains(key, ".") {
		flags |= FlagModified
	}
	return AttributeProperty, flags
}

type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
)

// Node is one parsed template element or text run.
type Node struct {
	Type       NodeType
	Tag        string
	Attributes []Attribute
	Text       string
	Children   []*Node
	Parent     *Node
	Line       int
	Column     int
}

func (n *Node) Attribute(key string) (Attribute, bool) {
	for _, a := range n.Attributes {
		if a.Key == key {
			return a, true
		}
	}
	return Attribute{}, false
}

func (n *Node) AddChild(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// Template is a parsed template file. Root is the <Template> element; its
// children are the content.
type Template struct {
	File string
	Root *Node
}

// AttributeNames collects every attr: name used anywhere in the template.
func (t *Template) AttributeNames() []string {
	seen := make(map[string]bool)
	var names []string
	var walk func(n *Node)
	walk = func(n *Node) {
		for _, a := range n.Attributes {
			if a.Type == AttributeAttribute && !seen[a.Name()] {
				seen[a.Name()] = true
				names = append(names, a.Name())
			}
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(t.Root)
	return names
}

// TextPart is a literal run or an {expression} inside text content.
type TextPart struct {
	Text string
	Expr bool
}

// SplitText breaks "Hello {name}!" into literal and expression parts.
func SplitText(s string) []TextPart {
	var parts []TextPart
	for len(s) > 0 {
		open := strings.IndexByte(s, '{')
		if open == -1 {
			parts = append(parts, TextPart{Text: s})
			break
		}
		end := strings.IndexByte(s[open:], '}')
		if end == -1 {
			parts = append(parts, TextPart{Text: s})
			break
		}
		if open > 0 {
			parts = append(parts, TextPart{Text: s[:open]})
		}
		parts = append(parts, TextPart{Text: strings.TrimSpace(s[open+1 : open+end]), Expr: true})
		s = s[open+end+1:]
	}
	return parts
}
