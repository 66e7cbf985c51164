package app

import (
	"loom/pkg/element"
	"loom/pkg/types"
)

// Built-in tags.
const (
	TagGroup    = "Group"
	TagText     = "Text"
	TagRepeat   = "Repeat"
	TagChildren = "Children"
)

// Group is a plain container.
type Group struct {
	Handlers
}

// Text displays TextContent. Literal text in a template becomes a Text
// element; {expressions} inside it are re-evaluated every frame.
type Text struct {
	Handlers
	app *Application
	el  *element.Element
}

func (t *Text) Value() string {
	if t.el == nil {
		return ""
	}
	return t.el.TextContent
}

func (t *Text) SetValue(s string) {
	if t.app != nil {
		t.app.setText(t.el, s)
	}
}

// Repeat is the element that owns the children of a list binding.
type Repeat struct {
	Handlers
}

var (
	GroupType  = types.NewStruct[Group](TagGroup)
	TextType   = types.NewStruct[Text](TagText)
	RepeatType = types.NewStruct[Repeat](TagRepeat)
)

func init() {
	AddPointerEvents(GroupType, (*Group).Events)
	AddPointerEvents(TextType, (*Text).Events)
	AddPointerEvents(RepeatType, (*Repeat).Events)
	types.AddProperty(TextType, "Text", types.StringType, (*Text).Value, (*Text).SetValue)
}

func registerBuiltins(r *types.Registry) {
	builtins := []types.ElementType{
		{Tag: TagGroup, Type: GroupType, New: func() any { return &Group{} }},
		{Tag: TagText, Type: TextType, New: func() any { return &Text{} }},
		{Tag: TagRepeat, Type: RepeatType, New: func() any { return &Repeat{} }},
		{Tag: TagChildren, Type: GroupType, New: func() any { return &Group{} }},
	}
	for _, b := range builtins {
		if _, ok := r.Element(b.Tag); !ok {
			r.RegisterElement(b.Tag, b.Type, b.New)
		}
	}
}
