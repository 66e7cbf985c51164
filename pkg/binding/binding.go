// Package binding connects compiled expressions to element instances and
// evaluates them each frame through a sparse graph of per-element nodes.
package binding

import (
	"reflect"

	"loom/pkg/element"
	"loom/pkg/expr"
	"loom/pkg/types"
)

// Type controls when a binding runs.
type Type uint8

const (
	// Constant bindings run once when the element is created.
	Constant Type = iota
	// OnEnable bindings run each time the element becomes enabled.
	OnEnable
	// Update bindings run every frame the element is enabled.
	Update
	// Write bindings copy an element value back to the data context.
	Write
)

var typeNames = []string{"Constant", "OnEnable", "Update", "Write"}

func (t Type) String() string { return typeNames[t] }

// Target is what a binding acts on during one execution.
type Target struct {
	Element *element.Element
	Tree    *element.Tree
	Ctx     *expr.Context
	// Report receives failures of work a binding defers, such as event
	// handlers.
	Report func(el *element.Element, key string, err error)
}

type Binding interface {
	Key() string
	BindingType() Type
	Execute(t *Target)
}

// SetterBinding assigns an expression result to a field or property of the
// element instance and then runs the type's change callbacks in order.
type SetterBinding struct {
	key   string
	typ   Type
	field *types.Field
	value expr.Expression
}

func NewSetter(key string, typ Type, field *types.Field, value expr.Expression) *SetterBinding {
	return &SetterBinding{key: key, typ: typ, field: field, value: value}
}

func (b *SetterBinding) Key() string { return b.key }
func (b *SetterBinding) BindingType() Type { return b.typ }

func (b *SetterBinding) Execute(t *Target) {
	v := b.value.Eval(t.Ctx)
	obj := t.Element.Instance
	if sameValue(b.field.Get(obj), v) {
		return
	}
	b.field.Set(obj, v)
	for _, cb := range b.field.Owner.Callbacks(b.field.Name) {
		cb(obj, b.field.Name)
	}
}

// sameValue compares values that may not be comparable with ==.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	return false
}

// WriteBinding copies an element field back into the data context when the
// element changed it since the last observation. The first execution only
// records the current value.
type WriteBinding struct {
	key    string
	field  *types.Field
	target *expr.WriteTarget
	last   any
	seen   bool
}

func NewWrite(key string, field *types.Field, target *expr.WriteTarget) *WriteBinding {
	return &WriteBinding{key: key, field: field, target: target}
}

func (b *WriteBinding) Key() string { return b.key }
func (b *WriteBinding) BindingType() Type { return Write }

func (b *WriteBinding) Execute(t *Target) {
	v := b.field.Get(t.Element.Instance)
	if !b.seen {
		b.last, b.seen = v, true
		return
	}
	if sameValue(v, b.last) {
		return
	}
	b.target.Assign(t.Ctx, v)
	b.last = v
}

// Observe records the element's current value without writing, so a
// read binding that ran after this one is not echoed back next frame.
func (b *WriteBinding) Observe(t *Target) {
	b.last, b.seen = b.field.Get(t.Element.Instance), true
}

// EventBinding subscribes an expression to an event of the element instance.
// It runs once, at creation.
type EventBinding struct {
	key     string
	event   *types.Event
	handler expr.Expression
}

func NewEvent(key string, event *types.Event, handler expr.Expression) *EventBinding {
	return &EventBinding{key: key, event: event, handler: handler}
}

func (b *EventBinding) Key() string { return b.key }
func (b *EventBinding) BindingType() Type { return Constant }

func (b *EventBinding) Execute(t *Target) {
	el, report := t.Element, t.Report
	base := *t.Ctx
	b.event.Subscribe(el.Instance, func(args []any) {
		if el.Destroyed() || !el.Enabled() {
			return
		}
		ctx := base
		if len(args) > 0 {
			ctx.Event = args[0]
		}
		if _, err := expr.Run(&ctx, b.handler); err != nil && report != nil {
			report(el, b.key, err)
		}
	})
}

// EnabledBinding drives the element's enabled flag from a bool expression.
// A constant condition is applied once, at creation.
type EnabledBinding struct {
	cond expr.Typed[bool]
	typ  Type
}

func NewEnabled(cond expr.Expression) *EnabledBinding {
	b := &EnabledBinding{cond: expr.As[bool](cond), typ: Update}
	if cond.IsConstant() {
		b.typ = Constant
	}
	return b
}

func (b *EnabledBinding) Key() string { return "if" }
func (b *EnabledBinding) BindingType() Type { return b.typ }

func (b *EnabledBinding) Execute(t *Target) {
	t.Tree.SetEnabled(t.Element, b.cond.Evaluate(t.Ctx))
}
