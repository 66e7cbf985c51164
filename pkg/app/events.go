package app

import (
	"loom/pkg/element"
	"loom/pkg/types"
)

// Pointer and key event names. Templates subscribe with e.g.
// onClick="{Select(item)}". Appending CaptureSuffix subscribes to the
// capture phase instead, e.g. onMouseDown.capture="{...}".
const (
	EventMouseDown  = "onMouseDown"
	EventMouseUp    = "onMouseUp"
	EventClick      = "onClick"
	EventMouseEnter = "onMouseEnter"
	EventMouseExit  = "onMouseExit"
	EventMouseMove  = "onMouseMove"
	EventMouseHover = "onMouseHover"
	EventKeyDown    = "onKeyDown"

	CaptureSuffix = ".capture"
)

// Propagation is embedded in events that travel along an element path.
type Propagation struct {
	stopped bool
}

// StopPropagation keeps the event from reaching any further element. The
// remaining handlers of the current element still run.
func (p *Propagation) StopPropagation() { p.stopped = true }

func (p *Propagation) Stopped() bool { return p.stopped }

// MouseEvent is the $event of pointer handlers. Target is the topmost
// element under the pointer, Current the element whose handler is running.
type MouseEvent struct {
	Propagation
	X, Y    float32
	Button  int
	Target  *element.Element
	Current *element.Element
}

// KeyEvent is the $event of key handlers.
type KeyEvent struct {
	Propagation
	Key     string
	Target  *element.Element
	Current *element.Element
}

var (
	MouseEventType = types.NewStruct[MouseEvent]("MouseEvent")
	KeyEventType   = types.NewStruct[KeyEvent]("KeyEvent")
)

func init() {
	types.AddField(MouseEventType, "X", types.FloatType, func(e *MouseEvent) float32 { return e.X }, nil)
	types.AddField(MouseEventType, "Y", types.FloatType, func(e *MouseEvent) float32 { return e.Y }, nil)
	types.AddField(MouseEventType, "Button", types.IntType, func(e *MouseEvent) int { return e.Button }, nil)
	types.AddMethod(MouseEventType, "StopPropagation", nil, nil, func(e *MouseEvent, _ []any) any {
		e.StopPropagation()
		return nil
	})
	types.AddField(KeyEventType, "Key", types.StringType, func(e *KeyEvent) string { return e.Key }, nil)
	types.AddMethod(KeyEventType, "StopPropagation", nil, nil, func(e *KeyEvent, _ []any) any {
		e.StopPropagation()
		return nil
	})
}

// Handlers holds the event subscriptions of one element instance. Types
// that embed it and register with AddPointerEvents receive input routed by
// the application.
type Handlers struct {
	subs map[string][]func(args []any)
}

func (h *Handlers) Events() *Handlers { return h }

func (h *Handlers) subscribe(name string, fn func(args []any)) {
	if h.subs == nil {
		h.subs = make(map[string][]func(args []any))
	}
	h.subs[name] = append(h.subs[name], fn)
}

// Listens reports whether anything subscribed to the named event, in
// either phase.
func (h *Handlers) Listens(name string) bool {
	return len(h.subs[name]) > 0 || len(h.subs[name+CaptureSuffix]) > 0
}

// fire runs the handlers subscribed under key and reports whether any ran.
func (h *Handlers) fire(key string, ev any) bool {
	subs := h.subs[key]
	for _, fn := range subs {
		fn([]any{ev})
	}
	return len(subs) > 0
}

// Interactive is implemented by instances that embed Handlers.
type Interactive interface {
	Events() *Handlers
}

// AddPointerEvents registers the pointer and key events, and their capture
// variants, on t. handlers returns the subscription table of an instance.
func AddPointerEvents[T any](t *types.Type, handlers func(*T) *Handlers) {
	add := func(name string, params []*types.Type) {
		for _, key := range []string{name, name + CaptureSuffix} {
			key := key
			types.AddEvent(t, key, params, func(obj *T, fn func(args []any)) {
				handlers(obj).subscribe(key, fn)
			})
		}
	}
	mouse := []*types.Type{MouseEventType}
	for _, name := range []string{EventMouseDown, EventMouseUp, EventClick, EventMouseEnter, EventMouseExit, EventMouseMove, EventMouseHover} {
		add(name, mouse)
	}
	add(EventKeyDown, []*types.Type{KeyEventType})
}

// propagated is an event that can travel along a path.
type propagated interface {
	Stopped() bool
	setCurrent(el *element.Element)
}

func (e *MouseEvent) setCurrent(el *element.Element) { e.Current = el }
func (e *KeyEvent) setCurrent(el *element.Element) { e.Current = el }

// propagate delivers ev along path, which runs from the outermost element
// to the target. Bubble handlers run first, target to outermost, then
// capture handlers, outermost to target. Stopping propagation ends the
// walk after the current element. It reports whether any handler ran.
func propagate(path []*element.Element, name string, ev propagated) bool {
	handled := false
	deliver := func(el *element.Element, key string) bool {
		in, ok := el.Instance.(Interactive)
		if !ok || el.Destroyed() {
			return false
		}
		ev.setCurrent(el)
		if in.Events().fire(key, ev) {
			handled = true
		}
		return ev.Stopped()
	}
	for i := len(path) - 1; i >= 0; i-- {
		if deliver(path[i], name) {
			return handled
		}
	}
	for _, el := range path {
		if deliver(el, name+CaptureSuffix) {
			return handled
		}
	}
	return handled
}

// notify fires name on el alone, in both phases.
func notify(el *element.Element, name string, ev *MouseEvent) {
	if in, ok := el.Instance.(Interactive); ok {
		ev.Current = el
		in.Events().fire(name, ev)
		in.Events().fire(name+CaptureSuffix, ev)
	}
}
