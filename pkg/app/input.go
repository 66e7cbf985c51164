package app

import (
	"slices"

	"loom/pkg/element"
	"loom/pkg/geom"
	"loom/pkg/style"
)

// Pointer input is resolved against the latest layout. The topmost element
// under the pointer and its ancestors are hovered; a press makes the
// pressed chain active and focuses the topmost element. Press, release,
// move and key events travel the chain below the view.

// pick returns the topmost element under p. The view itself is never
// picked.
func (a *Application) pick(p geom.Vector2) *element.Element {
	a.hits = a.runner.QueryPoint(p, a.hits[:0])
	for i := len(a.hits) - 1; i >= 0; i-- {
		if a.hits[i] != a.view {
			return a.hits[i]
		}
	}
	return nil
}

// chain appends el and its ancestors below the view, outermost first.
func (a *Application) chain(out []*element.Element, el *element.Element) []*element.Element {
	start := len(out)
	for e := el; e != nil && e != a.view; e = e.Parent {
		out = append(out, e)
	}
	slices.Reverse(out[start:])
	return out
}

// MouseMove moves the pointer to p. Elements it leaves get onMouseExit and
// elements it reaches get onMouseEnter, innermost first. The hovered path
// then receives onMouseMove when p changed, or onMouseHover when the pointer
// rests where it was.
func (a *Application) MouseMove(p geom.Vector2) {
	moved := !a.mouseSeen || p != a.mouse
	a.hover(p)
	ev := &MouseEvent{X: p.X, Y: p.Y}
	if n := len(a.hovered); n > 0 {
		ev.Target = a.hovered[n-1]
	}
	a.path = append(a.path[:0], a.hovered...)
	if moved {
		propagate(a.path, EventMouseMove, ev)
	} else {
		propagate(a.path, EventMouseHover, ev)
	}
}

// hover updates the hovered chain for a pointer at p.
func (a *Application) hover(p geom.Vector2) {
	a.mouse, a.mouseSeen = p, true
	a.runner.SetMousePosition(p)
	next := a.chain(nil, a.pick(p))
	ev := &MouseEvent{X: p.X, Y: p.Y}
	for i := len(a.hovered) - 1; i >= 0; i-- {
		el := a.hovered[i]
		if slices.Contains(next, el) {
			continue
		}
		el.Style.SetState(style.StateHover, false)
		ev.Target = el
		notify(el, EventMouseExit, ev)
	}
	for i := len(next) - 1; i >= 0; i-- {
		el := next[i]
		if slices.Contains(a.hovered, el) {
			continue
		}
		el.Style.SetState(style.StateHover, true)
		ev.Target = el
		notify(el, EventMouseEnter, ev)
	}
	a.hovered = next
}

// MouseDown focuses the topmost element under p, makes its chain active and
// sends onMouseDown along that chain.
func (a *Application) MouseDown(p geom.Vector2, button int) {
	a.hover(p)
	top := a.pick(p)
	a.setFocus(top)
	a.setActive(top)
	if top == nil {
		return
	}
	a.path = a.chain(a.path[:0], top)
	propagate(a.path, EventMouseDown, &MouseEvent{X: p.X, Y: p.Y, Button: button, Target: top})
}

// MouseUp sends onMouseUp along the chain under the pointer, then fires
// onClick on the element that would have received the press, if the
// pointer is still over it.
func (a *Application) MouseUp(p geom.Vector2, button int) {
	a.hover(p)
	top := a.pick(p)
	pressed := a.active
	a.setActive(nil)
	if top != nil {
		a.path = a.chain(a.path[:0], top)
		propagate(a.path, EventMouseUp, &MouseEvent{X: p.X, Y: p.Y, Button: button, Target: top})
	}
	if pressed == nil || top == nil || pressed.Destroyed() {
		return
	}
	target := listener(pressed, EventClick)
	if target != nil && within(top, target) {
		notify(target, EventClick, &MouseEvent{X: p.X, Y: p.Y, Button: button, Target: top})
	}
}

// KeyDown sends a key along the focused element's chain. It reports
// whether any element handled it.
func (a *Application) KeyDown(key string) bool {
	if a.focus == nil {
		return false
	}
	a.path = a.chain(a.path[:0], a.focus)
	return propagate(a.path, EventKeyDown, &KeyEvent{Key: key, Target: a.focus})
}

// Focus moves keyboard focus to el, or clears it for nil.
func (a *Application) Focus(el *element.Element) {
	a.setFocus(el)
}

func (a *Application) setFocus(el *element.Element) {
	if a.focus == el {
		return
	}
	if a.focus != nil {
		a.focus.Style.SetState(style.StateFocus, false)
	}
	a.focus = el
	if el != nil {
		el.Style.SetState(style.StateFocus, true)
	}
}

func (a *Application) setActive(el *element.Element) {
	if a.active != nil && !a.active.Destroyed() {
		for e := a.active; e != nil && e != a.view; e = e.Parent {
			e.Style.SetState(style.StateActive, false)
		}
	}
	a.active = el
	for e := el; e != nil && e != a.view; e = e.Parent {
		e.Style.SetState(style.StateActive, true)
	}
}

// listener is the nearest element from el upwards that subscribed to name.
func listener(el *element.Element, name string) *element.Element {
	for e := el; e != nil; e = e.Parent {
		if in, ok := e.Instance.(Interactive); ok && in.Events().Listens(name) {
			return e
		}
	}
	return nil
}

func within(el, ancestor *element.Element) bool {
	for e := el; e != nil; e = e.Parent {
		if e == ancestor {
			return true
		}
	}
	return false
}
