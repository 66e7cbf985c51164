package app

import (
	"fmt"
	"reflect"
	"strings"

	"loom/pkg/binding"
	"loom/pkg/expr"
	"loom/pkg/style"
)

// textBinding joins literal runs and expression results into the content
// of a Text element.
type textBinding struct {
	app   *Application
	parts []textPart
	typ   binding.Type
	buf   strings.Builder
}

type textPart struct {
	text string
	expr expr.Expression
}

// literal returns the text when it has no expressions.
func (b *textBinding) literal() (string, bool) {
	b.buf.Reset()
	for _, p := range b.parts {
		if p.expr != nil {
			return "", false
		}
		b.buf.WriteString(p.text)
	}
	return b.buf.String(), true
}

func (b *textBinding) Key() string { return "text" }
func (b *textBinding) BindingType() binding.Type { return b.typ }

func (b *textBinding) Execute(t *binding.Target) {
	b.buf.Reset()
	for _, p := range b.parts {
		if p.expr == nil {
			b.buf.WriteString(p.text)
			continue
		}
		b.buf.WriteString(expr.ToString(p.expr.Eval(t.Ctx)))
	}
	b.app.setText(t.Element, b.buf.String())
}

// styleBinding assigns an instance style from an expression. Strings are
// parsed like style sheet values; numbers become pixel lengths.
type styleBinding struct {
	key  string
	prop style.PropertyID
	typ  binding.Type
	val  expr.Expression
	last any
}

func (b *styleBinding) Key() string { return b.key }
func (b *styleBinding) BindingType() binding.Type { return b.typ }

func (b *styleBinding) Execute(t *binding.Target) {
	v, err := styleValue(b.prop, b.val.Eval(t.Ctx))
	if err != nil {
		panic(&expr.RuntimeError{Msg: err.Error()})
	}
	if v == nil {
		t.Element.Style.ClearInstance(b.prop)
		b.last = nil
		return
	}
	if v == b.last {
		return
	}
	b.last = v
	t.Element.Style.SetInstance(b.prop, v)
}

func styleValue(p style.PropertyID, v any) (any, error) {
	def := p.Default()
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		return style.ParseValue(p, x)
	case int:
		return numericStyle(p, def, float32(x))
	case float32:
		return numericStyle(p, def, x)
	case float64:
		return numericStyle(p, def, float32(x))
	}
	if reflect.TypeOf(v) != reflect.TypeOf(def) {
		return nil, fmt.Errorf("%s cannot be set from %T", p, v)
	}
	return v, nil
}

func numericStyle(p style.PropertyID, def any, f float32) (any, error) {
	switch def.(type) {
	case style.Measurement:
		return style.Px(f), nil
	case style.FixedLength:
		return style.FixedPx(f), nil
	case style.OffsetMeasurement:
		return style.OffsetPx(f), nil
	case float32:
		return f, nil
	case int:
		return int(f), nil
	}
	return nil, fmt.Errorf("%s cannot be set from a number", p)
}

// attrBinding keeps an element attribute in sync with an expression.
type attrBinding struct {
	key  string
	name string
	typ  binding.Type
	val  expr.Expression
}

func (b *attrBinding) Key() string { return b.key }
func (b *attrBinding) BindingType() binding.Type { return b.typ }

func (b *attrBinding) Execute(t *binding.Target) {
	v := b.val.Eval(t.Ctx)
	if v == nil {
		t.Element.RemoveAttribute(b.name)
		return
	}
	s := expr.ToString(v)
	if cur, ok := t.Element.Attribute(b.name); ok && cur == s {
		return
	}
	t.Element.SetAttribute(b.name, s)
}

// contextBinding refreshes a ctx: variable declared by the element.
type contextBinding struct {
	key string
	id  int
	typ binding.Type
	val expr.Expression
}

func (b *contextBinding) Key() string { return b.key }
func (b *contextBinding) BindingType() binding.Type { return b.typ }

func (b *contextBinding) Execute(t *binding.Target) {
	if n, ok := t.Ctx.Scope.(*binding.Node); ok {
		n.SetVariable(b.id, b.val.Eval(t.Ctx))
	}
}
