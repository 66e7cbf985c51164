package expr

import (
	"loom/pkg/geom"
	"loom/pkg/style"
	"loom/pkg/types"
)

// CastHandler converts an expression of one type into another.
type CastHandler interface {
	CanHandle(required, actual *types.Type) bool
	Cast(e Expression, required *types.Type) Expression
}

// Cast wraps an expression with a value conversion.
type Cast struct {
	Name  string
	inner Expression
	typ   *types.Type
	fn    func(any) any
}

func (c *Cast) Type() *types.Type { return c.typ }
func (c *Cast) IsConstant() bool { return c.inner.IsConstant() }
func (c *Cast) Eval(ctx *Context) any {
	return c.fn(c.inner.Eval(ctx))
}

// Inner is the expression being converted.
func (c *Cast) Inner() Expression {
	return c.inner
}

// CastFunc is a CastHandler between two kinds.
type CastFunc struct {
	Name string
	From types.Kind
	To   types.Kind
	Fn   func(any) any
}

func (h CastFunc) CanHandle(required, actual *types.Type) bool {
	return required.Kind == h.To && actual.Kind == h.From
}

func (h CastFunc) Cast(e Expression, required *types.Type) Expression {
	return &Cast{Name: h.Name, inner: e, typ: required, fn: h.Fn}
}

var builtinCasts = []CastHandler{
	CastFunc{"ColorToVector4", types.Color, types.Vector4, func(v any) any {
		c := v.(style.Color)
		return geom.Vector4{X: float32(c.R) / 255, Y: float32(c.G) / 255, Z: float32(c.B) / 255, W: float32(c.A) / 255}
	}},
	CastFunc{"DoubleToFloat", types.Double, types.Float, func(v any) any { return float32(v.(float64)) }},
	CastFunc{"DoubleToInt", types.Double, types.Int, func(v any) any { return int(v.(float64)) }},
	CastFunc{"DoubleToMeasurement", types.Double, types.Measurement, func(v any) any { return style.Px(float32(v.(float64))) }},
	CastFunc{"FloatToInt", types.Float, types.Int, func(v any) any { return int(v.(float32)) }},
	CastFunc{"FloatToDouble", types.Float, types.Double, func(v any) any { return float64(v.(float32)) }},
	CastFunc{"FloatToMeasurement", types.Float, types.Measurement, func(v any) any { return style.Px(v.(float32)) }},
	CastFunc{"FloatToFixedLength", types.Float, types.FixedLength, func(v any) any { return style.FixedPx(v.(float32)) }},
	CastFunc{"IntToDouble", types.Int, types.Double, func(v any) any { return float64(v.(int)) }},
	CastFunc{"IntToFloat", types.Int, types.Float, func(v any) any { return float32(v.(int)) }},
	CastFunc{"IntToMeasurement", types.Int, types.Measurement, func(v any) any { return style.Px(float32(v.(int))) }},
	CastFunc{"IntToFixedLength", types.Int, types.FixedLength, func(v any) any { return style.FixedPx(float32(v.(int))) }},
	CastFunc{"Vector2ToVector3", types.Vector2, types.Vector3, func(v any) any {
		p := v.(geom.Vector2)
		return geom.Vector3{X: p.X, Y: p.Y}
	}},
	CastFunc{"Vector3ToVector2", types.Vector3, types.Vector2, func(v any) any {
		p := v.(geom.Vector3)
		return geom.Vector2{X: p.X, Y: p.Y}
	}},
	CastFunc{"Vector4ToColor", types.Vector4, types.Color, func(v any) any {
		p := v.(geom.Vector4)
		return style.Color{R: channel(p.X), G: channel(p.Y), B: channel(p.Z), A: channel(p.W)}
	}},
}

func channel(f float32) uint8 {
	return uint8(min(max(f, 0), 1)*255 + 0.5)
}

// castTo applies the first matching handler, user handlers first. With no
// match e is returned unchanged.
func (c *Compiler) castTo(e Expression, required *types.Type) Expression {
	if required == nil || e.Type() == required || e.Type().AssignableTo(required) {
		return e
	}
	for _, h := range c.casts {
		if h.CanHandle(required, e.Type()) {
			return h.Cast(e, required)
		}
	}
	for _, h := range builtinCasts {
		if h.CanHandle(required, e.Type()) {
			return h.Cast(e, required)
		}
	}
	return e
}
