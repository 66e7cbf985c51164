package layout

import "loom/pkg/geom"

type ChangeFlags uint16

const (
	AllocatedSizeChanged ChangeFlags = 1 << iota
	ActualSizeChanged
	LayerChanged
	ZIndexChanged
	ContentOffsetChanged
	RotationChanged
	ScaleChanged
	LocalPositionChanged
	ScreenPositionChanged
	MatrixChanged
)

// Result is what one frame of layout produced for an element. The change
// flags compare against the previous frame; a setter given an equal value
// clears its flag.
type Result struct {
	AllocatedSize  geom.Size
	ActualSize     geom.Size
	LocalPosition  geom.Vector2
	ScreenPosition geom.Vector2
	ContentOffset  geom.Vector2
	Scale          geom.Vector2
	Rotation       float32
	Layer          int
	ZIndex         int

	Margin  geom.Vector4
	Padding geom.Vector4
	Border  geom.Vector4

	LocalMatrix geom.Matrix
	Matrix      geom.Matrix
	Bounds      geom.OrientedBounds
	AABB        geom.Rect
	Culled      bool

	Changes ChangeFlags
}

// ScreenRect is the untransformed screen rectangle of the border box.
func (r *Result) ScreenRect() geom.Rect {
	return geom.Rect{X: r.ScreenPosition.X, Y: r.ScreenPosition.Y, Width: r.ActualSize.Width, Height: r.ActualSize.Height}
}

// LocalRect is the rectangle in the layout parent's space.
func (r *Result) LocalRect() geom.Rect {
	return geom.Rect{X: r.LocalPosition.X, Y: r.LocalPosition.Y, Width: r.ActualSize.Width, Height: r.ActualSize.Height}
}

func (r *Result) SizeChanged() bool {
	return r.Changes&(AllocatedSizeChanged|ActualSizeChanged) != 0
}

func (r *Result) PositionChanged() bool {
	return r.Changes&(LocalPositionChanged|ScreenPositionChanged) != 0
}

func (r *Result) TransformChanged() bool {
	return r.Changes&(RotationChanged|ScaleChanged|MatrixChanged) != 0
}

func (r *Result) flag(f ChangeFlags, changed bool) {
	if changed {
		r.Changes |= f
	} else {
		r.Changes &^= f
	}
}

func (r *Result) setAllocatedSize(s geom.Size) {
	r.flag(AllocatedSizeChanged, r.AllocatedSize != s)
	r.AllocatedSize = s
}

func (r *Result) setActualSize(s geom.Size) {
	r.flag(ActualSizeChanged, r.ActualSize != s)
	r.ActualSize = s
}

func (r *Result) setLayer(v int) {
	r.flag(LayerChanged, r.Layer != v)
	r.Layer = v
}

func (r *Result) setZIndex(v int) {
	r.flag(ZIndexChanged, r.ZIndex != v)
	r.ZIndex = v
}

func (r *Result) setContentOffset(v geom.Vector2) {
	r.flag(ContentOffsetChanged, r.ContentOffset != v)
	r.ContentOffset = v
}

func (r *Result) setRotation(v float32) {
	r.flag(RotationChanged, r.Rotation != v)
	r.Rotation = v
}

func (r *Result) setScale(v geom.Vector2) {
	r.flag(ScaleChanged, r.Scale != v)
	r.Scale = v
}

func (r *Result) setLocalPosition(v geom.Vector2) {
	r.flag(LocalPositionChanged, r.LocalPosition != v)
	r.LocalPosition = v
}

func (r *Result) setScreenPosition(v geom.Vector2) {
	r.flag(ScreenPositionChanged, r.ScreenPosition != v)
	r.ScreenPosition = v
}

func (r *Result) setMatrix(local, world geom.Matrix) {
	r.flag(MatrixChanged, r.Matrix != world)
	r.LocalMatrix = local
	r.Matrix = world
}
