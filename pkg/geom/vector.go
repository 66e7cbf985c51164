package geom

import "math"

type Vector2 struct {
	X, Y float32
}

type Vector3 struct {
	X, Y, Z float32
}

type Vector4 struct {
	X, Y, Z, W float32
}

// Rect is an axis-aligned rectangle in pixels.
type Rect struct {
	X, Y          float32
	Width, Height float32
}

type Size struct {
	Width, Height float32
}

func (r Rect) Right() float32 { return r.X + r.Width }
func (r Rect) Bottom() float32 { return r.Y + r.Height }

// Contains reports whether p lies inside r, edges inclusive.
func (r Rect) Contains(p Vector2) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Overlaps reports whether two rectangles share any area or edge.
func (r Rect) Overlaps(o Rect) bool {
	return r.X <= o.X+o.Width && o.X <= r.X+r.Width && r.Y <= o.Y+o.Height && o.Y <= r.Y+r.Height
}

func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Degrees to radians.
func Radians(deg float32) float32 {
	return deg * (math.Pi / 180)
}
