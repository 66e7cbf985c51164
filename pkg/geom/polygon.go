package geom

// OrientedBounds holds the four transformed corners of a box in clockwise
// order starting at the local origin.
type OrientedBounds struct {
	P0, P1, P2, P3 Vector2
}

// BoundsOf transforms the rectangle (0, 0, w, h) by m.
func BoundsOf(m Matrix, w, h float32) OrientedBounds {
	return OrientedBounds{
		P0: m.Transform(Vector2{0, 0}),
		P1: m.Transform(Vector2{w, 0}),
		P2: m.Transform(Vector2{w, h}),
		P3: m.Transform(Vector2{0, h}),
	}
}

// AABB is the axis-aligned envelope of the quad.
func (b OrientedBounds) AABB() Rect {
	minX := min(b.P0.X, b.P1.X, b.P2.X, b.P3.X)
	minY := min(b.P0.Y, b.P1.Y, b.P2.Y, b.P3.Y)
	maxX := max(b.P0.X, b.P1.X, b.P2.X, b.P3.X)
	maxY := max(b.P0.Y, b.P1.Y, b.P2.Y, b.P3.Y)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

func (b OrientedBounds) Points() []Vector2 {
	return []Vector2{b.P0, b.P1, b.P2, b.P3}
}

// ContainsPoint works for any convex quad regardless of winding.
func (b OrientedBounds) ContainsPoint(p Vector2) bool {
	return PolygonContains([]Vector2{b.P0, b.P1, b.P2, b.P3}, p)
}

func RectPolygon(r Rect) []Vector2 {
	return []Vector2{
		{r.X, r.Y},
		{r.X + r.Width, r.Y},
		{r.X + r.Width, r.Y + r.Height},
		{r.X, r.Y + r.Height},
	}
}

// PolygonContains tests p against a convex polygon. Points on an edge count
// as inside.
func PolygonContains(poly []Vector2, p Vector2) bool {
	if len(poly) < 3 {
		return false
	}
	var sign float32
	for i := range poly {
		a := poly[i]
		b := poly[(i+1)%len(poly)]
		c := cross(a, b, p)
		if c == 0 {
			continue
		}
		if sign == 0 {
			sign = c
		} else if (c > 0) != (sign > 0) {
			return false
		}
	}
	return true
}

// PolygonBounds returns the envelope of poly.
func PolygonBounds(poly []Vector2) Rect {
	if len(poly) == 0 {
		return Rect{}
	}
	minX, minY := poly[0].X, poly[0].Y
	maxX, maxY := minX, minY
	for _, p := range poly[1:] {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// ClipPolygon intersects subject with the convex polygon clip using
// Sutherland-Hodgman. The result is written into out (which may be nil) and
// returned. An empty result means the polygons do not overlap.
func ClipPolygon(subject, clip []Vector2, out []Vector2) []Vector2 {
	out = out[:0]
	if len(subject) < 3 || len(clip) < 3 {
		return out
	}
	orientation := polygonOrientation(clip)
	input := append([]Vector2(nil), subject...)
	for i := range clip {
		a := clip[i]
		b := clip[(i+1)%len(clip)]
		output := out[:0]
		for j := range input {
			cur := input[j]
			prev := input[(j+len(input)-1)%len(input)]
			curIn := cross(a, b, cur)*orientation >= 0
			prevIn := cross(a, b, prev)*orientation >= 0
			if curIn {
				if !prevIn {
					output = append(output, intersect(prev, cur, a, b))
				}
				output = append(output, cur)
			} else if prevIn {
				output = append(output, intersect(prev, cur, a, b))
			}
		}
		if len(output) == 0 {
			return output
		}
		input = append(input[:0], output...)
		out = output
	}
	if polygonArea(out) == 0 {
		return out[:0]
	}
	return out
}

func cross(a, b, p Vector2) float32 {
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}

func polygonOrientation(poly []Vector2) float32 {
	if polygonArea(poly) < 0 {
		return -1
	}
	return 1
}

func polygonArea(poly []Vector2) float32 {
	var area float32
	for i := range poly {
		a := poly[i]
		b := poly[(i+1)%len(poly)]
		area += a.X*b.Y - b.X*a.Y
	}
	return area / 2
}

func intersect(p1, p2, a, b Vector2) Vector2 {
	dx1, dy1 := p2.X-p1.X, p2.Y-p1.Y
	dx2, dy2 := b.X-a.X, b.Y-a.Y
	den := dx1*dy2 - dy1*dx2
	if den == 0 {
		return p1
	}
	t := ((a.X-p1.X)*dy2 - (a.Y-p1.Y)*dx2) / den
	return Vector2{p1.X + t*dx1, p1.Y + t*dy1}
}
