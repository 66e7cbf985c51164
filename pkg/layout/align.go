package layout

import (
	"loom/pkg/geom"
	"loom/pkg/style"
)

// anchorRect is the rectangle anchors and anchor units refer to, in the
// layout parent's space. Viewport and screen targets depend on the parent's
// screen distance, which is only current during the alignment pass.
func (r *Runner) anchorRect(b *Box) geom.Rect {
	p := r.parentOf(b)
	if p == nil {
		return geom.Rect{Width: r.viewport.Width, Height: r.viewport.Height}
	}
	switch b.style.AnchorTarget {
	case style.AnchorParentContentArea:
		cw, ch := p.ContentArea()
		return geom.Rect{X: p.paddingBorderLeft, Y: p.paddingBorderTop, Width: cw, Height: ch}
	case style.AnchorViewport:
		return geom.Rect{
			X:     r.viewport.X - p.screenDistanceX,
			Y:     r.viewport.Y - p.screenDistanceY,
			Width: r.viewport.Width, Height: r.viewport.Height,
		}
	case style.AnchorScreen:
		return geom.Rect{X: -p.screenDistanceX, Y: -p.screenDistanceY, Width: r.screen.Width, Height: r.screen.Height}
	}
	return geom.Rect{Width: p.width, Height: p.height}
}

// anchorPosition places an ignored box from its anchors. An axis with no
// anchors keeps the layout position.
func (r *Runner) anchorPosition(b *Box) (x, y float32) {
	x, y = b.x, b.y
	c := b.style
	rect := r.anchorRect(b)
	switch {
	case c.AnchorLeft.Unit != style.UnitUnset:
		x = rect.X + r.resolveAnchor(b, c.AnchorLeft, rect.Width, rect.Height, AxisHorizontal) + b.marginLeft
	case c.AnchorRight.Unit != style.UnitUnset:
		x = rect.X + rect.Width - r.resolveAnchor(b, c.AnchorRight, rect.Width, rect.Height, AxisHorizontal) - b.width - b.marginRight
	}
	switch {
	case c.AnchorTop.Unit != style.UnitUnset:
		y = rect.Y + r.resolveAnchor(b, c.AnchorTop, rect.Width, rect.Height, AxisVertical) + b.marginTop
	case c.AnchorBottom.Unit != style.UnitUnset:
		y = rect.Y + rect.Height - r.resolveAnchor(b, c.AnchorBottom, rect.Width, rect.Height, AxisVertical) - b.height - b.marginBottom
	}
	return x, y
}

// alignAxis positions a box against its alignment target. End direction
// measures from the far edge of the origin. The boundary clamps the min edge
// first, then the max edge.
func (r *Runner) alignAxis(b *Box, axis Axis) float32 {
	c := b.style
	p := r.parentOf(b)
	target, origin, offset := c.AlignmentTargetX, c.AlignmentOriginX, c.AlignmentOffsetX
	direction, boundary := c.AlignmentDirectionX, c.AlignmentBoundaryX
	size := b.width
	var parentDistance, viewStart, viewSize, screenSize, mouse float32
	var parentSize, parentStart, parentContent float32
	if axis == AxisVertical {
		target, origin, offset = c.AlignmentTargetY, c.AlignmentOriginY, c.AlignmentOffsetY
		direction, boundary = c.AlignmentDirectionY, c.AlignmentBoundaryY
		size = b.height
		viewStart, viewSize, screenSize, mouse = r.viewport.Y, r.viewport.Height, r.screen.Height, r.mouse.Y
		if p != nil {
			_, ch := p.ContentArea()
			parentDistance, parentSize, parentStart, parentContent = p.screenDistanceY, p.height, p.paddingBorderTop, ch
		}
	} else {
		viewStart, viewSize, screenSize, mouse = r.viewport.X, r.viewport.Width, r.screen.Width, r.mouse.X
		if p != nil {
			cw, _ := p.ContentArea()
			parentDistance, parentSize, parentStart, parentContent = p.screenDistanceX, p.width, p.paddingBorderLeft, cw
		}
	}

	var originBase, originSize float32
	switch target {
	case style.AlignParent:
		originSize = parentSize
	case style.AlignParentContentArea:
		originBase, originSize = parentStart, parentContent
	case style.AlignViewport:
		originBase, originSize = viewStart-parentDistance, viewSize
	case style.AlignScreen:
		originBase, originSize = -parentDistance, screenSize
	case style.AlignMouse:
		originBase = mouse - parentDistance
	}
	originOffset := r.resolveOffset(b, origin, originSize, axis)
	off := r.resolveOffset(b, offset, size, axis)
	var pos float32
	if direction == style.DirectionEnd {
		pos = (originBase + originSize) - (originOffset + off) - size
	} else {
		pos = originBase + originOffset + off
	}

	var lo, hi float32
	switch boundary {
	case style.BoundaryUnset:
		return pos
	case style.BoundaryParent:
		lo, hi = 0, parentSize
	case style.BoundaryParentContentArea:
		lo, hi = parentStart, parentStart+parentContent
	case style.BoundaryView:
		lo, hi = viewStart-parentDistance, viewStart-parentDistance+viewSize
	case style.BoundaryScreen:
		lo, hi = -parentDistance, -parentDistance+screenSize
	case style.BoundaryClipper:
		lo, hi = r.clipperRange(b, axis, parentDistance)
	}
	if pos < lo {
		pos = lo
	}
	if pos+size > hi {
		pos = hi - size
	}
	return pos
}

// clipperRange is the extent of the box's clipper relative to its parent.
func (r *Runner) clipperRange(b *Box, axis Axis, parentDistance float32) (lo, hi float32) {
	cd := b.clipper
	switch {
	case cd == nil || cd == r.screenClip:
		if axis == AxisHorizontal {
			return -parentDistance, r.screen.Width - parentDistance
		}
		return -parentDistance, r.screen.Height - parentDistance
	case cd == r.viewClip:
		if axis == AxisHorizontal {
			return r.viewport.X - parentDistance, r.viewport.Right() - parentDistance
		}
		return r.viewport.Y - parentDistance, r.viewport.Bottom() - parentDistance
	}
	cb := &r.boxes[cd.box]
	if axis == AxisHorizontal {
		lo = cb.screenDistanceX - parentDistance
		return lo, lo + cb.width
	}
	lo = cb.screenDistanceY - parentDistance
	return lo, lo + cb.height
}

// alignPass runs in tree order so parents are final before their children:
// anchors and alignment, then the local and world matrices and bounds.
func (r *Runner) alignPass() {
	for _, id := range r.order {
		b := &r.boxes[id]
		res := &r.results[id]
		c := b.style
		p := r.parentOf(b)

		x, y := b.x, b.y
		if b.Kind == KindRoot {
			x, y = r.viewport.X, r.viewport.Y
		} else if b.Kind == KindTranscludeChildren {
			x, y = 0, 0
		} else {
			if b.ignored() {
				x, y = r.anchorPosition(b)
			}
			if b.Flags&RequireAlignmentHorizontal != 0 {
				x = r.alignAxis(b, AxisHorizontal)
			}
			if b.Flags&RequireAlignmentVertical != 0 {
				y = r.alignAxis(b, AxisVertical)
			}
		}
		b.alignedX, b.alignedY = x, y
		b.screenDistanceX, b.screenDistanceY = x, y
		parentMatrix := geom.Identity
		if p != nil {
			b.screenDistanceX += p.screenDistanceX
			b.screenDistanceY += p.screenDistanceY
			parentMatrix = r.results[b.Parent].Matrix
		}

		local := geom.Translation(x, y)
		scale := geom.Vector2{X: 1, Y: 1}
		var rotation float32
		if c.HasTransform() && b.Kind != KindRoot {
			pos := geom.Vector2{
				X: x + r.resolveOffset(b, c.TransformPositionX, b.width, AxisHorizontal),
				Y: y + r.resolveOffset(b, c.TransformPositionY, b.height, AxisVertical),
			}
			rotation = c.TransformRotation
			scale = geom.Vector2{X: c.TransformScaleX, Y: c.TransformScaleY}
			pivot := geom.Vector2{
				X: r.resolveFixed(b, c.TransformPivotX, b.width),
				Y: r.resolveFixed(b, c.TransformPivotY, b.height),
			}
			if pivot.X != 0 || pivot.Y != 0 {
				pos.X += pivot.X
				pos.Y += pivot.Y
				local = geom.TRS(pos, rotation, scale).Multiply(geom.Translation(-pivot.X, -pivot.Y))
			} else {
				local = geom.TRS(pos, rotation, scale)
			}
		}
		b.Flags &^= RequiresMatrixUpdate
		world := parentMatrix.Multiply(local)

		res.setMatrix(local, world)
		res.setLocalPosition(geom.Vector2{X: x, Y: y})
		res.setScreenPosition(world.Position())
		res.setActualSize(geom.Size{Width: b.width, Height: b.height})
		res.setAllocatedSize(geom.Size{Width: b.allocWidth, Height: b.allocHeight})
		res.setRotation(rotation)
		res.setScale(scale)
		res.setLayer(c.Layer)
		res.setZIndex(c.ZIndex)
		res.setContentOffset(geom.Vector2{})
		res.Margin = geom.Vector4{X: b.marginTop, Y: b.marginRight, Z: b.marginBottom, W: b.marginLeft}
		res.Padding = b.padding
		res.Border = b.border
		res.Bounds = geom.BoundsOf(world, b.width, b.height)
		res.AABB = res.Bounds.AABB()
	}
	r.sortDrawOrder()
}
