package layout

import "loom/pkg/style"

// contentStart returns where a box's content area begins on axis and how
// big it is.
func contentStart(b *Box, axis Axis) (start, size float32) {
	cw, ch := b.ContentArea()
	if axis == AxisHorizontal {
		return b.paddingBorderLeft, cw
	}
	return b.paddingBorderTop, ch
}

func contentSized(b *Box, axis Axis) bool {
	if axis == AxisHorizontal {
		return b.Flags&ContentSizedWidth != 0
	}
	return b.Flags&ContentSizedHeight != 0
}

// stackLayout places every child at the start of the content area, on top
// of each other. Normal and Root boxes lay out this way.
func (r *Runner) stackLayout(id BoxID, axis Axis) {
	start, area := contentStart(&r.boxes[id], axis)
	for c := r.boxes[id].FirstChild; c != noBox; c = r.boxes[c].NextSibling {
		if r.boxes[c].ignored() {
			continue
		}
		s := r.sizes(c, axis)
		r.applySize(c, axis, start+s.marginStart, area-s.marginStart-s.marginEnd, s.clamped(), style.FitNone)
	}
}

func (r *Runner) stackContentSize(id BoxID, axis Axis) float32 {
	var size float32
	for c := r.boxes[id].FirstChild; c != noBox; c = r.boxes[c].NextSibling {
		if r.boxes[c].ignored() {
			continue
		}
		size = max(size, r.sizes(c, axis).outer())
	}
	return size
}

// ignoredLayout sizes children that sit outside their parent's flow. Their
// position comes from anchors during alignment; both anchors on one axis
// also fix the size.
func (r *Runner) ignoredLayout(id BoxID, axis Axis) {
	for c := r.boxes[id].FirstChild; c != noBox; c = r.boxes[c].NextSibling {
		cb := &r.boxes[c]
		if !cb.ignored() {
			continue
		}
		s := r.sizes(c, axis)
		cb = &r.boxes[c]
		anchor := r.anchorRect(cb)
		size := s.clamped()
		allocated := anchor.Width
		startAnchor, endAnchor := cb.style.AnchorLeft, cb.style.AnchorRight
		if axis == AxisVertical {
			allocated = anchor.Height
			startAnchor, endAnchor = cb.style.AnchorTop, cb.style.AnchorBottom
		}
		if startAnchor.Unit != style.UnitUnset && endAnchor.Unit != style.UnitUnset {
			lo := r.resolveAnchor(cb, startAnchor, anchor.Width, anchor.Height, axis)
			hi := allocated - r.resolveAnchor(cb, endAnchor, anchor.Width, anchor.Height, axis)
			size = max(0, hi-lo-s.marginStart-s.marginEnd)
		}
		r.applySize(c, axis, s.marginStart, allocated, size, style.FitNone)
	}
}
