package layout

import (
	"loom/pkg/element"
	"loom/pkg/geom"
	"loom/pkg/style"
)

// ClipData is one node of the clip tree. The screen and the view are the
// two implicit clippers; every element with hidden overflow adds one more.
type ClipData struct {
	box         BoxID
	parent      *ClipData
	intersected []geom.Vector2
	aabb        geom.Rect
	culled      bool
	members     []BoxID
}

func (c *ClipData) Parent() *ClipData { return c.parent }

// Culled reports whether the clipper's visible region is empty.
func (c *ClipData) Culled() bool { return c.culled }

// Region is the clipper's visible polygon in screen space, already
// intersected with every ancestor clipper.
func (c *ClipData) Region() []geom.Vector2 { return c.intersected }

func (c *ClipData) Bounds() geom.Rect { return c.aabb }

func (c *ClipData) ContainsPoint(p geom.Vector2) bool {
	return geom.PolygonContains(c.intersected, p)
}

func (r *Runner) newClip(id BoxID) *ClipData {
	var cd *ClipData
	if n := len(r.clipPool); n > 0 {
		cd = r.clipPool[n-1]
		r.clipPool = r.clipPool[:n-1]
	} else {
		cd = &ClipData{}
	}
	cd.box = id
	cd.parent = nil
	cd.culled = false
	cd.members = cd.members[:0]
	cd.intersected = cd.intersected[:0]
	r.clippers = append(r.clippers, cd)
	return cd
}

// assignClipper picks the clipper a box is culled and hit-tested against
// and records it as a member. Never-clipped boxes get none.
func (r *Runner) assignClipper(b style.ClipBehavior, id BoxID) *ClipData {
	var cd *ClipData
	switch b {
	case style.ClipNever:
		r.unclipped = append(r.unclipped, id)
		return nil
	case style.ClipView:
		cd = r.viewClip
	case style.ClipScreen:
		cd = r.screenClip
	default:
		cd = r.clipStack[len(r.clipStack)-1]
	}
	cd.members = append(cd.members, id)
	return cd
}

// clipParent is the clipper a new element clipper nests inside.
func (r *Runner) clipParent(b style.ClipBehavior) *ClipData {
	switch b {
	case style.ClipNever, style.ClipScreen:
		return r.screenClip
	case style.ClipView:
		return r.viewClip
	}
	return r.clipStack[len(r.clipStack)-1]
}

// clipPass intersects every clipper with its parent, culls clippers that end
// up empty, then culls members whose bounds miss their clipper. Survivors
// become queryable.
func (r *Runner) clipPass() {
	screen := geom.Rect{Width: r.screen.Width, Height: r.screen.Height}
	r.screenClip.intersected = append(r.screenClip.intersected[:0], geom.RectPolygon(screen)...)
	r.screenClip.aabb = screen
	r.screenClip.culled = screen.Empty()

	r.poly = append(r.poly[:0], geom.RectPolygon(r.viewport)...)
	r.viewClip.intersected = geom.ClipPolygon(r.poly, r.screenClip.intersected, r.viewClip.intersected)
	r.viewClip.culled = r.screenClip.culled || len(r.viewClip.intersected) == 0
	r.viewClip.aabb = geom.PolygonBounds(r.viewClip.intersected)

	for _, cd := range r.clippers {
		if cd.parent.culled {
			cd.culled = true
			continue
		}
		b := &r.boxes[cd.box]
		if b.width <= 0 || b.height <= 0 {
			cd.culled = true
			continue
		}
		res := &r.results[cd.box]
		bounds := res.Bounds
		if b.style.ClipBounds == style.ClipContentBox {
			cw, ch := b.ContentArea()
			inset := res.Matrix.Multiply(geom.Translation(b.paddingBorderLeft, b.paddingBorderTop))
			bounds = geom.BoundsOf(inset, cw, ch)
		}
		r.poly = append(r.poly[:0], bounds.P0, bounds.P1, bounds.P2, bounds.P3)
		cd.intersected = geom.ClipPolygon(r.poly, cd.parent.intersected, cd.intersected)
		cd.culled = len(cd.intersected) == 0
		if !cd.culled {
			cd.aabb = geom.PolygonBounds(cd.intersected)
		}
	}

	r.queryable = r.queryable[:0]
	r.cullMembers(r.screenClip)
	r.cullMembers(r.viewClip)
	for _, cd := range r.clippers {
		r.cullMembers(cd)
	}
	for _, id := range r.unclipped {
		r.results[id].Culled = false
		r.queryable = append(r.queryable, id)
	}
}

func (r *Runner) cullMembers(cd *ClipData) {
	for _, id := range cd.members {
		res := &r.results[id]
		b := &r.boxes[id]
		if cd.culled || b.width <= 0 || b.height <= 0 || !res.AABB.Overlaps(cd.aabb) {
			res.Culled = true
			continue
		}
		res.Culled = false
		r.queryable = append(r.queryable, id)
	}
}

// Clipper returns the clip node an element is tested against, or nil for
// elements that are never clipped.
func (r *Runner) Clipper(el *element.Element) *ClipData {
	if b := r.Box(el); b != nil {
		return b.clipper
	}
	return nil
}

// QueryPoint appends the elements under p that can receive pointer input,
// in paint order, so the last one is topmost.
func (r *Runner) QueryPoint(p geom.Vector2, out []*element.Element) []*element.Element {
	screen := geom.Rect{Width: r.screen.Width, Height: r.screen.Height}
	if !screen.Contains(p) || r.root.Destroyed() || !r.root.Enabled() {
		return out
	}
	start := len(out)
	for _, id := range r.queryable {
		res := &r.results[id]
		b := &r.boxes[id]
		if res.Culled || b.width <= 0 || b.height <= 0 {
			continue
		}
		inside := true
		for cd := b.clipper; cd != nil; cd = cd.parent {
			if !cd.ContainsPoint(p) {
				inside = false
				break
			}
		}
		if !inside || !res.Bounds.ContainsPoint(p) {
			continue
		}
		if b.style.Visibility == style.Hidden || b.style.PointerEvents == style.PointerEventsNone {
			continue
		}
		out = append(out, b.Element)
	}
	hits := out[start:]
	r.sortByPaint(hits)
	return out
}
