package layout

import (
	"fmt"

	"loom/pkg/geom"
	"loom/pkg/style"
)

// TextMeasurer sizes the text of leaf elements. maxWidth is the width text
// may wrap at; zero or less means unconstrained.
type TextMeasurer interface {
	MeasureText(text string, fontSize, maxWidth float32) (width, height float32)
}

// parentOf is the box percentages resolve against, or nil for the root.
func (r *Runner) parentOf(b *Box) *Box {
	if b.Parent == noBox {
		return nil
	}
	return &r.boxes[b.Parent]
}

// parentSize returns the layout parent's border-box and content-area size on
// axis. ok is false when the parent is content sized on that axis; those
// units resolve to 0 there.
func (r *Runner) parentSize(b *Box, axis Axis) (size, content float32, ok bool) {
	p := r.parentOf(b)
	if p == nil {
		if axis == AxisHorizontal {
			return r.viewport.Width, r.viewport.Width, true
		}
		return r.viewport.Height, r.viewport.Height, true
	}
	cw, ch := p.ContentArea()
	if axis == AxisHorizontal {
		return p.width, cw, p.Flags&ContentSizedWidth == 0
	}
	return p.height, ch, p.Flags&ContentSizedHeight == 0
}

// resolveMeasurement converts a size measurement to pixels. Content sizes
// include the box's padding and border.
func (r *Runner) resolveMeasurement(id BoxID, m style.Measurement, axis Axis) float32 {
	b := &r.boxes[id]
	switch m.Unit {
	case style.UnitPixel:
		return m.Value
	case style.UnitContent:
		if axis == AxisHorizontal {
			return r.contentWidth(id)*m.Value + b.paddingBorderLeft + b.paddingBorderRight
		}
		return r.contentHeight(id)*m.Value + b.paddingBorderTop + b.paddingBorderBottom
	case style.UnitPercent, style.UnitParentSize:
		size, _, ok := r.parentSize(b, axis)
		if !ok {
			return 0
		}
		return size * m.Value
	case style.UnitParentContentArea:
		_, content, ok := r.parentSize(b, axis)
		if !ok {
			return 0
		}
		return content * m.Value
	case style.UnitViewportWidth:
		return r.viewport.Width * m.Value / 100
	case style.UnitViewportHeight:
		return r.viewport.Height * m.Value / 100
	case style.UnitEm:
		return b.emSize * m.Value
	}
	panic(fmt.Sprintf("layout: unit %s is not valid for a size", m.Unit))
}

// resolveFixed converts a fixed length; Percent is a fraction of rel.
func (r *Runner) resolveFixed(b *Box, f style.FixedLength, rel float32) float32 {
	switch f.Unit {
	case style.UnitUnset:
		return 0
	case style.UnitPixel:
		return f.Value
	case style.UnitPercent:
		return f.Value * rel
	case style.UnitViewportWidth:
		return r.viewport.Width * f.Value / 100
	case style.UnitViewportHeight:
		return r.viewport.Height * f.Value / 100
	case style.UnitEm:
		return b.emSize * f.Value
	}
	panic(fmt.Sprintf("layout: unit %s is not valid for a fixed length", f.Unit))
}

// resolveOffset converts an offset; Percent is a fraction of rel, the
// parent units use the layout parent and the anchor units use the anchor
// rectangle.
func (r *Runner) resolveOffset(b *Box, o style.OffsetMeasurement, rel float32, axis Axis) float32 {
	switch o.Unit {
	case style.UnitUnset:
		return 0
	case style.UnitPixel:
		return o.Value
	case style.UnitPercent:
		return o.Value * rel
	case style.UnitParentContentArea:
		_, content, ok := r.parentSize(b, axis)
		if !ok {
			return 0
		}
		return content * o.Value
	case style.UnitViewportWidth:
		return r.viewport.Width * o.Value / 100
	case style.UnitViewportHeight:
		return r.viewport.Height * o.Value / 100
	case style.UnitEm:
		return b.emSize * o.Value
	case style.UnitAnchorWidth:
		return r.anchorRect(b).Width * o.Value
	case style.UnitAnchorHeight:
		return r.anchorRect(b).Height * o.Value
	}
	panic(fmt.Sprintf("layout: unit %s is not valid for an offset", o.Unit))
}

// resolveAnchor converts an anchor length against the anchor rectangle.
func (r *Runner) resolveAnchor(b *Box, f style.FixedLength, w, h float32, axis Axis) float32 {
	rel := w
	if axis == AxisVertical {
		rel = h
	}
	switch f.Unit {
	case style.UnitAnchorWidth:
		return w * f.Value
	case style.UnitAnchorHeight:
		return h * f.Value
	}
	return r.resolveFixed(b, f, rel)
}

// resolveSpacing fills in padding, border, margin and em size. Percent
// spacing refers to the parent's width on both axes.
func (r *Runner) resolveSpacing(id BoxID) {
	b := &r.boxes[id]
	c := b.style
	parentEm := float32(18)
	if p := r.parentOf(b); p != nil {
		parentEm = p.emSize
	}
	switch c.FontSize.Unit {
	case style.UnitEm, style.UnitPercent:
		b.emSize = parentEm * c.FontSize.Value
	case style.UnitUnset:
		b.emSize = parentEm
	default:
		b.emSize = r.resolveFixed(b, c.FontSize, parentEm)
	}
	rel, _, ok := r.parentSize(b, AxisHorizontal)
	if !ok {
		rel = 0
	}
	b.padding = geom.Vector4{
		X: r.resolveFixed(b, c.Padding.Top, rel), Y: r.resolveFixed(b, c.Padding.Right, rel),
		Z: r.resolveFixed(b, c.Padding.Bottom, rel), W: r.resolveFixed(b, c.Padding.Left, rel),
	}
	b.border = geom.Vector4{
		X: r.resolveFixed(b, c.Border.Top, rel), Y: r.resolveFixed(b, c.Border.Right, rel),
		Z: r.resolveFixed(b, c.Border.Bottom, rel), W: r.resolveFixed(b, c.Border.Left, rel),
	}
	b.paddingBorderTop = b.padding.X + b.border.X
	b.paddingBorderRight = b.padding.Y + b.border.Y
	b.paddingBorderBottom = b.padding.Z + b.border.Z
	b.paddingBorderLeft = b.padding.W + b.border.W
	b.marginLeft = r.resolveFixed(b, c.Margin.Left, rel)
	b.marginRight = r.resolveFixed(b, c.Margin.Right, rel)
	b.marginTop = r.resolveFixed(b, c.Margin.Top, rel)
	b.marginBottom = r.resolveFixed(b, c.Margin.Bottom, rel)
}

// widths returns the horizontal size constraints of a box.
func (r *Runner) widths(id BoxID) layoutSize {
	r.resolveSpacing(id)
	b := &r.boxes[id]
	c := b.style
	return layoutSize{
		min:         r.resolveMeasurement(id, c.MinWidth, AxisHorizontal),
		max:         r.resolveMeasurement(id, c.MaxWidth, AxisHorizontal),
		preferred:   r.resolveMeasurement(id, c.PreferredWidth, AxisHorizontal),
		marginStart: b.marginLeft,
		marginEnd:   b.marginRight,
	}
}

// heights returns the vertical size constraints. Widths must be final.
func (r *Runner) heights(id BoxID) layoutSize {
	b := &r.boxes[id]
	c := b.style
	return layoutSize{
		min:         r.resolveMeasurement(id, c.MinHeight, AxisVertical),
		max:         r.resolveMeasurement(id, c.MaxHeight, AxisVertical),
		preferred:   r.resolveMeasurement(id, c.PreferredHeight, AxisVertical),
		marginStart: b.marginTop,
		marginEnd:   b.marginBottom,
	}
}

func (r *Runner) sizes(id BoxID, axis Axis) layoutSize {
	if axis == AxisHorizontal {
		return r.widths(id)
	}
	return r.heights(id)
}

// contentWidth is the width of a box's children without its own padding or
// border. It is cached until the box is marked dirty.
func (r *Runner) contentWidth(id BoxID) float32 {
	b := &r.boxes[id]
	if b.Flags&contentWidthValid != 0 {
		return b.contentWidthCache
	}
	var w float32
	switch {
	case b.FirstChild == noBox && b.Element.TextContent != "":
		if r.measurer != nil {
			w, _ = r.measurer.MeasureText(b.Element.TextContent, b.emSize, 0)
		}
	case b.Kind == KindFlex:
		w = r.flexContentSize(id, AxisHorizontal)
	case b.Kind == KindGrid:
		w = r.gridContentWidth(id)
	default:
		w = r.stackContentSize(id, AxisHorizontal)
	}
	b = &r.boxes[id]
	b.contentWidthCache = w
	b.Flags |= contentWidthValid
	return w
}

// contentHeight is contentWidth's vertical counterpart. It depends on the
// final width, so the horizontal pass must have run.
func (r *Runner) contentHeight(id BoxID) float32 {
	b := &r.boxes[id]
	if b.Flags&contentHeightValid != 0 {
		return b.contentHeightCache
	}
	var h float32
	switch {
	case b.FirstChild == noBox && b.Element.TextContent != "":
		if r.measurer != nil {
			cw, _ := b.ContentArea()
			_, h = r.measurer.MeasureText(b.Element.TextContent, b.emSize, cw)
		}
	case b.Kind == KindFlex:
		h = r.flexContentSize(id, AxisVertical)
	case b.Kind == KindGrid:
		h = r.gridContentHeight(id)
	default:
		h = r.stackContentSize(id, AxisVertical)
	}
	b = &r.boxes[id]
	b.contentHeightCache = h
	b.Flags |= contentHeightValid
	return h
}

// fit resolves a box's fit policy on axis: Parent takes the allocated size
// and Content the measured children plus padding and border. It reports
// whether the policy replaced size.
func (r *Runner) fit(id BoxID, axis Axis, allocated, size float32, fallback style.Fit) (float32, bool) {
	b := &r.boxes[id]
	fit := b.style.FitHorizontal
	if axis == AxisVertical {
		fit = b.style.FitVertical
	}
	if fit == style.FitUnset {
		fit = fallback
	}
	fitted := true
	switch fit {
	case style.FitParent:
		size = allocated
	case style.FitContent:
		if axis == AxisHorizontal {
			size = r.contentWidth(id) + b.paddingBorderLeft + b.paddingBorderRight
		} else {
			size = r.contentHeight(id) + b.paddingBorderTop + b.paddingBorderBottom
		}
	default:
		fitted = false
	}
	return max(0, size), fitted
}

// applySize writes a child's final size on one axis, honoring its fit
// policy, and marks it for layout when the size changed.
func (r *Runner) applySize(id BoxID, axis Axis, pos, allocated, size float32, fallback style.Fit) {
	size, _ = r.fit(id, axis, allocated, size, fallback)
	b := &r.boxes[id]
	if axis == AxisHorizontal {
		b.x = pos
		b.allocWidth = allocated
		if b.width != size {
			b.width = size
			b.Flags |= requireLayout
			b.Flags &^= contentHeightValid
			r.widthChanged(id)
		}
		return
	}
	b.y = pos
	b.allocHeight = allocated
	if b.height != size {
		b.height = size
		b.Flags |= RequireLayoutVertical
	}
}
