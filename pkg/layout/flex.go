package layout

import (
	"slices"

	"loom/pkg/style"
)

// FlexItem is a flow child of a flex box, in display order.
type FlexItem struct {
	Box    BoxID
	Order  int
	Grow   int
	Shrink int

	base   float32
	size   float32
	limits layoutSize
	frozen bool
}

// FlexLine is a run of items sharing one cross-axis track.
type FlexLine struct {
	Start, End int
	MainSize   float32
	CrossSize  float32
}

type flexData struct {
	items []FlexItem
	lines []FlexLine
}

// mainAxis is the axis items flow along. Column flows horizontally.
func mainAxis(c *style.Computed) Axis {
	if c.FlexDirection == style.FlexRow {
		return AxisVertical
	}
	return AxisHorizontal
}

func (r *Runner) flexLayout(id BoxID, axis Axis) {
	r.gatherFlexItems(id)
	if axis == mainAxis(r.boxes[id].style) {
		r.flexMain(id, axis)
	} else {
		r.flexCross(id, axis)
	}
}

// gatherFlexItems collects flow children sorted by order; equal orders keep
// tree order.
func (r *Runner) gatherFlexItems(id BoxID) {
	items := r.boxes[id].flex.items[:0]
	for c := r.boxes[id].FirstChild; c != noBox; c = r.boxes[c].NextSibling {
		cb := &r.boxes[c]
		if cb.ignored() {
			continue
		}
		items = append(items, FlexItem{
			Box:    c,
			Order:  cb.style.FlexOrder,
			Grow:   max(0, cb.style.FlexGrow),
			Shrink: max(0, cb.style.FlexShrink),
		})
	}
	slices.SortStableFunc(items, func(a, b FlexItem) int { return a.Order - b.Order })
	r.boxes[id].flex.items = items
}

// flexMain sizes and places items along the main axis: createFlexLines,
// resolveFlexibleLengths, then distributeMainAxis per line. Items whose fit
// policy decides their size neither grow nor shrink.
func (r *Runner) flexMain(id BoxID, axis Axis) {
	items := r.boxes[id].flex.items
	start, area := contentStart(&r.boxes[id], axis)
	for i := range items {
		s := r.sizes(items[i].Box, axis)
		items[i].limits = s
		items[i].base, items[i].frozen = r.fit(items[i].Box, axis, area-s.marginStart-s.marginEnd, s.clamped(), style.FitNone)
		items[i].size = items[i].base
	}
	b := &r.boxes[id]
	sized := contentSized(b, axis)
	wrap := b.style.FlexWrap == style.Wrap && axis == AxisHorizontal && !sized
	lines := createFlexLines(b.flex.lines[:0], items, area, wrap)
	for li := range lines {
		line := &lines[li]
		run := items[line.Start:line.End]
		free := area - outerSum(run)
		if sized {
			free = 0
		}
		if free > 0 {
			resolveFlexibleLengths(run, free, true)
		} else if free < 0 {
			resolveFlexibleLengths(run, free, false)
		}
		line.MainSize = outerSum(run)
		free = area - line.MainSize
		if sized {
			free = 0
		}
		r.distributeMainAxis(run, axis, start, area, free, b.style.MainAxisAlignment)
	}
	r.boxes[id].flex.lines = lines
}

func outerSum(items []FlexItem) float32 {
	var sum float32
	for i := range items {
		sum += items[i].size + items[i].limits.marginStart + items[i].limits.marginEnd
	}
	return sum
}

func createFlexLines(lines []FlexLine, items []FlexItem, area float32, wrap bool) []FlexLine {
	if !wrap {
		return append(lines, FlexLine{Start: 0, End: len(items)})
	}
	start := 0
	var used float32
	for i := range items {
		outer := items[i].base + items[i].limits.marginStart + items[i].limits.marginEnd
		if i > start && used+outer > area {
			lines = append(lines, FlexLine{Start: start, End: i})
			start, used = i, 0
		}
		used += outer
	}
	return append(lines, FlexLine{Start: start, End: len(items)})
}

// resolveFlexibleLengths hands out positive free space by grow factor, or
// takes back negative space by shrink factor. Items that hit a limit freeze
// and the rest is redistributed.
func resolveFlexibleLengths(items []FlexItem, free float32, grow bool) {
	for free != 0 {
		var total int
		for i := range items {
			if !items[i].frozen {
				if grow {
					total += items[i].Grow
				} else {
					total += items[i].Shrink
				}
			}
		}
		if total == 0 {
			return
		}
		var used float32
		clamped := false
		for i := range items {
			it := &items[i]
			if it.frozen {
				continue
			}
			factor := it.Shrink
			if grow {
				factor = it.Grow
			}
			if factor == 0 {
				continue
			}
			want := it.size + free*float32(factor)/float32(total)
			got := max(it.limits.min, min(want, it.limits.max))
			if got != want {
				it.frozen = true
				clamped = true
			}
			used += got - it.size
			it.size = got
		}
		free -= used
		if !clamped || used == 0 {
			return
		}
	}
}

// distributeMainAxis places one line. area is the content extent each item
// is allocated, less its margins.
func (r *Runner) distributeMainAxis(items []FlexItem, axis Axis, start, area, free float32, align style.MainAxisAlignment) {
	var offset, gap float32
	if free > 0 && len(items) > 0 {
		switch align {
		case style.MainAxisEnd:
			offset = free
		case style.MainAxisCenter:
			offset = free / 2
		case style.MainAxisSpaceBetween:
			if len(items) > 1 {
				gap = free / float32(len(items)-1)
			} else {
				offset = free / 2
			}
		case style.MainAxisSpaceAround:
			gap = free / float32(len(items))
			offset = gap / 2
		}
	}
	pos := start + offset
	for i := range items {
		it := &items[i]
		pos += it.limits.marginStart
		r.applySize(it.Box, axis, pos, area-it.limits.marginStart-it.limits.marginEnd, it.size, style.FitNone)
		pos += it.size + it.limits.marginEnd + gap
	}
}

// flexCross stretches or aligns items inside their line's cross track.
func (r *Runner) flexCross(id BoxID, axis Axis) {
	b := &r.boxes[id]
	items := b.flex.items
	lines := b.flex.lines
	if axis == AxisHorizontal || len(lines) == 0 || lines[len(lines)-1].End != len(items) {
		lines = append(lines[:0], FlexLine{Start: 0, End: len(items)})
	}
	start, area := contentStart(b, axis)
	sized := contentSized(b, axis)
	containerAlign := b.style.CrossAxisAlignment
	for i := range items {
		items[i].limits = r.sizes(items[i].Box, axis)
	}
	pos := start
	for li := range lines {
		line := &lines[li]
		run := items[line.Start:line.End]
		var cross float32
		for i := range run {
			cross = max(cross, run[i].limits.outer())
		}
		if len(lines) == 1 && !sized {
			cross = area
		}
		line.CrossSize = cross
		for i := range run {
			it := &run[i]
			cb := &r.boxes[it.Box]
			align := cb.style.FlexSelfAlignment
			if align == style.CrossAxisUnset {
				align = containerAlign
			}
			s := it.limits
			room := cross - s.marginStart - s.marginEnd
			size := s.clamped()
			at := pos + s.marginStart
			switch align {
			case style.CrossAxisStretch:
				size = max(s.min, min(room, s.max))
			case style.CrossAxisCenter:
				at += (room - size) / 2
			case style.CrossAxisEnd:
				at += room - size
			}
			r.applySize(it.Box, axis, at, room, size, style.FitNone)
		}
		pos += cross
	}
	r.boxes[id].flex.lines = lines
}

func (r *Runner) flexContentSize(id BoxID, axis Axis) float32 {
	b := &r.boxes[id]
	main := mainAxis(b.style)
	if axis == main {
		var sum float32
		for c := b.FirstChild; c != noBox; c = r.boxes[c].NextSibling {
			if !r.boxes[c].ignored() {
				sum += r.sizes(c, axis).outer()
			}
		}
		return sum
	}
	lines := b.flex.lines
	if axis == AxisVertical && len(lines) > 1 && lines[len(lines)-1].End == len(b.flex.items) {
		var sum float32
		for _, line := range lines {
			var cross float32
			for _, it := range b.flex.items[line.Start:line.End] {
				cross = max(cross, r.sizes(it.Box, axis).outer())
			}
			sum += cross
		}
		return sum
	}
	return r.stackContentSize(id, axis)
}
