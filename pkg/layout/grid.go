package layout

import "loom/pkg/style"

// Grid boxes place flow children row by row into equal-width columns. Row
// height is the tallest cell in the row.

func (r *Runner) gridColumns(b *Box) int {
	return max(1, b.style.GridColumnCount)
}

func (r *Runner) gridLayout(id BoxID, axis Axis) {
	if axis == AxisHorizontal {
		r.gridColumnsLayout(id)
	} else {
		r.gridRowsLayout(id)
	}
}

func (r *Runner) gridColumnsLayout(id BoxID) {
	b := &r.boxes[id]
	n := r.gridColumns(b)
	start, area := contentStart(b, AxisHorizontal)
	gap := r.resolveFixed(b, b.style.GridColumnGap, area)
	var colWidth float32
	if contentSized(b, AxisHorizontal) {
		colWidth = r.gridCellWidth(id)
	} else {
		colWidth = max(0, (area-gap*float32(n-1))/float32(n))
	}
	i := 0
	for c := b.FirstChild; c != noBox; c = r.boxes[c].NextSibling {
		if r.boxes[c].ignored() {
			continue
		}
		s := r.widths(c)
		col := i % n
		x := start + float32(col)*(colWidth+gap) + s.marginStart
		room := colWidth - s.marginStart - s.marginEnd
		r.applySize(c, AxisHorizontal, x, room, s.clamped(), style.FitParent)
		i++
	}
}

func (r *Runner) gridRowsLayout(id BoxID) {
	b := &r.boxes[id]
	n := r.gridColumns(b)
	start, area := contentStart(b, AxisVertical)
	gap := r.resolveFixed(b, b.style.GridRowGap, area)
	y := start
	row := r.gridRow(b.FirstChild)
	for row != noBox {
		height, next := r.gridRowHeight(row, n)
		c := row
		for k := 0; k < n && c != noBox; c = r.boxes[c].NextSibling {
			if r.boxes[c].ignored() {
				continue
			}
			s := r.heights(c)
			r.applySize(c, AxisVertical, y+s.marginStart, height-s.marginStart-s.marginEnd, s.clamped(), style.FitNone)
			k++
		}
		y += height
		if next != noBox {
			y += gap
		}
		row = next
	}
}

// gridRow skips ignored boxes so c starts a row.
func (r *Runner) gridRow(c BoxID) BoxID {
	for c != noBox && r.boxes[c].ignored() {
		c = r.boxes[c].NextSibling
	}
	return c
}

// gridRowHeight measures the row starting at c and returns the first box of
// the following row.
func (r *Runner) gridRowHeight(c BoxID, n int) (float32, BoxID) {
	var height float32
	k := 0
	for ; c != noBox && k < n; c = r.boxes[c].NextSibling {
		if r.boxes[c].ignored() {
			continue
		}
		height = max(height, r.heights(c).outer())
		k++
	}
	return height, r.gridRow(c)
}

func (r *Runner) gridCellWidth(id BoxID) float32 {
	var w float32
	for c := r.boxes[id].FirstChild; c != noBox; c = r.boxes[c].NextSibling {
		if !r.boxes[c].ignored() {
			w = max(w, r.widths(c).outer())
		}
	}
	return w
}

func (r *Runner) gridContentWidth(id BoxID) float32 {
	b := &r.boxes[id]
	n := r.gridColumns(b)
	count := 0
	for c := b.FirstChild; c != noBox; c = r.boxes[c].NextSibling {
		if !r.boxes[c].ignored() {
			count++
		}
	}
	if count == 0 {
		return 0
	}
	cols := min(n, count)
	gap := r.resolveFixed(b, b.style.GridColumnGap, 0)
	return float32(cols)*r.gridCellWidth(id) + gap*float32(cols-1)
}

func (r *Runner) gridContentHeight(id BoxID) float32 {
	b := &r.boxes[id]
	n := r.gridColumns(b)
	gap := r.resolveFixed(b, b.style.GridRowGap, 0)
	var h float32
	rows := 0
	for row := r.gridRow(b.FirstChild); row != noBox; {
		height, next := r.gridRowHeight(row, n)
		h += height
		rows++
		row = next
	}
	if rows > 1 {
		h += gap * float32(rows-1)
	}
	return h
}
