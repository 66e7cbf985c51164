package render

import (
	"image"
	"io"
	"math"

	"github.com/fogleman/gg"

	"loom/pkg/element"
	"loom/pkg/geom"
	"loom/pkg/layout"
	"loom/pkg/style"
	"loom/pkg/text"
)

// Renderer paints the latest layout into an RGBA raster. Elements are drawn
// in the runner's paint order: background, then border, then text, each in
// the element's own transformed space and clipped to its clipper.
type Renderer struct {
	context *gg.Context
	runner  *layout.Runner
	text    *text.Measurer
	order   []*element.Element

	// Background fills the raster before anything is drawn.
	Background style.Color
}

func NewRenderer(width, height int, runner *layout.Runner, m *text.Measurer) *Renderer {
	if m == nil {
		m = text.NewMeasurer()
	}
	return &Renderer{
		context:    gg.NewContext(width, height),
		runner:     runner,
		text:       m,
		Background: style.Color{R: 255, G: 255, B: 255, A: 255},
	}
}

func (r *Renderer) Render() {
	dc := r.context
	dc.ResetClip()
	dc.Identity()
	setColor(dc, r.Background)
	dc.Clear()

	r.order = r.runner.RenderOrder(r.order[:0])
	for _, el := range r.order {
		r.drawElement(el)
	}
	dc.ResetClip()
}

func (r *Renderer) Image() image.Image { return r.context.Image() }

func (r *Renderer) EncodePNG(w io.Writer) error { return r.context.EncodePNG(w) }

func (r *Renderer) SavePNG(path string) error { return r.context.SavePNG(path) }

func (r *Renderer) drawElement(el *element.Element) {
	res := r.runner.Result(el)
	box := r.runner.Box(el)
	if res == nil || box == nil {
		return
	}
	c := box.Style()
	if c == nil || c.Visibility == style.Hidden {
		return
	}
	w, h := res.ActualSize.Width, res.ActualSize.Height
	if w <= 0 || h <= 0 {
		return
	}

	dc := r.context
	r.clip(el)
	dc.Push()
	defer dc.Pop()
	applyMatrix(dc, res.Matrix)

	if !c.BackgroundColor.IsTransparent() {
		setColor(dc, c.BackgroundColor)
		dc.DrawRectangle(0, 0, float64(w), float64(h))
		dc.Fill()
	}
	r.drawBorder(res, c.BorderColor, w, h)
	if el.TextContent != "" && !c.TextColor.IsTransparent() {
		r.drawText(el.TextContent, res, box.EmSize(), c.TextColor)
	}
}

// drawBorder fills the four edges; Border is top, right, bottom, left.
func (r *Renderer) drawBorder(res *layout.Result, col style.Color, w, h float32) {
	b := res.Border
	if col.IsTransparent() || (b.X <= 0 && b.Y <= 0 && b.Z <= 0 && b.W <= 0) {
		return
	}
	dc := r.context
	setColor(dc, col)
	fill := func(x, y, w, h float32) {
		if w > 0 && h > 0 {
			dc.DrawRectangle(float64(x), float64(y), float64(w), float64(h))
		}
	}
	fill(0, 0, w, b.X)
	fill(0, h-b.Z, w, b.Z)
	fill(0, b.X, b.W, h-b.X-b.Z)
	fill(w-b.Y, b.X, b.Y, h-b.X-b.Z)
	dc.Fill()
}

func (r *Renderer) drawText(s string, res *layout.Result, size float32, col style.Color) {
	dc := r.context
	left := res.Border.W + res.Padding.W
	top := res.Border.X + res.Padding.X
	width := res.ActualSize.Width - left - res.Border.Y - res.Padding.Y

	face := r.text.Face(size)
	dc.SetFontFace(face)
	setColor(dc, col)
	ascent := float64(face.Metrics().Ascent) / 64
	lh := float64(r.text.LineHeight(size))
	for i, line := range r.text.Lines(s, size, width+0.5) {
		dc.DrawString(line, float64(left), float64(top)+ascent+float64(i)*lh)
	}
}

// clip restricts drawing to the visible region of el's clipper.
func (r *Renderer) clip(el *element.Element) {
	dc := r.context
	dc.ResetClip()
	cd := r.runner.Clipper(el)
	if cd == nil {
		return
	}
	region := cd.Region()
	if len(region) < 3 {
		return
	}
	dc.NewSubPath()
	for _, p := range region {
		dc.LineTo(float64(p.X), float64(p.Y))
	}
	dc.ClosePath()
	dc.Clip()
}

// applyMatrix loads m into the context as translate, rotate, scale. Exact
// for matrices without shear.
func applyMatrix(dc *gg.Context, m geom.Matrix) {
	dc.Translate(float64(m.M4), float64(m.M5))
	if m.M0 == 1 && m.M1 == 0 && m.M2 == 0 && m.M3 == 1 {
		return
	}
	sx := math.Hypot(float64(m.M0), float64(m.M1))
	if sx == 0 {
		dc.Scale(0, 0)
		return
	}
	det := float64(m.M0)*float64(m.M3) - float64(m.M1)*float64(m.M2)
	dc.Rotate(math.Atan2(float64(m.M1), float64(m.M0)))
	dc.Scale(sx, det/sx)
}

func setColor(dc *gg.Context, c style.Color) {
	dc.SetRGBA255(int(c.R), int(c.G), int(c.B), int(c.A))
}
