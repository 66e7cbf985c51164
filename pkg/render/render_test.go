package render

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"testing"

	"loom/pkg/app"
	"loom/pkg/element"
	"loom/pkg/style"
	"loom/pkg/text"
)

const boxes = `<Template>
    <Group x-id="red" style.PreferredWidth="40px" style.PreferredHeight="40px"
        style.BackgroundColor="#ff0000" style.BorderLeft="4px" style.BorderColor="#0000ff"/>
    <Group x-id="green" style.PreferredWidth="20px" style.PreferredHeight="20px" style.BackgroundColor="#00ff00"/>
    <Group x-id="hidden" style.PreferredWidth="20px" style.PreferredHeight="20px"
        style.BackgroundColor="#0000ff" style.Visibility="Hidden"/>
    <Text x-id="label" style.TextColor="#000000">Hello</Text>
</Template>`

func render(t *testing.T) (*app.Application, *Renderer) {
	t.Helper()
	m := text.NewMeasurer()
	a := app.New(app.WithViewport(200, 100), app.WithTextMeasurer(m))
	if err := a.AddTemplate("Boxes.xml", boxes); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := a.Mount("Boxes", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := a.Update(1); n != 0 {
		t.Fatalf("expected no binding failures, got %d", n)
	}
	r := NewRenderer(200, 100, a.Layout(), m)
	r.Render()
	return a, r
}

func pixel(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func find(a *app.Application, id string) *element.Element {
	var found *element.Element
	element.Walk(a.View(), func(el *element.Element) bool {
		if v, ok := el.Attribute("x-id"); ok && v == id {
			found = el
		}
		return found == nil
	})
	return found
}

func TestRenderBoxes(t *testing.T) {
	_, r := render(t)
	img := r.Image()

	for _, tc := range []struct {
		name string
		x, y int
		want color.RGBA
	}{
		{"background", 20, 20, color.RGBA{255, 0, 0, 255}},
		{"left border", 1, 20, color.RGBA{0, 0, 255, 255}},
		{"next sibling", 50, 10, color.RGBA{0, 255, 0, 255}},
		{"hidden sibling", 70, 10, color.RGBA{255, 255, 255, 255}},
		{"empty space", 150, 90, color.RGBA{255, 255, 255, 255}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := pixel(img, tc.x, tc.y); got != tc.want {
				t.Errorf("pixel(%d, %d) = %v, want %v", tc.x, tc.y, got, tc.want)
			}
		})
	}
}

func TestRenderText(t *testing.T) {
	a, r := render(t)
	label := find(a, "label")
	if label == nil {
		t.Fatal("label not found")
	}
	rect := a.Layout().Result(label).ScreenRect()
	if rect.Width <= 0 || rect.Height <= 0 {
		t.Fatalf("label has no size: %v", rect)
	}
	img := r.Image()
	inked := 0
	for y := int(rect.Y); y < int(rect.Y+rect.Height); y++ {
		for x := int(rect.X); x < int(rect.X+rect.Width); x++ {
			if p := pixel(img, x, y); p.R < 128 {
				inked++
			}
		}
	}
	if inked == 0 {
		t.Error("expected text pixels inside the label")
	}
}

func TestEncodePNG(t *testing.T) {
	_, r := render(t)
	var buf bytes.Buffer
	if err := r.EncodePNG(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 100 {
		t.Errorf("size = %v, want 200x100", b.Size())
	}
}

func TestCompareFindsRepaintedBox(t *testing.T) {
	a, r := render(t)
	before := image.NewRGBA(r.Image().Bounds())
	draw.Draw(before, before.Bounds(), r.Image(), image.Point{}, draw.Src)

	d, err := Compare(r.Image(), before, DiffOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Match || d.DifferentPixels != 0 {
		t.Errorf("expected identical rasters to match, got %+v", d)
	}

	find(a, "green").Style.SetInstance(style.BackgroundColor, style.Color{B: 255, A: 255})
	a.Update(2)
	r.Render()
	d, err = Compare(r.Image(), before, DiffOptions{Image: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Match || d.DifferentPixels != 400 {
		t.Errorf("expected the 20x20 box to differ, got %d pixels", d.DifferentPixels)
	}
	if got := d.Image.RGBAAt(50, 10); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("expected the diff image to mark (50, 10), got %v", got)
	}

	d, _ = Compare(r.Image(), before, DiffOptions{MaxDifferentPercent: 5})
	if !d.Match {
		t.Errorf("expected 2%% different pixels to pass a 5%% threshold")
	}
}

func TestCompareSizeMismatch(t *testing.T) {
	small := image.NewRGBA(image.Rect(0, 0, 10, 10))
	large := image.NewRGBA(image.Rect(0, 0, 20, 10))
	if _, err := Compare(small, large, DiffOptions{}); err == nil {
		t.Error("expected an error for different sizes")
	}
}
