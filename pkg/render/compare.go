package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

// Diff is the outcome of comparing a raster with a reference.
type Diff struct {
	Match           bool
	DifferentPixels int
	TotalPixels     int
	MaxDifference   int // largest channel difference, 0-255

	// Image marks differing pixels red over a gray copy of the raster.
	// It is only filled in when DiffOptions.Image is set.
	Image *image.RGBA
}

type DiffOptions struct {
	// Tolerance is the largest channel difference still counted as equal.
	Tolerance int
	// Radius lets a pixel match any reference pixel this far away, which
	// absorbs anti-aliasing shifts along text and rotated edges.
	Radius int
	// MaxDifferentPercent passes the comparison when at most this share of
	// pixels differ.
	MaxDifferentPercent float64
	Image               bool
}

// Compare compares two rasters of the same size pixel by pixel.
func Compare(actual, expected image.Image, opts DiffOptions) (*Diff, error) {
	bounds := actual.Bounds()
	if bounds != expected.Bounds() {
		return &Diff{}, fmt.Errorf("image bounds differ: got %v, want %v", bounds, expected.Bounds())
	}
	d := &Diff{Match: true, TotalPixels: bounds.Dx() * bounds.Dy()}
	if opts.Image {
		d.Image = image.NewRGBA(bounds)
	}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			a := rgba(actual, x, y)
			diff := channelDiff(a, rgba(expected, x, y))
			d.MaxDifference = max(d.MaxDifference, diff)
			same := diff <= opts.Tolerance ||
				(opts.Radius > 0 && nearMatch(a, expected, x, y, opts.Radius, opts.Tolerance))
			if !same {
				d.Match = false
				d.DifferentPixels++
			}
			if d.Image != nil {
				if same {
					d.Image.SetRGBA(x, y, color.RGBA{a.R, a.R, a.R, 255})
				} else {
					d.Image.SetRGBA(x, y, color.RGBA{255, 0, 0, 255})
				}
			}
		}
	}
	if !d.Match && opts.MaxDifferentPercent > 0 && d.TotalPixels > 0 {
		if pct := float64(d.DifferentPixels) / float64(d.TotalPixels) * 100; pct <= opts.MaxDifferentPercent {
			d.Match = true
		}
	}
	return d, nil
}

// CompareFile compares the last rendered frame with a reference PNG.
func (r *Renderer) CompareFile(path string, opts DiffOptions) (*Diff, error) {
	expected, err := LoadPNG(path)
	if err != nil {
		return nil, err
	}
	return Compare(r.Image(), expected, opts)
}

func LoadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

func nearMatch(a color.RGBA, expected image.Image, x, y, radius, tolerance int) bool {
	b := expected.Bounds()
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			p := image.Pt(x+dx, y+dy)
			if !p.In(b) {
				continue
			}
			if channelDiff(a, rgba(expected, p.X, p.Y)) <= tolerance {
				return true
			}
		}
	}
	return false
}

func rgba(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func channelDiff(a, b color.RGBA) int {
	return max(abs(int(a.R)-int(b.R)), abs(int(a.G)-int(b.G)), abs(int(a.B)-int(b.B)), abs(int(a.A)-int(b.A)))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
