package text

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// Measurer measures and wraps text in a single TrueType font. Faces are
// cached per pixel size. It is safe for concurrent use.
type Measurer struct {
	mu    sync.Mutex
	font  *truetype.Font
	faces map[float32]font.Face
	dc    *gg.Context
}

// NewMeasurer returns a measurer using the bundled Go Regular font.
func NewMeasurer() *Measurer {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		panic(fmt.Sprintf("text: bundled font: %v", err))
	}
	return newMeasurer(f)
}

// LoadMeasurer returns a measurer using the TrueType font at path.
func LoadMeasurer(path string) (*Measurer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return newMeasurer(f), nil
}

func newMeasurer(f *truetype.Font) *Measurer {
	return &Measurer{font: f, faces: map[float32]font.Face{}, dc: gg.NewContext(1, 1)}
}

// Face returns the font face for a pixel size. Faces are not safe for
// concurrent use; callers drawing from several goroutines need their own
// measurer.
func (m *Measurer) Face(size float32) font.Face {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.face(size)
}

func (m *Measurer) face(size float32) font.Face {
	if size <= 0 {
		size = 1
	}
	if f, ok := m.faces[size]; ok {
		return f
	}
	f := truetype.NewFace(m.font, &truetype.Options{Size: float64(size), DPI: 72, Hinting: font.HintingNone})
	m.faces[size] = f
	return f
}

// LineHeight is the distance between baselines at a pixel size.
func (m *Measurer) LineHeight(size float32) float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return float32(m.face(size).Metrics().Height) / 64
}

// MeasureText implements layout.TextMeasurer. Text wraps at word
// boundaries when maxWidth is positive; a word wider than maxWidth gets
// a line of its own.
func (m *Measurer) MeasureText(s string, fontSize, maxWidth float32) (width, height float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dc.SetFontFace(m.face(fontSize))
	lines := m.lines(s, maxWidth)
	for _, l := range lines {
		w, _ := m.dc.MeasureString(l)
		width = max(width, float32(w))
	}
	lh := float32(m.face(fontSize).Metrics().Height) / 64
	return width, lh * float32(len(lines))
}

// Lines breaks s into the lines MeasureText sizes it by.
func (m *Measurer) Lines(s string, fontSize, maxWidth float32) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dc.SetFontFace(m.face(fontSize))
	return m.lines(s, maxWidth)
}

// lines expects the face to be set on m.dc. Explicit newlines always
// break.
func (m *Measurer) lines(s string, maxWidth float32) []string {
	var out []string
	for _, para := range strings.Split(s, "\n") {
		if maxWidth <= 0 {
			out = append(out, strings.TrimSpace(para))
			continue
		}
		out = m.wrap(out, para, float64(maxWidth))
	}
	return out
}

func (m *Measurer) wrap(out []string, para string, maxWidth float64) []string {
	words := strings.Fields(para)
	if len(words) == 0 {
		return append(out, "")
	}
	line := words[0]
	for _, w := range words[1:] {
		next := line + " " + w
		if nw, _ := m.dc.MeasureString(next); nw <= maxWidth {
			line = next
			continue
		}
		out = append(out, line)
		line = w
	}
	return append(out, line)
}
