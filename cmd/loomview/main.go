package main

import (
	"fmt"
	"io"
	"os"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"loom/pkg/app"
	"loom/pkg/element"
	"loom/pkg/geom"
	"loom/pkg/inspect"
	"loom/pkg/render"
	"loom/pkg/text"
)

// viewer shows one application and forwards pointer and key input to it.
// Every input event runs a frame and repaints.
type viewer struct {
	path     string
	app      *app.Application
	renderer *render.Renderer
	printer  *inspect.Printer
	frame    int

	image  *canvas.Image
	status *widget.Label
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <loom.yaml>\n", os.Args[0])
		os.Exit(1)
	}
	v, err := newViewer(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	a := fyneapp.New()
	w := a.NewWindow("loom - " + v.path)
	vp := v.app.Viewport()
	w.Resize(fyne.NewSize(vp.Width, vp.Height+80))

	reload := widget.NewButton("Reload", func() {
		if err := v.reload(); err != nil {
			v.status.SetText("Reload error: " + err.Error())
			return
		}
		v.status.SetText("Reloaded " + v.path)
	})
	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		handled := v.app.KeyDown(string(ev.Name))
		v.tick()
		if handled {
			v.status.SetText(fmt.Sprintf("key %s handled by %s", ev.Name, v.describe(v.app.Focused())))
		}
	})

	surface := newSurface(v)
	content := container.NewBorder(container.NewHBox(reload), v.status, nil, nil, surface)
	w.SetContent(content)
	w.ShowAndRun()
}

func newViewer(path string) (*viewer, error) {
	cfg, err := app.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	m := text.NewMeasurer()
	if cfg.Font != "" {
		if m, err = text.LoadMeasurer(cfg.Path(cfg.Font)); err != nil {
			return nil, err
		}
	}
	a, err := cfg.Open(app.WithTextMeasurer(m))
	if err != nil {
		return nil, err
	}
	v := &viewer{
		path:     path,
		app:      a,
		renderer: render.NewRenderer(int(cfg.Viewport.Width), int(cfg.Viewport.Height), a.Layout(), m),
		printer:  inspect.NewPrinter(io.Discard),
		status:   widget.NewLabel("Click an element to inspect it"),
	}
	v.tick()
	v.image = canvas.NewImageFromImage(v.renderer.Image())
	v.image.FillMode = canvas.ImageFillOriginal
	return v, nil
}

// reload re-reads the config's style sheets and templates into the same
// application and mounts the root again.
func (v *viewer) reload() error {
	cfg, err := app.LoadConfig(v.path)
	if err != nil {
		return err
	}
	v.app.Reset()
	if err := cfg.Load(v.app); err != nil {
		return err
	}
	if err := v.app.Mount(cfg.Root, nil); err != nil {
		return err
	}
	v.tick()
	return nil
}

func (v *viewer) tick() {
	v.frame++
	if n := v.app.Update(v.frame); n > 0 && v.status != nil {
		v.status.SetText(fmt.Sprintf("%d binding failures in frame %d", n, v.frame))
	}
	v.renderer.Render()
	if v.image != nil {
		v.image.Image = v.renderer.Image()
		v.image.Refresh()
	}
}

// hit is the topmost element under p.
func (v *viewer) hit(p geom.Vector2) *element.Element {
	hits := v.app.Layout().QueryPoint(p, nil)
	if len(hits) == 0 {
		return nil
	}
	return hits[len(hits)-1]
}

func (v *viewer) describe(el *element.Element) string {
	if el == nil {
		return "nothing"
	}
	return v.printer.Label(el, v.app.Layout())
}

// surface displays the raster and turns desktop mouse events into
// application input.
type surface struct {
	widget.BaseWidget
	v *viewer
}

var (
	_ desktop.Mouseable = (*surface)(nil)
	_ desktop.Hoverable = (*surface)(nil)
)

func newSurface(v *viewer) *surface {
	s := &surface{v: v}
	s.ExtendBaseWidget(s)
	return s
}

func (s *surface) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(s.v.image)
}

func point(p fyne.Position) geom.Vector2 { return geom.Vector2{X: p.X, Y: p.Y} }

func (s *surface) MouseDown(ev *desktop.MouseEvent) {
	p := point(ev.Position)
	s.v.app.MouseDown(p, int(ev.Button))
	s.v.tick()
	s.v.status.SetText(s.v.describe(s.v.hit(p)))
}

func (s *surface) MouseUp(ev *desktop.MouseEvent) {
	s.v.app.MouseUp(point(ev.Position), int(ev.Button))
	s.v.tick()
}

func (s *surface) MouseIn(ev *desktop.MouseEvent) { s.MouseMoved(ev) }

func (s *surface) MouseMoved(ev *desktop.MouseEvent) {
	s.v.app.MouseMove(point(ev.Position))
	s.v.tick()
}

func (s *surface) MouseOut() {
	s.v.app.MouseMove(geom.Vector2{X: -1, Y: -1})
	s.v.tick()
}
