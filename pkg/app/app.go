// Package app wires templates, style sheets, bindings and layout into one
// application driven frame by frame from a single goroutine.
package app

import (
	"io"
	"log"

	"loom/pkg/binding"
	"loom/pkg/element"
	"loom/pkg/expr"
	"loom/pkg/geom"
	"loom/pkg/layout"
	"loom/pkg/markup"
	"loom/pkg/style"
	"loom/pkg/types"
)

// Option configures New.
type Option func(*options)

type options struct {
	viewport geom.Rect
	logger   *log.Logger
	measurer layout.TextMeasurer
	casts    []expr.CastHandler
	registry *types.Registry
}

// WithViewport sets the size of the root view. The screen is the same size.
func WithViewport(width, height float32) Option {
	return func(o *options) { o.viewport = geom.Rect{Width: width, Height: height} }
}

// WithLogger receives binding failures and other runtime diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTextMeasurer sizes Text elements. Without one text has no content size.
func WithTextMeasurer(m layout.TextMeasurer) Option {
	return func(o *options) { o.measurer = m }
}

// WithCastHandler adds an implicit conversion to the expression compiler.
func WithCastHandler(h expr.CastHandler) Option {
	return func(o *options) { o.casts = append(o.casts, h) }
}

// WithRegistry resolves template tags against r instead of a private
// registry. The built-in tags are added to it.
func WithRegistry(r *types.Registry) Option {
	return func(o *options) { o.registry = r }
}

type Application struct {
	logger   *log.Logger
	registry *types.Registry
	compiler *binding.Compiler

	tree   *element.Tree
	graph  *binding.Graph
	runner *layout.Runner
	view   *element.Element
	root   *element.Element

	sheet      *style.Sheet
	sheets     map[string]*style.Sheet
	templates  map[string]*markup.Template
	components map[string]*component
	expanding  map[string]bool
	checking   int

	viewport geom.Rect
	frame    int

	hits      []*element.Element
	hovered   []*element.Element
	path      []*element.Element
	active    *element.Element
	focus     *element.Element
	mouse     geom.Vector2
	mouseSeen bool
}

func New(opts ...Option) *Application {
	o := options{viewport: geom.Rect{Width: 800, Height: 600}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard, "", 0)
	}
	if o.registry == nil {
		o.registry = types.NewRegistry()
	}
	registerBuiltins(o.registry)

	ec := expr.NewCompiler()
	for _, h := range o.casts {
		ec.AddCastHandler(h)
	}
	a := &Application{
		logger:     o.logger,
		registry:   o.registry,
		compiler:   binding.NewCompiler(ec),
		tree:       element.NewTree(),
		sheets:     make(map[string]*style.Sheet),
		templates:  make(map[string]*markup.Template),
		components: make(map[string]*component),
		expanding:  make(map[string]bool),
		viewport:   o.viewport,
	}
	a.sheet = style.NewSheet("")
	a.graph = binding.NewGraph(a.tree, a.logger)
	a.view = a.tree.Create("View", GroupType, &Group{})
	a.view.Style.SetInstance(style.LayoutTypeProperty, style.LayoutNormal)
	a.runner = layout.NewRunner(a.tree, a.view, o.measurer)
	a.runner.SetScreenSize(o.viewport.Width, o.viewport.Height)
	a.tree.OnDestroy(a.forget)
	return a
}

func (a *Application) Tree() *element.Tree { return a.tree }
func (a *Application) Graph() *binding.Graph { return a.graph }
func (a *Application) Layout() *layout.Runner { return a.runner }
func (a *Application) Registry() *types.Registry { return a.registry }
func (a *Application) Logger() *log.Logger { return a.logger }
func (a *Application) Sheet() *style.Sheet { return a.sheet }
func (a *Application) View() *element.Element { return a.view }
func (a *Application) Root() *element.Element { return a.root }
func (a *Application) Focused() *element.Element { return a.focus }
func (a *Application) Viewport() geom.Rect { return a.viewport }
func (a *Application) Frame() int { return a.frame }

// SetViewport resizes the view and the screen.
func (a *Application) SetViewport(width, height float32) {
	a.viewport = geom.Rect{Width: width, Height: height}
	a.runner.SetScreenSize(width, height)
}

// Update runs one frame: bindings, then the style cascade of every changed
// element with its changes handed to layout, then layout, matrices, bounds
// and clipping. It returns the number of binding nodes that failed.
func (a *Application) Update(frame int) int {
	a.frame = frame
	failed := a.graph.Update(frame)
	element.Walk(a.view, func(el *element.Element) bool {
		if !el.SelfEnabled() {
			return false
		}
		if el.Style.IsDirty() {
			el.Style.Compute()
		}
		if el.Style.HasChanges() {
			el.Style.DrainChanges(func(p style.PropertyID) { a.runner.StyleChanged(el, p) })
		}
		return true
	})
	a.runner.RunLayout(a.viewport, frame)
	return failed
}

// Reset destroys the mounted tree and forgets every template and style
// sheet, so the next AddTemplate/AddStyleSheet/Mount starts fresh.
func (a *Application) Reset() {
	a.unmount()
	clear(a.templates)
	clear(a.components)
	clear(a.sheets)
	a.sheet = style.NewSheet("")
}

func (a *Application) unmount() {
	for len(a.view.Children) > 0 {
		a.tree.Destroy(a.view.Children[len(a.view.Children)-1])
	}
	a.root = nil
	a.hovered = a.hovered[:0]
	a.hits = a.hits[:0]
}

// forget drops input state that refers to a destroyed element.
func (a *Application) forget(el *element.Element) {
	if a.active == el {
		a.active = nil
	}
	if a.focus == el {
		a.focus = nil
	}
	for i, h := range a.hovered {
		if h == el {
			a.hovered = append(a.hovered[:i], a.hovered[i+1:]...)
			break
		}
	}
}

// setText assigns the content of a Text element and invalidates its size.
func (a *Application) setText(el *element.Element, s string) {
	if el.TextContent == s {
		return
	}
	el.TextContent = s
	a.runner.TextChanged(el)
}
